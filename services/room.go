package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"quizroom/models"

	"github.com/gin-gonic/gin"
)

var (
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrGameNotStarted     = errors.New("game has not started")
	ErrNotHost            = errors.New("only the host can start the game")
)

// RoomConfig carries the per-room timing knobs and the scoring policy.
type RoomConfig struct {
	MinPlayers   int
	StartDelay   time.Duration
	QuestionTime time.Duration
	RevealDelay  time.Duration
	EndGrace     time.Duration
	Score        ScoreConfig
}

func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		MinPlayers:   2,
		StartDelay:   1 * time.Second,
		QuestionTime: 30 * time.Second,
		RevealDelay:  3 * time.Second,
		EndGrace:     60 * time.Second,
		Score:        DefaultScoreConfig(),
	}
}

// Room is a single game instance. All state is guarded by one mutex; timers
// capture the question index they were scheduled for and re-check it under
// the lock before acting, so a stale firing is a no-op.
type Room struct {
	code      string
	questions *QuestionSource
	cfg       RoomConfig
	sink      EventSink
	onClose   func(code string)

	mutex             sync.Mutex
	players           []*models.Player
	phase             string
	currentQuestion   int
	answers           map[string]*models.Answer
	questionStartedAt time.Time
	questionTimer     *time.Timer
	advanceTimer      *time.Timer
	closed            bool
}

// NewRoom builds an empty room in the lobby phase. onClose is called, outside
// the room lock, once the room closes itself and must be removed from the
// registry.
func NewRoom(code string, questions *QuestionSource, cfg RoomConfig, sink EventSink, onClose func(code string)) *Room {
	return &Room{
		code:      code,
		questions: questions,
		cfg:       cfg,
		sink:      sink,
		onClose:   onClose,
		phase:     models.PhaseLobby,
		answers:   make(map[string]*models.Answer),
	}
}

func (r *Room) Code() string {
	return r.code
}

// AddPlayer adds a member in the lobby phase. The first player added becomes
// the host.
func (r *Room) AddPlayer(connID, name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.phase != models.PhaseLobby {
		return ErrGameAlreadyStarted
	}

	r.players = append(r.players, &models.Player{
		ID:       connID,
		Name:     name,
		Score:    0,
		IsHost:   len(r.players) == 0,
		JoinedAt: time.Now(),
	})

	return nil
}

// Players returns the member list in join order.
func (r *Room) Players() []models.Player {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.playersLocked()
}

func (r *Room) playersLocked() []models.Player {
	players := make([]models.Player, len(r.players))
	for i, p := range r.players {
		players[i] = *p
	}
	return players
}

// BroadcastRoster sends the current member list to the whole room.
func (r *Room) BroadcastRoster() {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return
	}
	r.sink.ToRoom(r.code, EventRosterUpdated, gin.H{
		"players": r.playersLocked(),
	})
}

// Start moves the room from lobby to in-progress. Host only, and only with
// enough members. The first question goes out after a short delay so clients
// can finish their page transition.
func (r *Room) Start(connID string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return ErrRoomNotFound
	}
	if r.phase != models.PhaseLobby {
		return ErrGameAlreadyStarted
	}

	host := r.hostLocked()
	if host == nil || host.ID != connID {
		return ErrNotHost
	}
	if len(r.players) < r.cfg.MinPlayers {
		return fmt.Errorf("need at least %d players", r.cfg.MinPlayers)
	}

	r.phase = models.PhaseStarting
	r.currentQuestion = 0

	r.sink.ToRoom(r.code, EventGameStarted, gin.H{
		"totalQuestions": r.questions.Count(),
	})

	r.advanceTimer = time.AfterFunc(r.cfg.StartDelay, func() {
		r.sendQuestion(0)
	})

	return nil
}

func (r *Room) sendQuestion(index int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.sendQuestionLocked(index)
}

func (r *Room) sendQuestionLocked(index int) {
	if r.closed || r.currentQuestion != index {
		return
	}
	if r.phase != models.PhaseStarting && r.phase != models.PhaseReveal {
		return
	}

	r.phase = models.PhaseQuestion
	r.answers = make(map[string]*models.Answer)
	r.questionStartedAt = time.Now()

	question := r.questions.Get(index)
	r.sink.ToRoom(r.code, EventQuestion, gin.H{
		"index":   index,
		"total":   r.questions.Count(),
		"text":    question.Text,
		"options": question.Options,
	})

	r.questionTimer = time.AfterFunc(r.cfg.QuestionTime, func() {
		r.questionDeadline(index)
	})
}

// questionDeadline fires when the answer window for a question expires. A
// firing for a question the room has already advanced past is discarded.
func (r *Room) questionDeadline(index int) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed || r.phase != models.PhaseQuestion || r.currentQuestion != index {
		return
	}

	log.Printf("Room %s: question %d timed out with %d/%d answers", r.code, index, len(r.answers), len(r.players))
	r.finishQuestionLocked()
}

// SubmitAnswer records a member's answer for the current question. A ledger
// entry is written at most once per player per question; a submission that
// arrives after the room advanced past the question is dropped without an
// error, since the client locks its own input.
func (r *Room) SubmitAnswer(connID string, answerIndex, elapsedMs int) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.closed {
		return nil
	}
	if r.phase == models.PhaseLobby || r.phase == models.PhaseStarting {
		return ErrGameNotStarted
	}
	if r.phase != models.PhaseQuestion {
		// Lost the race against the deadline or the last answer.
		return nil
	}

	player := r.findPlayerLocked(connID)
	if player == nil {
		return nil
	}
	if _, answered := r.answers[connID]; answered {
		return nil
	}

	question := r.questions.Get(r.currentQuestion)
	isCorrect := answerIndex == question.Correct
	points := CalculatePoints(isCorrect, elapsedMs, r.cfg.Score)

	player.Score += points
	r.answers[connID] = &models.Answer{
		AnswerIndex: answerIndex,
		IsCorrect:   isCorrect,
		Points:      points,
		TimeElapsed: elapsedMs,
	}

	// The ledger can hold entries from members who have since left, so the
	// completion check walks the members still present.
	if r.allAnsweredLocked() {
		r.finishQuestionLocked()
	}

	return nil
}

// finishQuestionLocked closes answer collection for the current question,
// synthesizes zero-point entries for members who never answered, sends each
// member their private result and reveals the correct answer to the room.
func (r *Room) finishQuestionLocked() {
	if r.questionTimer != nil {
		r.questionTimer.Stop()
	}

	index := r.currentQuestion
	question := r.questions.Get(index)

	log.Printf("Room %s: question %d closed after %v", r.code, index, time.Since(r.questionStartedAt).Round(time.Millisecond))

	for _, p := range r.players {
		if _, answered := r.answers[p.ID]; !answered {
			r.answers[p.ID] = &models.Answer{
				AnswerIndex: models.NoAnswer,
				IsCorrect:   false,
				Points:      0,
			}
		}
	}

	r.phase = models.PhaseReveal

	for _, p := range r.players {
		answer := r.answers[p.ID]
		r.sink.ToPlayer(p.ID, EventAnswerResult, gin.H{
			"correct":       answer.IsCorrect,
			"correctAnswer": question.Correct,
			"chosenAnswer":  answer.AnswerIndex,
			"pointsAwarded": answer.Points,
		})
	}

	r.sink.ToRoom(r.code, EventRevealAnswer, gin.H{
		"correctAnswer": question.Correct,
		"correctText":   question.Options[question.Correct],
	})

	r.advanceTimer = time.AfterFunc(r.cfg.RevealDelay, func() {
		r.advance(index)
	})
}

// advance moves past the reveal of the given question, either into the next
// question or into the final ranking.
func (r *Room) advance(index int) {
	r.mutex.Lock()

	if r.closed || r.phase != models.PhaseReveal || r.currentQuestion != index {
		r.mutex.Unlock()
		return
	}

	next := index + 1
	if next < r.questions.Count() {
		r.currentQuestion = next
		r.phase = models.PhaseStarting
		r.sendQuestionLocked(next)
		r.mutex.Unlock()
		return
	}

	r.endGameLocked()
	r.mutex.Unlock()
}

func (r *Room) endGameLocked() {
	r.phase = models.PhaseEnded
	r.currentQuestion = r.questions.Count()

	// Rank by score descending; ties keep join order.
	ranked := r.playersLocked()
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	results := make([]models.RankedPlayer, len(ranked))
	for i, p := range ranked {
		results[i] = models.RankedPlayer{Name: p.Name, Score: p.Score}
	}

	r.sink.ToRoom(r.code, EventGameEnded, gin.H{
		"rankedResults": results,
	})

	log.Printf("Room %s: game over, %d players ranked", r.code, len(results))

	r.advanceTimer = time.AfterFunc(r.cfg.EndGrace, func() {
		r.expire()
	})
}

// expire removes the room once the post-game grace period elapses.
func (r *Room) expire() {
	r.mutex.Lock()
	if r.closed {
		r.mutex.Unlock()
		return
	}
	r.closeLocked()
	r.mutex.Unlock()

	if r.onClose != nil {
		r.onClose(r.code)
	}
}

// RemovePlayer handles a member disconnect. If the host leaves, the room
// closes immediately and remaining members are notified; otherwise the roster
// update is broadcast and, mid-question, the completion condition is
// re-checked against the members still present.
func (r *Room) RemovePlayer(connID string) {
	r.mutex.Lock()

	if r.closed {
		r.mutex.Unlock()
		return
	}

	player := r.findPlayerLocked(connID)
	if player == nil {
		r.mutex.Unlock()
		return
	}

	for i, p := range r.players {
		if p.ID == connID {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}

	if player.IsHost {
		r.sink.ToRoom(r.code, EventHostLeft, nil)
		r.closeLocked()
		r.mutex.Unlock()
		if r.onClose != nil {
			r.onClose(r.code)
		}
		return
	}

	if len(r.players) == 0 {
		r.closeLocked()
		r.mutex.Unlock()
		if r.onClose != nil {
			r.onClose(r.code)
		}
		return
	}

	r.sink.ToRoom(r.code, EventRosterUpdated, gin.H{
		"players": r.playersLocked(),
	})

	if r.phase == models.PhaseQuestion && r.allAnsweredLocked() {
		r.finishQuestionLocked()
	}

	r.mutex.Unlock()
}

func (r *Room) allAnsweredLocked() bool {
	for _, p := range r.players {
		if _, answered := r.answers[p.ID]; !answered {
			return false
		}
	}
	return true
}

// Shutdown cancels all pending timers and marks the room closed. Called by
// the registry on removal; safe to call more than once.
func (r *Room) Shutdown() {
	r.mutex.Lock()
	r.closeLocked()
	r.mutex.Unlock()
}

func (r *Room) closeLocked() {
	if r.closed {
		return
	}
	r.closed = true

	if r.questionTimer != nil {
		r.questionTimer.Stop()
	}
	if r.advanceTimer != nil {
		r.advanceTimer.Stop()
	}
}

func (r *Room) hostLocked() *models.Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) findPlayerLocked(connID string) *models.Player {
	for _, p := range r.players {
		if p.ID == connID {
			return p
		}
	}
	return nil
}

// Phase returns the room's current lifecycle phase.
func (r *Room) Phase() string {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.phase
}

// CurrentQuestion returns the 0-based index of the active question.
func (r *Room) CurrentQuestion() int {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	return r.currentQuestion
}

// Snapshot returns a read-only view of the room for the REST API.
func (r *Room) Snapshot() gin.H {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return gin.H{
		"roomCode":        r.code,
		"phase":           r.phase,
		"players":         r.playersLocked(),
		"currentQuestion": r.currentQuestion,
		"totalQuestions":  r.questions.Count(),
	}
}
