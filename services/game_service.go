package services

import (
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

var (
	ErrNameRequired  = errors.New("name is required")
	ErrAlreadyInRoom = errors.New("already in a room")
	ErrNotInRoom     = errors.New("not in a room")
)

// GameService routes player actions to rooms and relays room events back out
// through the EventSink. Each connection belongs to at most one room at a
// time; every action is validated against the room's current phase before any
// state is mutated.
type GameService struct {
	registry  *Registry
	questions *QuestionSource
	cfg       RoomConfig

	mutex      sync.Mutex
	membership map[string]string // connection id -> room code
}

func NewGameService(registry *Registry, questions *QuestionSource, cfg RoomConfig) *GameService {
	return &GameService{
		registry:   registry,
		questions:  questions,
		cfg:        cfg,
		membership: make(map[string]string),
	}
}

// CreateRoom creates a room with the caller as host and returns its code.
func (s *GameService) CreateRoom(connID, playerName string, sink EventSink) (string, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return "", ErrNameRequired
	}

	s.mutex.Lock()
	if _, member := s.membership[connID]; member {
		s.mutex.Unlock()
		return "", ErrAlreadyInRoom
	}
	s.mutex.Unlock()

	code, room := s.registry.CreateRoom(func(code string) *Room {
		return NewRoom(code, s.questions, s.cfg, sink, s.closeRoom)
	})

	if err := room.AddPlayer(connID, playerName); err != nil {
		s.registry.DeleteRoom(code)
		return "", err
	}

	s.mutex.Lock()
	s.membership[connID] = code
	s.mutex.Unlock()

	log.Printf("Room %s created by %s", code, playerName)

	sink.ToPlayer(connID, EventRoomCreated, gin.H{
		"roomCode": code,
		"players":  room.Players(),
	})
	room.BroadcastRoster()

	return code, nil
}

// JoinRoom adds the caller to an existing lobby.
func (s *GameService) JoinRoom(connID, roomCode, playerName string, sink EventSink) (string, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		return "", ErrNameRequired
	}

	s.mutex.Lock()
	if _, member := s.membership[connID]; member {
		s.mutex.Unlock()
		return "", ErrAlreadyInRoom
	}
	s.mutex.Unlock()

	code := normalizeRoomCode(roomCode)
	room, err := s.registry.GetRoom(code)
	if err != nil {
		return "", err
	}

	if err := room.AddPlayer(connID, playerName); err != nil {
		return "", err
	}

	s.mutex.Lock()
	s.membership[connID] = code
	s.mutex.Unlock()

	log.Printf("Player %s joined room %s", playerName, code)

	sink.ToPlayer(connID, EventRoomJoined, gin.H{
		"roomCode": code,
		"players":  room.Players(),
	})
	room.BroadcastRoster()

	return code, nil
}

// StartGame begins the question round. Host only.
func (s *GameService) StartGame(connID string) error {
	room, err := s.roomFor(connID)
	if err != nil {
		return err
	}
	return room.Start(connID)
}

// SubmitAnswer records the caller's answer for the current question.
func (s *GameService) SubmitAnswer(connID string, answerIndex, elapsedMs int) error {
	room, err := s.roomFor(connID)
	if err != nil {
		return err
	}
	return room.SubmitAnswer(connID, answerIndex, elapsedMs)
}

// Disconnect removes the caller from their room, if any. Idempotent; a
// disconnect after the room is gone is a no-op.
func (s *GameService) Disconnect(connID string) {
	s.mutex.Lock()
	code, member := s.membership[connID]
	delete(s.membership, connID)
	s.mutex.Unlock()

	if !member {
		return
	}

	room, err := s.registry.GetRoom(code)
	if err != nil {
		return
	}
	room.RemovePlayer(connID)
}

// RoomSnapshot returns a read-only view of a room for the REST API.
func (s *GameService) RoomSnapshot(roomCode string) (gin.H, error) {
	room, err := s.registry.GetRoom(normalizeRoomCode(roomCode))
	if err != nil {
		return nil, err
	}
	return room.Snapshot(), nil
}

// QuestionCount reports the size of the loaded question set.
func (s *GameService) QuestionCount() int {
	return s.questions.Count()
}

// MembersOf returns the connection ids currently belonging to a room. The
// Hub uses it to resolve broadcast recipients.
func (s *GameService) MembersOf(roomCode string) map[string]struct{} {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	members := make(map[string]struct{})
	for connID, code := range s.membership {
		if code == roomCode {
			members[connID] = struct{}{}
		}
	}
	return members
}

func (s *GameService) roomFor(connID string) (*Room, error) {
	s.mutex.Lock()
	code, member := s.membership[connID]
	s.mutex.Unlock()

	if !member {
		return nil, ErrNotInRoom
	}
	return s.registry.GetRoom(code)
}

// closeRoom is handed to every room as its onClose hook: it removes the room
// from the registry and drops the membership entries of everyone inside.
func (s *GameService) closeRoom(code string) {
	s.registry.DeleteRoom(code)

	s.mutex.Lock()
	for connID, memberCode := range s.membership {
		if memberCode == code {
			delete(s.membership, connID)
		}
	}
	s.mutex.Unlock()

	log.Printf("Room %s closed", code)
}

func normalizeRoomCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
