package services

import (
	"strings"
	"testing"

	"quizroom/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(questionCount int) (*GameService, *Registry, *fakeSink) {
	registry := NewRegistry()
	service := NewGameService(registry, testQuestions(questionCount), testRoomConfig())
	return service, registry, &fakeSink{}
}

func TestCreateRoomValidation(t *testing.T) {
	service, _, sink := newTestService(1)

	_, err := service.CreateRoom("conn-1", "", sink)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = service.CreateRoom("conn-1", "   ", sink)
	assert.ErrorIs(t, err, ErrNameRequired)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)
	assert.Len(t, code, 6)

	_, err = service.CreateRoom("conn-1", "Alice", sink)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestCreateRoomEmitsRoomCreated(t *testing.T) {
	service, _, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)

	created := sink.waitFor(t, EventRoomCreated, 1)
	assert.Equal(t, "conn-1", created[0].target)
	assert.Equal(t, code, created[0].payload.(gin.H)["roomCode"])

	rosters := sink.waitFor(t, EventRosterUpdated, 1)
	players := rosters[0].payload.(gin.H)["players"].([]models.Player)
	require.Len(t, players, 1)
	assert.Equal(t, "Alice", players[0].Name)
	assert.True(t, players[0].IsHost)
}

func TestJoinRoomValidation(t *testing.T) {
	service, _, sink := newTestService(1)

	_, err := service.JoinRoom("conn-2", "NOSUCH", "Bob", sink)
	assert.ErrorIs(t, err, ErrRoomNotFound)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)

	_, err = service.JoinRoom("conn-2", code, "", sink)
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = service.JoinRoom("conn-1", code, "Alice", sink)
	assert.ErrorIs(t, err, ErrAlreadyInRoom)
}

func TestJoinRoomCodeCaseInsensitive(t *testing.T) {
	service, _, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)

	joined, err := service.JoinRoom("conn-2", " "+strings.ToLower(code)+" ", "Bob", sink)
	require.NoError(t, err)
	assert.Equal(t, code, joined)
}

func TestJoinInProgressRejected(t *testing.T) {
	service, _, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)
	_, err = service.JoinRoom("conn-2", code, "Bob", sink)
	require.NoError(t, err)

	require.NoError(t, service.StartGame("conn-1"))

	_, err = service.JoinRoom("conn-3", code, "Carol", sink)
	assert.ErrorIs(t, err, ErrGameAlreadyStarted)
	assert.Len(t, service.MembersOf(code), 2)
}

func TestActionsWithoutMembership(t *testing.T) {
	service, _, _ := newTestService(1)

	assert.ErrorIs(t, service.StartGame("conn-1"), ErrNotInRoom)
	assert.ErrorIs(t, service.SubmitAnswer("conn-1", 0, 1000), ErrNotInRoom)
}

func TestEndToEndGame(t *testing.T) {
	service, _, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)
	_, err = service.JoinRoom("conn-2", code, "Bob", sink)
	require.NoError(t, err)

	assert.ErrorIs(t, service.StartGame("conn-2"), ErrNotHost)
	require.NoError(t, service.StartGame("conn-1"))

	sink.waitFor(t, EventGameStarted, 1)
	sink.waitFor(t, EventQuestion, 1)

	require.NoError(t, service.SubmitAnswer("conn-1", 1, 2000))
	require.NoError(t, service.SubmitAnswer("conn-2", 0, 5000))

	sink.waitFor(t, EventAnswerResult, 2)
	sink.waitFor(t, EventRevealAnswer, 1)

	ended := sink.waitFor(t, EventGameEnded, 1)
	ranked := ended[0].payload.(gin.H)["rankedResults"].([]models.RankedPlayer)
	require.Len(t, ranked, 2)
	assert.Equal(t, "Alice", ranked[0].Name)
	assert.Equal(t, "Bob", ranked[1].Name)
}

func TestHostDisconnectClosesRoom(t *testing.T) {
	service, registry, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)
	_, err = service.JoinRoom("conn-2", code, "Bob", sink)
	require.NoError(t, err)

	service.Disconnect("conn-1")

	sink.waitFor(t, EventHostLeft, 1)

	_, err = registry.GetRoom(code)
	assert.ErrorIs(t, err, ErrRoomNotFound)
	assert.Empty(t, service.MembersOf(code))

	// Disconnect is idempotent; a second one is a no-op.
	service.Disconnect("conn-1")
	service.Disconnect("conn-2")
}

func TestNonHostDisconnectUpdatesRoster(t *testing.T) {
	service, registry, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)
	_, err = service.JoinRoom("conn-2", code, "Bob", sink)
	require.NoError(t, err)

	before := sink.countOf(EventRosterUpdated)
	service.Disconnect("conn-2")

	assert.Greater(t, sink.countOf(EventRosterUpdated), before)
	assert.Equal(t, 0, sink.countOf(EventHostLeft))

	room, err := registry.GetRoom(code)
	require.NoError(t, err)
	assert.Len(t, room.Players(), 1)
	assert.Len(t, service.MembersOf(code), 1)
}

func TestRoomSnapshot(t *testing.T) {
	service, _, sink := newTestService(1)

	code, err := service.CreateRoom("conn-1", "Alice", sink)
	require.NoError(t, err)

	snapshot, err := service.RoomSnapshot(code)
	require.NoError(t, err)
	assert.Equal(t, code, snapshot["roomCode"])
	assert.Equal(t, models.PhaseLobby, snapshot["phase"])
	assert.Equal(t, 1, snapshot["totalQuestions"])

	_, err = service.RoomSnapshot("NOSUCH")
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
