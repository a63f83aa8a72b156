package services

// Event types sent to clients.
const (
	EventRoomCreated   = "roomCreated"
	EventRoomJoined    = "roomJoined"
	EventRosterUpdated = "rosterUpdated"
	EventGameStarted   = "gameStarted"
	EventQuestion      = "question"
	EventAnswerResult  = "answerResult"
	EventRevealAnswer  = "revealAnswer"
	EventGameEnded     = "gameEnded"
	EventHostLeft      = "hostLeft"
	EventErrorNotice   = "errorNotice"
)

// EventSink delivers room events to connected clients. The Hub implements it
// over websockets; tests substitute an in-memory recorder.
type EventSink interface {
	ToRoom(roomCode string, messageType string, payload interface{})
	ToPlayer(playerID string, messageType string, payload interface{})
}
