package models

// Room lifecycle phases. A room only ever moves forward through
// lobby -> starting -> question/reveal cycles -> ended, then deletion.
const (
	PhaseLobby    = "lobby"
	PhaseStarting = "starting"
	PhaseQuestion = "question"
	PhaseReveal   = "reveal"
	PhaseEnded    = "ended"
)

// RankedPlayer is one row of the final leaderboard.
type RankedPlayer struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}
