package models

// NoAnswer is the answer index recorded for a player who never submitted
// before the question closed.
const NoAnswer = -1

type Answer struct {
	AnswerIndex int  `json:"answerIndex"`
	IsCorrect   bool `json:"isCorrect"`
	Points      int  `json:"points"`
	TimeElapsed int  `json:"timeElapsed"` // milliseconds
}
