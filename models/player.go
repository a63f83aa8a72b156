package models

import "time"

type Player struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Score    int       `json:"score"`
	IsHost   bool      `json:"isHost"`
	JoinedAt time.Time `json:"-"`
}
