package config

import (
	"fmt"
	"time"
)

type Config struct {
	Bind          string
	Port          int
	QuestionsFile string
	MinPlayers    int
	StartDelay    time.Duration
	QuestionTime  time.Duration
	RevealDelay   time.Duration
	EndGrace      time.Duration
}

func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.MinPlayers < 1 {
		return fmt.Errorf("invalid min-players (must be at least 1): %d", c.MinPlayers)
	}
	if c.QuestionTime <= 0 {
		return fmt.Errorf("invalid question-time: %s", c.QuestionTime)
	}
	if c.StartDelay < 0 || c.RevealDelay < 0 || c.EndGrace < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	return nil
}
