package services

// ScoreConfig controls the continuous time-bonus policy: a correct answer is
// worth BasePoints plus a bonus that decays linearly to zero over WindowMs.
type ScoreConfig struct {
	BasePoints  int
	BonusPoints int
	WindowMs    int
}

func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		BasePoints:  500,
		BonusPoints: 500,
		WindowMs:    30000,
	}
}

// CalculatePoints returns the points awarded for an answer. The reported
// elapsed time is clamped to [0, WindowMs] so a negative or over-window
// value from a client cannot produce out-of-range points.
func CalculatePoints(isCorrect bool, elapsedMs int, cfg ScoreConfig) int {
	if !isCorrect {
		return 0
	}

	if elapsedMs < 0 {
		elapsedMs = 0
	}
	if elapsedMs > cfg.WindowMs {
		elapsedMs = cfg.WindowMs
	}

	timeBonus := cfg.BonusPoints * (cfg.WindowMs - elapsedMs) / cfg.WindowMs

	return cfg.BasePoints + timeBonus
}
