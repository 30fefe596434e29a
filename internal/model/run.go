package model

import "time"

// RunSummary describes one pipeline execution.
type RunSummary struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string // fetcher name
	OutputPath string

	Total     int
	Succeeded int
	Failed    int
	Advancers int
	Decliners int
	Unchanged int
}

// Duration is the wall time of the run.
func (s *RunSummary) Duration() time.Duration {
	if s.FinishedAt.IsZero() {
		return 0
	}
	return s.FinishedAt.Sub(s.StartedAt)
}

// Mover is a row ranked by percent change.
type Mover struct {
	Symbol        string
	Name          string
	ChangePercent float64
}

// RunRecord is a stored run with its top movers, as listed on the history page.
type RunRecord struct {
	Summary RunSummary
	Gainers []Mover
	Losers  []Mover
}
