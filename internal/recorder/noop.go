package recorder

import "StockBoard/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.RunSummary, _ []model.QuoteRow) error { return nil }
func (n *NoopRecorder) RecentRuns(_ int) ([]model.RunRecord, error)             { return nil, nil }
func (n *NoopRecorder) RunQuotes(_ string) ([]model.QuoteRow, error)            { return nil, nil }
func (n *NoopRecorder) Close() error                                            { return nil }
