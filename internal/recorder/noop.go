package recorder

import "BreakoutSentinel/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSetups(_ string, _ string, _ []model.Setup) error { return nil }
func (n *NoopRecorder) RecordRun(_ *ScanRun) error                             { return nil }
func (n *NoopRecorder) Close() error                                           { return nil }
