package metrics

import "time"

// NoopRecorder is a no-operation implementation of Recorder used when
// metrics are disabled.
type NoopRecorder struct{}

// Ensure NoopRecorder implements Recorder interface at compile time
var _ Recorder = (*NoopRecorder)(nil)

// NewNoopRecorder creates a new no-operation metrics recorder
func NewNoopRecorder() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) RecordLaunch(outcome string)           {}
func (n *NoopRecorder) RecordCodeExchange(success bool)       {}
func (n *NoopRecorder) RecordTokenRefresh(success bool)       {}
func (n *NoopRecorder) RecordProfileProbe(valid bool)         {}
func (n *NoopRecorder) RecordHTTPRequest(method, path, status string, duration time.Duration) {
}
