package metrics

import "time"

const (
	OutcomeSuccess  = "success"
	OutcomeEmpty    = "empty"
	OutcomeError    = "error"
	OutcomeRejected = "rejected"
)

// Recorder receives wizard, AI and export measurements.
type Recorder interface {
	ObserveTransition(step, outcome string)
	ObserveAIRequest(operation, outcome string, duration time.Duration)
	ObserveExport(format, outcome string)
}

// NopRecorder drops everything.
type NopRecorder struct{}

func (NopRecorder) ObserveTransition(string, string)               {}
func (NopRecorder) ObserveAIRequest(string, string, time.Duration) {}
func (NopRecorder) ObserveExport(string, string)                   {}
