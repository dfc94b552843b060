package ai

import (
	"time"

	"github.com/pantrypairing/server/pkg/errors"
)

// Outcomes reported to the Recorder.
const (
	OutcomeSuccess  = "success"
	OutcomeCacheHit = "cache_hit"
	OutcomeError    = "error"
)

// Recorder receives gateway measurements. monitoring.Metrics implements it.
type Recorder interface {
	ObserveRequest(op errors.Operation, outcome string, duration time.Duration)
	IncRetry(op errors.Operation)
	IncOCRFallback()
	AddConformanceViolations(op errors.Operation, n int)
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(errors.Operation, string, time.Duration) {}
func (nopRecorder) IncRetry(errors.Operation)                              {}
func (nopRecorder) IncOCRFallback()                                        {}
func (nopRecorder) AddConformanceViolations(errors.Operation, int)         {}
