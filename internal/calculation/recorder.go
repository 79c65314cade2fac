package calculation

import (
	"time"

	"github.com/rgehrsitz/psupdate/internal/domain"
)

// Recorder receives run events for metrics. Implementations must be cheap;
// they are called once per participant.
type Recorder interface {
	ParticipantProcessed(kind domain.ParticipantKind)
	ParticipantSkipped(kind domain.ParticipantKind, reason string)
	ParticipantCapped(shortfall bool)
	RunFinished(outcome *domain.RunOutcome, elapsed time.Duration)
}

// NopRecorder records nothing
type NopRecorder struct{}

func (NopRecorder) ParticipantProcessed(domain.ParticipantKind)       {}
func (NopRecorder) ParticipantSkipped(domain.ParticipantKind, string) {}
func (NopRecorder) ParticipantCapped(bool)                            {}
func (NopRecorder) RunFinished(*domain.RunOutcome, time.Duration)     {}
