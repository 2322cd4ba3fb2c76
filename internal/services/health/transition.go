package health

import (
	"time"

	"ownerscope/internal/domain"
)

const (
	// DownStreak is the run of consecutive failures that marks a provider down
	// regardless of its windowed error rate.
	DownStreak = 5
	// MinSample is the windowed call count below which rates are not trusted.
	MinSample = 5

	DownRate     = 0.8
	DegradedRate = 0.2

	DefaultDecayFactor    = 0.8
	DefaultRecoveryWindow = 30 * time.Minute

	// counters below this after decay are snapped to zero
	decayFloor = 0.01
)

type EventKind int

const (
	EventSuccess EventKind = iota
	EventError
	EventDecay
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventSuccess:
		return "success"
	case EventError:
		return "error"
	case EventDecay:
		return "decay"
	case EventReset:
		return "reset"
	}
	return "unknown"
}

// Event drives one state transition of a provider record.
type Event struct {
	Kind EventKind
	At   time.Time
	// Err is the message recorded for EventError.
	Err string
	// Factor and RecoveryWindow parameterize EventDecay.
	Factor         float64
	RecoveryWindow time.Duration
}

// CalculateStatus derives the provider status. A failure streak wins over a
// favorable long-run rate; rates only count once the sample is large enough.
func CalculateStatus(errorRate float64, consecutiveFailures int, totalCalls float64) domain.HealthStatus {
	if consecutiveFailures >= DownStreak {
		return domain.StatusDown
	}
	if totalCalls >= MinSample {
		if errorRate >= DownRate {
			return domain.StatusDown
		}
		if errorRate >= DegradedRate {
			return domain.StatusDegraded
		}
	}
	return domain.StatusHealthy
}

// Transition is the pure state machine of a provider record. Status is always
// recomputed from the counters, except for the explicit reset.
func Transition(rec domain.ProviderHealthRecord, ev Event) domain.ProviderHealthRecord {
	at := ev.At
	switch ev.Kind {
	case EventSuccess:
		rec.SuccessCountWindow++
		rec.ConsecutiveFailures = 0
		rec.LastSuccessAt = &at
	case EventError:
		rec.ErrorCountWindow++
		rec.ConsecutiveFailures++
		rec.LastErrorAt = &at
		rec.LastErrorMessage = ev.Err
	case EventDecay:
		if recovered(rec, ev) {
			return zeroed(rec, at)
		}
		if rec.TotalWindowCalls() == 0 {
			return rec
		}
		factor := ev.Factor
		if factor <= 0 || factor >= 1 {
			factor = DefaultDecayFactor
		}
		rec.SuccessCountWindow = decay(rec.SuccessCountWindow, factor)
		rec.ErrorCountWindow = decay(rec.ErrorCountWindow, factor)
	case EventReset:
		return zeroed(rec, at)
	default:
		return rec
	}
	rec.ErrorRateWindow = errorRate(rec)
	rec.Status = CalculateStatus(rec.ErrorRateWindow, rec.ConsecutiveFailures, rec.TotalWindowCalls())
	rec.UpdatedAt = at
	return rec
}

// recovered reports whether an unhealthy record has been error-free for the
// whole recovery window.
func recovered(rec domain.ProviderHealthRecord, ev Event) bool {
	if rec.Status == domain.StatusHealthy || rec.Status == "" {
		return false
	}
	window := ev.RecoveryWindow
	if window <= 0 {
		window = DefaultRecoveryWindow
	}
	return rec.LastErrorAt == nil || ev.At.Sub(*rec.LastErrorAt) >= window
}

func zeroed(rec domain.ProviderHealthRecord, at time.Time) domain.ProviderHealthRecord {
	rec.Status = domain.StatusHealthy
	rec.ErrorCountWindow = 0
	rec.SuccessCountWindow = 0
	rec.ErrorRateWindow = 0
	rec.ConsecutiveFailures = 0
	rec.UpdatedAt = at
	return rec
}

func decay(v, factor float64) float64 {
	v *= factor
	if v < decayFloor {
		return 0
	}
	return v
}

func errorRate(rec domain.ProviderHealthRecord) float64 {
	total := rec.TotalWindowCalls()
	if total == 0 {
		return 0
	}
	return rec.ErrorCountWindow / total
}
