package contacts

import (
	"strings"
	"time"

	"ownerscope/internal/domain"
)

// StaleAfterYears is how old an unverified phone-to-name association may be
// before it is dropped.
const StaleAfterYears = 3

const (
	RejectNameMismatch     = "name mismatch"
	RejectLocationMismatch = "location and address mismatch"
	RejectStale            = "stale unverified association"
)

// EvaluatePhone applies the phone acceptance rules. A weak name match is
// rejected outright; otherwise either location or address must clear the low
// band, where "not compared" counts as clearing it.
func EvaluatePhone(p domain.PhoneCandidate, now time.Time) (confidence int, accepted bool, reason string) {
	if p.NameScore < domain.ScoreLow {
		return 0, false, RejectNameMismatch
	}
	confidence = phoneConfidence(p)
	if !p.VerifiedSource && p.LastSeen != nil && p.LastSeen.Before(now.AddDate(-StaleAfterYears, 0, 0)) {
		return confidence, false, RejectStale
	}
	if !clears(p.LocationScore) && !clears(p.AddressScore) {
		return confidence, false, RejectLocationMismatch
	}
	return confidence, true, ""
}

func clears(s domain.MatchScore) bool {
	return !s.Compared() || s >= domain.ScoreLow
}

func phoneConfidence(p domain.PhoneCandidate) int {
	switch {
	case p.NameScore >= domain.ScoreHigh && (p.LocationScore >= domain.ScoreHigh || p.AddressScore >= domain.ScoreHigh):
		return 90
	case p.NameScore >= domain.ScoreHigh:
		return 80
	case p.NameScore >= domain.ScoreLow:
		return 70
	}
	return 60
}

const (
	StatusUnknown   = "Unknown"
	StatusValidated = "Validated"
	StatusInvalid   = "Invalid"
)

// NeedsVerification reports whether a provider-reported email status should
// be confirmed with the secondary validator.
func NeedsVerification(status string) bool {
	s := strings.TrimSpace(status)
	return s == "" || strings.EqualFold(s, StatusUnknown) || strings.EqualFold(s, StatusValidated)
}

// Deliverability maps a numeric deliverable code to its band.
func Deliverability(code int) string {
	switch code {
	case 50:
		return "deliverable"
	case 40:
		return "valid"
	case 30:
		return "risky"
	}
	return "unknown"
}

func emailConfidence(e domain.EmailCandidate) int {
	switch {
	case e.Validated:
		return 90
	case strings.EqualFold(e.MatchType, "Individual"):
		return 80
	}
	return 70
}

// MaxDeliverableScore is the worst delivery score still considered deliverable.
// Scores are 1-based; 0 means the source did not score the address.
const MaxDeliverableScore = 3

func verifiedDeliverable(score int) bool {
	return score > 0 && score <= MaxDeliverableScore
}
