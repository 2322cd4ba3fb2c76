package domain

import (
	"encoding/json"
	"time"
)

// Core domain models shared by the resolution, merge and health services.
// Adapters translate to and from these; keep them free of transport concerns.

type EntityKind string

const (
	KindEntity     EntityKind = "entity"
	KindIndividual EntityKind = "individual"
)

// MaxChainDepth bounds ownership traversal depth.
const MaxChainDepth = 5

const RoleRegisteredAgent = "registered_agent"

type ChainNode struct {
	Name            string     `json:"name"`
	Kind            EntityKind `json:"kind"`
	Role            string     `json:"role,omitempty"`
	Confidence      *int       `json:"confidence,omitempty"`
	Jurisdiction    string     `json:"jurisdiction,omitempty"`
	RegisteredAgent string     `json:"registeredAgent,omitempty"`
	Depth           int        `json:"depth"`
}

type OwnershipChain struct {
	RootEntity               string      `json:"rootEntity"`
	Chain                    []ChainNode `json:"chain"`
	UltimateBeneficialOwners []ChainNode `json:"ultimateBeneficialOwners"`
	MaxDepthReached          bool        `json:"maxDepthReached"`
	ResolvedAt               time.Time   `json:"resolvedAt"`
	TotalAPICalls            int         `json:"totalApiCalls"`
}

// Officer is one officer or agent row returned by a registry lookup.
type Officer struct {
	Name       string `json:"name"`
	Position   string `json:"position,omitempty"`
	Role       string `json:"role,omitempty"`
	Confidence *int   `json:"confidence,omitempty"`
}

// Title returns the officer's role, falling back to position.
func (o Officer) Title() string {
	if o.Role != "" {
		return o.Role
	}
	return o.Position
}

type RegistryRecord struct {
	JurisdictionCode string    `json:"jurisdictionCode"`
	AgentName        string    `json:"agentName,omitempty"`
	Officers         []Officer `json:"officers"`
}

type HealthStatus string

const (
	StatusHealthy  HealthStatus = "healthy"
	StatusDegraded HealthStatus = "degraded"
	StatusDown     HealthStatus = "down"
)

type ProviderHealthRecord struct {
	ProviderKey         string       `json:"providerKey"`
	DisplayName         string       `json:"displayName"`
	Status              HealthStatus `json:"status"`
	ErrorCountWindow    float64      `json:"errorCountWindow"`
	SuccessCountWindow  float64      `json:"successCountWindow"`
	ErrorRateWindow     float64      `json:"errorRateWindow"`
	ConsecutiveFailures int          `json:"consecutiveFailures"`
	LastErrorMessage    string       `json:"lastErrorMessage,omitempty"`
	LastErrorAt         *time.Time   `json:"lastErrorAt,omitempty"`
	LastSuccessAt       *time.Time   `json:"lastSuccessAt,omitempty"`
	UpdatedAt           time.Time    `json:"updatedAt"`
}

// TotalWindowCalls is the (decayed) number of calls in the current window.
func (r ProviderHealthRecord) TotalWindowCalls() float64 {
	return r.ErrorCountWindow + r.SuccessCountWindow
}

// MatchScore is the discrete band a source reports for one comparison dimension.
type MatchScore int

const (
	ScoreNotCompared MatchScore = -1
	ScoreNone        MatchScore = 0
	ScoreLow         MatchScore = 2
	ScoreHigh        MatchScore = 8
	ScoreExact       MatchScore = 10
)

// Compared reports whether the source actually compared this dimension.
func (s MatchScore) Compared() bool { return s != ScoreNotCompared }

type PhoneCandidate struct {
	Number          string     `json:"number"`
	Type            string     `json:"type,omitempty"`
	Source          string     `json:"source"`
	VerifiedSource  bool       `json:"verifiedSource"`
	NameScore       MatchScore `json:"nameScore"`
	AddressScore    MatchScore `json:"addressScore"`
	LocationScore   MatchScore `json:"locationScore"`
	LastSeen        *time.Time `json:"lastSeen,omitempty"`
	Confidence      int        `json:"confidence"`
	Accepted        bool       `json:"accepted"`
	RejectionReason string     `json:"rejectionReason,omitempty"`
}

// UnmarshalJSON treats an absent address or location score as not compared;
// an explicit 0 still means no match.
func (p *PhoneCandidate) UnmarshalJSON(data []byte) error {
	type plain PhoneCandidate
	v := plain{AddressScore: ScoreNotCompared, LocationScore: ScoreNotCompared}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*p = PhoneCandidate(v)
	return nil
}

type EmailCandidate struct {
	Address          string `json:"address"`
	Source           string `json:"source"`
	MatchType        string `json:"matchType,omitempty"`
	ValidationStatus string `json:"validationStatus,omitempty"`
	DeliverableCode  int    `json:"deliverableCode,omitempty"`
	Deliverability   string `json:"deliverability,omitempty"`
	Domain           string `json:"domain,omitempty"`
	Validated        bool   `json:"validated"`
	Confidence       int    `json:"confidence"`
	Accepted         bool   `json:"accepted"`
}

type AddressCandidate struct {
	Line1               string `json:"line1"`
	Line2               string `json:"line2,omitempty"`
	City                string `json:"city"`
	State               string `json:"state"`
	Zip                 string `json:"zip"`
	Source              string `json:"source"`
	DeliveryScore       int    `json:"deliveryScore"`
	VerifiedDeliverable bool   `json:"verifiedDeliverable"`
}

type Identity struct {
	FullName  string     `json:"fullName"`
	FirstName string     `json:"firstName,omitempty"`
	LastName  string     `json:"lastName,omitempty"`
	Age       int        `json:"age,omitempty"`
	BirthDate *time.Time `json:"birthDate,omitempty"`
	Source    string     `json:"source"`
}

// ContactResult is the best-effort merged answer; slices are never nil.
type ContactResult struct {
	Phones    []PhoneCandidate   `json:"phones"`
	Emails    []EmailCandidate   `json:"emails"`
	Addresses []AddressCandidate `json:"addresses"`
	Identity  *Identity          `json:"identity"`
}
