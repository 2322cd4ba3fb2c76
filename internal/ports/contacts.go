package ports

import (
	"context"

	"ownerscope/internal/domain"
)

// ContactQuery identifies the person being enriched.
type ContactQuery struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
}

// IdentityResponse is the pre-parsed payload of an identity/address verification source.
type IdentityResponse struct {
	Identity  *domain.Identity          `json:"identity"`
	Addresses []domain.AddressCandidate `json:"addresses"`
}

// IdentitySource verifies identity and address. Absence of data is (nil, nil).
type IdentitySource interface {
	VerifyIdentity(ctx context.Context, q ContactQuery) (*IdentityResponse, error)
}

// PhoneSource appends phones with per-dimension match scores.
type PhoneSource interface {
	AppendPhones(ctx context.Context, q ContactQuery) ([]domain.PhoneCandidate, error)
}

// EmailSource appends emails, best candidate first.
type EmailSource interface {
	AppendEmails(ctx context.Context, q ContactQuery) ([]domain.EmailCandidate, error)
}

// EmailValidation is the secondary validator's verdict.
type EmailValidation struct {
	Status          string `json:"status"`
	DeliverableCode int    `json:"deliverableCode"`
}

// EmailValidator re-verifies a single address.
type EmailValidator interface {
	ValidateEmail(ctx context.Context, address string) (*EmailValidation, error)
}
