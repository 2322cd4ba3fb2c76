package contacts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
)

var query = ports.ContactQuery{Name: "Jane Doe", Address: "1 Main St", City: "Tampa", State: "FL", Zip: "33601"}

func TestMergeEmpty(t *testing.T) {
	res := Merge(query, RawResponses{}, now)
	assert.NotNil(t, res.Phones)
	assert.NotNil(t, res.Emails)
	assert.NotNil(t, res.Addresses)
	assert.Empty(t, res.Phones)
	assert.Nil(t, res.Identity)
}

func TestMergePhones(t *testing.T) {
	stale := now.AddDate(-4, 0, 0)
	raw := RawResponses{Phones: []domain.PhoneCandidate{
		{Number: "(555) 123-4567", Source: "append_a", NameScore: 8, LocationScore: -1, AddressScore: 0},
		{Number: "+1 555 123 4567", Source: "append_b", NameScore: 10, AddressScore: 10},
		{Number: "555-999-0000", Source: "append_a", NameScore: 2, LocationScore: 2},
		{Number: "555-000-1111", Source: "append_a", NameScore: 0, LocationScore: 10, AddressScore: 10},
		{Number: "555-222-3333", Source: "append_a", NameScore: 10, LocationScore: 8, LastSeen: &stale},
		{Number: "555-444-5555", Source: "directory", NameScore: 8, LocationScore: 8, LastSeen: &stale, VerifiedSource: true},
		{Number: "n/a", Source: "append_a", NameScore: 10, LocationScore: 10},
	}}

	res := Merge(query, raw, now)

	require.Len(t, res.Phones, 3)
	assert.Equal(t, "+1 555 123 4567", res.Phones[0].Number)
	assert.Equal(t, 90, res.Phones[0].Confidence)
	assert.Equal(t, "555-444-5555", res.Phones[1].Number)
	assert.Equal(t, 90, res.Phones[1].Confidence)
	assert.Equal(t, "555-999-0000", res.Phones[2].Number)
	assert.Equal(t, 70, res.Phones[2].Confidence)
	for _, p := range res.Phones {
		assert.True(t, p.Accepted)
		assert.Empty(t, p.RejectionReason)
	}
}

func TestPhoneKey(t *testing.T) {
	assert.Equal(t, "5551234567", PhoneKey("(555) 123-4567"))
	assert.Equal(t, "5551234567", PhoneKey("+1 555.123.4567"))
	assert.Equal(t, "", PhoneKey("unknown"))
}

func TestMergeEmail(t *testing.T) {
	t.Run("Best candidate is kept and scored", func(t *testing.T) {
		raw := RawResponses{Emails: []domain.EmailCandidate{
			{Address: " "},
			{Address: "Jane.Doe@Mail.Example.co.uk", Source: "email_append", MatchType: "Individual", ValidationStatus: "Valid", DeliverableCode: 40},
			{Address: "jd@other.com", Source: "email_append"},
		}}
		res := Merge(query, raw, now)
		require.Len(t, res.Emails, 1)
		e := res.Emails[0]
		assert.Equal(t, "jane.doe@mail.example.co.uk", e.Address)
		assert.Equal(t, "example.co.uk", e.Domain)
		assert.Equal(t, "valid", e.Deliverability)
		assert.False(t, e.Validated)
		assert.Equal(t, 80, e.Confidence)
		assert.True(t, e.Accepted)
	})

	t.Run("Secondary verdict replaces an ambiguous status", func(t *testing.T) {
		raw := RawResponses{
			Emails:     []domain.EmailCandidate{{Address: "jane@example.com", MatchType: "Household", ValidationStatus: "Unknown"}},
			Validation: &ports.EmailValidation{Status: "Validated", DeliverableCode: 50},
		}
		res := Merge(query, raw, now)
		require.Len(t, res.Emails, 1)
		assert.Equal(t, "deliverable", res.Emails[0].Deliverability)
		assert.True(t, res.Emails[0].Validated)
		assert.Equal(t, 90, res.Emails[0].Confidence)
	})

	t.Run("Secondary verdict is ignored for a definite status", func(t *testing.T) {
		raw := RawResponses{
			Emails:     []domain.EmailCandidate{{Address: "jane@example.com", ValidationStatus: "Valid", DeliverableCode: 30}},
			Validation: &ports.EmailValidation{Status: "Invalid"},
		}
		res := Merge(query, raw, now)
		require.Len(t, res.Emails, 1)
		assert.Equal(t, "risky", res.Emails[0].Deliverability)
		assert.Equal(t, 70, res.Emails[0].Confidence)
	})

	t.Run("Invalid verdict drops the email", func(t *testing.T) {
		raw := RawResponses{
			Emails:     []domain.EmailCandidate{{Address: "jane@example.com", ValidationStatus: "Unknown"}},
			Validation: &ports.EmailValidation{Status: "Invalid"},
		}
		assert.Empty(t, Merge(query, raw, now).Emails)
	})

	t.Run("Unroutable domains are dropped", func(t *testing.T) {
		for _, addr := range []string{"jane@localhost", "jane@example.notarealtld", "not an email"} {
			raw := RawResponses{Emails: []domain.EmailCandidate{{Address: addr, ValidationStatus: "Valid"}}}
			assert.Empty(t, Merge(query, raw, now).Emails, addr)
		}
	})
}

func TestMergeIdentity(t *testing.T) {
	raw := RawResponses{Identity: &ports.IdentityResponse{
		Identity: &domain.Identity{FullName: "Jane Doe", Age: 52, Source: "verify"},
		Addresses: []domain.AddressCandidate{
			{Line1: "1 Main St", City: "Tampa", State: "FL", Zip: "33601", DeliveryScore: 1},
			{Line1: "9 Old Rd", City: "Tampa", State: "FL", Zip: "33602", DeliveryScore: 5},
			{Line1: "PO Box 4", City: "Tampa", State: "FL", Zip: "33603"},
		},
	}}

	res := Merge(query, raw, now)
	require.NotNil(t, res.Identity)
	assert.Equal(t, "Jane Doe", res.Identity.FullName)
	require.Len(t, res.Addresses, 3)
	assert.True(t, res.Addresses[0].VerifiedDeliverable)
	assert.False(t, res.Addresses[1].VerifiedDeliverable)
	assert.False(t, res.Addresses[2].VerifiedDeliverable)

	// the caller's response is not modified
	assert.False(t, raw.Identity.Addresses[0].VerifiedDeliverable)
}
