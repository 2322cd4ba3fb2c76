// Package contacts merges phone, email and address candidates from several
// contact-data sources into one ranked, scored answer.
package contacts

import (
	"net/mail"
	"sort"
	"strings"
	"time"
	"unicode"

	"golang.org/x/net/publicsuffix"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
)

// RawResponses is what the sources returned for one query. Nil or empty
// fields mean the source had nothing or failed.
type RawResponses struct {
	Identity *ports.IdentityResponse `json:"identity"`
	Phones   []domain.PhoneCandidate `json:"phones"`
	Emails   []domain.EmailCandidate `json:"emails"`
	// Validation is the secondary validator's verdict on the best email.
	Validation *ports.EmailValidation `json:"validation,omitempty"`
}

// Merge scores and filters raw candidates. It is pure and never fails: every
// slice in the result is non-nil, Identity is nil when no source had one.
func Merge(q ports.ContactQuery, raw RawResponses, now time.Time) domain.ContactResult {
	out := domain.ContactResult{
		Phones:    mergePhones(raw.Phones, now),
		Emails:    []domain.EmailCandidate{},
		Addresses: []domain.AddressCandidate{},
	}
	if best, ok := BestEmail(raw.Emails); ok {
		if e, ok := scoreEmail(best, raw.Validation); ok {
			out.Emails = append(out.Emails, e)
		}
	}
	if raw.Identity != nil {
		if raw.Identity.Identity != nil {
			id := *raw.Identity.Identity
			out.Identity = &id
		}
		for _, a := range raw.Identity.Addresses {
			a.VerifiedDeliverable = verifiedDeliverable(a.DeliveryScore)
			out.Addresses = append(out.Addresses, a)
		}
	}
	return out
}

// mergePhones keeps accepted phones, one per number, best confidence first.
func mergePhones(in []domain.PhoneCandidate, now time.Time) []domain.PhoneCandidate {
	out := []domain.PhoneCandidate{}
	index := map[string]int{}
	for _, p := range in {
		key := PhoneKey(p.Number)
		if key == "" {
			continue
		}
		p.Confidence, p.Accepted, p.RejectionReason = EvaluatePhone(p, now)
		if !p.Accepted {
			continue
		}
		if i, ok := index[key]; ok {
			if p.Confidence > out[i].Confidence {
				out[i] = p
			}
			continue
		}
		index[key] = len(out)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Confidence > out[j].Confidence })
	return out
}

// PhoneKey reduces a phone number to its national digits.
func PhoneKey(number string) string {
	var b strings.Builder
	for _, r := range number {
		if unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	return digits
}

// BestEmail returns the first usable candidate; sources list best first.
func BestEmail(in []domain.EmailCandidate) (domain.EmailCandidate, bool) {
	for _, e := range in {
		if strings.TrimSpace(e.Address) != "" {
			return e, true
		}
	}
	return domain.EmailCandidate{}, false
}

func scoreEmail(e domain.EmailCandidate, v *ports.EmailValidation) (domain.EmailCandidate, bool) {
	addr, err := mail.ParseAddress(strings.TrimSpace(e.Address))
	if err != nil {
		return e, false
	}
	e.Address = strings.ToLower(addr.Address)
	domainName, ok := registrableDomain(e.Address)
	if !ok {
		return e, false
	}
	e.Domain = domainName

	if v != nil && NeedsVerification(e.ValidationStatus) {
		e.ValidationStatus = v.Status
		e.DeliverableCode = v.DeliverableCode
	}
	if strings.EqualFold(e.ValidationStatus, StatusInvalid) {
		return e, false
	}
	e.Deliverability = Deliverability(e.DeliverableCode)
	e.Validated = strings.EqualFold(e.ValidationStatus, StatusValidated)
	e.Confidence = emailConfidence(e)
	e.Accepted = true
	return e, true
}

// registrableDomain returns the eTLD+1 of an address's host, rejecting hosts
// not under an ICANN suffix.
func registrableDomain(address string) (string, bool) {
	at := strings.LastIndexByte(address, '@')
	if at < 0 || at == len(address)-1 {
		return "", false
	}
	host := strings.TrimSuffix(address[at+1:], ".")
	if _, icann := publicsuffix.PublicSuffix(host); !icann {
		return "", false
	}
	d, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	return d, true
}
