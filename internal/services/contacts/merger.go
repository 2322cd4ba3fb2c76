package contacts

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/guard"
)

// Guards routes each source's calls through its own guard. Nil guards call
// the source directly.
type Guards struct {
	Identity   *guard.Guard
	Phone      *guard.Guard
	Email      *guard.Guard
	Validation *guard.Guard
}

// Merger fans a query out to the contact sources, waits for all of them and
// merges whatever came back.
type Merger struct {
	identity  ports.IdentitySource
	phones    ports.PhoneSource
	emails    ports.EmailSource
	validator ports.EmailValidator
	guards    Guards
	log       zerolog.Logger
	now       func() time.Time
}

type MergerOption func(*Merger)

func WithGuards(g Guards) MergerOption { return func(m *Merger) { m.guards = g } }

func WithClock(now func() time.Time) MergerOption { return func(m *Merger) { m.now = now } }

// NewMerger accepts nil for any source that is not configured.
func NewMerger(id ports.IdentitySource, ph ports.PhoneSource, em ports.EmailSource, val ports.EmailValidator, log zerolog.Logger, opts ...MergerOption) *Merger {
	m := &Merger{
		identity:  id,
		phones:    ph,
		emails:    em,
		validator: val,
		log:       log.With().Str("component", "contacts").Logger(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lookup never fails: a source that errors contributes nothing.
func (m *Merger) Lookup(ctx context.Context, q ports.ContactQuery) domain.ContactResult {
	var raw RawResponses
	var g errgroup.Group

	if m.identity != nil {
		g.Go(func() error {
			m.call(ctx, m.guards.Identity, "identity", func(ctx context.Context) error {
				res, err := m.identity.VerifyIdentity(ctx, q)
				if err != nil {
					return err
				}
				raw.Identity = res
				return nil
			})
			return nil
		})
	}
	if m.phones != nil {
		g.Go(func() error {
			m.call(ctx, m.guards.Phone, "phone", func(ctx context.Context) error {
				res, err := m.phones.AppendPhones(ctx, q)
				if err != nil {
					return err
				}
				raw.Phones = res
				return nil
			})
			return nil
		})
	}
	if m.emails != nil {
		g.Go(func() error {
			m.call(ctx, m.guards.Email, "email", func(ctx context.Context) error {
				res, err := m.emails.AppendEmails(ctx, q)
				if err != nil {
					return err
				}
				raw.Emails = res
				return nil
			})
			return nil
		})
	}
	_ = g.Wait()

	if best, ok := BestEmail(raw.Emails); ok && m.validator != nil && NeedsVerification(best.ValidationStatus) {
		m.call(ctx, m.guards.Validation, "email_validation", func(ctx context.Context) error {
			v, err := m.validator.ValidateEmail(ctx, best.Address)
			if err != nil {
				return err
			}
			raw.Validation = v
			return nil
		})
	}

	res := Merge(q, raw, m.now())
	m.log.Debug().
		Int("phones", len(res.Phones)).
		Int("emails", len(res.Emails)).
		Int("addresses", len(res.Addresses)).
		Bool("identity", res.Identity != nil).
		Msg("contact lookup merged")
	return res
}

// call runs fn through g when one is configured and logs the failure.
func (m *Merger) call(ctx context.Context, g *guard.Guard, source string, fn func(context.Context) error) {
	var err error
	if g != nil {
		err = g.Do(ctx, fn)
	} else {
		err = fn(ctx)
	}
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrProviderDown):
		m.log.Debug().Str("source", source).Msg("source down, skipped")
	default:
		m.log.Warn().Err(err).Str("source", source).Msg("contact source failed")
	}
}
