// Package app wires configuration, storage and the core services into one
// object shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"ownerscope/internal/adapters/memory"
	"ownerscope/internal/adapters/postgres"
	"ownerscope/internal/adapters/registry"
	"ownerscope/internal/config"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/contacts"
	"ownerscope/internal/services/guard"
	"ownerscope/internal/services/health"
	"ownerscope/internal/services/names"
	"ownerscope/internal/services/ownership"
)

// Health keys of the external data sources.
const (
	RegistryProviderKey   = "registry"
	IdentityProviderKey   = "identity"
	PhoneProviderKey      = "phone_append"
	EmailProviderKey      = "email_append"
	ValidationProviderKey = "email_validation"
)

// ContactSources are the contact-data collaborators. Nil fields are not
// configured and contribute nothing to a lookup.
type ContactSources struct {
	Identity  ports.IdentitySource
	Phones    ports.PhoneSource
	Emails    ports.EmailSource
	Validator ports.EmailValidator
}

type options struct {
	contacts ContactSources
}

type Option func(*options)

func WithContactSources(src ContactSources) Option {
	return func(o *options) { o.contacts = src }
}

type auditLog interface {
	ports.AuditSink
	ports.AuditReader
}

type registryStore interface {
	ports.RegistryLookup
	registry.Store
}

type App struct {
	Config     config.Config
	Log        zerolog.Logger
	DB         *postgres.DB // nil without DATABASE_URL
	Classifier *names.Classifier
	Monitor    *health.Monitor
	Audit      auditLog
	Registry   registryStore
	Lookup     *registry.Cached
	Resolver   *ownership.Resolver
	Contacts   *contacts.Merger
}

// Build connects storage and constructs the services. Without a database
// URL every store is in memory.
func Build(ctx context.Context, cfg config.Config, log zerolog.Logger, opts ...Option) (*App, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	a := &App{Config: cfg, Log: log, Classifier: names.Default()}

	var repo ports.HealthRepository
	if cfg.DatabaseURL != "" {
		db, err := postgres.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("db connect: %w", err)
		}
		a.DB = db
		if cfg.AutoMigrate {
			n, err := db.Migrate(ctx)
			if err != nil {
				db.Close()
				return nil, err
			}
			log.Info().Int("applied", n).Msg("migrations up to date")
		}
		repo = postgres.NewHealthRepository(db)
		a.Audit = postgres.NewAuditSink(db)
		a.Registry = postgres.NewRegistryStore(db, a.Classifier)
	} else {
		log.Warn().Msg("DATABASE_URL not set, state is kept in memory")
		repo = memory.NewHealthRepository()
		a.Audit = memory.NewAuditLog(log)
		a.Registry = memory.NewRegistryStore(a.Classifier)
	}

	a.Monitor = health.NewMonitor(repo, a.Audit, log,
		health.WithDecayFactor(cfg.DecayFactor),
		health.WithRecoveryWindow(cfg.RecoveryWindow),
	)

	g := a.newGuard(RegistryProviderKey, "Company Registry", cfg.RegistryConcurrency)
	a.Lookup = registry.NewCached(registry.NewGated(a.Registry, g), a.Classifier, cfg.RegistryCacheTTL, log)
	a.Resolver = ownership.NewResolver(a.Lookup, a.Classifier, log,
		ownership.WithMaxDepth(cfg.MaxChainDepth),
		ownership.WithAudit(a.Audit),
	)

	a.Contacts = a.contactMerger(o.contacts)

	if cfg.RegistrySeed != "" {
		n, err := registry.ImportFile(ctx, a.Registry, cfg.RegistrySeed)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("registry seed: %w", err)
		}
		log.Info().Int("records", n).Str("file", cfg.RegistrySeed).Msg("registry seeded")
	}
	return a, nil
}

// newGuard registers key with the monitor and returns its call guard.
func (a *App) newGuard(key, displayName string, concurrency int) *guard.Guard {
	a.Monitor.Register(key, displayName)
	return guard.New(key, a.Monitor,
		guard.WithConcurrency(int64(concurrency)),
		guard.WithAttempts(a.Config.RetryAttempts),
		guard.WithBaseDelay(a.Config.RetryBaseDelay),
		guard.WithTimeout(a.Config.CallTimeout),
		guard.WithLogger(a.Log),
	)
}

// contactMerger guards every configured contact source with its own
// limiter of CONTACT_CONCURRENCY slots.
func (a *App) contactMerger(src ContactSources) *contacts.Merger {
	var gs contacts.Guards
	n := a.Config.ContactConcurrency
	if src.Identity != nil {
		gs.Identity = a.newGuard(IdentityProviderKey, "Identity Verification", n)
	}
	if src.Phones != nil {
		gs.Phone = a.newGuard(PhoneProviderKey, "Phone Append", n)
	}
	if src.Emails != nil {
		gs.Email = a.newGuard(EmailProviderKey, "Email Append", n)
	}
	if src.Validator != nil {
		gs.Validation = a.newGuard(ValidationProviderKey, "Email Validation", n)
	}
	return contacts.NewMerger(src.Identity, src.Phones, src.Emails, src.Validator, a.Log, contacts.WithGuards(gs))
}

func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
