package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownerscope/internal/config"
	"ownerscope/internal/domain"
	"ownerscope/internal/logging"
	"ownerscope/internal/ports"
)

func memoryConfig() config.Config {
	return config.Config{
		MaxChainDepth:       5,
		RegistryCacheTTL:    time.Hour,
		RegistryConcurrency: 2,
		CallTimeout:         time.Second,
		DecayFactor:         0.8,
		RecoveryWindow:      30 * time.Minute,
		RetryAttempts:       2,
		RetryBaseDelay:      time.Millisecond,
	}
}

func TestBuildInMemory(t *testing.T) {
	ctx := context.Background()
	seed := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(seed, []byte(`[
		{"name": "ABC HOLDINGS LLC", "record": {"jurisdictionCode": "us_fl",
			"officers": [{"name": "CORPORATE CREATIONS NETWORK INC", "role": "registered_agent"}]}},
		{"name": "SMITH PROPERTIES LLC", "record": {"jurisdictionCode": "us_fl", "agentName": "JANE SMITH",
			"officers": [{"name": "JOHN SMITH", "position": "manager"}]}}
	]`), 0o600))

	cfg := memoryConfig()
	cfg.RegistrySeed = seed
	a, err := Build(ctx, cfg, logging.Nop)
	require.NoError(t, err)
	defer a.Close()
	assert.Nil(t, a.DB)

	chain := a.Resolver.Resolve(ctx, "ABC HOLDINGS LLC", "us_fl")
	assert.Len(t, chain.Chain, 2)
	assert.Empty(t, chain.UltimateBeneficialOwners)

	chain = a.Resolver.Resolve(ctx, "Smith Properties, LLC", "")
	assert.Len(t, chain.Chain, 3)
	assert.Len(t, chain.UltimateBeneficialOwners, 2)

	rec, found, err := a.Monitor.GetByKey(ctx, RegistryProviderKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Company Registry", rec.DisplayName)
	assert.Equal(t, domain.StatusHealthy, rec.Status)

	events, err := a.Audit.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestBuildBadSeed(t *testing.T) {
	cfg := memoryConfig()
	cfg.RegistrySeed = filepath.Join(t.TempDir(), "missing.json")
	_, err := Build(context.Background(), cfg, logging.Nop)
	assert.Error(t, err)
}

// slowPhones records how many calls are in flight at once.
type slowPhones struct {
	inflight, peak int32
}

func (p *slowPhones) AppendPhones(ctx context.Context, q ports.ContactQuery) ([]domain.PhoneCandidate, error) {
	n := atomic.AddInt32(&p.inflight, 1)
	defer atomic.AddInt32(&p.inflight, -1)
	for {
		peak := atomic.LoadInt32(&p.peak)
		if n <= peak || atomic.CompareAndSwapInt32(&p.peak, peak, n) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return []domain.PhoneCandidate{{
		Number:         "(555) 010-2000",
		Source:         "phone_append",
		VerifiedSource: true,
		NameScore:      domain.ScoreExact,
		AddressScore:   domain.ScoreHigh,
		LocationScore:  domain.ScoreNotCompared,
	}}, nil
}

func TestBuildContactMerger(t *testing.T) {
	ctx := context.Background()
	cfg := memoryConfig()
	cfg.ContactConcurrency = 1
	phones := &slowPhones{}

	a, err := Build(ctx, cfg, logging.Nop, WithContactSources(ContactSources{Phones: phones}))
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.Contacts)

	var wg sync.WaitGroup
	results := make([]domain.ContactResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Contacts.Lookup(ctx, ports.ContactQuery{Name: "JOHN SMITH"})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&phones.peak))
	for _, res := range results {
		require.Len(t, res.Phones, 1)
		assert.Equal(t, 90, res.Phones[0].Confidence)
		assert.Empty(t, res.Emails)
	}

	rec, found, err := a.Monitor.GetByKey(ctx, PhoneProviderKey)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Phone Append", rec.DisplayName)
	_, found, err = a.Monitor.GetByKey(ctx, EmailProviderKey)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBuildWithoutContactSources(t *testing.T) {
	a, err := Build(context.Background(), memoryConfig(), logging.Nop)
	require.NoError(t, err)
	defer a.Close()

	res := a.Contacts.Lookup(context.Background(), ports.ContactQuery{Name: "JOHN SMITH"})
	assert.NotNil(t, res.Phones)
	assert.NotNil(t, res.Emails)
	assert.Nil(t, res.Identity)
}
