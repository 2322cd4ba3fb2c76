package ownership

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ownerscope/internal/adapters/memory"
	"ownerscope/internal/domain"
	"ownerscope/internal/logging"
	"ownerscope/internal/services/names"
)

type fakeRegistry struct {
	mu      sync.Mutex
	records map[string]*domain.RegistryRecord
	errs    map[string]error
	calls   []string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{records: map[string]*domain.RegistryRecord{}, errs: map[string]error{}}
}

func (f *fakeRegistry) add(name string, officers ...domain.Officer) *domain.RegistryRecord {
	rec := &domain.RegistryRecord{JurisdictionCode: "us_fl", Officers: officers}
	f.records[strings.ToUpper(name)] = rec
	return rec
}

func (f *fakeRegistry) Lookup(ctx context.Context, name, jurisdiction string) (*domain.RegistryRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
	key := strings.ToUpper(name)
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	return f.records[key], nil
}

func (f *fakeRegistry) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func officer(name, role string) domain.Officer {
	return domain.Officer{Name: name, Role: role}
}

func intPtr(v int) *int { return &v }

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newResolver(reg *fakeRegistry, opts ...Option) *Resolver {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewResolver(reg, names.Default(), logging.Nop, opts...)
}

func nodeNames(chain domain.OwnershipChain) []string {
	out := make([]string, len(chain.Chain))
	for i, n := range chain.Chain {
		out[i] = n.Name
	}
	return out
}

func TestResolveCycle(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ALPHA HOLDINGS LLC", officer("BETA CAPITAL LLC", "member"))
	reg.add("BETA CAPITAL LLC", officer("Alpha Holdings, LLC", "member"), officer("JOHN SMITH", "manager"))

	chain := newResolver(reg).Resolve(context.Background(), "ALPHA HOLDINGS LLC", "us_fl")

	assert.Equal(t, []string{"ALPHA HOLDINGS LLC", "BETA CAPITAL LLC", "JOHN SMITH"}, nodeNames(chain))
	assert.Equal(t, 2, chain.TotalAPICalls)
	assert.False(t, chain.MaxDepthReached)

	seen := map[string]bool{}
	for _, n := range chain.Chain {
		key := names.VisitKey(n.Name)
		assert.False(t, seen[key], "duplicate node %q", n.Name)
		seen[key] = true
	}
	require.Len(t, chain.UltimateBeneficialOwners, 1)
	assert.Equal(t, "JOHN SMITH", chain.UltimateBeneficialOwners[0].Name)
}

func TestResolveDepthLimit(t *testing.T) {
	reg := newFakeRegistry()
	for i := 0; i < 8; i++ {
		reg.add(fmt.Sprintf("LEVEL %d LLC", i), officer(fmt.Sprintf("LEVEL %d LLC", i+1), "member"))
	}

	chain := newResolver(reg).Resolve(context.Background(), "LEVEL 0 LLC", "")

	assert.True(t, chain.MaxDepthReached)
	assert.Len(t, chain.Chain, domain.MaxChainDepth+1)
	for _, n := range chain.Chain {
		assert.LessOrEqual(t, n.Depth, domain.MaxChainDepth)
	}
	assert.Equal(t, domain.MaxChainDepth+1, chain.TotalAPICalls)
	assert.Empty(t, chain.UltimateBeneficialOwners)

	t.Run("Configured depth is honored", func(t *testing.T) {
		chain := newResolver(reg, WithMaxDepth(2)).Resolve(context.Background(), "LEVEL 0 LLC", "")
		assert.True(t, chain.MaxDepthReached)
		assert.Len(t, chain.Chain, 3)
	})
}

func TestResolveRegisteredAgentService(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ABC HOLDINGS LLC", officer("CORPORATE CREATIONS NETWORK INC", domain.RoleRegisteredAgent))
	// would add a bogus owner if the agent service were expanded
	reg.add("CORPORATE CREATIONS NETWORK INC", officer("JOHN DOE", "president"))

	chain := newResolver(reg).Resolve(context.Background(), "ABC HOLDINGS LLC", "us_de")

	require.Len(t, chain.Chain, 2)
	assert.Equal(t, domain.RoleRegisteredAgent, chain.Chain[1].Role)
	assert.Equal(t, domain.KindEntity, chain.Chain[1].Kind)
	assert.Empty(t, chain.UltimateBeneficialOwners)
	assert.NotNil(t, chain.UltimateBeneficialOwners)
	assert.False(t, chain.MaxDepthReached)
	assert.Equal(t, 1, chain.TotalAPICalls)
}

func TestResolveOfficersResemblingAgentServices(t *testing.T) {
	cases := []struct{ root, company, person string }{
		{"ALPHA HOLDINGS LLC", "BETA INCORPORATED", "JOHN SMITH"},
		{"GAMMA LLC", "CSCO PARTNERS LLC", "JANE DOE"},
	}
	for _, tc := range cases {
		t.Run(tc.company, func(t *testing.T) {
			reg := newFakeRegistry()
			reg.add(tc.root, officer(tc.company, "member"))
			reg.add(tc.company, officer(tc.person, "manager"))

			chain := newResolver(reg).Resolve(context.Background(), tc.root, "")

			assert.Equal(t, []string{tc.root, tc.company, tc.person}, nodeNames(chain))
			require.Len(t, chain.UltimateBeneficialOwners, 1)
			assert.Equal(t, tc.person, chain.UltimateBeneficialOwners[0].Name)
			assert.Equal(t, 2, chain.TotalAPICalls)
		})
	}
}

func TestResolveIndividualRoot(t *testing.T) {
	reg := newFakeRegistry()
	chain := newResolver(reg).Resolve(context.Background(), "Jane Doe", "")

	require.Len(t, chain.Chain, 1)
	assert.Equal(t, domain.KindIndividual, chain.Chain[0].Kind)
	assert.Equal(t, 0, chain.Chain[0].Depth)
	assert.Equal(t, chain.Chain, chain.UltimateBeneficialOwners)
	assert.Zero(t, chain.TotalAPICalls)
	assert.Zero(t, reg.callCount())
	assert.Equal(t, fixedNow, chain.ResolvedAt)
}

func TestResolveEmptyRoot(t *testing.T) {
	chain := newResolver(newFakeRegistry()).Resolve(context.Background(), "  ", "")
	assert.NotNil(t, chain.Chain)
	assert.Empty(t, chain.Chain)
	assert.NotNil(t, chain.UltimateBeneficialOwners)
	assert.Zero(t, chain.TotalAPICalls)
	assert.Equal(t, fixedNow, chain.ResolvedAt)
}

func TestResolveLookupFailureIsADeadEnd(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ROOT PROPERTIES LLC", officer("BROKEN VENTURES LLC", "member"), officer("MARY JONES", "manager"))
	reg.errs["BROKEN VENTURES LLC"] = &domain.SourceError{Provider: "registry", StatusCode: 503, Message: "unavailable"}

	chain := newResolver(reg).Resolve(context.Background(), "ROOT PROPERTIES LLC", "")

	assert.Equal(t, []string{"ROOT PROPERTIES LLC", "BROKEN VENTURES LLC", "MARY JONES"}, nodeNames(chain))
	assert.Equal(t, 2, chain.TotalAPICalls)
	require.Len(t, chain.UltimateBeneficialOwners, 1)
	assert.Equal(t, "MARY JONES", chain.UltimateBeneficialOwners[0].Name)
	assert.Empty(t, chain.Chain[1].Jurisdiction)
}

func TestResolveDepthFirstOrder(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ROOT GROUP LLC", officer("ALPHA PARTNERS LLC", "member"), officer("BOB BROWN", ""))
	reg.add("ALPHA PARTNERS LLC", officer("ALICE SMITH", "manager"))

	chain := newResolver(reg).Resolve(context.Background(), "ROOT GROUP LLC", "")

	assert.Equal(t, []string{"ROOT GROUP LLC", "ALPHA PARTNERS LLC", "ALICE SMITH", "BOB BROWN"}, nodeNames(chain))
	assert.Equal(t, []int{0, 1, 2, 1}, []int{chain.Chain[0].Depth, chain.Chain[1].Depth, chain.Chain[2].Depth, chain.Chain[3].Depth})
	assert.Equal(t, "officer", chain.Chain[3].Role)
	assert.Equal(t, "us_fl", chain.Chain[0].Jurisdiction)
}

func TestResolveConfidence(t *testing.T) {
	t.Run("Officer confidence lands on its node", func(t *testing.T) {
		reg := newFakeRegistry()
		reg.add("ROOT REALTY LLC", domain.Officer{Name: "JOHN SMITH", Position: "manager", Confidence: intPtr(85)})

		chain := newResolver(reg).Resolve(context.Background(), "ROOT REALTY LLC", "")
		require.Len(t, chain.Chain, 2)
		require.NotNil(t, chain.Chain[1].Confidence)
		assert.Equal(t, 85, *chain.Chain[1].Confidence)
		assert.Equal(t, "manager", chain.Chain[1].Role)
		assert.Nil(t, chain.Chain[0].Confidence)
	})

	t.Run("Later officer row backfills a visited node", func(t *testing.T) {
		reg := newFakeRegistry()
		reg.add("ROOT REALTY LLC", officer("JOHN SMITH", "manager"), officer("SUB HOLDINGS LLC", "member"))
		reg.add("SUB HOLDINGS LLC", domain.Officer{Name: "John Smith", Role: "manager", Confidence: intPtr(70)})

		chain := newResolver(reg).Resolve(context.Background(), "ROOT REALTY LLC", "")
		require.Len(t, chain.Chain, 3)
		require.NotNil(t, chain.Chain[1].Confidence)
		assert.Equal(t, 70, *chain.Chain[1].Confidence)
		require.Len(t, chain.UltimateBeneficialOwners, 1)
		assert.Equal(t, 70, *chain.UltimateBeneficialOwners[0].Confidence)
	})
}

func TestResolveAgents(t *testing.T) {
	t.Run("Unknown agent is followed", func(t *testing.T) {
		reg := newFakeRegistry()
		rec := reg.add("ROOT SERVICES LLC", officer("MARY JONES", "president"))
		rec.AgentName = "JANE AGENT"

		chain := newResolver(reg).Resolve(context.Background(), "ROOT SERVICES LLC", "")
		assert.Equal(t, []string{"ROOT SERVICES LLC", "MARY JONES", "JANE AGENT"}, nodeNames(chain))
		assert.Equal(t, domain.RoleRegisteredAgent, chain.Chain[2].Role)
		assert.Equal(t, "JANE AGENT", chain.Chain[0].RegisteredAgent)
		assert.Len(t, chain.UltimateBeneficialOwners, 2)
	})

	t.Run("Agent service is not followed", func(t *testing.T) {
		reg := newFakeRegistry()
		rec := reg.add("ROOT SERVICES LLC", officer("MARY JONES", "president"))
		rec.AgentName = "C T CORPORATION SYSTEM"

		chain := newResolver(reg).Resolve(context.Background(), "ROOT SERVICES LLC", "")
		assert.Equal(t, []string{"ROOT SERVICES LLC", "MARY JONES"}, nodeNames(chain))
		assert.Equal(t, "C T CORPORATION SYSTEM", chain.Chain[0].RegisteredAgent)
	})

	t.Run("Agent already visited as officer is not repeated", func(t *testing.T) {
		reg := newFakeRegistry()
		rec := reg.add("ROOT SERVICES LLC", officer("MARY JONES", "president"))
		rec.AgentName = "Mary Jones"

		chain := newResolver(reg).Resolve(context.Background(), "ROOT SERVICES LLC", "")
		assert.Len(t, chain.Chain, 2)
	})
}

func TestResolveSkipsPlaceholderOfficers(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ROOT VENTURES LLC",
		officer("SEE DOCUMENT FOR OFFICERS", "officer"),
		officer("N/A", ""),
		officer("MARY JONES", "director"),
	)

	chain := newResolver(reg).Resolve(context.Background(), "ROOT VENTURES LLC", "")
	assert.Equal(t, []string{"ROOT VENTURES LLC", "MARY JONES"}, nodeNames(chain))
}

func TestResolveCancelledContext(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ROOT VENTURES LLC", officer("MARY JONES", "director"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	chain := newResolver(reg).Resolve(ctx, "ROOT VENTURES LLC", "")

	require.Len(t, chain.Chain, 1)
	assert.Zero(t, chain.TotalAPICalls)
	assert.Equal(t, fixedNow, chain.ResolvedAt)
}

func TestResolveEmitsAuditEvent(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ROOT VENTURES LLC", officer("MARY JONES", "director"))
	audit := memory.NewAuditLog(logging.Nop)

	newResolver(reg, WithAudit(audit)).Resolve(context.Background(), "ROOT VENTURES LLC", "")

	events := audit.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.AuditOwnershipResolved, events[0].Type)
	assert.Equal(t, "ROOT VENTURES LLC", events[0].Subject)
	assert.Equal(t, 1, events[0].Fields["owners"])
	assert.NotEmpty(t, events[0].ID)
}

func TestResolveConcurrentCallsAreIndependent(t *testing.T) {
	reg := newFakeRegistry()
	reg.add("ALPHA HOLDINGS LLC", officer("BETA CAPITAL LLC", "member"))
	reg.add("BETA CAPITAL LLC", officer("ALPHA HOLDINGS LLC", "member"), officer("JOHN SMITH", "manager"))
	r := newResolver(reg)

	var wg sync.WaitGroup
	results := make([]domain.OwnershipChain, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background(), "ALPHA HOLDINGS LLC", "")
		}(i)
	}
	wg.Wait()

	for _, res := range results {
		assert.Equal(t, results[0], res)
	}
	assert.Equal(t, 2*len(results), reg.callCount())
}

func TestResolveWithFailingAudit(t *testing.T) {
	reg := newFakeRegistry()
	chain := newResolver(reg, WithAudit(failingSink{})).Resolve(context.Background(), "Jane Doe", "")
	assert.Len(t, chain.Chain, 1)
}

type failingSink struct{}

func (failingSink) Log(context.Context, domain.AuditEvent) error { return errors.New("sink offline") }
