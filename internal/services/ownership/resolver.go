// Package ownership walks corporate officer and agent records to find the
// individuals that ultimately own an entity.
package ownership

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"ownerscope/internal/domain"
	"ownerscope/internal/ports"
	"ownerscope/internal/services/names"
)

const defaultOfficerRole = "officer"

type Resolver struct {
	reg      ports.RegistryLookup
	cls      *names.Classifier
	log      zerolog.Logger
	audit    ports.AuditSink
	maxDepth int
	now      func() time.Time
}

type Option func(*Resolver)

func WithMaxDepth(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxDepth = n
		}
	}
}

func WithClock(now func() time.Time) Option { return func(r *Resolver) { r.now = now } }

func WithAudit(a ports.AuditSink) Option { return func(r *Resolver) { r.audit = a } }

func NewResolver(reg ports.RegistryLookup, cls *names.Classifier, log zerolog.Logger, opts ...Option) *Resolver {
	if cls == nil {
		cls = names.Default()
	}
	r := &Resolver{
		reg:      reg,
		cls:      cls,
		log:      log.With().Str("component", "ownership").Logger(),
		maxDepth: domain.MaxChainDepth,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// frame is one pending visit on the worklist.
type frame struct {
	name       string
	depth      int
	role       string
	confidence *int
}

// Resolve walks the ownership graph under root depth-first, in officer order.
// The visited set is owned by the call, so concurrent resolutions share
// nothing. Registry failures end their branch only; the returned chain is
// always fully populated.
func (r *Resolver) Resolve(ctx context.Context, root, jurisdiction string) domain.OwnershipChain {
	chain := domain.OwnershipChain{
		RootEntity:               root,
		Chain:                    []domain.ChainNode{},
		UltimateBeneficialOwners: []domain.ChainNode{},
	}
	if strings.TrimSpace(root) == "" {
		chain.ResolvedAt = r.now()
		return chain
	}

	visited := map[string]int{} // visit key -> index in chain.Chain
	stack := []frame{{name: root}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		key := names.VisitKey(f.name)
		if key == "" {
			continue
		}
		if i, seen := visited[key]; seen {
			if f.confidence != nil && chain.Chain[i].Confidence == nil {
				chain.Chain[i].Confidence = f.confidence
			}
			continue
		}
		if f.depth > r.maxDepth {
			chain.MaxDepthReached = true
			continue
		}
		visited[key] = len(chain.Chain)

		node := domain.ChainNode{
			Name:       f.name,
			Kind:       r.cls.Classify("", f.name),
			Role:       f.role,
			Confidence: f.confidence,
			Depth:      f.depth,
		}
		if !r.expandable(ctx, node) {
			chain.Chain = append(chain.Chain, node)
			continue
		}

		rec, err := r.reg.Lookup(ctx, f.name, jurisdiction)
		chain.TotalAPICalls++
		switch {
		case errors.Is(err, domain.ErrProviderDown):
			r.log.Debug().Str("entity", f.name).Msg("registry down, branch skipped")
		case err != nil:
			r.log.Warn().Err(err).Str("entity", f.name).Int("depth", f.depth).Msg("registry lookup failed")
		}
		if rec != nil && err == nil {
			node.Jurisdiction = rec.JurisdictionCode
			node.RegisteredAgent = rec.AgentName
		}
		chain.Chain = append(chain.Chain, node)
		if rec == nil || err != nil {
			continue
		}
		stack = append(stack, reversed(r.children(rec, f.depth+1, visited))...)
	}

	for _, n := range chain.Chain {
		if n.Kind == domain.KindIndividual {
			chain.UltimateBeneficialOwners = append(chain.UltimateBeneficialOwners, n)
		}
	}
	chain.ResolvedAt = r.now()

	r.log.Info().
		Str("entity", root).
		Int("nodes", len(chain.Chain)).
		Int("owners", len(chain.UltimateBeneficialOwners)).
		Int("api_calls", chain.TotalAPICalls).
		Bool("max_depth_reached", chain.MaxDepthReached).
		Msg("ownership resolved")
	r.emit(ctx, chain)
	return chain
}

// expandable reports whether node warrants a registry lookup. Individuals are
// leaves; agent services below the root are routing artifacts, not owners.
func (r *Resolver) expandable(ctx context.Context, node domain.ChainNode) bool {
	if node.Kind != domain.KindEntity {
		return false
	}
	if node.Depth > 0 && r.cls.IsPrivacyAgent(node.Name) {
		r.log.Debug().Str("entity", node.Name).Msg("registered agent service not expanded")
		return false
	}
	if ctx.Err() != nil {
		r.log.Debug().Str("entity", node.Name).Msg("context done, skipping lookup")
		return false
	}
	return true
}

// children returns the frames for a record's officers followed by its
// registered agent, in visit order.
func (r *Resolver) children(rec *domain.RegistryRecord, depth int, visited map[string]int) []frame {
	out := make([]frame, 0, len(rec.Officers)+1)
	for _, o := range rec.Officers {
		if !r.cls.IsValidOfficerName(o.Name) {
			continue
		}
		role := o.Title()
		if role == "" {
			role = defaultOfficerRole
		}
		var conf *int
		if o.Confidence != nil {
			c := *o.Confidence
			conf = &c
		}
		out = append(out, frame{name: o.Name, depth: depth, role: role, confidence: conf})
	}
	agent := strings.TrimSpace(rec.AgentName)
	if agent != "" && !r.cls.IsPrivacyAgent(agent) {
		if _, seen := visited[names.VisitKey(agent)]; !seen {
			out = append(out, frame{name: agent, depth: depth, role: domain.RoleRegisteredAgent})
		}
	}
	return out
}

func (r *Resolver) emit(ctx context.Context, chain domain.OwnershipChain) {
	if r.audit == nil {
		return
	}
	ev := domain.AuditEvent{
		ID:      uuid.NewString(),
		Type:    domain.AuditOwnershipResolved,
		Subject: chain.RootEntity,
		Fields: map[string]any{
			"nodes":           len(chain.Chain),
			"owners":          len(chain.UltimateBeneficialOwners),
			"totalApiCalls":   chain.TotalAPICalls,
			"maxDepthReached": chain.MaxDepthReached,
		},
		Timestamp: chain.ResolvedAt,
	}
	if err := r.audit.Log(ctx, ev); err != nil {
		r.log.Warn().Err(err).Msg("audit sink rejected event")
	}
}

func reversed(in []frame) []frame {
	for i, j := 0, len(in)-1; i < j; i, j = i+1, j-1 {
		in[i], in[j] = in[j], in[i]
	}
	return in
}
