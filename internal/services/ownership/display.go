package ownership

import (
	"sort"

	"ownerscope/internal/domain"
)

// Level is every node found at one depth, in discovery order.
type Level struct {
	Depth int                `json:"depth"`
	Nodes []domain.ChainNode `json:"nodes"`
}

type Display struct {
	RootEntity               string             `json:"rootEntity"`
	Levels                   []Level            `json:"levels"`
	UltimateBeneficialOwners []domain.ChainNode `json:"ultimateBeneficialOwners"`
	MaxDepthReached          bool               `json:"maxDepthReached"`
	TotalAPICalls            int                `json:"totalApiCalls"`
}

// FormatForDisplay groups a chain by depth for presentation.
func FormatForDisplay(chain domain.OwnershipChain) Display {
	byDepth := map[int][]domain.ChainNode{}
	for _, n := range chain.Chain {
		byDepth[n.Depth] = append(byDepth[n.Depth], n)
	}
	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	out := Display{
		RootEntity:               chain.RootEntity,
		Levels:                   make([]Level, 0, len(depths)),
		UltimateBeneficialOwners: chain.UltimateBeneficialOwners,
		MaxDepthReached:          chain.MaxDepthReached,
		TotalAPICalls:            chain.TotalAPICalls,
	}
	for _, d := range depths {
		out.Levels = append(out.Levels, Level{Depth: d, Nodes: byDepth[d]})
	}
	if out.UltimateBeneficialOwners == nil {
		out.UltimateBeneficialOwners = []domain.ChainNode{}
	}
	return out
}
