package specialist

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/urbannexus/core/llm"
	"github.com/urbannexus/core/retrieval"
	"github.com/urbannexus/core/types"
)

// proposalListSchema is the structured-output contract shared by the
// value-analysis specialists.
var proposalListSchema = llm.Schema{
	"type": "object",
	"properties": map[string]any{
		"proposals": map[string]any{
			"type": "array",
			"items": map[string]any{
				"type": "object",
				"properties": map[string]any{
					"sku":                  map[string]any{"type": "string"},
					"category":             map[string]any{"type": "string", "enum": []any{"Control", "Hub", "Grid"}},
					"features":             map[string]any{"type": "array", "items": map[string]any{"type": "string"}},
					"location_description": map[string]any{"type": "string"},
					"value_proposition":    map[string]any{"type": "string"},
					"justification":        map[string]any{"type": "string"},
				},
				"required": []any{"sku", "category", "features", "location_description", "value_proposition", "justification"},
			},
		},
	},
	"required": []any{"proposals"},
}

type proposalList struct {
	Proposals []struct {
		SKU                 string                 `json:"sku"`
		Category            types.HardwareCategory `json:"category"`
		Features            []string               `json:"features"`
		LocationDescription string                 `json:"location_description"`
		ValueProposition    string                 `json:"value_proposition"`
		Justification       string                 `json:"justification"`
	} `json:"proposals"`
}

// proposalID mints a short proposal identifier.
func proposalID() string {
	return uuid.NewString()[:8]
}

// generateProposals runs the shared prompt-and-decode path for value
// specialists. Collaborator failure or malformed output yields nil.
func (d Deps) generateProposals(ctx context.Context, prompt string) []types.SolutionProposal {
	raw, err := d.llmClient().GenerateStructured(ctx, prompt, proposalListSchema)
	if err != nil || raw == nil {
		return nil
	}
	var list proposalList
	if ok, err := llm.Decode(raw, &list); !ok || err != nil {
		if err != nil {
			d.logger().Warn("discarding malformed proposal response", "error", err)
		}
		return nil
	}
	var out []types.SolutionProposal
	for _, p := range list.Proposals {
		proposal := types.SolutionProposal{
			ProposalID: proposalID(),
			Hardware: types.HardwareSpec{
				SKU:      p.SKU,
				Category: p.Category,
				Features: p.Features,
			},
			LocationDescription: p.LocationDescription,
			ValueProposition:    p.ValueProposition,
			Justification:       p.Justification,
		}
		if err := proposal.Validate(); err != nil {
			d.logger().Warn("skipping invalid generated proposal", "sku", p.SKU, "error", err)
			continue
		}
		out = append(out, proposal)
	}
	return out
}

func goalSummary(goals []types.Goal) string {
	parts := make([]string, 0, len(goals))
	for _, g := range goals {
		parts = append(parts, fmt.Sprintf("%s: %s", g.Type, g.Description))
	}
	return strings.Join(parts, "; ")
}

func evidenceText(docs []retrieval.Doc) string {
	var b strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&b, "- %s: %s\n", d.Title, d.Snippet)
	}
	return b.String()
}

func hasGoal(goals []types.Goal, t types.GoalType) bool {
	for _, g := range goals {
		if g.Type == t {
			return true
		}
	}
	return false
}

// Sustainability advocates for energy and environmental goals,
// proposing streetlight controllers where the zone supports them.
type Sustainability struct {
	deps Deps
}

// NewSustainability constructs the sustainability specialist.
func NewSustainability(deps Deps) *Sustainability {
	return &Sustainability{deps: deps}
}

// Name implements ValueSpecialist.
func (s *Sustainability) Name() string { return "sustainability_specialist" }

// Propose implements ValueSpecialist.
func (s *Sustainability) Propose(ctx context.Context, zone types.Zone, goals []types.Goal) ([]types.SolutionProposal, error) {
	var docs []retrieval.Doc
	if s.deps.Searcher != nil {
		var err error
		docs, err = s.deps.Searcher.Search(ctx, "UbiCell energy savings and environmental benefits", 3)
		if err != nil {
			s.deps.logger().Warn("retrieval failed, proposing from zone context only", "error", err)
			docs = nil
		}
	}

	prompt := fmt.Sprintf(
		"You are a sustainability specialist for a smart city project.\n"+
			"Zone: %s (%s). Attributes: %v.\n"+
			"Strategic goals: %s\n"+
			"Product intelligence:\n%s\n"+
			"Propose deployment of UbiCell streetlight controllers where the "+
			"zone has streetlights, highlighting the 40%% energy savings. "+
			"Return a list of proposals.",
		zone.Name, zone.Description, zone.Attributes, goalSummary(goals), evidenceText(docs))

	if proposals := s.deps.generateProposals(ctx, prompt); proposals != nil {
		return proposals, nil
	}
	return s.baseline(zone, goals), nil
}

// baseline proposes the streetlight controller when the zone has light
// poles and an energy goal is in play.
func (s *Sustainability) baseline(zone types.Zone, goals []types.Goal) []types.SolutionProposal {
	if !hasGoal(goals, types.GoalEnergy) {
		return nil
	}
	if _, ok := zone.Attributes["streetlights"]; !ok {
		if _, ok := zone.Attributes["pole_density"]; !ok {
			return nil
		}
	}
	return []types.SolutionProposal{{
		ProposalID: proposalID(),
		Hardware: types.HardwareSpec{
			SKU:      "UbiCell",
			Category: types.HardwareControl,
			Features: []string{"Dimming", "Metering", "Tilt Alerts"},
		},
		LocationDescription: "Existing streetlight poles throughout the zone",
		ValueProposition:    "Up to 40% energy savings through adaptive dimming and per-fixture metering.",
		Justification:       "The zone has streetlight infrastructure; controllers retrofit without new poles or trenching.",
	}}
}

// Connectivity advocates for digital equity and public connectivity
// goals, proposing multi-function hubs for coverage gaps.
type Connectivity struct {
	deps Deps
}

// NewConnectivity constructs the connectivity specialist.
func NewConnectivity(deps Deps) *Connectivity {
	return &Connectivity{deps: deps}
}

// Name implements ValueSpecialist.
func (s *Connectivity) Name() string { return "connectivity_specialist" }

// Propose implements ValueSpecialist.
func (s *Connectivity) Propose(ctx context.Context, zone types.Zone, goals []types.Goal) ([]types.SolutionProposal, error) {
	var docs []retrieval.Doc
	if s.deps.Searcher != nil {
		var err error
		docs, err = s.deps.Searcher.Search(ctx, "UbiHub WiFi 6 capabilities and digital divide", 3)
		if err != nil {
			s.deps.logger().Warn("retrieval failed, proposing from zone context only", "error", err)
			docs = nil
		}
	}

	prompt := fmt.Sprintf(
		"You are a connectivity specialist for a smart city project.\n"+
			"Zone: %s (%s). Attributes: %v.\n"+
			"Strategic goals: %s\n"+
			"Product intelligence:\n%s\n"+
			"Propose deployment of UbiHub (AP6 or AI+) where the zone needs "+
			"public connectivity, highlighting WiFi 6 coverage and digital "+
			"divide impact. Return a list of proposals.",
		zone.Name, zone.Description, zone.Attributes, goalSummary(goals), evidenceText(docs))

	if proposals := s.deps.generateProposals(ctx, prompt); proposals != nil {
		return proposals, nil
	}
	return s.baseline(goals), nil
}

func (s *Connectivity) baseline(goals []types.Goal) []types.SolutionProposal {
	if !hasGoal(goals, types.GoalConnectivity) {
		return nil
	}
	return []types.SolutionProposal{{
		ProposalID: proposalID(),
		Hardware: types.HardwareSpec{
			SKU:      "UbiHub AP6",
			Category: types.HardwareHub,
			Features: []string{"Public WiFi", "WiFi 6", "Small Cell Ready"},
		},
		LocationDescription: "Poles along pedestrian corridors and gathering areas",
		ValueProposition:    "Free public WiFi 6 coverage narrowing the digital divide for residents without home broadband.",
		Justification:       "The zone's connectivity goal is served by pole-mounted hubs without dedicated backhaul buildout.",
	}}
}
