// Package profile implements the batch agent-profiler mode: it synthesizes
// internal prompts from a structured agent descriptor, scores each through
// the engine, merges per-element scores by maximum, and groups the output
// by element type.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"skillsuggest/internal/config"
	"skillsuggest/internal/emit"
	"skillsuggest/internal/engine"
	"skillsuggest/internal/index"
	"skillsuggest/internal/logging"
)

// Descriptor is the structured agent definition passed via --agent-profile.
type Descriptor struct {
	Name                string   `json:"name"`
	Description         string   `json:"description,omitempty"`
	Role                string   `json:"role,omitempty"`
	Duties              []string `json:"duties,omitempty"`
	Tools               []string `json:"tools,omitempty"`
	Domains             []string `json:"domains,omitempty"`
	RequirementsSummary string   `json:"requirements_summary,omitempty"`
	CWD                 string   `json:"cwd,omitempty"`
}

// LoadDescriptor reads and parses a descriptor file.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor %s: %w", path, err)
	}
	var d Descriptor
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse descriptor %s: %w", path, err)
	}
	return &d, nil
}

// SynthesizePrompts generates one internal prompt per descriptor field that
// carries lexical content, in a fixed field order.
func (d *Descriptor) SynthesizePrompts() []string {
	var prompts []string
	add := func(s string) {
		if strings.TrimSpace(s) != "" {
			prompts = append(prompts, s)
		}
	}

	add(strings.ReplaceAll(d.Name, "-", " "))
	add(d.Description)
	add(d.Role)
	for _, duty := range d.Duties {
		add(duty)
	}
	add(strings.Join(d.Tools, " "))
	add(strings.Join(d.Domains, " "))
	add(d.RequirementsSummary)

	return prompts
}

// Profiler runs the profile pipeline over one engine.
type Profiler struct {
	cfg        config.ScoringConfig
	eng        *engine.Engine
	set        *index.ElementSet
	classifier *engine.Classifier
}

// New builds a profiler.
func New(cfg config.ScoringConfig, eng *engine.Engine, set *index.ElementSet) *Profiler {
	return &Profiler{
		cfg:        cfg,
		eng:        eng,
		set:        set,
		classifier: engine.NewClassifier(cfg),
	}
}

// Profile scores every synthesized prompt, merges per-element results by
// maximum raw score (never sum) with unioned evidence, and groups by type.
// LSP elements are excluded from lexical scoring and assigned by language
// instead.
func (p *Profiler) Profile(d *Descriptor) (interface{}, error) {
	timer := logging.StartTimer(logging.CategoryProfile, "Profile")
	defer timer.Stop()

	prompts := d.SynthesizePrompts()
	if len(prompts) == 0 {
		return nil, fmt.Errorf("descriptor carries no lexical content")
	}
	logging.Profile("synthesized %d prompts for agent %q", len(prompts), d.Name)

	merged := make(map[string]*engine.Result)
	var order []string

	for _, internalPrompt := range prompts {
		for _, r := range p.eng.SuggestAll(internalPrompt, d.CWD) {
			if r.Element.Type == index.TypeLSP {
				continue
			}
			existing, ok := merged[r.Element.Name]
			if !ok {
				rc := r
				merged[r.Element.Name] = &rc
				order = append(order, r.Element.Name)
				continue
			}
			existing.Evidence = unionEvidence(existing.Evidence, r.Evidence)
			existing.FuzzyUsed = existing.FuzzyUsed || r.FuzzyUsed
			if r.Raw > existing.Raw {
				existing.Raw = r.Raw
				existing.GateFailed = r.GateFailed
				existing.SubTask = r.SubTask
			}
		}
	}

	sort.Strings(order)
	results := make([]engine.Result, 0, len(order))
	for _, name := range order {
		results = append(results, *merged[name])
	}

	return p.group(d, results), nil
}

// group partitions merged results by element type, ranks each group
// independently, and applies per-group caps.
func (p *Profiler) group(d *Descriptor, results []engine.Result) interface{} {
	byType := make(map[index.ElementType][]engine.Result)
	for _, r := range results {
		byType[r.Element.Type] = append(byType[r.Element.Type], r)
	}

	agents := emit.ToRankedList(p.classifier.Rank(byType[index.TypeAgent], p.cfg.TopK))
	commands := emit.ToRankedList(p.classifier.Rank(byType[index.TypeCommand], p.cfg.TopK))
	rules := emit.ToRankedList(p.classifier.Rank(byType[index.TypeRule], p.cfg.TopK))
	mcp := emit.ToRankedList(p.classifier.Rank(byType[index.TypeMCP], p.cfg.TopK))
	lsp := p.assignLSP(d)

	if p.cfg.IncompleteMode {
		return emit.FlatProfilePayload{
			Skills:              emit.ToRankedList(p.classifier.Rank(byType[index.TypeSkill], p.cfg.TopK)),
			ComplementaryAgents: agents,
			Commands:            commands,
			Rules:               rules,
			MCP:                 mcp,
			LSP:                 lsp,
		}
	}

	var primary, secondary, specialized []engine.Result
	for _, r := range byType[index.TypeSkill] {
		switch r.Element.Tier {
		case index.TierPrimary:
			primary = append(primary, r)
		case index.TierSecondary:
			secondary = append(secondary, r)
		default:
			specialized = append(specialized, r)
		}
	}

	return emit.ProfilePayload{
		Skills: emit.SkillGroups{
			Primary:     emit.ToRankedList(p.classifier.Rank(primary, p.cfg.ProfilePrimaryCap)),
			Secondary:   emit.ToRankedList(p.classifier.Rank(secondary, p.cfg.ProfileSecondaryCap)),
			Specialized: emit.ToRankedList(p.classifier.Rank(specialized, p.cfg.ProfileSpecialCap)),
		},
		ComplementaryAgents: agents,
		Commands:            commands,
		Rules:               rules,
		MCP:                 mcp,
		LSP:                 lsp,
	}
}

// assignLSP fills the LSP group from the descriptor's declared domains: LSP
// assignment is language-based, not lexical, so these entries never pass
// through the scoring pipeline.
func (p *Profiler) assignLSP(d *Descriptor) []emit.RankedResult {
	wanted := make(map[string]bool, len(d.Domains))
	for _, dom := range d.Domains {
		wanted[strings.ToLower(dom)] = true
	}

	out := []emit.RankedResult{}
	for _, le := range p.set.Elements {
		if le.Type != index.TypeLSP {
			continue
		}
		for _, lang := range le.Languages {
			if wanted[strings.ToLower(lang)] {
				out = append(out, emit.RankedResult{
					Name:            le.Name,
					Type:            string(le.Type),
					Source:          le.Source,
					Path:            le.Path,
					KeywordsMatched: []string{},
				})
				break
			}
		}
	}
	return out
}

func unionEvidence(a, b []engine.Evidence) []engine.Evidence {
	seen := make(map[string]bool, len(a))
	key := func(ev engine.Evidence) string { return string(ev.Signal) + "\x00" + ev.Value }
	for _, ev := range a {
		seen[key(ev)] = true
	}
	for _, ev := range b {
		if !seen[key(ev)] {
			seen[key(ev)] = true
			a = append(a, ev)
		}
	}
	return a
}
