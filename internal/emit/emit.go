// Package emit renders ranked results into the wire payloads the hook host
// and batch tooling consume. Output is always well-formed UTF-8 JSON on
// stdout, including the empty cases.
package emit

import (
	"encoding/json"
	"fmt"
	"io"

	"skillsuggest/internal/engine"
	"skillsuggest/internal/index"
	"skillsuggest/internal/logging"
)

// Format selects the output payload shape.
type Format string

const (
	FormatHook Format = "hook"
	FormatJSON Format = "json"
)

// HookEventName is the event the hook host dispatches suggestions under.
const HookEventName = "UserPromptSubmit"

// ContextEntry is one ranked element in the hook payload.
type ContextEntry struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Path            string   `json:"path,omitempty"`
	Score           float64  `json:"score"`
	Confidence      string   `json:"confidence"`
	KeywordsMatched []string `json:"keywords_matched"`
	Commitment      string   `json:"commitment,omitempty"`
}

// HookPayload is the envelope the hook host expects.
type HookPayload struct {
	HookSpecificOutput HookOutput `json:"hookSpecificOutput"`
}

// HookOutput carries the ranked context entries for one prompt event.
type HookOutput struct {
	HookEventName     string         `json:"hookEventName"`
	AdditionalContext []ContextEntry `json:"additionalContext"`
}

// RankedResult is one element in the flat JSON payload, type-agnostic.
type RankedResult struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Source          string            `json:"source,omitempty"`
	Path            string            `json:"path,omitempty"`
	Tier            string            `json:"tier,omitempty"`
	RawScore        int               `json:"raw_score"`
	Score           float64           `json:"score"`
	Confidence      string            `json:"confidence"`
	GateFailed      bool              `json:"gate_failed,omitempty"`
	FuzzyUsed       bool              `json:"fuzzy_used,omitempty"`
	Evidence        []engine.Evidence `json:"evidence,omitempty"`
	KeywordsMatched []string          `json:"keywords_matched"`
}

// toEntry converts a result to a hook context entry.
func toEntry(r engine.Result) ContextEntry {
	entry := ContextEntry{
		Name:            r.Element.Name,
		Type:            string(r.Element.Type),
		Path:            r.Element.Path,
		Score:           r.Relative,
		Confidence:      string(r.Confidence),
		KeywordsMatched: nonNil(r.KeywordsMatched()),
	}
	if r.Confidence == engine.ConfidenceHigh {
		entry.Commitment = engine.Commitment
	}
	return entry
}

// toRanked converts a result to a flat JSON record.
func toRanked(r engine.Result) RankedResult {
	return RankedResult{
		Name:            r.Element.Name,
		Type:            string(r.Element.Type),
		Source:          r.Element.Source,
		Path:            r.Element.Path,
		Tier:            string(r.Element.Tier),
		RawScore:        r.Raw,
		Score:           r.Relative,
		Confidence:      string(r.Confidence),
		GateFailed:      r.GateFailed,
		FuzzyUsed:       r.FuzzyUsed,
		Evidence:        r.Evidence,
		KeywordsMatched: nonNil(r.KeywordsMatched()),
	}
}

// WriteHook emits the hook payload: skills and agents only, flat.
func WriteHook(w io.Writer, results []engine.Result) error {
	entries := make([]ContextEntry, 0, len(results))
	for _, r := range results {
		switch r.Element.Type {
		case index.TypeSkill, index.TypeAgent:
			entries = append(entries, toEntry(r))
		}
	}
	logging.Emit("hook payload: %d entries", len(entries))
	return writeJSON(w, HookPayload{
		HookSpecificOutput: HookOutput{
			HookEventName:     HookEventName,
			AdditionalContext: entries,
		},
	})
}

// WriteJSON emits the flat ranked list, all types.
func WriteJSON(w io.Writer, results []engine.Result) error {
	ranked := make([]RankedResult, 0, len(results))
	for _, r := range results {
		ranked = append(ranked, toRanked(r))
	}
	logging.Emit("json payload: %d entries", len(ranked))
	return writeJSON(w, ranked)
}

// WriteEmptyHook emits the empty-but-valid hook envelope used on fatal
// errors, so the host never blocks on engine failure.
func WriteEmptyHook(w io.Writer) error {
	return writeJSON(w, HookPayload{
		HookSpecificOutput: HookOutput{
			HookEventName:     HookEventName,
			AdditionalContext: []ContextEntry{},
		},
	})
}

// WriteEmptyJSON emits an empty flat list.
func WriteEmptyJSON(w io.Writer) error {
	return writeJSON(w, []RankedResult{})
}

// WriteEmpty emits the empty payload for the given format.
func WriteEmpty(w io.Writer, format Format) error {
	if format == FormatHook {
		return WriteEmptyHook(w)
	}
	return WriteEmptyJSON(w)
}

// SkillGroups partitions skills by tier for the profile payload.
type SkillGroups struct {
	Primary     []RankedResult `json:"primary"`
	Secondary   []RankedResult `json:"secondary"`
	Specialized []RankedResult `json:"specialized"`
}

// ProfilePayload is the grouped-by-type agent-profile output.
type ProfilePayload struct {
	Skills              SkillGroups    `json:"skills"`
	ComplementaryAgents []RankedResult `json:"complementary_agents"`
	Commands            []RankedResult `json:"commands"`
	Rules               []RankedResult `json:"rules"`
	MCP                 []RankedResult `json:"mcp"`
	LSP                 []RankedResult `json:"lsp"`
}

// FlatProfilePayload replaces the tiered skill grouping in incomplete mode,
// where tier fields do not exist yet.
type FlatProfilePayload struct {
	Skills              []RankedResult `json:"skills"`
	ComplementaryAgents []RankedResult `json:"complementary_agents"`
	Commands            []RankedResult `json:"commands"`
	Rules               []RankedResult `json:"rules"`
	MCP                 []RankedResult `json:"mcp"`
	LSP                 []RankedResult `json:"lsp"`
}

// ToRankedList converts results for payload embedding.
func ToRankedList(results []engine.Result) []RankedResult {
	out := make([]RankedResult, 0, len(results))
	for _, r := range results {
		out = append(out, toRanked(r))
	}
	return out
}

// WriteProfile emits a grouped profile payload.
func WriteProfile(w io.Writer, payload interface{}) error {
	return writeJSON(w, payload)
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	return nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
