// Package index loads skill-index.json and domain-registry.json and builds
// the immutable in-memory structures the engine scores against. Everything
// here is read-only after Load returns; the engine never mutates or persists.
package index

import (
	"regexp"
	"sort"
	"strings"
)

// ElementType tags the kind of an indexed element. All kinds share one
// scoring record; the tag only drives which output group an element lands in.
type ElementType string

const (
	TypeSkill   ElementType = "skill"
	TypeAgent   ElementType = "agent"
	TypeCommand ElementType = "command"
	TypeRule    ElementType = "rule"
	TypeMCP     ElementType = "mcp"
	TypeLSP     ElementType = "lsp"
)

// Tier marks how central a skill is to its domain.
type Tier string

const (
	TierPrimary     Tier = "primary"
	TierSecondary   Tier = "secondary"
	TierSpecialized Tier = "specialized"
)

// TierPriority orders tiers for tie-breaking: primary > secondary > specialized.
// Unknown or absent tiers sort last.
func TierPriority(t Tier) int {
	switch t {
	case TierPrimary:
		return 0
	case TierSecondary:
		return 1
	case TierSpecialized:
		return 2
	default:
		return 3
	}
}

// GateWildcard inside a gate's keyword list means "any keyword in that
// domain satisfies this gate", resolved against the domain registry.
const GateWildcard = "generic"

// CanonicalCategories are the 16 category labels the index builder emits.
var CanonicalCategories = []string{
	"ai-ml",
	"backend",
	"code-quality",
	"data",
	"database",
	"debugging",
	"devops",
	"documentation",
	"frontend",
	"infrastructure",
	"mobile",
	"performance",
	"refactoring",
	"security",
	"testing",
	"workflow",
}

var canonicalCategorySet = func() map[string]bool {
	m := make(map[string]bool, len(CanonicalCategories))
	for _, c := range CanonicalCategories {
		m[c] = true
	}
	return m
}()

// IsCanonicalCategory reports whether label is one of the 16 known categories.
func IsCanonicalCategory(label string) bool {
	return canonicalCategorySet[label]
}

// CoUsage records which elements tend to appear together. References may
// dangle (name an element absent from the index); dangling references are
// ignored everywhere.
type CoUsage struct {
	UsuallyWith  []string `json:"usually_with,omitempty"`
	Precedes     []string `json:"precedes,omitempty"`
	Follows      []string `json:"follows,omitempty"`
	Alternatives []string `json:"alternatives,omitempty"`
}

// Element is one indexed unit as it appears in skill-index.json v3.0.
type Element struct {
	Name        string      `json:"name"`
	Type        ElementType `json:"type"`
	Source      string      `json:"source,omitempty"`
	Path        string      `json:"path,omitempty"`
	Description string      `json:"description,omitempty"`
	UseCases    []string    `json:"use_cases,omitempty"`
	Category    string      `json:"category,omitempty"`

	Keywords    []string `json:"keywords,omitempty"`
	Intents     []string `json:"intents,omitempty"`
	Patterns    []string `json:"patterns,omitempty"`
	Directories []string `json:"directories,omitempty"`

	Platforms  []string `json:"platforms,omitempty"`
	Frameworks []string `json:"frameworks,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Tools      []string `json:"tools,omitempty"`
	FileTypes  []string `json:"file_types,omitempty"`
	Domains    []string `json:"domains,omitempty"`

	DomainGates map[string][]string `json:"domain_gates,omitempty"`
	CoUsage     CoUsage             `json:"co_usage,omitempty"`
	Tier        Tier                `json:"tier,omitempty"`
	Boost       int                 `json:"boost,omitempty"`

	// The builder has emitted the tool-provenance field under both names
	// across versions; tolerate either and never depend on which is present.
	Method    string `json:"method,omitempty"`
	Generator string `json:"generator,omitempty"`
}

// Provenance returns the tool-provenance field regardless of which key the
// builder used.
func (e *Element) Provenance() string {
	if e.Generator != "" {
		return e.Generator
	}
	return e.Method
}

// Gated reports whether the element carries any domain gates.
func (e *Element) Gated() bool {
	return len(e.DomainGates) > 0
}

// Keyword is one lowercased element keyword with its arity tag.
type Keyword struct {
	Text   string
	Phrase bool
}

// LoadedElement wraps an Element with the derived tables the matcher needs:
// lowercased keywords partitioned by arity, compiled patterns, and pre-split
// name parts. Built once at load time.
type LoadedElement struct {
	Element

	// OrderedKeywords preserves the element's keyword order, lowercased,
	// with each keyword tagged by arity: single-token keywords are eligible
	// for fuzzy matching, multi-word phrases are substring-only.
	OrderedKeywords []Keyword

	// SingleKeywords and PhraseKeywords partition OrderedKeywords by arity.
	SingleKeywords []string
	PhraseKeywords []string

	// CompiledPatterns holds the patterns that compiled; DroppedPatterns
	// records the ones that failed at load time, for diagnostics.
	CompiledPatterns []*regexp.Regexp
	DroppedPatterns  []string

	// NameParts is the kebab-case name split on '-'.
	NameParts []string

	// DescTokens and UseCaseTokens are lowercased meaningful tokens from the
	// description and each use-case phrase, for overlap scoring.
	DescTokens    []string
	UseCaseTokens [][]string

	// GateNames is the sorted list of gate names, for deterministic
	// evaluation order.
	GateNames []string
}

// derive builds the per-element tables.
func derive(e Element) *LoadedElement {
	le := &LoadedElement{Element: e}

	for _, kw := range e.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		phrase := strings.ContainsAny(kw, " \t")
		le.OrderedKeywords = append(le.OrderedKeywords, Keyword{Text: kw, Phrase: phrase})
		if phrase {
			le.PhraseKeywords = append(le.PhraseKeywords, kw)
		} else {
			le.SingleKeywords = append(le.SingleKeywords, kw)
		}
	}

	le.NameParts = strings.Split(strings.ToLower(e.Name), "-")
	le.DescTokens = contentTokens(e.Description)
	for _, uc := range e.UseCases {
		le.UseCaseTokens = append(le.UseCaseTokens, contentTokens(uc))
	}
	for name := range e.DomainGates {
		le.GateNames = append(le.GateNames, name)
	}
	sort.Strings(le.GateNames)

	return le
}

var tokenSplitRe = regexp.MustCompile(`[a-z0-9][a-z0-9_+./-]*`)

// contentTokens lowercases text and extracts meaningful tokens, dropping
// one-character fragments.
func contentTokens(text string) []string {
	if text == "" {
		return nil
	}
	raw := tokenSplitRe.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if len(t) > 1 {
			out = append(out, t)
		}
	}
	return out
}
