package prompt

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"skillsuggest/internal/logging"
)

//go:embed rules.yaml
var rulesYAML []byte

// abbreviationRule substitutes a short token with its expanded form.
type abbreviationRule struct {
	Abbr      string `yaml:"abbr"`
	Expansion string `yaml:"expansion"`
}

// synonymRule appends enrichment tokens when its trigger phrase appears in
// the substituted prompt text.
type synonymRule struct {
	Trigger string   `yaml:"trigger"`
	Tokens  []string `yaml:"tokens"`
}

type ruleFile struct {
	Abbreviations []abbreviationRule `yaml:"abbreviations"`
	Synonyms      []synonymRule      `yaml:"synonyms"`
}

// Rules holds the ordered, immutable expansion tables, parsed from YAML by
// LoadRules (DefaultRules parses the embedded tables on each call).
type Rules struct {
	abbreviations []abbreviationRule
	abbrLookup    map[string]string
	synonyms      []synonymRule
}

// LoadRules parses the embedded rule tables. Kept separate from the package
// var so tests can load modified tables.
func LoadRules(data []byte) (*Rules, error) {
	var rf ruleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse expansion rules: %w", err)
	}
	r := &Rules{
		abbreviations: rf.Abbreviations,
		abbrLookup:    make(map[string]string, len(rf.Abbreviations)),
		synonyms:      rf.Synonyms,
	}
	for _, a := range rf.Abbreviations {
		r.abbrLookup[a.Abbr] = a.Expansion
	}
	return r, nil
}

// DefaultRules returns the embedded rule tables, panicking on a malformed
// embed (a build defect, not a runtime condition).
func DefaultRules() *Rules {
	r, err := LoadRules(rulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules.yaml invalid: %v", err))
	}
	return r
}

// Token is one token of an expanded prompt, with provenance.
type Token struct {
	Text string
	Stem string
	// Original is true when the token appeared verbatim in the user's
	// prompt, false when it was introduced by abbreviation or synonym
	// expansion.
	Original bool
}

// Expanded is the prompt after abbreviation substitution, synonym
// enrichment, and stemming.
type Expanded struct {
	Prompt

	// Text is the space-joined expanded token sequence, used for substring
	// containment checks.
	Text string

	// ExpTokens is the ordered expanded token sequence.
	ExpTokens []Token

	tokenSet    map[string]bool
	originalSet map[string]bool
	stemSet     map[string]bool
}

// Expand applies the three transforms in order: abbreviation substitution,
// synonym enrichment, stemming. The original token set is preserved
// verbatim; expansion only adds.
func (r *Rules) Expand(p Prompt) *Expanded {
	timer := logging.StartTimer(logging.CategoryPrompt, "Expand")
	defer timer.Stop()

	e := &Expanded{
		Prompt:      p,
		tokenSet:    make(map[string]bool),
		originalSet: make(map[string]bool),
		stemSet:     make(map[string]bool),
	}
	for _, tok := range p.Tokens {
		e.originalSet[tok] = true
	}

	// Abbreviation substitution, token-wise.
	for _, tok := range p.Tokens {
		expansion, ok := r.abbrLookup[tok]
		if !ok {
			e.appendToken(tok)
			continue
		}
		for _, part := range strings.Fields(expansion) {
			e.appendToken(part)
		}
	}

	// Synonym enrichment against the substituted text.
	substituted := joinTokenTexts(e.ExpTokens)
	for _, rule := range r.synonyms {
		if !containsPhrase(substituted, rule.Trigger) {
			continue
		}
		for _, tok := range rule.Tokens {
			e.appendToken(tok)
		}
	}

	e.Text = joinTokenTexts(e.ExpTokens)
	logging.PromptDebug("expanded %d -> %d tokens", len(p.Tokens), len(e.ExpTokens))
	return e
}

// appendToken adds a token, deduplicating and stamping provenance. An
// expanded token that coincides with an original token inherits original
// status.
func (e *Expanded) appendToken(text string) {
	if text == "" || e.tokenSet[text] {
		return
	}
	e.tokenSet[text] = true
	stem := Stem(text)
	e.stemSet[stem] = true
	e.ExpTokens = append(e.ExpTokens, Token{
		Text:     text,
		Stem:     stem,
		Original: e.originalSet[text],
	})
}

// IsOriginal reports whether tok appeared verbatim in the user's prompt.
func (e *Expanded) IsOriginal(tok string) bool {
	return e.originalSet[tok]
}

// HasToken reports whether tok is present in the expanded token set.
func (e *Expanded) HasToken(tok string) bool {
	return e.tokenSet[tok]
}

// HasStem reports whether a token stemming to stem is present.
func (e *Expanded) HasStem(stem string) bool {
	return e.stemSet[stem]
}

// TokenSet returns the expanded token set. The returned map is shared;
// callers must not mutate it.
func (e *Expanded) TokenSet() map[string]bool {
	return e.tokenSet
}

func joinTokenTexts(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.Text
	}
	return strings.Join(parts, " ")
}

// containsPhrase checks phrase containment on word boundaries: a trigger
// matches as a whole word sequence, not inside a longer word.
func containsPhrase(text, phrase string) bool {
	idx := 0
	for {
		i := strings.Index(text[idx:], phrase)
		if i < 0 {
			return false
		}
		start := idx + i
		end := start + len(phrase)
		leftOK := start == 0 || text[start-1] == ' '
		rightOK := end == len(text) || text[end] == ' ' || !isWordByte(text[end])
		if leftOK && rightOK {
			return true
		}
		idx = start + 1
		if idx >= len(text) {
			return false
		}
	}
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= '0' && b <= '9'
}

// =============================================================================
// STEMMING
// =============================================================================

// Stem applies light suffix stripping for common English inflection. It is
// deliberately conservative: both sides of every comparison are stemmed with
// the same rules, so consistency matters more than linguistic accuracy.
func Stem(tok string) string {
	n := len(tok)
	switch {
	case n > 5 && strings.HasSuffix(tok, "ies"):
		return tok[:n-3] + "y"
	case n > 5 && strings.HasSuffix(tok, "ing"):
		stem := tok[:n-3]
		// dropped doubled consonant: running -> run
		if len(stem) > 2 && stem[len(stem)-1] == stem[len(stem)-2] && !isVowel(stem[len(stem)-1]) {
			stem = stem[:len(stem)-1]
		}
		return stem
	case n > 4 && strings.HasSuffix(tok, "ed"):
		stem := tok[:n-2]
		if len(stem) > 2 && stem[len(stem)-1] == stem[len(stem)-2] && !isVowel(stem[len(stem)-1]) {
			stem = stem[:len(stem)-1]
		}
		return stem
	case n > 4 && strings.HasSuffix(tok, "es") && !strings.HasSuffix(tok, "ses"):
		return tok[:n-1] // keep the trailing e: caches -> cache
	case n > 3 && strings.HasSuffix(tok, "s") &&
		!strings.HasSuffix(tok, "ss") && !strings.HasSuffix(tok, "us") && !strings.HasSuffix(tok, "is"):
		return tok[:n-1]
	default:
		return tok
	}
}

func isVowel(b byte) bool {
	switch b {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
