package engine

import (
	"strings"

	"skillsuggest/internal/config"
	"skillsuggest/internal/index"
	"skillsuggest/internal/logging"
	"skillsuggest/internal/prompt"
)

// Signal tags which evidence class a hit came from.
type Signal string

const (
	SignalKeyword     Signal = "keyword"
	SignalIntent      Signal = "intent"
	SignalPattern     Signal = "pattern"
	SignalDirectory   Signal = "directory"
	SignalPath        Signal = "path"
	SignalName        Signal = "name"
	SignalDescription Signal = "description"
	SignalUseCase     Signal = "use_case"
)

// Evidence is one matched item, tagged by signal class.
type Evidence struct {
	Signal       Signal `json:"signal"`
	Value        string `json:"value"`
	Fuzzy        bool   `json:"fuzzy,omitempty"`
	FromOriginal bool   `json:"from_original,omitempty"`
}

// MatchReport collects every hit for one (element, sub-task) pair plus the
// markers the scorer needs.
type MatchReport struct {
	Evidence []Evidence

	KeywordHits   int
	LowSignalHits int // keyword hits from the generic-term stoplist
	IntentHits    int
	PatternHits   int
	DirectoryHits int
	PathHits      int

	// FirstKeyword is the first element keyword (in element order) that
	// matched; empty when no keyword hit.
	FirstKeyword string

	// OriginalHits counts distinct hits whose matched token came from the
	// user's prompt rather than expansion.
	OriginalHits int

	// CoherentClusters counts matched phrase keywords at least two of whose
	// constituent words also individually appear in the expanded token set.
	CoherentClusters int

	DescOverlap    int
	UseCaseOverlap int

	NameMatch    bool
	NameOriginal bool
	FuzzyUsed    bool
}

// AnyFromOriginal reports whether at least one hit came from a non-expanded
// token.
func (m *MatchReport) AnyFromOriginal() bool {
	return m.OriginalHits > 0
}

// Empty reports whether nothing matched at all.
func (m *MatchReport) Empty() bool {
	return len(m.Evidence) == 0 && m.DescOverlap == 0 && m.UseCaseOverlap == 0
}

// lowSignalKeywords are single-word keywords too generic to carry normal
// weight; their contribution is divided by the configured divisor.
var lowSignalKeywords = map[string]bool{
	"code": true, "file": true, "files": true, "project": true,
	"tool": true, "tools": true, "help": true, "new": true,
	"use": true, "using": true, "work": true, "run": true,
	"get": true, "set": true, "make": true, "change": true,
	"data": true, "app": true, "application": true, "software": true,
	"system": true, "issue": true, "task": true, "thing": true,
}

// Matcher computes per-element evidence against one expanded sub-task.
type Matcher struct {
	cfg config.ScoringConfig
}

// NewMatcher returns a matcher using the given scoring constants.
func NewMatcher(cfg config.ScoringConfig) *Matcher {
	return &Matcher{cfg: cfg}
}

// Match computes the full evidence report for one element against one
// expanded sub-task.
func (m *Matcher) Match(le *index.LoadedElement, sub *prompt.Expanded) *MatchReport {
	report := &MatchReport{}

	m.matchKeywords(le, sub, report)
	m.matchIntents(le, sub, report)
	m.matchPatterns(le, sub, report)
	m.matchDirectories(le, sub, report)
	m.matchPaths(le, sub, report)
	m.matchName(le, sub, report)
	m.matchOverlap(le, sub, report)

	// The original-token bonus pays per distinct hit; evidence items are
	// already distinct per (signal, value).
	report.OriginalHits = 0
	for _, ev := range report.Evidence {
		if ev.FromOriginal {
			report.OriginalHits++
		}
	}

	if !report.Empty() {
		logging.MatchDebug("element %s: %d evidence items, first_keyword=%q fuzzy=%v",
			le.Name, len(report.Evidence), report.FirstKeyword, report.FuzzyUsed)
	}
	return report
}

// matchKeywords checks every element keyword in element order. Phrases
// require exact substring containment of the whole phrase; single-token
// keywords also get an adaptive fuzzy pass over the prompt tokens.
func (m *Matcher) matchKeywords(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	for _, kw := range le.OrderedKeywords {
		hit, fuzzy, fromOriginal := false, false, false

		if strings.Contains(sub.Text, kw.Text) {
			hit = true
			fromOriginal = m.keywordFromOriginal(kw, sub)
		} else if !kw.Phrase {
			if tok, ok := m.fuzzyMatch(kw.Text, sub); ok {
				hit, fuzzy = true, true
				fromOriginal = sub.IsOriginal(tok)
			}
		}
		if !hit {
			continue
		}

		report.KeywordHits++
		if !kw.Phrase && lowSignalKeywords[kw.Text] {
			report.LowSignalHits++
		}
		if report.FirstKeyword == "" {
			report.FirstKeyword = kw.Text
		}
		if fuzzy {
			report.FuzzyUsed = true
		}
		if kw.Phrase && m.coherentCluster(kw.Text, sub) {
			report.CoherentClusters++
		}
		report.Evidence = append(report.Evidence, Evidence{
			Signal: SignalKeyword, Value: kw.Text, Fuzzy: fuzzy, FromOriginal: fromOriginal,
		})
	}
}

// keywordFromOriginal decides whether a containment hit is anchored in the
// user's own words: phrases must appear in the un-expanded normalized text,
// single keywords must be contained in some original token.
func (m *Matcher) keywordFromOriginal(kw index.Keyword, sub *prompt.Expanded) bool {
	if kw.Phrase {
		return strings.Contains(sub.Normalized, kw.Text)
	}
	for _, tok := range sub.ExpTokens {
		if tok.Original && strings.Contains(tok.Text, kw.Text) {
			return true
		}
	}
	return false
}

// fuzzyMatch scans prompt tokens for an adaptive Damerau-Levenshtein match
// against a single-token keyword. The first matching token in prompt order
// wins.
func (m *Matcher) fuzzyMatch(kw string, sub *prompt.Expanded) (string, bool) {
	threshold := m.cfg.FuzzyThreshold(len(kw))
	for _, tok := range sub.ExpTokens {
		gap := len(tok.Text) - len(kw)
		if gap < 0 {
			gap = -gap
		}
		if gap > m.cfg.FuzzyMaxLengthGap {
			continue
		}
		if damerauDistance(tok.Text, kw) <= threshold {
			return tok.Text, true
		}
	}
	return "", false
}

// coherentCluster reports whether at least two constituent words of a
// matched phrase also appear as standalone tokens in the expanded prompt.
func (m *Matcher) coherentCluster(phrase string, sub *prompt.Expanded) bool {
	present := 0
	for _, word := range strings.Fields(phrase) {
		if sub.HasToken(word) {
			present++
			if present >= 2 {
				return true
			}
		}
	}
	return false
}

func (m *Matcher) matchIntents(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	for _, intent := range le.Intents {
		intent = strings.ToLower(intent)
		if intent == "" || !strings.Contains(sub.Text, intent) {
			continue
		}
		report.IntentHits++
		fromOriginal := strings.Contains(sub.Normalized, intent)
		report.Evidence = append(report.Evidence, Evidence{
			Signal: SignalIntent, Value: intent, FromOriginal: fromOriginal,
		})
	}
}

func (m *Matcher) matchPatterns(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	for _, re := range le.CompiledPatterns {
		if !re.MatchString(sub.Raw) {
			continue
		}
		report.PatternHits++
		report.Evidence = append(report.Evidence, Evidence{
			Signal: SignalPattern, Value: re.String(), FromOriginal: true,
		})
	}
}

// matchDirectories checks whether an element directory fragment appears as
// a segment of the caller's cwd or of any path-like prompt token.
func (m *Matcher) matchDirectories(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	if len(le.Directories) == 0 {
		return
	}
	cwdSegments := pathSegments(strings.ToLower(sub.CWD))

	for _, dir := range le.Directories {
		dir = strings.ToLower(strings.Trim(dir, "/\\"))
		if dir == "" {
			continue
		}
		hit := containsSegment(cwdSegments, dir)
		fromOriginal := false
		if !hit {
			for _, pt := range sub.PathTokens {
				if containsSegment(pathSegments(pt), dir) {
					hit, fromOriginal = true, true
					break
				}
			}
		}
		if !hit {
			continue
		}
		report.DirectoryHits++
		report.Evidence = append(report.Evidence, Evidence{
			Signal: SignalDirectory, Value: dir, FromOriginal: fromOriginal,
		})
	}
}

// matchPaths checks whether any prompt path-like token begins with or
// contains a segment of the element's provenance path.
func (m *Matcher) matchPaths(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	if le.Path == "" || len(sub.PathTokens) == 0 {
		return
	}
	elementPath := strings.ToLower(le.Path)
	segments := pathSegments(elementPath)

	for _, pt := range sub.PathTokens {
		hit := strings.HasPrefix(pt, elementPath)
		if !hit {
			for _, seg := range segments {
				if len(seg) >= 3 && strings.Contains(pt, seg) {
					hit = true
					break
				}
			}
		}
		if !hit {
			continue
		}
		report.PathHits++
		report.Evidence = append(report.Evidence, Evidence{
			Signal: SignalPath, Value: pt, FromOriginal: true,
		})
		return // one path hit per element is enough
	}
}

// matchName detects the whole element name as a contiguous substring of the
// expanded prompt, tolerant of hyphen-vs-space punctuation.
func (m *Matcher) matchName(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	name := strings.ToLower(le.Name)
	if name == "" {
		return
	}
	spaced := strings.ReplaceAll(name, "-", " ")
	flatText := strings.ReplaceAll(sub.Text, "-", " ")

	if !strings.Contains(sub.Text, name) && !strings.Contains(flatText, spaced) {
		return
	}
	report.NameMatch = true
	flatNormalized := strings.ReplaceAll(sub.Normalized, "-", " ")
	report.NameOriginal = strings.Contains(sub.Normalized, name) || strings.Contains(flatNormalized, spaced)
	report.Evidence = append(report.Evidence, Evidence{
		Signal: SignalName, Value: le.Name, FromOriginal: report.NameOriginal,
	})
}

// matchOverlap counts stemmed token-set intersections with the description
// and use-case texts, capped by configuration.
func (m *Matcher) matchOverlap(le *index.LoadedElement, sub *prompt.Expanded, report *MatchReport) {
	seen := make(map[string]bool)
	for _, tok := range le.DescTokens {
		stem := prompt.Stem(tok)
		if seen[stem] || !sub.HasStem(stem) {
			continue
		}
		seen[stem] = true
		if report.DescOverlap < m.cfg.DescriptionOverlapCap {
			report.DescOverlap++
			report.Evidence = append(report.Evidence, Evidence{
				Signal: SignalDescription, Value: tok, FromOriginal: sub.IsOriginal(tok),
			})
		}
	}

	seen = make(map[string]bool)
	for _, ucTokens := range le.UseCaseTokens {
		for _, tok := range ucTokens {
			stem := prompt.Stem(tok)
			if seen[stem] || !sub.HasStem(stem) {
				continue
			}
			seen[stem] = true
			if report.UseCaseOverlap < m.cfg.UseCaseOverlapCap {
				report.UseCaseOverlap++
				report.Evidence = append(report.Evidence, Evidence{
					Signal: SignalUseCase, Value: tok, FromOriginal: sub.IsOriginal(tok),
				})
			}
		}
	}
}

func pathSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

func containsSegment(segments []string, want string) bool {
	for _, s := range segments {
		if s == want {
			return true
		}
	}
	return false
}
