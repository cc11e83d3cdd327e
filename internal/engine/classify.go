package engine

import (
	"sort"

	"skillsuggest/internal/config"
	"skillsuggest/internal/index"
)

// Confidence is the categorical label derived from an element's raw score.
type Confidence string

const (
	ConfidenceHigh   Confidence = "HIGH"
	ConfidenceMedium Confidence = "MEDIUM"
	ConfidenceLow    Confidence = "LOW"
)

// Commitment is the verbatim instruction attached to HIGH-confidence
// suggestions: the caller must still evaluate fit before acting.
const Commitment = "Before activating this element, verify that it actually fits the request; a high score is a lexical signal, not a decision."

// Result is one ranked element in the final output.
type Result struct {
	Element    *index.LoadedElement
	Raw        int
	Relative   float64
	Confidence Confidence
	Evidence   []Evidence
	FuzzyUsed  bool
	GateFailed bool
	SubTask    int
}

// KeywordsMatched lists the keyword-signal evidence values, in match order.
func (r *Result) KeywordsMatched() []string {
	var out []string
	for _, ev := range r.Evidence {
		if ev.Signal == SignalKeyword {
			out = append(out, ev.Value)
		}
	}
	return out
}

// Classifier finalizes aggregated scores into the ranked result list.
type Classifier struct {
	cfg config.ScoringConfig
}

// NewClassifier returns a classifier using the given scoring constants.
func NewClassifier(cfg config.ScoringConfig) *Classifier {
	return &Classifier{cfg: cfg}
}

// Confidence maps a raw score to its label.
func (c *Classifier) Confidence(raw int) Confidence {
	switch {
	case raw >= c.cfg.HighConfidenceMin:
		return ConfidenceHigh
	case raw >= c.cfg.MediumConfidenceMin:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// RelativeScore computes the [0,1] score for one raw value given the top
// raw score of this invocation:
//
//	absolute_floor = min(raw/anchor, clamp)
//	relative_core  = raw / max_raw
//	relative       = max(relative_core, absolute_floor)
//
// The anchor and clamp are calibration-critical; see config.ScoringConfig.
func (c *Classifier) RelativeScore(raw, maxRaw int) float64 {
	if raw <= 0 {
		return 0
	}
	floor := float64(raw) / c.cfg.RelativeAnchor
	if floor > c.cfg.RelativeFloorClamp {
		floor = c.cfg.RelativeFloorClamp
	}
	core := 0.0
	if maxRaw > 0 {
		core = float64(raw) / float64(maxRaw)
	}
	if core > floor {
		return core
	}
	return floor
}

// Rank assigns relative scores and confidence, sorts deterministically,
// applies the minimum-score filter, and truncates to topK. Elements below
// the minimum relative score are kept only to fill up to topK.
func (c *Classifier) Rank(results []Result, topK int) []Result {
	if len(results) == 0 {
		return results
	}

	maxRaw := 0
	for _, r := range results {
		if r.Raw > maxRaw {
			maxRaw = r.Raw
		}
	}
	for i := range results {
		results[i].Relative = c.RelativeScore(results[i].Raw, maxRaw)
		results[i].Confidence = c.Confidence(results[i].Raw)
	}

	c.Sort(results)

	if topK <= 0 {
		topK = c.cfg.TopK
	}

	// Minimum-score filter with fill: keep everything above the threshold,
	// then pad from the remainder (already in rank order) up to topK.
	kept := results[:0:0]
	var fill []Result
	for _, r := range results {
		if r.Relative >= c.cfg.MinRelativeScore {
			kept = append(kept, r)
		} else {
			fill = append(fill, r)
		}
	}
	for len(kept) < topK && len(fill) > 0 {
		kept = append(kept, fill[0])
		fill = fill[1:]
	}

	if len(kept) > topK {
		kept = kept[:topK]
	}
	return kept
}

// Sort orders results by relative score desc, raw desc, tier priority
// (primary first), then name asc. In incomplete mode tier is skipped, since
// the builder has not emitted tiers yet.
func (c *Classifier) Sort(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Relative != b.Relative {
			return a.Relative > b.Relative
		}
		if a.Raw != b.Raw {
			return a.Raw > b.Raw
		}
		if !c.cfg.IncompleteMode {
			ta, tb := index.TierPriority(a.Element.Tier), index.TierPriority(b.Element.Tier)
			if ta != tb {
				return ta < tb
			}
		}
		return a.Element.Name < b.Element.Name
	})
}
