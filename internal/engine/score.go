package engine

import (
	"skillsuggest/internal/config"
	"skillsuggest/internal/logging"
)

// ScoreRecord is the scored outcome for one (element, sub-task) pair.
type ScoreRecord struct {
	Raw        int
	Evidence   []Evidence
	FirstMatch bool
	FuzzyUsed  bool
	GateFailed bool
	SubTask    int
}

// Scorer turns a MatchReport into integer points using the configured
// weight table.
type Scorer struct {
	cfg config.ScoringConfig
}

// NewScorer returns a scorer using the given scoring constants.
func NewScorer(cfg config.ScoringConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score computes the raw score for one report. Gate state is applied later,
// by Aggregate, because gates are evaluated once per element against the
// whole prompt rather than per sub-task.
func (s *Scorer) Score(report *MatchReport, subTask int) ScoreRecord {
	cfg := s.cfg
	raw := 0

	// Keyword contributions. Low-signal keywords contribute at most
	// 1/LowSignalDivisor of the normal weight (integer floor).
	normalHits := report.KeywordHits - report.LowSignalHits
	raw += normalHits * cfg.KeywordWeight
	raw += report.LowSignalHits * (cfg.KeywordWeight / cfg.LowSignalDivisor)

	if report.FirstKeyword != "" && !lowSignalKeywords[report.FirstKeyword] {
		raw += cfg.FirstKeywordBonus
	}

	raw += report.IntentHits * cfg.IntentWeight
	raw += report.PatternHits * cfg.PatternWeight
	raw += report.DirectoryHits * cfg.DirectoryWeight
	raw += report.PathHits * cfg.PathWeight

	raw += report.OriginalHits * cfg.OriginalTokenBonus

	raw += report.DescOverlap * cfg.DescriptionOverlapWeight
	raw += report.UseCaseOverlap * cfg.UseCaseOverlapWeight

	coherence := report.CoherentClusters * cfg.CoherenceBonus
	if coherence > cfg.CoherenceCap {
		coherence = cfg.CoherenceCap
	}
	raw += coherence

	if report.NameMatch {
		raw += cfg.WholeNameBase
	}

	// Keyword damping: an element hoarding keyword hits loses points from
	// the DampingStart'th hit on, down to at most -DampingFloor.
	if report.KeywordHits >= cfg.DampingStart {
		damp := (report.KeywordHits - cfg.DampingStart + 1) * cfg.DampingStep
		if damp > cfg.DampingFloor {
			damp = cfg.DampingFloor
		}
		raw -= damp
	}

	if raw < 0 {
		raw = 0
	}

	return ScoreRecord{
		Raw:        raw,
		Evidence:   report.Evidence,
		FirstMatch: report.FirstKeyword != "",
		FuzzyUsed:  report.FuzzyUsed,
		SubTask:    subTask,
	}
}

// nameBonus returns the per-part extension of the whole-name bonus; it is
// separate from Score because it needs the element's part count.
func (s *Scorer) nameBonus(nameParts int) int {
	if nameParts < 1 {
		nameParts = 1
	}
	return s.cfg.WholeNamePerPart * (nameParts - 1)
}

// Aggregate merges per-sub-task records for one element: the maximum raw
// score wins and its evidence is preserved. Summing instead of taking the
// maximum over-credits elements weakly relevant to many sub-tasks. The gate
// penalty multiplies the winning raw score when any gate failed.
func (s *Scorer) Aggregate(records []ScoreRecord, gateFailed bool, nameParts int) ScoreRecord {
	if len(records) == 0 {
		return ScoreRecord{GateFailed: gateFailed}
	}

	best := records[0]
	for _, rec := range records[1:] {
		if rec.Raw > best.Raw {
			best = rec
		}
	}

	// The whole-name per-part extension applies once, after the winning
	// sub-task is chosen.
	if best.Raw > 0 && hasNameEvidence(best.Evidence) {
		best.Raw += s.nameBonus(nameParts)
	}

	best.GateFailed = gateFailed
	if gateFailed {
		best.Raw = int(float64(best.Raw) * s.cfg.GatePenalty)
		logging.Gate("gate penalty applied: raw now %d", best.Raw)
	}
	return best
}

func hasNameEvidence(evidence []Evidence) bool {
	for _, ev := range evidence {
		if ev.Signal == SignalName {
			return true
		}
	}
	return false
}
