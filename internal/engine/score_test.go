package engine

import (
	"testing"

	"skillsuggest/internal/config"
)

func TestScoreSignalWeights(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	report := &MatchReport{
		KeywordHits:   2,
		FirstKeyword:  "docker",
		IntentHits:    1,
		PatternHits:   1,
		DirectoryHits: 1,
		PathHits:      1,
		OriginalHits:  3,
	}
	rec := s.Score(report, 0)

	want := 2*cfg.KeywordWeight + cfg.FirstKeywordBonus +
		cfg.IntentWeight + cfg.PatternWeight +
		cfg.DirectoryWeight + cfg.PathWeight +
		3*cfg.OriginalTokenBonus
	if rec.Raw != want {
		t.Errorf("Raw = %d, want %d", rec.Raw, want)
	}
	if !rec.FirstMatch {
		t.Error("FirstMatch flag lost")
	}
}

func TestScoreLowSignalKeywordsAttenuated(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	full := s.Score(&MatchReport{KeywordHits: 1, FirstKeyword: "docker"}, 0)
	low := s.Score(&MatchReport{KeywordHits: 1, LowSignalHits: 1, FirstKeyword: "code"}, 0)

	if low.Raw >= full.Raw {
		t.Errorf("low-signal keyword scored %d, normal scored %d", low.Raw, full.Raw)
	}
	// The first-match bonus must not fire from a stoplisted keyword either.
	if low.Raw > cfg.KeywordWeight/cfg.LowSignalDivisor {
		t.Errorf("stoplisted first keyword leaked the first-match bonus: %d", low.Raw)
	}
}

func TestScoreDescriptionAndUseCaseOverlap(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	rec := s.Score(&MatchReport{DescOverlap: 3, UseCaseOverlap: 2}, 0)
	want := 3*cfg.DescriptionOverlapWeight + 2*cfg.UseCaseOverlapWeight
	if rec.Raw != want {
		t.Errorf("Raw = %d, want %d", rec.Raw, want)
	}
}

func TestScoreCoherenceCapped(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	rec := s.Score(&MatchReport{CoherentClusters: 20}, 0)
	if rec.Raw != cfg.CoherenceCap {
		t.Errorf("coherence = %d, want cap %d", rec.Raw, cfg.CoherenceCap)
	}
}

func TestScoreKeywordDamping(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	// 6 hits: damping fires from the 4th hit on: 3 * step.
	sixHits := s.Score(&MatchReport{KeywordHits: 6, FirstKeyword: "k"}, 0)
	base := 6*cfg.KeywordWeight + cfg.FirstKeywordBonus
	damp := 3 * cfg.DampingStep
	want := base - damp
	if want < 0 {
		want = 0
	}
	if sixHits.Raw != want {
		t.Errorf("Raw = %d, want %d", sixHits.Raw, want)
	}

	// Three hits: no damping yet.
	threeHits := s.Score(&MatchReport{KeywordHits: 3, FirstKeyword: "k"}, 0)
	if threeHits.Raw != 3*cfg.KeywordWeight+cfg.FirstKeywordBonus {
		t.Errorf("three hits damped early: %d", threeHits.Raw)
	}
}

func TestScoreDampingFloor(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	// 30 hits: raw damping would exceed the floor; and the total never
	// goes negative.
	rec := s.Score(&MatchReport{KeywordHits: 30, FirstKeyword: "k", DescOverlap: 7, UseCaseOverlap: 5}, 0)
	base := 30*cfg.KeywordWeight + cfg.FirstKeywordBonus +
		7*cfg.DescriptionOverlapWeight + 5*cfg.UseCaseOverlapWeight
	if rec.Raw != base-cfg.DampingFloor {
		t.Errorf("Raw = %d, want %d", rec.Raw, base-cfg.DampingFloor)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	rec := s.Score(&MatchReport{KeywordHits: 10, FirstKeyword: "code", LowSignalHits: 10}, 0)
	if rec.Raw < 0 {
		t.Errorf("Raw = %d, must clamp at zero", rec.Raw)
	}
}

func TestAggregateTakesMaximum(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())

	records := []ScoreRecord{
		{Raw: 10, SubTask: 0, Evidence: []Evidence{{Signal: SignalKeyword, Value: "a"}}},
		{Raw: 25, SubTask: 1, Evidence: []Evidence{{Signal: SignalKeyword, Value: "b"}}},
		{Raw: 7, SubTask: 2},
	}
	agg := s.Aggregate(records, false, 1)

	if agg.Raw != 25 {
		t.Errorf("aggregated Raw = %d, want max 25 (never sum)", agg.Raw)
	}
	if agg.SubTask != 1 {
		t.Errorf("winning sub-task = %d, want 1", agg.SubTask)
	}
	if len(agg.Evidence) != 1 || agg.Evidence[0].Value != "b" {
		t.Errorf("evidence not preserved from winning sub-task: %+v", agg.Evidence)
	}
}

func TestAggregateTieKeepsEarlierSubTask(t *testing.T) {
	s := NewScorer(config.DefaultScoringConfig())
	agg := s.Aggregate([]ScoreRecord{
		{Raw: 10, SubTask: 0},
		{Raw: 10, SubTask: 1},
	}, false, 1)
	if agg.SubTask != 0 {
		t.Errorf("tie must keep the earlier sub-task, got %d", agg.SubTask)
	}
}

func TestAggregateGatePenalty(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	agg := s.Aggregate([]ScoreRecord{{Raw: 100, SubTask: 0}}, true, 1)
	if agg.Raw != int(100*cfg.GatePenalty) {
		t.Errorf("gated Raw = %d, want %d", agg.Raw, int(100*cfg.GatePenalty))
	}
	if !agg.GateFailed {
		t.Error("GateFailed flag lost")
	}

	clean := s.Aggregate([]ScoreRecord{{Raw: 100, SubTask: 0}}, false, 1)
	if clean.Raw != 100 {
		t.Errorf("ungated Raw = %d, want 100", clean.Raw)
	}
}

func TestAggregateNamePartBonus(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	s := NewScorer(cfg)

	rec := ScoreRecord{
		Raw:      cfg.WholeNameBase,
		Evidence: []Evidence{{Signal: SignalName, Value: "devops-expert-pro"}},
	}
	agg := s.Aggregate([]ScoreRecord{rec}, false, 3)
	want := cfg.WholeNameBase + 2*cfg.WholeNamePerPart
	if agg.Raw != want {
		t.Errorf("Raw = %d, want %d with the per-part extension", agg.Raw, want)
	}
}
