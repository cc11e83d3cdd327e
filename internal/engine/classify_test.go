package engine

import (
	"math"
	"testing"

	"skillsuggest/internal/config"
	"skillsuggest/internal/index"
)

func TestConfidenceThresholds(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())

	cases := []struct {
		raw  int
		want Confidence
	}{
		{0, ConfidenceLow},
		{5, ConfidenceLow},
		{6, ConfidenceMedium},
		{11, ConfidenceMedium},
		{12, ConfidenceHigh},
		{2500, ConfidenceHigh},
	}
	for _, tc := range cases {
		if got := c.Confidence(tc.raw); got != tc.want {
			t.Errorf("Confidence(%d) = %s, want %s", tc.raw, got, tc.want)
		}
	}
}

func TestRelativeScoreFormula(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())

	// Top scorer always lands at 1.0.
	if got := c.RelativeScore(80, 80); got != 1.0 {
		t.Errorf("top scorer relative = %f, want 1.0", got)
	}

	// Below the top, the ratio wins when above the absolute floor.
	if got := c.RelativeScore(40, 80); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("relative = %f, want 0.5", got)
	}

	// The absolute floor rescues strong raw scores crowded by a giant top
	// scorer: raw 600 against top 10000 floors at 600/1000.
	if got := c.RelativeScore(600, 10000); math.Abs(got-0.6) > 1e-9 {
		t.Errorf("floored relative = %f, want 0.6", got)
	}

	// The floor clamps at 0.5 no matter how large raw gets.
	if got := c.RelativeScore(900, 10000); math.Abs(got-0.5) > 1e-9 {
		t.Errorf("clamped relative = %f, want 0.5", got)
	}

	if got := c.RelativeScore(0, 100); got != 0 {
		t.Errorf("zero raw relative = %f, want 0", got)
	}
}

func TestRelativeScoreRange(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())
	for raw := 0; raw <= 5000; raw += 137 {
		got := c.RelativeScore(raw, 5000)
		if got < 0 || got > 1 {
			t.Fatalf("RelativeScore(%d, 5000) = %f out of [0,1]", raw, got)
		}
	}
}

func rankElement(name string, tier index.Tier) *index.LoadedElement {
	set := index.BuildSet([]index.Element{{Name: name, Type: index.TypeSkill, Tier: tier}})
	return set.Get(name)
}

func TestRankDeterministicTieBreak(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())

	results := []Result{
		{Element: rankElement("zeta", index.TierSecondary), Raw: 50},
		{Element: rankElement("alpha", index.TierSecondary), Raw: 50},
		{Element: rankElement("mid", index.TierPrimary), Raw: 50},
		{Element: rankElement("top", ""), Raw: 80},
	}
	ranked := c.Rank(results, 10)

	wantOrder := []string{"top", "mid", "alpha", "zeta"}
	if len(ranked) != len(wantOrder) {
		t.Fatalf("got %d results, want %d", len(ranked), len(wantOrder))
	}
	for i, name := range wantOrder {
		if ranked[i].Element.Name != name {
			t.Errorf("rank %d = %s, want %s", i, ranked[i].Element.Name, name)
		}
	}
}

func TestRankIncompleteModeIgnoresTier(t *testing.T) {
	cfg := config.DefaultScoringConfig()
	cfg.IncompleteMode = true
	c := NewClassifier(cfg)

	results := []Result{
		{Element: rankElement("beta", index.TierPrimary), Raw: 50},
		{Element: rankElement("alpha", index.TierSpecialized), Raw: 50},
	}
	ranked := c.Rank(results, 10)

	if ranked[0].Element.Name != "alpha" {
		t.Errorf("incomplete mode must fall through to name order, got %s first", ranked[0].Element.Name)
	}
}

func TestRankMinScoreFilterWithFill(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())

	// One dominant scorer pushes the rest below the 0.5 threshold, but they
	// are kept to fill up to topK.
	results := []Result{
		{Element: rankElement("big", ""), Raw: 1000},
		{Element: rankElement("small-a", ""), Raw: 40},
		{Element: rankElement("small-b", ""), Raw: 30},
		{Element: rankElement("small-c", ""), Raw: 20},
	}
	ranked := c.Rank(results, 3)

	if len(ranked) != 3 {
		t.Fatalf("got %d results, want topK=3", len(ranked))
	}
	if ranked[0].Element.Name != "big" {
		t.Errorf("rank 0 = %s", ranked[0].Element.Name)
	}
	if ranked[1].Element.Name != "small-a" || ranked[2].Element.Name != "small-b" {
		t.Errorf("fill order wrong: %s, %s", ranked[1].Element.Name, ranked[2].Element.Name)
	}
}

func TestRankFilterDropsWhenEnoughAbove(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())

	var results []Result
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		results = append(results, Result{Element: rankElement(n, ""), Raw: 100})
	}
	results = append(results, Result{Element: rankElement("weak", ""), Raw: 1})

	ranked := c.Rank(results, 4)
	if len(ranked) != 4 {
		t.Fatalf("got %d, want 4", len(ranked))
	}
	for _, r := range ranked {
		if r.Element.Name == "weak" {
			t.Error("below-threshold element emitted despite enough candidates")
		}
	}
}

func TestRankEmpty(t *testing.T) {
	c := NewClassifier(config.DefaultScoringConfig())
	if got := c.Rank(nil, 5); len(got) != 0 {
		t.Errorf("Rank(nil) = %v", got)
	}
}
