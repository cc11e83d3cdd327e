// Package config holds the immutable configuration records for the suggest
// engine. All calibrated scoring constants live here rather than as literals
// scattered through the scorer; tests override copies of the default record.
package config

// ScoringConfig holds every weight, bonus, cap, and threshold used by the
// matcher, gate filter, scorer, and classifier. The defaults below are
// calibrated values; several of them interlock (see RelativeAnchor and
// MinRelativeScore in particular) and must not be changed independently.
type ScoringConfig struct {
	// Per-signal weights (integer points per hit).
	DirectoryWeight int `yaml:"directory_weight" json:"directory_weight"`
	PathWeight      int `yaml:"path_weight" json:"path_weight"`
	IntentWeight    int `yaml:"intent_weight" json:"intent_weight"`
	PatternWeight   int `yaml:"pattern_weight" json:"pattern_weight"`
	KeywordWeight   int `yaml:"keyword_weight" json:"keyword_weight"`

	// FirstKeywordBonus fires once per element per sub-task, on the first
	// keyword that matches.
	FirstKeywordBonus int `yaml:"first_keyword_bonus" json:"first_keyword_bonus"`

	// OriginalTokenBonus fires per distinct hit whose matched token came from
	// the user's prompt rather than from expansion.
	OriginalTokenBonus int `yaml:"original_token_bonus" json:"original_token_bonus"`

	// Description and use-case token overlap, each capped.
	DescriptionOverlapWeight int `yaml:"description_overlap_weight" json:"description_overlap_weight"`
	DescriptionOverlapCap    int `yaml:"description_overlap_cap" json:"description_overlap_cap"`
	UseCaseOverlapWeight     int `yaml:"use_case_overlap_weight" json:"use_case_overlap_weight"`
	UseCaseOverlapCap        int `yaml:"use_case_overlap_cap" json:"use_case_overlap_cap"`

	// Coherence bonus per phrase cluster with multiple hits, capped in total.
	CoherenceBonus int `yaml:"coherence_bonus" json:"coherence_bonus"`
	CoherenceCap   int `yaml:"coherence_cap" json:"coherence_cap"`

	// Whole-name match: WholeNameBase + WholeNamePerPart*(parts-1).
	WholeNameBase    int `yaml:"whole_name_base" json:"whole_name_base"`
	WholeNamePerPart int `yaml:"whole_name_per_part" json:"whole_name_per_part"`

	// Keyword damping: starting from hit DampingStart (1-based), subtract
	// DampingStep per further hit, down to at most -DampingFloor total.
	DampingStart int `yaml:"damping_start" json:"damping_start"`
	DampingStep  int `yaml:"damping_step" json:"damping_step"`
	DampingFloor int `yaml:"damping_floor" json:"damping_floor"`

	// LowSignalDivisor reduces the contribution of stoplisted single-word
	// keywords to weight/LowSignalDivisor.
	LowSignalDivisor int `yaml:"low_signal_divisor" json:"low_signal_divisor"`

	// GatePenalty multiplies the raw score of an element with any failing
	// domain gate. 0.35 proved too aggressive, 0.85+ let false positives
	// through; 0.80 is the calibrated value.
	GatePenalty float64 `yaml:"gate_penalty" json:"gate_penalty"`

	// RelativeAnchor and RelativeFloorClamp define the absolute score floor:
	// min(raw/RelativeAnchor, RelativeFloorClamp). Calibrated together with
	// MinRelativeScore across multiple cycles; changing any of the three in
	// isolation causes ranking regressions.
	RelativeAnchor     float64 `yaml:"relative_anchor" json:"relative_anchor"`
	RelativeFloorClamp float64 `yaml:"relative_floor_clamp" json:"relative_floor_clamp"`

	// MinRelativeScore filters output; elements below it are dropped unless
	// needed to fill TopK.
	MinRelativeScore float64 `yaml:"min_relative_score" json:"min_relative_score"`

	// Confidence thresholds on raw score.
	HighConfidenceMin   int `yaml:"high_confidence_min" json:"high_confidence_min"`
	MediumConfidenceMin int `yaml:"medium_confidence_min" json:"medium_confidence_min"`

	// Fuzzy matching (single-token keywords only).
	FuzzyMaxLengthGap   int `yaml:"fuzzy_max_length_gap" json:"fuzzy_max_length_gap"`
	FuzzyShortKeyword   int `yaml:"fuzzy_short_keyword" json:"fuzzy_short_keyword"`
	FuzzyMediumKeyword  int `yaml:"fuzzy_medium_keyword" json:"fuzzy_medium_keyword"`
	FuzzyShortThreshold int `yaml:"fuzzy_short_threshold" json:"fuzzy_short_threshold"`
	FuzzyMedThreshold   int `yaml:"fuzzy_med_threshold" json:"fuzzy_med_threshold"`
	FuzzyLongThreshold  int `yaml:"fuzzy_long_threshold" json:"fuzzy_long_threshold"`

	// Output sizing.
	TopK                int `yaml:"top_k" json:"top_k"`
	ProfilePrimaryCap   int `yaml:"profile_primary_cap" json:"profile_primary_cap"`
	ProfileSecondaryCap int `yaml:"profile_secondary_cap" json:"profile_secondary_cap"`
	ProfileSpecialCap   int `yaml:"profile_special_cap" json:"profile_special_cap"`

	// IncompleteMode skips tier priority in sorting and tier grouping in
	// profile output; used while the index builder has not yet emitted those
	// fields.
	IncompleteMode bool `yaml:"incomplete_mode" json:"incomplete_mode"`
}

// DefaultScoringConfig returns the calibrated scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		DirectoryWeight: 5,
		PathWeight:      4,
		IntentWeight:    4,
		PatternWeight:   3,
		KeywordWeight:   2,

		FirstKeywordBonus:  10,
		OriginalTokenBonus: 3,

		DescriptionOverlapWeight: 60,
		DescriptionOverlapCap:    7,
		UseCaseOverlapWeight:     65,
		UseCaseOverlapCap:        5,

		CoherenceBonus: 50,
		CoherenceCap:   400,

		WholeNameBase:    2000,
		WholeNamePerPart: 1000,

		DampingStart: 4,
		DampingStep:  60,
		DampingFloor: 500,

		LowSignalDivisor: 10,

		GatePenalty:        0.80,
		RelativeAnchor:     1000.0,
		RelativeFloorClamp: 0.5,
		MinRelativeScore:   0.5,

		HighConfidenceMin:   12,
		MediumConfidenceMin: 6,

		FuzzyMaxLengthGap:   2,
		FuzzyShortKeyword:   4,
		FuzzyMediumKeyword:  8,
		FuzzyShortThreshold: 1,
		FuzzyMedThreshold:   2,
		FuzzyLongThreshold:  3,

		TopK:                10,
		ProfilePrimaryCap:   7,
		ProfileSecondaryCap: 12,
		ProfileSpecialCap:   8,
	}
}

// FuzzyThreshold returns the edit-distance threshold for a keyword of the
// given length.
func (c ScoringConfig) FuzzyThreshold(keywordLen int) int {
	switch {
	case keywordLen <= c.FuzzyShortKeyword:
		return c.FuzzyShortThreshold
	case keywordLen <= c.FuzzyMediumKeyword:
		return c.FuzzyMedThreshold
	default:
		return c.FuzzyLongThreshold
	}
}
