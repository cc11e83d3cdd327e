package engine

import (
	"skillsuggest/internal/config"
	"skillsuggest/internal/index"
	"skillsuggest/internal/logging"
	"skillsuggest/internal/prompt"
)

// Engine wires the pipeline stages over one loaded index. It holds no
// mutable state; Suggest may be called repeatedly (the profiler does).
type Engine struct {
	cfg        config.ScoringConfig
	set        *index.ElementSet
	registry   *index.DomainRegistry
	rules      *prompt.Rules
	matcher    *Matcher
	scorer     *Scorer
	classifier *Classifier
}

// New builds an engine over a loaded element set and registry.
func New(cfg config.ScoringConfig, set *index.ElementSet, registry *index.DomainRegistry, rules *prompt.Rules) *Engine {
	return &Engine{
		cfg:        cfg,
		set:        set,
		registry:   registry,
		rules:      rules,
		matcher:    NewMatcher(cfg),
		scorer:     NewScorer(cfg),
		classifier: NewClassifier(cfg),
	}
}

// Config returns the engine's scoring constants.
func (e *Engine) Config() config.ScoringConfig {
	return e.cfg
}

// Suggest runs the full pipeline for one prompt: normalize, expand,
// decompose, detect domains, then match/gate/score every element per
// sub-task, aggregate by maximum, and rank. topK <= 0 uses the configured
// default. An empty or unmatchable prompt yields an empty result.
func (e *Engine) Suggest(raw, cwd string, topK int) []Result {
	timer := logging.StartTimer(logging.CategoryScore, "Suggest")
	defer timer.Stop()

	p := prompt.Normalize(raw, cwd)
	if len(p.Tokens) == 0 {
		logging.Score("empty prompt, no results")
		return nil
	}
	logging.Score("prompt hash=%s tokens=%d", p.Hash[:12], len(p.Tokens))

	full := e.rules.Expand(p)
	subTasks := e.rules.Decompose(p)
	activeDomains := e.registry.ActiveDomains(full.Text, full.TokenSet())
	logging.Gate("active domains: %d", len(activeDomains))

	return e.score(subTasks, full, activeDomains, topK)
}

// score runs matching, gating, scoring, aggregation, and ranking over the
// prepared sub-tasks.
func (e *Engine) score(subTasks []prompt.SubTask, full *prompt.Expanded, activeDomains map[string]bool, topK int) []Result {
	var results []Result

	for _, le := range e.set.Elements {
		records := make([]ScoreRecord, 0, len(subTasks))
		for _, st := range subTasks {
			report := e.matcher.Match(le, st.Expanded)
			if report.Empty() {
				continue
			}
			records = append(records, e.scorer.Score(report, st.Index))
		}
		if len(records) == 0 {
			continue
		}

		gate := EvaluateGates(le, full, activeDomains)
		agg := e.scorer.Aggregate(records, gate.Failed, len(le.NameParts))
		if agg.Raw <= 0 {
			continue
		}

		// Explicit builder boosts are additive and skipped in incomplete
		// mode, where the field does not exist yet.
		if !e.cfg.IncompleteMode && le.Boost != 0 {
			agg.Raw += le.Boost
		}

		results = append(results, Result{
			Element:    le,
			Raw:        agg.Raw,
			Evidence:   agg.Evidence,
			FuzzyUsed:  agg.FuzzyUsed,
			GateFailed: agg.GateFailed,
			SubTask:    agg.SubTask,
		})
	}

	ranked := e.classifier.Rank(results, topK)
	logging.Score("ranked %d candidates, emitting %d", len(results), len(ranked))
	return ranked
}

// SuggestAll is Suggest without the top-K truncation or minimum-score
// filter; the profiler needs the full ranked list to group by type before
// applying per-tier caps.
func (e *Engine) SuggestAll(raw, cwd string) []Result {
	p := prompt.Normalize(raw, cwd)
	if len(p.Tokens) == 0 {
		return nil
	}
	full := e.rules.Expand(p)
	subTasks := e.rules.Decompose(p)
	activeDomains := e.registry.ActiveDomains(full.Text, full.TokenSet())

	return e.score(subTasks, full, activeDomains, e.set.Len()+1)
}
