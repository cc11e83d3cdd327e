package engine

import (
	"strings"

	"skillsuggest/internal/index"
	"skillsuggest/internal/logging"
	"skillsuggest/internal/prompt"
)

// GateResult records the outcome of evaluating one element's domain gates
// against the full expanded prompt.
type GateResult struct {
	// Failed is true when at least one gate had no active-domain match.
	// Failing elements are not discarded, only attenuated.
	Failed bool

	// FailedGates names the gates that failed, in sorted order.
	FailedGates []string
}

// EvaluateGates checks every gate of a gated element. A gate passes iff at
// least one of its keywords is lexically present in the expanded prompt, or
// it carries the wildcard and its canonical domain is active in the
// registry. Ungated elements always pass.
func EvaluateGates(le *index.LoadedElement, full *prompt.Expanded, activeDomains map[string]bool) GateResult {
	if !le.Gated() {
		return GateResult{}
	}

	var result GateResult
	for _, gateName := range le.GateNames {
		if gatePasses(gateName, le.DomainGates[gateName], full, activeDomains) {
			continue
		}
		result.Failed = true
		result.FailedGates = append(result.FailedGates, gateName)
	}

	if result.Failed {
		logging.Gate("element %s: gates failed: %v", le.Name, result.FailedGates)
	}
	return result
}

func gatePasses(gateName string, keywords []string, full *prompt.Expanded, activeDomains map[string]bool) bool {
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if kw == index.GateWildcard {
			if activeDomains[gateName] {
				return true
			}
			continue
		}
		if strings.ContainsAny(kw, " \t") {
			if strings.Contains(full.Text, kw) {
				return true
			}
		} else if full.HasToken(kw) {
			return true
		}
	}
	return false
}
