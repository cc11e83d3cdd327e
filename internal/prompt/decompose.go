package prompt

import (
	"regexp"
	"strings"

	"skillsuggest/internal/logging"
)

// SubTask is one independently scored fragment of a decomposed prompt. It
// carries its own expanded token state.
type SubTask struct {
	// Index is the fragment's position in the original prompt, 0-based.
	Index int

	// Text is the raw fragment text.
	Text string

	// Expanded is the fragment run through the full normalize+expand
	// pipeline, so per-sub-task matching sees the same view a whole prompt
	// would.
	Expanded *Expanded
}

// Delimiter patterns, in priority order: numbered list markers at line
// start, bullet markers, semicolons, connective phrases, then sentence
// terminators followed by an imperative clause.
var (
	numberedMarkerRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+`)
	bulletMarkerRe   = regexp.MustCompile(`(?m)^\s*[-*\x{2022}]\s+`)
	connectiveRe     = regexp.MustCompile(`\band then\b|\bthen,\s|\balso,\s|\bplus,\s`)
	sentenceEndRe    = regexp.MustCompile(`[.!?]\s+`)
)

// imperativeVerbs begin a clause that warrants a sentence-boundary split.
var imperativeVerbs = map[string]bool{
	"add": true, "build": true, "change": true, "check": true, "clean": true,
	"configure": true, "convert": true, "create": true, "debug": true,
	"delete": true, "deploy": true, "document": true, "enable": true,
	"fix": true, "generate": true, "implement": true, "install": true,
	"make": true, "migrate": true, "optimize": true, "refactor": true,
	"remove": true, "rename": true, "review": true, "run": true,
	"set": true, "setup": true, "test": true, "update": true,
	"upgrade": true, "validate": true, "write": true,
}

// stopTokens are too generic to count as meaningful when judging whether a
// fragment can stand alone as a sub-task.
var stopTokens = map[string]bool{
	"a": true, "an": true, "and": true, "the": true, "to": true, "of": true,
	"in": true, "on": true, "for": true, "with": true, "my": true,
	"me": true, "it": true, "is": true, "that": true, "this": true,
	"please": true, "help": true, "can": true, "you": true,
}

// Decompose splits a prompt into sub-tasks and expands each fragment. If any
// fragment would carry fewer than two meaningful tokens, the split is
// abandoned and the whole prompt becomes the single sub-task. The result is
// never empty.
func (r *Rules) Decompose(p Prompt) []SubTask {
	timer := logging.StartTimer(logging.CategoryPrompt, "Decompose")
	defer timer.Stop()

	fragments := splitFragments(p.Raw)

	if len(fragments) > 1 {
		for _, frag := range fragments {
			if meaningfulTokenCount(frag) < 2 {
				logging.PromptDebug("split abandoned: fragment %q too short", frag)
				fragments = nil
				break
			}
		}
	}
	if len(fragments) <= 1 {
		return []SubTask{{Index: 0, Text: p.Raw, Expanded: r.Expand(p)}}
	}

	tasks := make([]SubTask, 0, len(fragments))
	for i, frag := range fragments {
		sub := Normalize(frag, p.CWD)
		tasks = append(tasks, SubTask{Index: i, Text: frag, Expanded: r.Expand(sub)})
	}
	logging.Prompt("decomposed into %d sub-tasks", len(tasks))
	return tasks
}

// splitFragments applies the delimiter rules in priority order and returns
// trimmed non-empty fragments. A rule only applies when it actually splits.
func splitFragments(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	if frags := splitOnPattern(raw, numberedMarkerRe); len(frags) > 1 {
		return frags
	}
	if frags := splitOnPattern(raw, bulletMarkerRe); len(frags) > 1 {
		return frags
	}
	if frags := cleanSplit(strings.Split(raw, ";")); len(frags) > 1 {
		return frags
	}
	if frags := splitOnPattern(raw, connectiveRe); len(frags) > 1 {
		return frags
	}
	return splitSentences(raw)
}

// splitOnPattern removes every pattern match and splits at its position.
func splitOnPattern(raw string, re *regexp.Regexp) []string {
	return cleanSplit(re.Split(raw, -1))
}

// splitSentences splits on sentence terminators only when the following
// clause begins with an imperative verb.
func splitSentences(raw string) []string {
	locs := sentenceEndRe.FindAllStringIndex(raw, -1)
	if len(locs) == 0 {
		return cleanSplit([]string{raw})
	}

	var frags []string
	start := 0
	for _, loc := range locs {
		rest := raw[loc[1]:]
		first := strings.ToLower(firstWord(rest))
		if !imperativeVerbs[first] {
			continue
		}
		frags = append(frags, raw[start:loc[0]])
		start = loc[1]
	}
	frags = append(frags, raw[start:])
	return cleanSplit(frags)
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.TrimRight(fields[0], ".,;:!?")
}

func cleanSplit(parts []string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// meaningfulTokenCount counts tokens that are neither stoplisted nor
// single-character.
func meaningfulTokenCount(frag string) int {
	count := 0
	for _, tok := range Normalize(frag, "").Tokens {
		if len(tok) > 1 && !stopTokens[tok] {
			count++
		}
	}
	return count
}
