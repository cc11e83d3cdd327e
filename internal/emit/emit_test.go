package emit

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"skillsuggest/internal/engine"
	"skillsuggest/internal/index"
)

func emitResult(name string, typ index.ElementType, raw int, rel float64, conf engine.Confidence) engine.Result {
	set := index.BuildSet([]index.Element{{Name: name, Type: typ, Path: "elements/" + name}})
	return engine.Result{
		Element:    set.Get(name),
		Raw:        raw,
		Relative:   rel,
		Confidence: conf,
		Evidence: []engine.Evidence{
			{Signal: engine.SignalKeyword, Value: "kw-" + name},
		},
	}
}

func TestWriteHookPayloadShape(t *testing.T) {
	var buf bytes.Buffer
	results := []engine.Result{
		emitResult("devops-expert", index.TypeSkill, 300, 1.0, engine.ConfidenceHigh),
		emitResult("review-agent", index.TypeAgent, 20, 0.6, engine.ConfidenceHigh),
		emitResult("some-command", index.TypeCommand, 15, 0.5, engine.ConfidenceHigh),
		emitResult("an-mcp", index.TypeMCP, 15, 0.5, engine.ConfidenceHigh),
	}
	if err := WriteHook(&buf, results); err != nil {
		t.Fatal(err)
	}

	var payload HookPayload
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("hook output is not valid JSON: %v", err)
	}

	want := HookPayload{
		HookSpecificOutput: HookOutput{
			HookEventName: "UserPromptSubmit",
			AdditionalContext: []ContextEntry{
				{
					Name: "devops-expert", Type: "skill", Path: "elements/devops-expert",
					Score: 1.0, Confidence: "HIGH",
					KeywordsMatched: []string{"kw-devops-expert"},
					Commitment:      engine.Commitment,
				},
				{
					Name: "review-agent", Type: "agent", Path: "elements/review-agent",
					Score: 0.6, Confidence: "HIGH",
					KeywordsMatched: []string{"kw-review-agent"},
					Commitment:      engine.Commitment,
				},
			},
		},
	}
	if diff := cmp.Diff(want, payload); diff != "" {
		t.Errorf("hook payload mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteHookOnlyHighGetsCommitment(t *testing.T) {
	var buf bytes.Buffer
	results := []engine.Result{
		emitResult("medium-skill", index.TypeSkill, 8, 0.8, engine.ConfidenceMedium),
	}
	if err := WriteHook(&buf, results); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "commitment") {
		t.Error("MEDIUM results must not carry a commitment string")
	}
}

func TestWriteJSONFlatList(t *testing.T) {
	var buf bytes.Buffer
	results := []engine.Result{
		emitResult("a-skill", index.TypeSkill, 20, 1.0, engine.ConfidenceHigh),
		emitResult("a-command", index.TypeCommand, 10, 0.5, engine.ConfidenceMedium),
	}
	if err := WriteJSON(&buf, results); err != nil {
		t.Fatal(err)
	}

	var out []RankedResult
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 2 {
		t.Fatalf("json mode is type-agnostic; got %d entries", len(out))
	}
	if out[0].Name != "a-skill" || out[1].Name != "a-command" {
		t.Errorf("order not preserved: %+v", out)
	}
	if out[0].RawScore != 20 {
		t.Errorf("RawScore = %d", out[0].RawScore)
	}
}

func TestWriteEmptyPayloadsAreValid(t *testing.T) {
	var hook bytes.Buffer
	if err := WriteEmptyHook(&hook); err != nil {
		t.Fatal(err)
	}
	var payload HookPayload
	if err := json.Unmarshal(hook.Bytes(), &payload); err != nil {
		t.Fatalf("empty hook payload invalid: %v", err)
	}
	if payload.HookSpecificOutput.HookEventName != "UserPromptSubmit" {
		t.Error("empty payload must keep the event name")
	}
	if payload.HookSpecificOutput.AdditionalContext == nil {
		t.Error("additionalContext must be an empty array, not null")
	}

	var flat bytes.Buffer
	if err := WriteEmptyJSON(&flat); err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(flat.String()) != "[]" {
		t.Errorf("empty json payload = %q, want []", flat.String())
	}
}

func TestKeywordsMatchedNeverNull(t *testing.T) {
	var buf bytes.Buffer
	set := index.BuildSet([]index.Element{{Name: "bare", Type: index.TypeSkill}})
	results := []engine.Result{{
		Element: set.Get("bare"), Raw: 12, Relative: 1.0, Confidence: engine.ConfidenceHigh,
	}}
	if err := WriteHook(&buf, results); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), `"keywords_matched":null`) {
		t.Error("keywords_matched must marshal as [] when empty")
	}
}
