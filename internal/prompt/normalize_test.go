package prompt

import (
	"testing"
)

func TestNormalizeTokens(t *testing.T) {
	p := Normalize("Fix the  CI   pipeline!", "/work/repo")

	want := []string{"fix", "the", "ci", "pipeline"}
	if len(p.Tokens) != len(want) {
		t.Fatalf("Tokens = %v, want %v", p.Tokens, want)
	}
	for i, tok := range want {
		if p.Tokens[i] != tok {
			t.Errorf("Tokens[%d] = %q, want %q", i, p.Tokens[i], tok)
		}
	}
	if p.Normalized != "fix the ci pipeline" {
		t.Errorf("Normalized = %q", p.Normalized)
	}
	if p.CWD != "/work/repo" {
		t.Errorf("CWD = %q", p.CWD)
	}
}

func TestNormalizeKeepsHyphens(t *testing.T) {
	p := Normalize("use devops-expert please", "")
	if p.Tokens[1] != "devops-expert" {
		t.Errorf("hyphenated token mangled: %v", p.Tokens)
	}
}

func TestNormalizeStripsTrailingPunctuation(t *testing.T) {
	p := Normalize("what's wrong with auth.go? (the handler, specifically)", "")
	for _, tok := range p.Tokens {
		switch tok {
		case "auth.go", "what's", "wrong", "with", "the", "handler", "specifically":
		default:
			t.Errorf("unexpected token %q", tok)
		}
	}
}

func TestNormalizePathTokens(t *testing.T) {
	p := Normalize("look at src/server/main.go and config.yaml but not readme", "")

	if len(p.PathTokens) != 2 {
		t.Fatalf("PathTokens = %v, want 2 entries", p.PathTokens)
	}
	if p.PathTokens[0] != "src/server/main.go" || p.PathTokens[1] != "config.yaml" {
		t.Errorf("PathTokens = %v", p.PathTokens)
	}
}

func TestNormalizeHashDeterministic(t *testing.T) {
	a := Normalize("same prompt", "")
	b := Normalize("same prompt", "/elsewhere")
	if a.Hash != b.Hash {
		t.Error("hash must depend on raw text only")
	}
	if a.Hash == Normalize("different prompt", "").Hash {
		t.Error("different raw text must hash differently")
	}
	if len(a.Hash) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(a.Hash))
	}
}

func TestNormalizeEmptyAndPunctuation(t *testing.T) {
	if got := Normalize("", "").Tokens; len(got) != 0 {
		t.Errorf("empty prompt tokens = %v", got)
	}
	if got := Normalize("?! ... ,,", "").Tokens; len(got) != 0 {
		t.Errorf("punctuation-only prompt tokens = %v", got)
	}
}

func TestIsPathLike(t *testing.T) {
	cases := []struct {
		tok  string
		want bool
	}{
		{"src/main.go", true},
		{"c:\\users\\dev", true},
		{"config.yaml", true},
		{"readme", false},
		{"v1.2", false},
		{"fix", false},
	}
	for _, tc := range cases {
		if got := isPathLike(tc.tok); got != tc.want {
			t.Errorf("isPathLike(%q) = %v, want %v", tc.tok, got, tc.want)
		}
	}
}
