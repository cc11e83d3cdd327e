// Package prompt turns a raw user prompt into the normalized, expanded,
// decomposed value the engine scores against. All transforms are
// deterministic: rule tables are ordered, iteration never depends on map
// order, and the original token set is preserved verbatim.
package prompt

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Prompt is the normalized view of one raw user prompt.
type Prompt struct {
	// Raw is the prompt exactly as received.
	Raw string

	// Normalized is lowercased with whitespace runs collapsed to single
	// spaces and per-token trailing punctuation stripped.
	Normalized string

	// Tokens is the ordered token sequence of Normalized.
	Tokens []string

	// PathTokens are tokens that look like paths: they contain a slash or a
	// recognized file extension. Kept with original casing stripped only.
	PathTokens []string

	// CWD is the caller's working directory, if provided.
	CWD string

	// Hash is the SHA-256 of Raw, hex-encoded. Logging only; never scored.
	Hash string
}

// Normalize builds a Prompt from raw text and an optional cwd.
func Normalize(raw, cwd string) Prompt {
	sum := sha256.Sum256([]byte(raw))

	p := Prompt{
		Raw:  raw,
		CWD:  cwd,
		Hash: hex.EncodeToString(sum[:]),
	}

	fields := strings.Fields(strings.ToLower(raw))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimRight(f, ".,;:!?\"')(]}[{")
		tok = strings.TrimLeft(tok, "\"'([{")
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
		if isPathLike(tok) {
			p.PathTokens = append(p.PathTokens, tok)
		}
	}

	p.Tokens = tokens
	p.Normalized = strings.Join(tokens, " ")
	return p
}

// knownExtensions recognizes file-type suffixes for path-token extraction.
var knownExtensions = map[string]bool{
	"go": true, "py": true, "js": true, "ts": true, "tsx": true, "jsx": true,
	"rs": true, "rb": true, "java": true, "kt": true, "swift": true,
	"c": true, "h": true, "cpp": true, "hpp": true, "cs": true,
	"json": true, "yaml": true, "yml": true, "toml": true, "xml": true,
	"md": true, "txt": true, "sql": true, "sh": true, "bash": true,
	"html": true, "css": true, "scss": true, "vue": true, "svelte": true,
	"proto": true, "tf": true, "dockerfile": true, "lock": true, "mod": true,
}

// isPathLike reports whether a token looks like a filesystem path: it has a
// path separator, or ends in a known file extension.
func isPathLike(tok string) bool {
	if strings.ContainsAny(tok, "/\\") {
		return true
	}
	if dot := strings.LastIndex(tok, "."); dot > 0 && dot < len(tok)-1 {
		return knownExtensions[tok[dot+1:]]
	}
	return false
}
