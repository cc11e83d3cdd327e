package index

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"

	"skillsuggest/internal/logging"
)

// ErrIndexUnavailable means the skill index is missing, unreadable, or
// unparseable. Fatal: the caller emits an empty payload and exits nonzero.
var ErrIndexUnavailable = errors.New("skill index unavailable")

// SchemaVersion is the index schema this loader targets. Other versions get
// a best-effort load with a warning.
const SchemaVersion = "3.0"

// File mirrors the top level of skill-index.json.
type File struct {
	Version    string             `json:"version"`
	Generated  string             `json:"generated,omitempty"`
	Generator  string             `json:"generator,omitempty"`
	Method     string             `json:"method,omitempty"`
	Pass       int                `json:"pass,omitempty"`
	SkillCount int                `json:"skill_count,omitempty"`
	Skills     map[string]Element `json:"skills"`
}

// ElementSet is the loaded, derived, immutable view of the index.
type ElementSet struct {
	// Elements is sorted by name so every iteration over the set is
	// deterministic regardless of JSON map order.
	Elements []*LoadedElement

	byName map[string]*LoadedElement

	// Pass records which builder pass produced the index; pass-1 indices
	// carry no co_usage data.
	Pass int
}

// Get returns the element with the given name, or nil.
func (s *ElementSet) Get(name string) *LoadedElement {
	return s.byName[name]
}

// Len returns the number of elements.
func (s *ElementSet) Len() int {
	return len(s.Elements)
}

// HasName reports whether name identifies an element in the set. Used to
// detect dangling co_usage references.
func (s *ElementSet) HasName(name string) bool {
	_, ok := s.byName[name]
	return ok
}

// Load reads the index and registry files and builds the derived tables.
// registryPath may be empty; the registry is then synthesized from the
// elements' domain gates (degraded mode, logged as a warning).
func Load(indexPath, registryPath string) (*ElementSet, *DomainRegistry, error) {
	timer := logging.StartTimer(logging.CategoryIndex, "Load")
	defer timer.Stop()

	set, err := loadIndex(indexPath)
	if err != nil {
		return nil, nil, err
	}

	reg, err := loadRegistry(registryPath)
	if err != nil {
		logging.Get(logging.CategoryIndex).Warn("registry degraded (%v), synthesizing from index", err)
		reg = SynthesizeRegistry(set)
	}
	reg.BuildLookup()

	logging.Index("loaded %d elements, %d domains", set.Len(), len(reg.Domains))
	return set, reg, nil
}

func loadIndex(path string) (*ElementSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrIndexUnavailable, path, err)
	}

	var file File
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrIndexUnavailable, path, err)
	}

	if file.Version != SchemaVersion {
		logging.Get(logging.CategoryIndex).Warn(
			"index schema %q (expected %q), attempting best-effort load", file.Version, SchemaVersion)
	}

	names := make([]string, 0, len(file.Skills))
	for name := range file.Skills {
		names = append(names, name)
	}
	sort.Strings(names)

	elements := make([]Element, 0, len(names))
	for _, name := range names {
		el := file.Skills[name]
		if el.Name == "" {
			el.Name = name
		}
		// Pass-1 indices have no co_usage yet; normalize so downstream code
		// never distinguishes.
		if file.Pass == 1 {
			el.CoUsage = CoUsage{}
		}
		elements = append(elements, el)
	}

	set := BuildSet(elements)
	set.Pass = file.Pass
	return set, nil
}

// BuildSet derives the in-memory set from parsed elements. Elements are
// sorted by name so iteration order never depends on input order.
func BuildSet(elements []Element) *ElementSet {
	set := &ElementSet{
		byName: make(map[string]*LoadedElement, len(elements)),
	}

	sorted := make([]Element, len(elements))
	copy(sorted, elements)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	for _, el := range sorted {
		if el.Category != "" && !IsCanonicalCategory(el.Category) {
			logging.Get(logging.CategoryIndex).Warn(
				"element %s: non-canonical category %q dropped", el.Name, el.Category)
			el.Category = ""
		}
		le := derive(el)
		le.CompiledPatterns, le.DroppedPatterns = compilePatterns(el.Name, el.Patterns)
		set.Elements = append(set.Elements, le)
		set.byName[el.Name] = le
	}

	return set
}

// compilePatterns compiles each pattern case-insensitively. A pattern that
// fails to compile is dropped; the element keeps its remaining patterns and
// the dropped ones are returned for diagnostics.
func compilePatterns(name string, patterns []string) ([]*regexp.Regexp, []string) {
	if len(patterns) == 0 {
		return nil, nil
	}
	out := make([]*regexp.Regexp, 0, len(patterns))
	var dropped []string
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			logging.IndexDebug("element %s: pattern %q dropped: %v", name, p, err)
			dropped = append(dropped, p)
			continue
		}
		out = append(out, re)
	}
	return out, dropped
}

// DanglingCoUsage returns, for diagnostics, the co_usage references that name
// elements absent from the set. The engine never scores through co_usage;
// this exists for the validate command only.
func (s *ElementSet) DanglingCoUsage() map[string][]string {
	dangling := make(map[string][]string)
	for _, le := range s.Elements {
		var refs []string
		refs = append(refs, le.CoUsage.UsuallyWith...)
		refs = append(refs, le.CoUsage.Precedes...)
		refs = append(refs, le.CoUsage.Follows...)
		refs = append(refs, le.CoUsage.Alternatives...)
		for _, ref := range refs {
			if ref != "" && !s.HasName(ref) {
				dangling[le.Name] = append(dangling[le.Name], ref)
			}
		}
	}
	return dangling
}
