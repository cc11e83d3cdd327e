package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"skillsuggest/internal/index"
)

// validateCmd loads the index and registry and prints diagnostics: element
// counts per type, dangling co_usage references, and gate names missing
// from the registry. Exit is nonzero only when the index itself cannot load.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Load the index and report structural diagnostics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func runValidate(cmd *cobra.Command) error {
	set, registry, err := index.Load(indexPath, registryPath)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	counts := make(map[index.ElementType]int)
	gated := 0
	for _, le := range set.Elements {
		counts[le.Type]++
		if le.Gated() {
			gated++
		}
	}
	fmt.Fprintf(out, "elements: %d (gated: %d)\n", set.Len(), gated)
	for _, t := range []index.ElementType{
		index.TypeSkill, index.TypeAgent, index.TypeCommand,
		index.TypeRule, index.TypeMCP, index.TypeLSP,
	} {
		if counts[t] > 0 {
			fmt.Fprintf(out, "  %-8s %d\n", t, counts[t])
		}
	}

	if registry.Synthesized {
		fmt.Fprintln(out, "registry: synthesized from index (file absent or invalid)")
	} else {
		fmt.Fprintf(out, "registry: %d domains\n", len(registry.Domains))
	}

	// Patterns that failed to compile and were dropped at load time.
	droppedTotal := 0
	for _, le := range set.Elements {
		droppedTotal += len(le.DroppedPatterns)
	}
	if droppedTotal > 0 {
		fmt.Fprintf(out, "dropped patterns: %d\n", droppedTotal)
		for _, le := range set.Elements {
			for _, p := range le.DroppedPatterns {
				fmt.Fprintf(out, "  %s -> %q\n", le.Name, p)
			}
		}
	}

	// Gate names every gated element uses but the registry does not know.
	missing := make(map[string]bool)
	for _, le := range set.Elements {
		for _, gateName := range le.GateNames {
			if _, ok := registry.Domains[gateName]; !ok {
				missing[gateName] = true
			}
		}
	}
	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(out, "gate names missing from registry: %v\n", names)
	}

	dangling := set.DanglingCoUsage()
	if len(dangling) > 0 {
		names := make([]string, 0, len(dangling))
		for name := range dangling {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(out, "dangling co_usage references: %d elements\n", len(names))
		for _, name := range names {
			fmt.Fprintf(out, "  %s -> %v\n", name, dangling[name])
		}
	}

	return nil
}
