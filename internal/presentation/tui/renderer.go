package tui

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Jembe/jembe-sub000/pkg/component"
	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// NewRenderer returns a function that renders markdown using glamour.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return func(markdown string) (string, error) { return "", err }
	}
	return r.Render
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// RegistryMarkdown renders reg as a markdown table, root first, then by level and name.
func RegistryMarkdown(reg component.Registry) string {
	comps := make([]*component.Component, 0, len(reg))
	for _, c := range reg {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool {
		if comps[i].HierarchyLevel != comps[j].HierarchyLevel {
			return comps[i].HierarchyLevel < comps[j].HierarchyLevel
		}
		return comps[i].ExecName < comps[j].ExecName
	})

	var b strings.Builder
	b.WriteString("| Component | Level | URL | State | Actions | Children |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, c := range comps {
		url := c.URL
		if c.ChangesURL {
			url += " *"
		}
		fmt.Fprintf(&b, "| `%s` | %d | %s | %s | %s | %s |\n",
			c.ExecName,
			c.HierarchyLevel,
			cell(url),
			cell(stateJSON(c.State)),
			cell(strings.Join(c.ActionNames(), ", ")),
			cell(strings.Join(c.ChildNames(), ", ")),
		)
	}
	return b.String()
}

// RenderRegistry renders reg for a terminal when styled is set and as plain markdown otherwise.
func RenderRegistry(reg component.Registry, styled bool) (string, error) {
	md := RegistryMarkdown(reg)
	if !styled {
		return md, nil
	}
	return NewRenderer()(md)
}

func stateJSON(state map[string]any) string {
	if len(state) == 0 {
		return ""
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return "?"
	}
	return string(raw)
}

func cell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.ReplaceAll(s, "|", "\\|")
}
