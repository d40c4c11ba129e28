package tui

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/aalvaropc/dfkit/internal/domain"
)

func clampString(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))

	n := 0
	for _, r := range s {
		if n >= maxLen {
			break
		}
		b.WriteRune(r)
		n++
	}
	return b.String() + "…"
}

func sortedKeys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (m model) renderResult(r domain.PushResult) string {
	name := clampString(filepath.Base(r.Path), 40)
	style := m.theme.Outcome(r.Outcome)
	switch r.Outcome {
	case domain.PushCreated:
		return style.Render("+ "+name) + fmt.Sprintf("  %s (%dms)", r.RecordID, r.DurationMS)
	case domain.PushSkipped:
		return style.Render("= " + name + "  " + r.RecordID)
	default:
		return style.Render("x "+name) + "  " + clampString(r.Message, 60)
	}
}
