package compactor

import "strings"

const (
	UserLabel      = "User"
	AssistantLabel = "Assistant"
)

// HistoryEntry is one chat line as seen by the compactor.
type HistoryEntry struct {
	Content string
	IsUser  bool
}

func formatLine(e HistoryEntry) string {
	role := AssistantLabel
	if e.IsUser {
		role = UserLabel
	}
	return role + ": " + e.Content + "\n"
}

// RenderHistory renders entries (oldest first) into a transcript of at most
// budget characters. The newest lines win: walking backwards, each line is
// kept while it fits, and the walk stops at the first line that does not.
// Lines are never cut.
func RenderHistory(entries []HistoryEntry, budget int) string {
	if budget <= 0 {
		budget = DefaultHistoryBudget
	}

	kept := make([]string, 0, len(entries))
	used := 0
	for i := len(entries) - 1; i >= 0; i-- {
		line := formatLine(entries[i])
		n := Len(line)
		if used+n > budget {
			break
		}
		kept = append(kept, line)
		used += n
	}

	var b strings.Builder
	for i := len(kept) - 1; i >= 0; i-- {
		b.WriteString(kept[i])
	}
	return b.String()
}
