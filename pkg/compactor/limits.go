package compactor

import "unicode/utf8"

// Default budgets, in characters (runes).
const (
	DefaultHistoryBudget      = 3000
	DefaultContextBudget      = 6000
	DefaultDocumentMax        = 1800
	DefaultRoleDescriptionMax = 1000
	DefaultOrganizationMax    = 1200
)

// Limits bounds the outbound records. Zero fields fall back to the defaults.
type Limits struct {
	HistoryBudget      int
	ContextBudget      int
	DocumentMax        int
	RoleDescriptionMax int
	OrganizationMax    int
}

func DefaultLimits() Limits {
	return Limits{
		HistoryBudget:      DefaultHistoryBudget,
		ContextBudget:      DefaultContextBudget,
		DocumentMax:        DefaultDocumentMax,
		RoleDescriptionMax: DefaultRoleDescriptionMax,
		OrganizationMax:    DefaultOrganizationMax,
	}
}

func (l Limits) withDefaults() Limits {
	d := DefaultLimits()
	if l.HistoryBudget <= 0 {
		l.HistoryBudget = d.HistoryBudget
	}
	if l.ContextBudget <= 0 {
		l.ContextBudget = d.ContextBudget
	}
	if l.DocumentMax <= 0 {
		l.DocumentMax = d.DocumentMax
	}
	if l.RoleDescriptionMax <= 0 {
		l.RoleDescriptionMax = d.RoleDescriptionMax
	}
	if l.OrganizationMax <= 0 {
		l.OrganizationMax = d.OrganizationMax
	}
	return l
}

// Len counts characters the way every budget in this package does.
func Len(s string) int {
	return utf8.RuneCountInString(s)
}

// truncate cuts s to max runes and appends marker when anything was cut.
func truncate(s string, max int, marker string) string {
	if Len(s) <= max {
		return s
	}
	return string([]rune(s)[:max]) + marker
}

// clamp cuts s to at most max runes, marker included.
func clamp(s string, max int, marker string) string {
	if Len(s) <= max {
		return s
	}
	keep := max - Len(marker)
	if keep <= 0 {
		return string([]rune(s)[:max])
	}
	return string([]rune(s)[:keep]) + marker
}
