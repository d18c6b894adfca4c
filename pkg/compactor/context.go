package compactor

import "strings"

const (
	DocumentLabel         = "[Resume text (latest revision)]"
	RoleTitleLabel        = "[Role title]"
	RoleDescriptionLabel  = "[Role description]"
	OrganizationLabel     = "[Organization info]"
	UserNoteLabel         = "[User note / special requests]"
	EmptyContextSection   = "[No resume optimization record yet]"
	DocumentTruncatedMark = "...(content truncated)"
	TruncatedMark         = "..."
)

type section struct {
	text    string
	primary bool
}

func newSection(label, body string, primary bool) section {
	return section{text: label + "\n" + body, primary: primary}
}

// sections lists the non-empty parts of rec in transmission order.
func sections(rec Record, l Limits) []section {
	var out []section
	if rec.DocumentText != "" {
		out = append(out, newSection(DocumentLabel, truncate(rec.DocumentText, l.DocumentMax, DocumentTruncatedMark), true))
	}
	if rec.RoleTitle != "" {
		out = append(out, newSection(RoleTitleLabel, rec.RoleTitle, true))
	}
	if rec.RoleDescription != "" {
		out = append(out, newSection(RoleDescriptionLabel, truncate(rec.RoleDescription, l.RoleDescriptionMax, TruncatedMark), true))
	}
	if rec.OrganizationInfo != "" {
		out = append(out, newSection(OrganizationLabel, truncate(rec.OrganizationInfo, l.OrganizationMax, TruncatedMark), false))
	}
	if rec.UserNote != "" {
		out = append(out, newSection(UserNoteLabel, rec.UserNote, true))
	}
	return out
}

// RenderContext renders rec into the structured context sent with every
// chat turn. The result never exceeds l.ContextBudget characters.
//
// When everything fits, sections keep their natural order. Otherwise the
// primary sections (resume, role title, role description, user note) go
// first and secondary sections follow only while each fits whole.
func RenderContext(rec Record, l Limits) string {
	l = l.withDefaults()

	secs := sections(rec, l)
	if len(secs) == 0 {
		return EmptyContextSection
	}

	texts := make([]string, len(secs))
	for i, s := range secs {
		texts[i] = s.text
	}
	joined := strings.Join(texts, "\n")
	if Len(joined) <= l.ContextBudget {
		return joined
	}

	var primary, secondary []string
	for _, s := range secs {
		if s.primary {
			primary = append(primary, s.text)
		} else {
			secondary = append(secondary, s.text)
		}
	}

	out := strings.Join(primary, "\n")
	remaining := l.ContextBudget - Len(out)
	for _, text := range secondary {
		need := Len(text)
		if out != "" {
			need++
		}
		if need > remaining {
			break
		}
		if out != "" {
			out += "\n"
		}
		out += text
		remaining -= need
	}

	// Title and user note are not capped individually, so the primary
	// sections alone can still overflow.
	return clamp(out, l.ContextBudget, TruncatedMark)
}
