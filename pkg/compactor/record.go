package compactor

import "time"

// Record is the context accumulated over a session: the latest resume text
// returned by an evaluation plus the role details the user submitted.
type Record struct {
	DocumentText     string    `json:"document_text"`
	RoleTitle        string    `json:"role_title"`
	RoleDescription  string    `json:"role_description"`
	OrganizationInfo string    `json:"organization_info"`
	UserNote         string    `json:"user_note"`
	LastUpdated      time.Time `json:"last_updated"`
	HasContent       bool      `json:"has_content"`
}

// Patch is a partial update. Nil fields leave the record untouched; a
// non-nil pointer to "" clears the field.
type Patch struct {
	DocumentText     *string
	RoleTitle        *string
	RoleDescription  *string
	OrganizationInfo *string
	UserNote         *string
}

// String returns a pointer to s, for building patches inline.
func String(s string) *string {
	return &s
}

// Merge returns a copy of rec with every field present in p overwritten.
// LastUpdated is stamped and HasContent set even for an empty patch.
func Merge(rec Record, p Patch, now time.Time) Record {
	if p.DocumentText != nil {
		rec.DocumentText = *p.DocumentText
	}
	if p.RoleTitle != nil {
		rec.RoleTitle = *p.RoleTitle
	}
	if p.RoleDescription != nil {
		rec.RoleDescription = *p.RoleDescription
	}
	if p.OrganizationInfo != nil {
		rec.OrganizationInfo = *p.OrganizationInfo
	}
	if p.UserNote != nil {
		rec.UserNote = *p.UserNote
	}
	rec.LastUpdated = now
	rec.HasContent = true
	return rec
}
