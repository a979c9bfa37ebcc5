package model

import "time"

// EnrichedProfile is best-effort external data for a person. Absence of a
// profile is a valid lookup outcome, not an error.
type EnrichedProfile struct {
	ProfileHandle    string            `json:"profile_handle"`
	Headline         string            `json:"headline"`
	CurrentCompany   string            `json:"current_company"`
	Location         string            `json:"location"`
	Summary          string            `json:"summary"`
	Skills           []string          `json:"skills"`
	ConnectionsCount int               `json:"connections_count"`
	OpenToWork       bool              `json:"open_to_work"`
	Experience       []ExperienceEntry `json:"experience"`
	Education        []EducationEntry  `json:"education"`
	Certifications   []string          `json:"certifications"`
	LastActiveAt     *time.Time        `json:"last_active_at"`
}

// LookupCriteria identifies the person to enrich. ProfileHandle, when
// present, selects the direct-handle backend.
type LookupCriteria struct {
	Name          string `json:"name"`
	Company       string `json:"company,omitempty"`
	Title         string `json:"title,omitempty"`
	ProfileHandle string `json:"profile_handle,omitempty"`
}
