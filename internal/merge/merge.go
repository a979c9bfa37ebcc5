package merge

import (
	"reflect"
	"time"

	"github.com/google/uuid"

	"github.com/recruitdesk/candidate-intake/internal/identity"
	"github.com/recruitdesk/candidate-intake/internal/model"
)

// Input carries up to three sources for the same logical person plus the
// context the special-case rules depend on.
type Input struct {
	TenantID   uuid.UUID
	Existing   *model.StoredCandidate
	Submission model.CandidateSubmission
	Enriched   *model.EnrichedProfile

	// MatchedBy drives the email-demotion rule.
	MatchedBy model.MatchedBy
	// EnrichmentAttempted distinguishes "lookup returned nothing" from
	// "lookup never happened" for the enrichmentStatus transition.
	EnrichmentAttempted bool
	Now                 time.Time
}

// Merge produces one canonical record from the available sources. Field
// priority is enriched > submission > existing, applied independently per
// field; a lower-priority value is used only when every higher-priority
// source leaves the field empty. List fields from the enriched profile
// replace stored lists wholesale, never element-wise.
func Merge(in Input) (*model.StoredCandidate, []model.FieldChange) {
	base := model.StoredCandidate{TenantID: in.TenantID, EnrichmentStatus: model.EnrichmentPending}
	if in.Existing != nil {
		base = *in.Existing
	}
	out := base
	log := &changeLog{}

	sub := in.Submission
	var enr model.EnrichedProfile
	if in.Enriched != nil {
		enr = *in.Enriched
	}

	out.Name = pickString("", sub.Name, base.Name)
	out.Company = pickString(enr.CurrentCompany, sub.Company, base.Company)
	out.Title = pickString(enr.Headline, sub.Title, base.Title)
	out.Location = pickString(enr.Location, sub.Location, base.Location)
	out.Summary = pickString(enr.Summary, sub.Summary, base.Summary)
	out.ProfileHandle = identity.NormalizeHandle(pickString(enr.ProfileHandle, sub.ProfileHandle, base.ProfileHandle))

	out.Email, out.AlternateEmail = mergeEmail(in, base)

	out.Skills = pickStrings(enr.Skills, sub.Skills, base.Skills)
	out.Experience = pickExperience(enr.Experience, sub.Experience, base.Experience)
	out.Education = pickEducation(enr.Education, sub.Education, base.Education)
	out.Certifications = pickStrings(enr.Certifications, sub.Certifications, base.Certifications)

	if in.Enriched != nil {
		out.OpenToWork = enr.OpenToWork
		if enr.ConnectionsCount > 0 {
			out.ConnectionsCount = enr.ConnectionsCount
		}
		if enr.LastActiveAt != nil {
			out.LastActiveAt = enr.LastActiveAt
		}
		out.EnrichmentStatus = model.EnrichmentCompleted
		now := in.Now
		out.LastEnrichedAt = &now
	} else if in.EnrichmentAttempted {
		out.EnrichmentStatus = model.EnrichmentFailed
	}

	log.record("name", base.Name, out.Name)
	log.record("email", base.Email, out.Email)
	log.record("alternate_email", base.AlternateEmail, out.AlternateEmail)
	log.record("company", base.Company, out.Company)
	log.record("title", base.Title, out.Title)
	log.record("location", base.Location, out.Location)
	log.record("summary", base.Summary, out.Summary)
	log.record("profile_handle", base.ProfileHandle, out.ProfileHandle)
	log.record("skills", base.Skills, out.Skills)
	log.record("experience", base.Experience, out.Experience)
	log.record("education", base.Education, out.Education)
	log.record("certifications", base.Certifications, out.Certifications)
	log.record("open_to_work", base.OpenToWork, out.OpenToWork)
	log.record("connections_count", base.ConnectionsCount, out.ConnectionsCount)
	log.record("last_active_at", base.LastActiveAt, out.LastActiveAt)
	log.record("enrichment_status", base.EnrichmentStatus, out.EnrichmentStatus)
	log.record("last_enriched_at", base.LastEnrichedAt, out.LastEnrichedAt)

	return &out, log.changes
}

// mergeEmail applies the demotion rule: a match made via profile handle with
// a differing submitted email keeps the old email as alternateEmail instead
// of discarding it.
func mergeEmail(in Input, base model.StoredCandidate) (email, alternate string) {
	subEmail := identity.NormalizeEmail(in.Submission.Email)
	email = pickString("", subEmail, base.Email)
	alternate = base.AlternateEmail

	if in.Existing != nil && in.MatchedBy == model.MatchedByProfile &&
		subEmail != "" && base.Email != "" && subEmail != base.Email {
		alternate = base.Email
	}
	return email, alternate
}

func pickString(enriched, submitted, existing string) string {
	if enriched != "" {
		return enriched
	}
	if submitted != "" {
		return submitted
	}
	return existing
}

func pickStrings(enriched, submitted, existing []string) []string {
	if len(enriched) > 0 {
		return enriched
	}
	if len(submitted) > 0 {
		return submitted
	}
	return existing
}

func pickExperience(enriched, submitted, existing []model.ExperienceEntry) []model.ExperienceEntry {
	if len(enriched) > 0 {
		return enriched
	}
	if len(submitted) > 0 {
		return submitted
	}
	return existing
}

func pickEducation(enriched, submitted, existing []model.EducationEntry) []model.EducationEntry {
	if len(enriched) > 0 {
		return enriched
	}
	if len(submitted) > 0 {
		return submitted
	}
	return existing
}

type changeLog struct {
	changes []model.FieldChange
}

func (c *changeLog) record(field string, oldValue, newValue any) {
	if reflect.DeepEqual(oldValue, newValue) {
		return
	}
	c.changes = append(c.changes, model.FieldChange{Field: field, OldValue: oldValue, NewValue: newValue})
}
