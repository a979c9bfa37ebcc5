package util

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

// headerSynonyms maps accepted column names (case-insensitive) onto the
// canonical submission fields.
var headerSynonyms = map[string]string{
	"name":           "name",
	"full_name":      "name",
	"fullname":       "name",
	"candidate_name": "name",
	"email":          "email",
	"e-mail":         "email",
	"email_address":  "email",
	"company":        "company",
	"employer":       "company",
	"organization":   "company",
	"title":          "title",
	"job_title":      "title",
	"position":       "title",
	"role":           "title",
	"location":       "location",
	"city":           "location",
	"profile":        "profile_handle",
	"profile_url":    "profile_handle",
	"profile_handle": "profile_handle",
	"linkedin":       "profile_handle",
	"linkedin_url":   "profile_handle",
	"skills":         "skills",
	"summary":        "summary",
}

// ParseSubmissions reads tabular batch input into an ordered submission
// list. The header row must contain a name column (under any synonym);
// individual rows with an empty name are kept and fail per-item validation
// downstream rather than aborting the parse.
func ParseSubmissions(r io.Reader) ([]model.CandidateSubmission, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}

	columns := make(map[int]string, len(header))
	hasName := false
	for i, raw := range header {
		key := strings.ToLower(strings.TrimSpace(raw))
		if field, ok := headerSynonyms[key]; ok {
			columns[i] = field
			if field == "name" {
				hasName = true
			}
		}
	}
	if !hasName {
		return nil, fmt.Errorf("input has no name column (accepted: name, full_name, candidate_name)")
	}

	var submissions []model.CandidateSubmission
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(submissions)+2, err)
		}

		var sub model.CandidateSubmission
		for i, value := range row {
			field, ok := columns[i]
			if !ok {
				continue
			}
			value = strings.TrimSpace(value)
			switch field {
			case "name":
				sub.Name = value
			case "email":
				sub.Email = value
			case "company":
				sub.Company = value
			case "title":
				sub.Title = value
			case "location":
				sub.Location = value
			case "profile_handle":
				sub.ProfileHandle = value
			case "summary":
				sub.Summary = value
			case "skills":
				sub.Skills = splitList(value)
			}
		}
		submissions = append(submissions, sub)
	}

	return submissions, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	sep := ";"
	if !strings.Contains(value, ";") {
		sep = ","
	}
	parts := strings.Split(value, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
