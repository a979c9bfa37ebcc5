package scoring

import (
	"sort"
	"strings"
	"time"

	"github.com/recruitdesk/candidate-intake/internal/model"
)

// Job-stability sub-signal weights. Fixed constants carried over from the
// original scoring profile.
const (
	weightRecentTenure  = 30
	weightLongestTenure = 20
	weightJobChanges    = 25
	weightGaps          = 15
	weightIndustry      = 10
)

const monthLayout = "2006-01"

// gapThresholdMonths: a pause longer than this between consecutive roles
// counts as an employment gap.
const gapThresholdMonths = 3

type tenure struct {
	start    time.Time
	end      time.Time
	months   float64
	industry string
}

// stabilityScore derives a 0-10 job-stability component from job-history
// tenure statistics: average tenure of the most recent two roles, longest
// single tenure, job changes within the last five years, employment gaps,
// and industry continuity.
func stabilityScore(history []model.ExperienceEntry, asOf time.Time) float64 {
	tenures := parseTenures(history, asOf)
	if len(tenures) == 0 {
		return 0
	}

	recent := recentTenureScore(tenures)
	longest := longestTenureScore(tenures)
	changes := jobChangeScore(tenures, asOf)
	gaps := gapScore(tenures)
	industry := industryContinuityScore(tenures)

	return (recent*weightRecentTenure +
		longest*weightLongestTenure +
		changes*weightJobChanges +
		gaps*weightGaps +
		industry*weightIndustry) / 100
}

func parseTenures(history []model.ExperienceEntry, asOf time.Time) []tenure {
	tenures := make([]tenure, 0, len(history))
	for _, entry := range history {
		start, err := time.Parse(monthLayout, entry.StartDate)
		if err != nil {
			continue
		}
		end := asOf
		if entry.EndDate != "" {
			parsed, err := time.Parse(monthLayout, entry.EndDate)
			if err != nil {
				continue
			}
			end = parsed
		}
		if end.Before(start) {
			continue
		}
		tenures = append(tenures, tenure{
			start:    start,
			end:      end,
			months:   end.Sub(start).Hours() / (24 * 30.44),
			industry: strings.ToLower(strings.TrimSpace(entry.Industry)),
		})
	}
	sort.Slice(tenures, func(i, j int) bool {
		return tenures[i].start.After(tenures[j].start)
	})
	return tenures
}

// recentTenureScore: 36 months average across the most recent two roles
// saturates the signal.
func recentTenureScore(tenures []tenure) float64 {
	n := len(tenures)
	if n > 2 {
		n = 2
	}
	total := 0.0
	for _, t := range tenures[:n] {
		total += t.months
	}
	avg := total / float64(n)
	return clamp(avg/36*10, 0, 10)
}

// longestTenureScore: a single five-year tenure saturates the signal.
func longestTenureScore(tenures []tenure) float64 {
	longest := 0.0
	for _, t := range tenures {
		if t.months > longest {
			longest = t.months
		}
	}
	return clamp(longest/60*10, 0, 10)
}

// jobChangeScore: at most one role ended in the last five years scores full;
// every additional change costs 2.5 points.
func jobChangeScore(tenures []tenure, asOf time.Time) float64 {
	cutoff := asOf.AddDate(-5, 0, 0)
	changes := 0
	for _, t := range tenures {
		if t.end.After(cutoff) && !t.end.Equal(asOf) {
			changes++
		}
	}
	if changes <= 1 {
		return 10
	}
	return clamp(10-float64(changes-1)*2.5, 0, 10)
}

// gapScore: no gap between consecutive roles scores full; every gap costs
// three points.
func gapScore(tenures []tenure) float64 {
	if len(tenures) < 2 {
		return 10
	}
	gaps := 0
	// tenures are sorted most recent first.
	for i := 0; i < len(tenures)-1; i++ {
		pause := tenures[i].start.Sub(tenures[i+1].end).Hours() / (24 * 30.44)
		if pause > gapThresholdMonths {
			gaps++
		}
	}
	return clamp(10-float64(gaps)*3, 0, 10)
}

// industryContinuityScore rewards staying in one field. Unknown industries
// read as neutral rather than penalizing sparse data.
func industryContinuityScore(tenures []tenure) float64 {
	industries := map[string]struct{}{}
	for _, t := range tenures {
		if t.industry != "" {
			industries[t.industry] = struct{}{}
		}
	}
	switch len(industries) {
	case 0:
		return 5
	case 1:
		return 10
	default:
		return clamp(10/float64(len(industries)), 0, 10)
	}
}
