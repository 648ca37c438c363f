package metrics

import (
	"fmt"
	"strings"
)

const (
	trendUp     = "📈"
	trendDown   = "📉"
	trendSteady = "➡️"
	trendNone   = "-"
)

// Arrow compares a counter with its previous value.
func Arrow(current, previous int) string {
	switch {
	case current > previous:
		return trendUp
	case current < previous:
		return trendDown
	default:
		return trendSteady
	}
}

// Trends maps dashboard counters onto trend arrows. Previous may be
// nil when no history exists yet, every arrow is then a placeholder.
func Trends(current, previous *Snapshot) map[string]string {
	if previous == nil {
		return map[string]string{
			"projects": trendNone,
			"files":    trendNone,
			"changes":  trendNone,
			"commits":  trendNone,
		}
	}
	return map[string]string{
		"projects": Arrow(current.ProjectCount, previous.ProjectCount),
		"files":    Arrow(current.TotalFiles, previous.TotalFiles),
		"changes":  Arrow(current.RecentChanges, previous.RecentChanges),
		"commits":  Arrow(current.RecentCommits, previous.RecentCommits),
	}
}

// Summary renders the collection summary text.
func Summary(snapshot *Snapshot) string {
	var lines []string
	lines = append(lines, "**Metrics Collection Summary**", "")
	if snapshot.ProjectCount > 0 {
		lines = append(lines, fmt.Sprintf("- Projects monitored: %d", snapshot.ProjectCount))
	}
	if snapshot.RecentChanges > 0 {
		lines = append(lines, fmt.Sprintf("- Recent changes (24h): %d", snapshot.RecentChanges))
	}
	if snapshot.TotalFiles > 0 {
		lines = append(lines, fmt.Sprintf("- Total files: %d", snapshot.TotalFiles))
	}
	if snapshot.TotalWorkflows > 0 || snapshot.TotalScripts > 0 {
		lines = append(lines, "", "**Repository Statistics:**")
		if snapshot.TotalWorkflows > 0 {
			lines = append(lines, fmt.Sprintf("- Workflows: %d/%d active", snapshot.ActiveWorkflows, snapshot.TotalWorkflows))
		}
		if snapshot.TotalScripts > 0 {
			lines = append(lines, fmt.Sprintf("- Scripts: %d", snapshot.TotalScripts))
		}
	}
	return strings.Join(lines, "\n")
}
