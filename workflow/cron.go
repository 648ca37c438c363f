package workflow

import (
	"strings"
)

// ManualOnly is the schedule reported for workflows without a cron trigger.
const ManualOnly = "Manual only"

var cronPhrases = map[string]string{
	"0 * * * *":   "Hourly",
	"15 * * * *":  "Hourly at :15",
	"0 */2 * * *": "Every 2 hours",
	"0 */4 * * *": "Every 4 hours",
	"0 */6 * * *": "Every 6 hours",
	"0 0 * * *":   "Daily at midnight",
	"0 9 * * *":   "Daily at 9 AM",
	"0 0 * * 0":   "Weekly on Sunday",
	"0 0 1 * *":   "Monthly on 1st",
}

// humanizeCron converts common cron expressions to a readable phrase.
func humanizeCron(cron string) string {
	cron = strings.TrimSpace(cron)
	if cron == "" {
		return ManualOnly
	}
	if phrase, ok := cronPhrases[cron]; ok {
		return phrase
	}
	return "Cron: " + cron
}
