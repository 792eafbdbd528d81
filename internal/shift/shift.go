// Package shift maps timestamps to business days and aggregates tagged
// ledger events into per-shift counts. A business day starts at a
// configurable cutoff hour rather than midnight, so events after
// closing time but before the cutoff count toward the previous day.
package shift

import (
	"sort"
	"time"

	"github.com/tapstock/tapstock/internal/model"
)

// DefaultCutoffHour is the default business-day boundary.
const DefaultCutoffHour = 5

// BusinessDay returns the business day a timestamp belongs to, as a
// date truncated to midnight in the timestamp's location. A timestamp
// whose local hour is before the cutoff belongs to the previous
// calendar date.
func BusinessDay(ts time.Time, cutoffHour int) time.Time {
	day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, ts.Location())
	if ts.Hour() < cutoffHour {
		day = day.AddDate(0, 0, -1)
	}
	return day
}

// Report is a day-by-label matrix of event counts. Columns are the
// configured labels followed by any extra labels found in the data;
// unconfigured labels are appended, never dropped.
type Report struct {
	Labels []string `json:"labels"`
	Days   []Day    `json:"days"`
}

// Day is one business day's counts, aligned with Report.Labels.
type Day struct {
	Date   string `json:"date"`
	Counts []int  `json:"counts"`
}

// BuildReport counts label-tagged entries per (business day, label).
// Entries without a label are skipped; they carry no shift reading.
// Days are sorted ascending; extra labels keep first-encounter order so
// the column set is deterministic for a given entry ordering.
func BuildReport(entries []model.LedgerEntry, configured []string, cutoffHour int) Report {
	labels := make([]string, len(configured))
	copy(labels, configured)

	known := make(map[string]bool, len(labels))
	for _, l := range labels {
		known[l] = true
	}

	counts := make(map[time.Time]map[string]int)
	for _, entry := range entries {
		label := entry.Payload.Level
		if label == "" {
			continue
		}
		if !known[label] {
			known[label] = true
			labels = append(labels, label)
		}

		day := BusinessDay(entry.CreatedAt, cutoffHour)
		if counts[day] == nil {
			counts[day] = make(map[string]int)
		}
		counts[day][label]++
	}

	days := make([]time.Time, 0, len(counts))
	for day := range counts {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	report := Report{Labels: labels}
	for _, day := range days {
		row := Day{Date: day.Format("2006-01-02"), Counts: make([]int, len(labels))}
		for i, label := range labels {
			row.Counts[i] = counts[day][label]
		}
		report.Days = append(report.Days, row)
	}
	return report
}
