// Package export renders analysis results as tab-separated text and as a
// styled Excel workbook. Both renderings share one report model so they
// cannot drift apart.
package export

import (
	"fmt"
	"sort"
	"time"

	"blotquant/internal/analysis"
)

// Source supplies the data a report is built from. *session.Session
// implements it.
type Source interface {
	History() []analysis.Record
	Exclusions(group string) []int
}

// GroupSummary is one group's normalized statistics for a target.
type GroupSummary struct {
	Group    string
	Detail   string
	Stats    analysis.GroupStats
	HasStats bool
	Excluded []int // 0-based lane indices
}

// TargetSummary aggregates one target protein across its groups.
type TargetSummary struct {
	Target    string
	Groups    []GroupSummary
	Change    float64
	HasChange bool
	PValue    float64
	HasPValue bool
}

// DetailRow is one sample row of the per-lane section. Loading control,
// raw and ratio cells are pre-formatted; "-" marks a missing value.
type DetailRow struct {
	Group          string
	SampleID       string
	Excluded       bool
	LoadingControl string
	Cells          []string // raw, ratio pairs in target order
}

// Report is the full analysis report.
type Report struct {
	Experiment string
	Generated  time.Time
	Targets    []TargetSummary
	Headers    []string // detail section headers
	Rows       []DetailRow
}

const missing = "-"

// Build assembles the report from the measurement history and the
// exclusion registry.
func Build(src Source, experiment string) *Report {
	records := src.History()

	exclusions := analysis.NewExclusionSet()
	for _, group := range recordGroups(records) {
		for _, lane := range src.Exclusions(group) {
			exclusions.Toggle(group, lane)
		}
	}

	report := &Report{
		Experiment: experiment,
		Generated:  time.Now(),
	}

	names := targetNames(records)
	for _, name := range names {
		report.Targets = append(report.Targets, buildTargetSummary(records, exclusions, src, name))
	}

	report.Headers = detailHeaders(names)
	report.Rows = detailRows(records, exclusions, names)
	return report
}

func buildTargetSummary(records []analysis.Record, exclusions *analysis.ExclusionSet, src Source, name string) TargetSummary {
	summary := TargetSummary{Target: name}
	stats := analysis.GroupStatistics(records, exclusions, name)

	for _, group := range targetGroups(records, name) {
		gs := GroupSummary{
			Group:    group,
			Detail:   targetDetail(records, name, group),
			Excluded: src.Exclusions(group),
		}
		gs.Stats, gs.HasStats = stats[group]
		summary.Groups = append(summary.Groups, gs)
	}

	summary.Change, summary.HasChange = analysis.PercentChange(records, exclusions, name)
	summary.PValue, summary.HasPValue = analysis.Significance(records, exclusions, name)
	return summary
}

func detailHeaders(names []string) []string {
	headers := []string{"Group", "Sample ID", "Loading Control"}
	for _, name := range names {
		headers = append(headers, name+" (Raw)", name+" (Ratio)")
	}
	return headers
}

func detailRows(records []analysis.Record, exclusions *analysis.ExclusionSet, names []string) []DetailRow {
	var rows []DetailRow

	for _, group := range recordGroups(records) {
		control, hasControl := lastOfKind(records, analysis.LoadingControl, group, "")
		lanes := groupLaneCount(records, group)

		for i := 0; i < lanes; i++ {
			row := DetailRow{
				Group:          group,
				SampleID:       sampleID(records, group, i),
				Excluded:       exclusions.Excluded(group, i),
				LoadingControl: missing,
			}
			if hasControl {
				row.LoadingControl = formatIntensity(control.Intensities, i)
			}
			if row.Excluded {
				row.SampleID += " [EXCLUDED]"
			}

			for _, name := range names {
				raw, ratio := missing, missing
				if target, ok := lastOfKind(records, analysis.Target, group, name); ok {
					raw = formatIntensity(target.Intensities, i)
					if matched, ok := analysis.MatchControl(records, target); ok {
						ratio = formatRatio(target.Intensities, matched.Intensities, i)
					}
				}
				row.Cells = append(row.Cells, raw, ratio)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// sampleID labels a lane with its group detail when one was chosen, and
// with the group name otherwise.
func sampleID(records []analysis.Record, group string, lane int) string {
	detail := ""
	if target, ok := lastOfKind(records, analysis.Target, group, ""); ok {
		detail = target.Detail
	} else if control, ok := lastOfKind(records, analysis.LoadingControl, group, ""); ok {
		detail = control.Detail
	}
	if detail == "" || detail == analysis.DetailNone || detail == analysis.DetailGeneric {
		return fmt.Sprintf("%s %d", group, lane+1)
	}
	return fmt.Sprintf("%s %d", detail, lane+1)
}

func formatIntensity(values []float64, lane int) string {
	if lane >= len(values) || values[lane] <= 0 {
		return missing
	}
	return fmt.Sprintf("%.2f", values[lane])
}

func formatRatio(target, control []float64, lane int) string {
	if lane >= len(target) || lane >= len(control) {
		return missing
	}
	if target[lane] <= 0 || control[lane] <= 0 {
		return missing
	}
	return fmt.Sprintf("%.4f", target[lane]/control[lane])
}

// lastOfKind finds the most recent record of a kind within a group,
// optionally restricted to one target name.
func lastOfKind(records []analysis.Record, kind analysis.Kind, group, name string) (analysis.Record, bool) {
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		if r.Kind != kind || r.Group != group {
			continue
		}
		if name != "" && r.Name != name {
			continue
		}
		return r, true
	}
	return analysis.Record{}, false
}

func groupLaneCount(records []analysis.Record, group string) int {
	max := 0
	for _, r := range records {
		if r.Group == group && len(r.Intensities) > max {
			max = len(r.Intensities)
		}
	}
	return max
}

func recordGroups(records []analysis.Record) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, r := range records {
		if !seen[r.Group] {
			seen[r.Group] = true
			groups = append(groups, r.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

func targetGroups(records []analysis.Record, name string) []string {
	seen := make(map[string]bool)
	var groups []string
	for _, r := range records {
		if r.Kind == analysis.Target && r.Name == name && !seen[r.Group] {
			seen[r.Group] = true
			groups = append(groups, r.Group)
		}
	}
	sort.Strings(groups)
	return groups
}

func targetDetail(records []analysis.Record, name, group string) string {
	if target, ok := lastOfKind(records, analysis.Target, group, name); ok {
		return target.Detail
	}
	return ""
}

func targetNames(records []analysis.Record) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range records {
		if r.Kind == analysis.Target && !seen[r.Name] {
			seen[r.Name] = true
			names = append(names, r.Name)
		}
	}
	return names
}
