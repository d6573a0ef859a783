package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// WriteText renders the report as tab-separated text, the layout pasting
// cleanly into Excel or Prism.
func WriteText(w io.Writer, report *Report) error {
	cw := csv.NewWriter(w)
	cw.Comma = '\t'

	write := func(fields ...string) {
		cw.Write(fields)
	}

	write("ANALYSIS SUMMARY")
	if report.Experiment != "" {
		write("Experiment:", report.Experiment)
	}
	write("Export Date:", report.Generated.Format("2006-01-02 15:04"))
	write()

	write("Target", "Group", "Detail", "Mean", "SEM", "N")
	for _, target := range report.Targets {
		for _, g := range target.Groups {
			if !g.HasStats || g.Stats.N == 0 {
				write(target.Target, g.Group, g.Detail, "N/A", missing, "0")
				continue
			}
			write(target.Target, g.Group, g.Detail,
				fmt.Sprintf("%.4f", g.Stats.Mean),
				fmt.Sprintf("%.4f", g.Stats.SEM),
				strconv.Itoa(g.Stats.N))
		}
		if target.HasChange {
			write(fmt.Sprintf("%% Change (%s):", target.Target), fmt.Sprintf("%+.2f%%", target.Change))
		}
		if target.HasPValue {
			write(fmt.Sprintf("P-value (%s):", target.Target), fmt.Sprintf("%.4f", target.PValue))
		}
		write()
	}

	write("DETAILED DATA")
	write(report.Headers...)
	for _, row := range report.Rows {
		fields := append([]string{row.Group, row.SampleID, row.LoadingControl}, row.Cells...)
		write(fields...)
	}

	cw.Flush()
	return cw.Error()
}
