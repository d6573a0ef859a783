package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Results"

// WriteWorkbook renders the report as a styled Excel workbook: a title
// block, the per-target summary with percent change and p-value rows, and
// the per-lane detail section with excluded rows struck through.
func WriteWorkbook(w io.Writer, report *Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return err
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	cur := &cursor{f: f}

	cur.row(styles.title, "Western Blot Analysis Report")
	cur.row(0, "Export Date: "+report.Generated.Format("2006-01-02 15:04"))
	if report.Experiment != "" {
		cur.row(0, "Experiment: "+report.Experiment)
	}
	cur.skip(1)

	cur.row(styles.section, "ANALYSIS SUMMARY")
	cur.skip(1)
	cur.row(styles.header, "Target Protein", "Group", "Detail", "Mean", "SEM", "N", "Excluded Indices")
	for _, target := range report.Targets {
		for _, g := range target.Groups {
			excluded := missing
			if len(g.Excluded) > 0 {
				excluded = ""
				for i, lane := range g.Excluded {
					if i > 0 {
						excluded += ", "
					}
					excluded += fmt.Sprint(lane + 1)
				}
			}
			if !g.HasStats || g.Stats.N == 0 {
				cur.row(styles.cell, target.Target, g.Group, g.Detail, "N/A", missing, "0", excluded)
				continue
			}
			cur.row(styles.cell, target.Target, g.Group, g.Detail,
				g.Stats.Mean, g.Stats.SEM, g.Stats.N, excluded)
		}
		if target.HasChange {
			cur.row(styles.note,
				fmt.Sprintf("%% Change (%s Ctrl vs Treat):", target.Target),
				fmt.Sprintf("%+.2f%%", target.Change))
		}
		if target.HasPValue {
			cur.row(styles.note,
				fmt.Sprintf("P-value (%s Ctrl vs Treat):", target.Target),
				target.PValue)
		}
		cur.skip(1)
	}

	cur.skip(1)
	cur.row(styles.section, "DETAILED DATA (ALL TARGETS)")
	cur.skip(1)
	headers := make([]any, len(report.Headers))
	for i, h := range report.Headers {
		headers[i] = h
	}
	cur.row(styles.header, headers...)
	for _, detail := range report.Rows {
		style := styles.cell
		if detail.Excluded {
			style = styles.excluded
		}
		fields := []any{detail.Group, detail.SampleID, detail.LoadingControl}
		for _, cell := range detail.Cells {
			fields = append(fields, cell)
		}
		cur.row(style, fields...)
	}

	if cur.err != nil {
		return cur.err
	}
	return f.Write(w)
}

type workbookStyles struct {
	title    int
	section  int
	header   int
	cell     int
	note     int
	excluded int
}

func newStyles(f *excelize.File) (workbookStyles, error) {
	var s workbookStyles
	var err error

	border := []excelize.Border{
		{Type: "left", Style: 1, Color: "CCCCCC"},
		{Type: "right", Style: 1, Color: "CCCCCC"},
		{Type: "top", Style: 1, Color: "CCCCCC"},
		{Type: "bottom", Style: 1, Color: "CCCCCC"},
	}

	if s.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return s, err
	}
	if s.section, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12, Underline: "single"},
	}); err != nil {
		return s, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"F2F2F2"}},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{Border: border}); err != nil {
		return s, err
	}
	if s.note, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Italic: true},
		Border: border,
	}); err != nil {
		return s, err
	}
	if s.excluded, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Strike: true, Color: "7F8C8D"},
		Border: border,
	}); err != nil {
		return s, err
	}
	return s, nil
}

// cursor writes consecutive rows, remembering the first error.
type cursor struct {
	f    *excelize.File
	line int
	err  error
}

func (c *cursor) skip(n int) { c.line += n }

func (c *cursor) row(style int, values ...any) {
	c.line++
	if c.err != nil {
		return
	}
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, c.line)
		if err != nil {
			c.err = err
			return
		}
		if err := c.f.SetCellValue(sheetName, cell, v); err != nil {
			c.err = err
			return
		}
		if style != 0 {
			if err := c.f.SetCellStyle(sheetName, cell, cell, style); err != nil {
				c.err = err
				return
			}
		}
	}
}
