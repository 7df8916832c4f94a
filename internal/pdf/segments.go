package pdf

import (
	"sort"
	"strings"
)

// Grouping tolerances, in text-space points. Runs whose baselines sit within
// rowTolerance belong to one visual line; consecutive lines belong to one
// segment while the baseline gap stays under segmentGapFactor times the line's
// font size.
const (
	rowTolerance     = 3.0
	segmentGapFactor = 1.8
	minSegmentGap    = 9.0
	wordGapFactor    = 0.3
)

type textRow struct {
	runs     []textRun
	baseline float64
	fontSize float64
}

// groupRunsIntoSegments clusters positioned text runs into layout regions.
// Runs are first merged into visual lines by baseline, then consecutive lines
// into segments wherever the vertical rhythm stays tight. Each segment carries
// the bounding box of everything it contains.
func groupRunsIntoSegments(runs []textRun) []TextSegment {
	if len(runs) == 0 {
		return nil
	}

	rows := groupRunsIntoRows(runs)

	var segments []TextSegment
	var current []textRow
	for i, row := range rows {
		if i > 0 {
			prev := current[len(current)-1]
			gap := prev.baseline - row.baseline
			limit := segmentGapFactor * prev.fontSize
			if limit < minSegmentGap {
				limit = minSegmentGap
			}
			if gap > limit {
				segments = append(segments, buildSegment(current))
				current = nil
			}
		}
		current = append(current, row)
	}
	if len(current) > 0 {
		segments = append(segments, buildSegment(current))
	}

	return segments
}

// groupRunsIntoRows merges runs that share a baseline, top of page first.
func groupRunsIntoRows(runs []textRun) []textRow {
	sorted := make([]textRun, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].y != sorted[j].y {
			return sorted[i].y > sorted[j].y
		}
		return sorted[i].x < sorted[j].x
	})

	var rows []textRow
	for _, run := range sorted {
		if n := len(rows); n > 0 && rows[n-1].baseline-run.y <= rowTolerance {
			row := &rows[n-1]
			row.runs = append(row.runs, run)
			if run.fontSize > row.fontSize {
				row.fontSize = run.fontSize
			}
			continue
		}
		rows = append(rows, textRow{
			runs:     []textRun{run},
			baseline: run.y,
			fontSize: run.fontSize,
		})
	}

	for i := range rows {
		sort.SliceStable(rows[i].runs, func(a, b int) bool {
			return rows[i].runs[a].x < rows[i].runs[b].x
		})
	}

	return rows
}

// buildSegment renders a group of rows as one text segment with its box.
func buildSegment(rows []textRow) TextSegment {
	var lines []string
	box := Box{}
	first := true

	for _, row := range rows {
		var sb strings.Builder
		var penX float64
		for i, run := range row.runs {
			if i > 0 {
				gap := run.x - penX
				if gap > wordGapFactor*run.fontSize && !strings.HasSuffix(sb.String(), " ") {
					sb.WriteByte(' ')
				}
			}
			sb.WriteString(run.text)
			penX = run.x + run.width

			height := run.fontSize
			if height <= 0 {
				height = defaultFontSize
			}
			runBox := Box{
				Left:   run.x,
				Bottom: run.y,
				Right:  run.x + run.width,
				Top:    run.y + height*0.8,
			}
			if first {
				box = runBox
				first = false
			} else {
				box = expandBox(box, runBox)
			}
		}
		if line := strings.TrimSpace(sb.String()); line != "" {
			lines = append(lines, line)
		}
	}

	return TextSegment{
		Box:  box,
		Text: strings.Join(lines, "\n"),
	}
}

func expandBox(a, b Box) Box {
	if b.Left < a.Left {
		a.Left = b.Left
	}
	if b.Bottom < a.Bottom {
		a.Bottom = b.Bottom
	}
	if b.Right > a.Right {
		a.Right = b.Right
	}
	if b.Top > a.Top {
		a.Top = b.Top
	}
	return a
}
