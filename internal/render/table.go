// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package render

import (
	"regexp"
	"strings"
)

// =============================================================================
// STAGE 3: TABLES
// =============================================================================

var (
	tableRowRegex       = regexp.MustCompile(`^\s*\|(.+)\|\s*$`)
	tableSeparatorRegex = regexp.MustCompile(`^\s*\|\s*:?-+:?\s*(\|\s*:?-+:?\s*)*\|\s*$`)
)

// Alignment classes.
const (
	alignLeft   = "text-left"
	alignRight  = "text-right"
	alignCenter = "text-center"
)

// tables replaces pipe tables with <table> markup. A table is a header row,
// an alignment row and at least one data row containing a pipe. The markup
// is emitted as a single line.
func tables(_ *state, s string) string {
	lines := strings.Split(s, "\n")
	var out []string

	for i := 0; i < len(lines); i++ {
		if i+2 >= len(lines) ||
			!tableRowRegex.MatchString(lines[i]) ||
			!tableSeparatorRegex.MatchString(lines[i+1]) ||
			!strings.Contains(lines[i+2], "|") {
			out = append(out, lines[i])
			continue
		}

		header := splitCells(lines[i])
		aligns := parseAlignments(lines[i+1])

		end := i + 2
		for end < len(lines) && strings.Contains(lines[end], "|") {
			end++
		}
		rows := make([][]string, 0, end-(i+2))
		for _, line := range lines[i+2 : end] {
			rows = append(rows, splitCells(line))
		}

		out = append(out, buildTable(header, aligns, rows))
		i = end - 1
	}
	return strings.Join(out, "\n")
}

// splitCells splits a row on pipes, dropping the outer pipes and trimming
// each cell.
func splitCells(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	cells := strings.Split(row, "|")
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func parseAlignments(separator string) []string {
	cells := splitCells(separator)
	aligns := make([]string, len(cells))
	for i, c := range cells {
		switch {
		case strings.HasPrefix(c, ":") && strings.HasSuffix(c, ":"):
			aligns[i] = alignCenter
		case strings.HasSuffix(c, ":"):
			aligns[i] = alignRight
		default:
			aligns[i] = alignLeft
		}
	}
	return aligns
}

func alignmentAt(aligns []string, i int) string {
	if i < len(aligns) {
		return aligns[i]
	}
	return alignLeft
}

// buildTable emits the table. Empty header cells are skipped; data cells
// are matched to columns by position, so short rows simply end early.
func buildTable(header, aligns []string, rows [][]string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="overflow-x-auto my-4"><table class="min-w-full border-collapse border border-slate-300"><thead><tr>`)
	for i, cell := range header {
		if cell == "" {
			continue
		}
		sb.WriteString(`<th class="border border-slate-300 px-4 py-2 bg-slate-100 `)
		sb.WriteString(alignmentAt(aligns, i))
		sb.WriteString(`">`)
		sb.WriteString(cell)
		sb.WriteString(`</th>`)
	}
	sb.WriteString(`</tr></thead><tbody>`)
	for _, row := range rows {
		sb.WriteString(`<tr>`)
		for i, cell := range row {
			sb.WriteString(`<td class="border border-slate-300 px-4 py-2 `)
			sb.WriteString(alignmentAt(aligns, i))
			sb.WriteString(`">`)
			sb.WriteString(cell)
			sb.WriteString(`</td>`)
		}
		sb.WriteString(`</tr>`)
	}
	sb.WriteString(`</tbody></table></div>`)
	return sb.String()
}
