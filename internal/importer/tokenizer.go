package importer

import (
	"strings"
)

const utf8BOM = "\ufeff"

// Tokenize splits raw CSV text into rows of trimmed cells.
//
// Commas inside double quotes do not split a cell. Quote characters toggle the
// quoted state and are dropped from the output; an unterminated quote consumes
// the rest of the line. Blank lines are skipped.
func Tokenize(raw string) [][]string {
	raw = strings.TrimPrefix(raw, utf8BOM)
	lines := strings.Split(raw, "\n")

	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		rows = append(rows, splitLine(line))
	}
	return rows
}

func splitLine(line string) []string {
	var (
		cells    []string
		current  strings.Builder
		inQuotes bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == ',' && !inQuotes:
			cells = append(cells, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteRune(r)
		}
	}
	cells = append(cells, strings.TrimSpace(current.String()))
	return cells
}
