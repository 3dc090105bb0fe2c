package importer

import (
	"strconv"
	"strings"
)

const (
	identifierPrefix = "GC-"
	// identifierFloor makes the first assigned identifier GC-8000.
	identifierFloor = 7999
)

// ParseIdentifier extracts the numeric suffix of a GC-<n> identifier.
func ParseIdentifier(id string) (int, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(id), identifierPrefix)
	if !ok || rest == "" {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// FormatIdentifier renders n as a GC-<n> identifier.
func FormatIdentifier(n int) string {
	return identifierPrefix + strconv.Itoa(n)
}

// MaxIdentifier returns the largest numeric suffix among well-formed
// identifiers, never less than the floor.
func MaxIdentifier(existing []string) int {
	max := identifierFloor
	for _, id := range existing {
		if n, ok := ParseIdentifier(id); ok && n > max {
			max = n
		}
	}
	return max
}

// NextIdentifier assigns the identifier for the candidate at batchIndex.
// Distinct batch indexes never collide with each other or with existing ids.
func NextIdentifier(existing []string, batchIndex int) string {
	return nextFrom(MaxIdentifier(existing), batchIndex)
}

func nextFrom(max, batchIndex int) string {
	return FormatIdentifier(max + 1 + batchIndex)
}
