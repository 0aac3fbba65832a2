package request

import (
	"fmt"
	"strconv"
	"strings"
)

const requestIDPrefix = "REQ"

func FormatRequestID(year, n int) string {
	return fmt.Sprintf("%s-%d-%03d", requestIDPrefix, year, n)
}

// ParseRequestID splits "REQ-<year>-<n>".
func ParseRequestID(id string) (year, n int, ok bool) {
	parts := strings.Split(strings.TrimSpace(id), "-")
	if len(parts) != 3 || parts[0] != requestIDPrefix {
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	n, err = strconv.Atoi(parts[2])
	if err != nil || n < 0 {
		return 0, 0, false
	}
	return year, n, true
}

// NextRequestID derives the next ID from the last stored one the way the
// spreadsheet-era service did: the trailing number plus one, stamped with
// year, or 001 when lastID is missing or malformed. Two callers holding the
// same lastID get the same answer; the repository uses a sequence instead.
func NextRequestID(lastID string, year int) string {
	lastID = strings.TrimSpace(lastID)
	if lastID == "" {
		return FormatRequestID(year, 1)
	}
	idx := strings.LastIndex(lastID, "-")
	n, err := strconv.Atoi(lastID[idx+1:])
	if err != nil {
		return FormatRequestID(year, 1)
	}
	return FormatRequestID(year, n+1)
}
