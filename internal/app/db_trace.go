package app

import (
	"regexp"
	"strings"
)

// Match and standing upserts list every column twice (insert and
// ON CONFLICT ... DO UPDATE), so the limit leaves room for the whole clause.
const maxTracedQueryLength = 2048

var queryWhitespaceRegex = regexp.MustCompile(`\s+`)

func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	normalized := queryWhitespaceRegex.ReplaceAllString(query, " ")
	if len(normalized) <= maxTracedQueryLength {
		return normalized
	}
	return normalized[:maxTracedQueryLength] + "..."
}
