package app

import (
	"regexp"
	"strings"
)

// Span attributes cap the statement text: the leg batch loads expand
// IN clauses that would otherwise bloat every bet-list trace.
const maxTracedQueryLength = 512

var whitespaceRun = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses a multi-line SQL statement onto one
// line and truncates it for the db.statement span attribute.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flattened := whitespaceRun.ReplaceAllString(query, " ")
	if len(flattened) <= maxTracedQueryLength {
		return flattened
	}

	return flattened[:maxTracedQueryLength] + "..."
}
