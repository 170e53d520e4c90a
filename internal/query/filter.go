package query

import (
	"strings"

	"github.com/coffersTech/daylog/internal/model"
)

// Filter narrows one day's record set. Each dimension is optional;
// within a dimension the listed values are alternatives (OR), and all
// supplied dimensions must match at once (AND). An empty Filter passes
// every record.
type Filter struct {
	Levels       []string
	Packages     []string
	ExecutionIDs []string
	SessionIDs   []string
	References   []string
	Search       string
}

// Matches reports whether rec satisfies every supplied dimension.
// A record lacking an optional field never matches a filter on that
// field; absence is not a wildcard.
func (f Filter) Matches(rec *model.Record) bool {
	if len(f.Levels) > 0 && !contains(f.Levels, string(rec.Level)) {
		return false
	}
	if len(f.Packages) > 0 && !contains(f.Packages, rec.Package) {
		return false
	}
	if len(f.ExecutionIDs) > 0 && !contains(f.ExecutionIDs, rec.ExecutionID) {
		return false
	}
	if len(f.SessionIDs) > 0 && (rec.SessionID == "" || !contains(f.SessionIDs, rec.SessionID)) {
		return false
	}
	if len(f.References) > 0 && (rec.Reference == "" || !contains(f.References, rec.Reference)) {
		return false
	}
	if f.Search != "" && !matchesSearch(rec, f.Search) {
		return false
	}
	return true
}

// matchesSearch tests a case-insensitive substring against message,
// package, filename and, when present, sessionId and reference.
func matchesSearch(rec *model.Record, term string) bool {
	term = strings.ToLower(term)
	for _, field := range []string{rec.Message, rec.Package, rec.Filename, rec.SessionID, rec.Reference} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
