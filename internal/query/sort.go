package query

import (
	"sort"

	"github.com/coffersTech/daylog/internal/model"
)

// SortKey identifies the field a result set is ordered by.
type SortKey string

const (
	SortTimestamp   SortKey = "timestamp"
	SortLevel       SortKey = "level"
	SortPackage     SortKey = "package"
	SortExecutionID SortKey = "executionId"
	SortSessionID   SortKey = "sessionId"
	SortReference   SortKey = "reference"
)

// ParseSortKey maps a request parameter to a SortKey. Unrecognized
// values fall back to timestamp rather than being rejected.
func ParseSortKey(s string) SortKey {
	switch SortKey(s) {
	case SortTimestamp, SortLevel, SortPackage, SortExecutionID, SortSessionID, SortReference:
		return SortKey(s)
	default:
		return SortTimestamp
	}
}

// Sort describes requested result ordering. The zero value means
// "unspecified" and resolves to timestamp descending.
type Sort struct {
	Key        SortKey
	Descending bool
}

// DefaultSort is applied when a query names no sort at all.
var DefaultSort = Sort{Key: SortTimestamp, Descending: true}

// apply orders records in place. The sort is stable: records comparing
// equal on the key keep their relative pre-sort order in both
// directions. ISO-8601 timestamps order correctly as plain strings;
// level compares by severity rank, not alphabetically; absent session
// ids and references compare as the empty string.
func (s Sort) apply(records []model.Record) {
	key := s.Key
	if key == "" {
		key = SortTimestamp
	}

	less := func(a, b *model.Record) bool {
		switch key {
		case SortLevel:
			return a.Level.Rank() < b.Level.Rank()
		case SortPackage:
			return a.Package < b.Package
		case SortExecutionID:
			return a.ExecutionID < b.ExecutionID
		case SortSessionID:
			return a.SessionID < b.SessionID
		case SortReference:
			return a.Reference < b.Reference
		default:
			return a.Timestamp < b.Timestamp
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		if s.Descending {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}
