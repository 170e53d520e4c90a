// Package query implements the read side of the day-file log store:
// filtering, capping, sorting and paginating one day's records, plus
// the metadata queries that feed filter-option lists.
//
// Every call re-reads the day file from disk. The engine keeps no
// cache and never locks the file, so it can run beside a live writer;
// a reader that misses the last few lines of a growing file simply
// returns a slightly stale result.
package query

import (
	"fmt"
	"sort"

	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/store"
)

// Default limits applied when a query does not set its own.
const (
	DefaultPageSize   = 50
	DefaultMaxResults = 1000
)

// Field names accepted by Distinct.
const (
	FieldPackage     = "package"
	FieldExecutionID = "executionId"
	FieldSessionID   = "sessionId"
	FieldReference   = "reference"
)

// ErrUnknownField is returned by Distinct for a field it cannot list.
var ErrUnknownField = fmt.Errorf("unknown distinct field")

// Engine answers queries over a directory of day files. It holds only
// configuration; all methods are safe for concurrent use.
type Engine struct {
	Dir             string
	Prefix          string
	DefaultPageSize int
	MaxResults      int
}

// NewEngine creates an Engine with the package defaults filled in for
// any zero limit.
func NewEngine(dir, prefix string, defaultPageSize, maxResults int) *Engine {
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &Engine{Dir: dir, Prefix: prefix, DefaultPageSize: defaultPageSize, MaxResults: maxResults}
}

// Params is one transient query: target date, optional filters and
// sort, and the requested page.
type Params struct {
	Date       string
	Filter     Filter
	Sort       Sort
	Page       int
	PageSize   int
	MaxResults int // 0 means the engine's configured cap
}

// Result is one page of matching records. Total is the match count
// after capping but before pagination, so TotalPages is always
// ceil(Total / PageSize).
type Result struct {
	Records    []model.Record `json:"records"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// Query runs the full pipeline for one day:
// parse, filter, cap, count, sort, paginate — in that order.
//
// Capping happens before the sort, so when more records match than the
// cap allows, the survivors are the first matches in file order rather
// than the extremes of the sorted order. Existing consumers depend on
// that ordering, so it stays even though it looks like an accident.
func (e *Engine) Query(p Params) (*Result, error) {
	records, err := store.ReadDay(e.Dir, e.Prefix, p.Date)
	if err != nil {
		return nil, err
	}

	matched := records[:0:0]
	for i := range records {
		if p.Filter.Matches(&records[i]) {
			matched = append(matched, records[i])
		}
	}

	limit := p.MaxResults
	if limit <= 0 {
		limit = e.MaxResults
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}

	total := len(matched)

	s := p.Sort
	if s.Key == "" {
		s = DefaultSort
	}
	s.apply(matched)

	page := p.Page
	if page < 1 {
		page = 1
	}
	pageSize := p.PageSize
	if pageSize < 1 {
		pageSize = e.DefaultPageSize
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return &Result{
		Records:    matched[start:end],
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Dates lists the dates with a day file, most recent first. It is
// answered from the directory listing, never from file contents.
func (e *Engine) Dates() ([]string, error) {
	return store.ListDates(e.Dir, e.Prefix)
}

// Distinct lists the distinct non-empty values of one field across a
// full day, ascending. No cap applies, so this reads the whole file.
func (e *Engine) Distinct(date, field string) ([]string, error) {
	var get func(*model.Record) string
	switch field {
	case FieldPackage:
		get = func(r *model.Record) string { return r.Package }
	case FieldExecutionID:
		get = func(r *model.Record) string { return r.ExecutionID }
	case FieldSessionID:
		get = func(r *model.Record) string { return r.SessionID }
	case FieldReference:
		get = func(r *model.Record) string { return r.Reference }
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}

	records, err := store.ReadDay(e.Dir, e.Prefix, date)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	values := make([]string, 0, 16)
	for i := range records {
		v := get(&records[i])
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		values = append(values, v)
	}

	sort.Strings(values)
	return values, nil
}

// Summary aggregates one full day: total record count plus counts per
// level and per package. Like Distinct it is un-capped.
type Summary struct {
	Date     string         `json:"date"`
	Total    int            `json:"total"`
	Levels   map[string]int `json:"levels"`
	Packages map[string]int `json:"packages"`
}

// Summarize computes the Summary for a date.
func (e *Engine) Summarize(date string) (*Summary, error) {
	records, err := store.ReadDay(e.Dir, e.Prefix, date)
	if err != nil {
		return nil, err
	}

	s := &Summary{
		Date:     date,
		Total:    len(records),
		Levels:   make(map[string]int),
		Packages: make(map[string]int),
	}
	for i := range records {
		s.Levels[string(records[i].Level)]++
		if records[i].Package != "" {
			s.Packages[records[i].Package]++
		}
	}
	return s, nil
}
