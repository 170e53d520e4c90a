package model

import "encoding/json"

// Level is the severity of a log record. Levels are totally ordered:
// error is the most severe, debug the least.
type Level string

const (
	LevelError Level = "error"
	LevelWarn  Level = "warn"
	LevelInfo  Level = "info"
	LevelDebug Level = "debug"
)

// Rank returns the severity rank of a level (error=0 ... debug=3).
// Unknown levels rank after debug so they sort last in ascending order.
func (l Level) Rank() int {
	switch l {
	case LevelError:
		return 0
	case LevelWarn:
		return 1
	case LevelInfo:
		return 2
	case LevelDebug:
		return 3
	default:
		return 4
	}
}

// Valid reports whether l is one of the four known levels.
func (l Level) Valid() bool {
	return l.Rank() < 4
}

// ParseLevel normalizes a level string. Unrecognized values fall back
// to info rather than failing.
func ParseLevel(s string) Level {
	switch Level(s) {
	case LevelError, LevelWarn, LevelInfo, LevelDebug:
		return Level(s)
	default:
		return LevelInfo
	}
}

// Levels lists the known levels in severity order.
func Levels() []Level {
	return []Level{LevelError, LevelWarn, LevelInfo, LevelDebug}
}

// Record is one structured log entry as stored in a day file, one JSON
// object per line. Records are immutable once written; readers only
// ever build derived slices from them.
type Record struct {
	Timestamp   string          `json:"timestamp"`
	Level       Level           `json:"level"`
	Package     string          `json:"package"`
	Message     string          `json:"message"`
	Filename    string          `json:"filename"`
	Line        int             `json:"line"`
	ExecutionID string          `json:"executionId"`
	SessionID   string          `json:"sessionId,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Depth       *int            `json:"depth,omitempty"`
	Data        json.RawMessage `json:"data,omitempty"`
	Source      string          `json:"source,omitempty"`
}

// Provenance values for Record.Source.
const (
	SourceServer = "server"
	SourceClient = "client"
)
