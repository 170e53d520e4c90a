package logger

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffersTech/daylog/internal/logctx"
	"github.com/coffersTech/daylog/internal/model"
	"github.com/coffersTech/daylog/internal/store"
)

func newTestEngine(t *testing.T, dir string, minLevel model.Level) (*Engine, *bytes.Buffer) {
	t.Helper()
	var console bytes.Buffer
	e := New(Options{
		Directory:     dir,
		Prefix:        "app",
		MinLevel:      minLevel,
		Console:       true,
		File:          true,
		ConsoleWriter: &console,
	})
	return e, &console
}

func readBack(t *testing.T, dir string) []model.Record {
	t.Helper()
	records, err := store.ReadDay(dir, "app", store.Today())
	require.NoError(t, err)
	return records
}

func TestExecutionIDFormat(t *testing.T) {
	e := New(Options{})
	assert.Regexp(t, regexp.MustCompile(`^\d{4}-\d{2}-\d{2}-\d{2}:\d{2}:\d{2}-\d{4}$`), e.ExecutionID())
}

func TestLoggersShareExecutionID(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, dir, model.LevelDebug)
	defer e.Close()

	e.Logger("auth").Info(context.Background(), "from auth", nil)
	e.Logger("db").Info(context.Background(), "from db", nil)
	require.NoError(t, e.Close())

	records := readBack(t, dir)
	require.Len(t, records, 2)
	assert.Equal(t, e.ExecutionID(), records[0].ExecutionID)
	assert.Equal(t, records[0].ExecutionID, records[1].ExecutionID)
	assert.Equal(t, "auth", records[0].Package)
	assert.Equal(t, "db", records[1].Package)
}

func TestRecordFields(t *testing.T) {
	dir := t.TempDir()
	e, console := newTestEngine(t, dir, model.LevelDebug)

	ctx := logctx.Nest(logctx.WithReference(logctx.WithSession(context.Background(), "sess_abc"), "user-456"))
	e.Logger("billing").Warn(ctx, "charge failed", map[string]any{"amount": 42})
	require.NoError(t, e.Close())

	records := readBack(t, dir)
	require.Len(t, records, 1)
	rec := records[0]

	assert.Equal(t, model.LevelWarn, rec.Level)
	assert.Equal(t, "billing", rec.Package)
	assert.Equal(t, "charge failed", rec.Message)
	assert.Equal(t, "logger_test.go", rec.Filename)
	assert.Greater(t, rec.Line, 0)
	assert.Equal(t, "sess_abc", rec.SessionID)
	assert.Equal(t, "user-456", rec.Reference)
	require.NotNil(t, rec.Depth)
	assert.Equal(t, 0, *rec.Depth)
	assert.JSONEq(t, `{"amount":42}`, string(rec.Data))
	assert.Equal(t, model.SourceServer, rec.Source)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, rec.Timestamp)

	assert.Contains(t, console.String(), "charge failed")
	assert.Contains(t, console.String(), "WARN")
	assert.Contains(t, console.String(), "session=sess_abc")
}

func TestLevelGate(t *testing.T) {
	dir := t.TempDir()
	e, console := newTestEngine(t, dir, model.LevelWarn)

	log := e.Logger("auth")
	log.Debug(context.Background(), "dropped", nil)
	log.Info(context.Background(), "also dropped", nil)
	log.Warn(context.Background(), "kept", nil)
	log.Error(context.Background(), "kept too", nil)
	require.NoError(t, e.Close())

	records := readBack(t, dir)
	require.Len(t, records, 2)
	assert.Equal(t, model.LevelWarn, records[0].Level)
	assert.Equal(t, model.LevelError, records[1].Level)
	assert.NotContains(t, console.String(), "dropped")
}

func TestNilContext(t *testing.T) {
	dir := t.TempDir()
	e, _ := newTestEngine(t, dir, model.LevelDebug)

	e.Logger("auth").Info(nil, "no context", nil) //nolint:staticcheck // nil ctx must be tolerated
	require.NoError(t, e.Close())

	records := readBack(t, dir)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].SessionID)
	assert.Nil(t, records[0].Depth)
}

func TestConsoleIndentsByDepth(t *testing.T) {
	dir := t.TempDir()
	e, console := newTestEngine(t, dir, model.LevelDebug)
	defer e.Close()

	ctx := logctx.Nest(logctx.Nest(context.Background()))
	e.Logger("auth").Info(ctx, "nested", nil)

	assert.Contains(t, console.String(), "  nested")
}

func TestEmitBypassesGate(t *testing.T) {
	dir := t.TempDir()
	e, console := newTestEngine(t, dir, model.LevelError)

	require.NoError(t, e.Emit(model.Record{
		Timestamp: "2025-12-18T10:00:00.000Z",
		Level:     model.LevelDebug,
		Package:   "browser",
		Message:   "client record",
		Source:    model.SourceClient,
	}))
	require.NoError(t, e.Close())

	records := readBack(t, dir)
	require.Len(t, records, 1)
	assert.Equal(t, model.SourceClient, records[0].Source)
	assert.Empty(t, console.String(), "Emit writes the file transport only")
}
