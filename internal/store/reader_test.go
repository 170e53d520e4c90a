package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coffersTech/daylog/internal/model"
)

const testDate = "2025-12-18"

func writeDay(t *testing.T, dir string, lines ...string) {
	t.Helper()
	path := DayPath(dir, "app", testDate)
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644))
}

func TestReadDay_MissingFile(t *testing.T) {
	records, err := ReadDay(t.TempDir(), "app", testDate)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestReadDay_FileOrder(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir,
		`{"timestamp":"2025-12-18T10:00:00.000Z","level":"info","package":"auth","message":"first"}`,
		`{"timestamp":"2025-12-18T09:00:00.000Z","level":"warn","package":"db","message":"second"}`,
	)

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "first", records[0].Message)
	assert.Equal(t, "second", records[1].Message)
	assert.Equal(t, model.LevelWarn, records[1].Level)
	assert.Equal(t, "db", records[1].Package)
}

func TestReadDay_DropsMalformedAndBlankLines(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir,
		"not json",
		`{"timestamp":"2025-12-18T10:00:00.000Z","level":"info","package":"auth","message":"kept"}`,
		"",
		"   ",
		`{"truncated":`,
		"5",       // valid JSON, not an object
		`[1,2,3]`, // likewise
		`{"timestamp":"2025-12-18T10:00:01.000Z","level":"debug","package":"auth","message":"also kept"}`,
	)

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "kept", records[0].Message)
	assert.Equal(t, "also kept", records[1].Message)
}

func TestDecodeLine_OptionalFields(t *testing.T) {
	rec, ok := DecodeLine([]byte(`{"timestamp":"2025-12-18T10:30:45.123Z","level":"info","package":"auth","message":"User logged in","filename":"auth.ts","line":42,"executionId":"2025-12-18-10:30:45-1234","sessionId":"sess_abc","reference":"user-456","depth":0,"data":{"userId":456}}`))
	require.True(t, ok)

	assert.Equal(t, "2025-12-18T10:30:45.123Z", rec.Timestamp)
	assert.Equal(t, model.LevelInfo, rec.Level)
	assert.Equal(t, "auth.ts", rec.Filename)
	assert.Equal(t, 42, rec.Line)
	assert.Equal(t, "2025-12-18-10:30:45-1234", rec.ExecutionID)
	assert.Equal(t, "sess_abc", rec.SessionID)
	assert.Equal(t, "user-456", rec.Reference)
	require.NotNil(t, rec.Depth)
	assert.Equal(t, 0, *rec.Depth)
	assert.JSONEq(t, `{"userId":456}`, string(rec.Data))
}

func TestDecodeLine_AbsentOptionalFields(t *testing.T) {
	rec, ok := DecodeLine([]byte(`{"timestamp":"2025-12-18T10:30:45.123Z","level":"error","package":"db","message":"boom","filename":"db.ts","line":7,"executionId":"x"}`))
	require.True(t, ok)

	assert.Empty(t, rec.SessionID)
	assert.Empty(t, rec.Reference)
	assert.Nil(t, rec.Depth)
	assert.Nil(t, rec.Data)
	assert.Empty(t, rec.Source)
}

func TestDecodeLine_RejectsNonObjects(t *testing.T) {
	for _, line := range []string{"garbage", "5", `"str"`, "[1]", "null", "true"} {
		_, ok := DecodeLine([]byte(line))
		assert.False(t, ok, "line %q should be rejected", line)
	}
}

func TestReadDay_DropsOversizedLines(t *testing.T) {
	dir := t.TempDir()
	huge := `{"timestamp":"2025-12-18T10:00:00.000Z","level":"info","package":"bulk","message":"` +
		strings.Repeat("x", 2*1024*1024) + `"}`
	writeDay(t, dir,
		huge,
		`{"timestamp":"2025-12-18T10:00:01.000Z","level":"info","package":"auth","message":"kept"}`,
	)

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err, "an oversized line must not fail the day")
	require.Len(t, records, 1)
	assert.Equal(t, "kept", records[0].Message)
}

func TestReadDay_AcceptsLinesLargerThanReadBuffer(t *testing.T) {
	dir := t.TempDir()
	big := `{"timestamp":"2025-12-18T10:00:00.000Z","level":"info","package":"bulk","message":"` +
		strings.Repeat("y", 100*1024) + `"}`
	writeDay(t, dir, big)

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "bulk", records[0].Package)
}

func TestReadDay_NoTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	content := `{"timestamp":"t","level":"info","package":"p","message":"first"}` + "\n" +
		`{"timestamp":"t","level":"info","package":"p","message":"last"}`
	require.NoError(t, os.WriteFile(DayPath(dir, "app", testDate), []byte(content), 0644))

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "last", records[1].Message)
}

func TestReadDay_CompressedFile(t *testing.T) {
	dir := t.TempDir()
	content := `{"timestamp":"2025-12-18T10:00:00.000Z","level":"info","package":"auth","message":"archived"}` + "\n"

	f, err := os.Create(filepath.Join(dir, "app-"+testDate+CompressedExt))
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "archived", records[0].Message)
}

func TestReadDay_PrefersPlainOverCompressed(t *testing.T) {
	dir := t.TempDir()
	writeDay(t, dir, `{"timestamp":"t","level":"info","package":"p","message":"plain"}`)

	f, err := os.Create(filepath.Join(dir, "app-"+testDate+CompressedExt))
	require.NoError(t, err)
	enc, err := zstd.NewWriter(f)
	require.NoError(t, err)
	_, err = enc.Write([]byte(`{"timestamp":"t","level":"info","package":"p","message":"stale archive"}` + "\n"))
	require.NoError(t, err)
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())

	records, err := ReadDay(dir, "app", testDate)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "plain", records[0].Message)
}
