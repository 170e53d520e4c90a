package store

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/valyala/fastjson"

	"github.com/coffersTech/daylog/internal/model"
)

// parsers is shared across reads; fastjson parsers are reused per line.
var parsers fastjson.ParserPool

// ReadDay loads one day's records in file order. A missing day (neither
// the plain nor the compressed file exists) produces an empty slice and
// no error. Lines that are blank or fail to parse as a JSON object are
// dropped silently; only open/read failures surface to the caller.
func ReadDay(dir, prefix, date string) ([]model.Record, error) {
	path := DayPath(dir, prefix, date)

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		return readLines(f)
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("open day file: %w", err)
	}

	// Fall back to the archived form written by the archiver.
	cf, err := os.Open(strings.TrimSuffix(path, FileExt) + CompressedExt)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.Record{}, nil
		}
		return nil, fmt.Errorf("open archived day file: %w", err)
	}
	defer cf.Close()

	dec, err := zstd.NewReader(cf)
	if err != nil {
		return nil, fmt.Errorf("open zstd stream: %w", err)
	}
	defer dec.Close()
	return readLines(dec)
}

// maxLineBytes bounds the memory spent on a single record. Longer
// lines are dropped, never failed on.
const maxLineBytes = 1024 * 1024

// readLines streams r line by line so peak memory tracks the largest
// accepted line, not the whole file.
func readLines(r io.Reader) ([]model.Record, error) {
	p := parsers.Get()
	defer parsers.Put(p)

	records := make([]model.Record, 0, 256)
	br := bufio.NewReaderSize(r, 64*1024)

	for {
		line, tooLong, err := nextLine(br)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read day file: %w", err)
		}

		// An oversized line is dropped like any other bad line; one
		// runaway record must not fail the whole day.
		if !tooLong && len(bytes.TrimSpace(line)) > 0 {
			if rec, ok := decodeLine(p, line); ok {
				records = append(records, rec)
			}
		}

		if err == io.EOF {
			return records, nil
		}
	}
}

// nextLine reads one line, accumulating across buffer refills. A line
// longer than maxLineBytes is consumed up to its newline and reported
// as tooLong with no content.
func nextLine(br *bufio.Reader) ([]byte, bool, error) {
	var line []byte
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			line = append(line, chunk...)
			if len(line) > maxLineBytes {
				line = nil
				tooLong = true
			}
		}
		switch err {
		case nil, io.EOF:
			return line, tooLong, err
		case bufio.ErrBufferFull:
			// keep consuming the same line
		default:
			return nil, false, err
		}
	}
}

// DecodeLine parses one NDJSON line into a Record. ok is false for
// anything that is not a complete JSON object, the sole rejection
// criterion; a crash mid-write only loses the torn line, never the file.
func DecodeLine(line []byte) (model.Record, bool) {
	p := parsers.Get()
	defer parsers.Put(p)
	return decodeLine(p, line)
}

func decodeLine(p *fastjson.Parser, line []byte) (model.Record, bool) {
	v, err := p.ParseBytes(line)
	if err != nil {
		return model.Record{}, false
	}
	return DecodeRecord(v)
}

// DecodeRecord converts a parsed JSON value into a Record. Any JSON
// object is accepted as-is; deserialization failure is the sole
// rejection criterion. The fastjson value borrows the parser's buffer,
// so every field is copied out here.
func DecodeRecord(v *fastjson.Value) (model.Record, bool) {
	if v.Type() != fastjson.TypeObject {
		return model.Record{}, false
	}

	rec := model.Record{
		Timestamp:   string(v.GetStringBytes("timestamp")),
		Level:       model.Level(v.GetStringBytes("level")),
		Package:     string(v.GetStringBytes("package")),
		Message:     string(v.GetStringBytes("message")),
		Filename:    string(v.GetStringBytes("filename")),
		Line:        v.GetInt("line"),
		ExecutionID: string(v.GetStringBytes("executionId")),
		SessionID:   string(v.GetStringBytes("sessionId")),
		Reference:   string(v.GetStringBytes("reference")),
		Source:      string(v.GetStringBytes("source")),
	}

	if dv := v.Get("depth"); dv != nil && dv.Type() == fastjson.TypeNumber {
		d := dv.GetInt()
		rec.Depth = &d
	}
	if dv := v.Get("data"); dv != nil && dv.Type() != fastjson.TypeNull {
		rec.Data = dv.MarshalTo(nil)
	}

	return rec, true
}
