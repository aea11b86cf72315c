// Package runlog keeps an append-only CSV audit trail of pipeline runs.
package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Header is the first line of every run log file.
const Header = "timestamp,run_id,stage,total,clean,rejected,details"

var columns = strings.Split(Header, ",")

// Entry records the outcome of one stage of one run.
type Entry struct {
	Timestamp time.Time
	RunID     string
	Stage     string // "clean" or "load"
	Total     int
	Clean     int
	Rejected  int
	Details   string
}

// Record returns the entry as CSV fields, timestamp in UTC.
func (e Entry) Record() []string {
	return []string{
		e.Timestamp.UTC().Format(time.RFC3339),
		e.RunID,
		e.Stage,
		strconv.Itoa(e.Total),
		strconv.Itoa(e.Clean),
		strconv.Itoa(e.Rejected),
		e.Details,
	}
}

// ParseEntry is the inverse of Entry.Record.
func ParseEntry(fields []string) (Entry, error) {
	if len(fields) != len(columns) {
		return Entry{}, fmt.Errorf("want %d fields, have %d", len(columns), len(fields))
	}

	ts, err := time.Parse(time.RFC3339, fields[0])
	if err != nil {
		return Entry{}, fmt.Errorf("bad timestamp %q: %w", fields[0], err)
	}

	var n [3]int
	for i := range n {
		raw := fields[3+i]
		if n[i], err = strconv.Atoi(raw); err != nil {
			return Entry{}, fmt.Errorf("bad %s count %q: %w", columns[3+i], raw, err)
		}
	}

	return Entry{
		Timestamp: ts,
		RunID:     fields[1],
		Stage:     fields[2],
		Total:     n[0],
		Clean:     n[1],
		Rejected:  n[2],
		Details:   fields[6],
	}, nil
}

// Log is a run log file. The file and its directory are created on the
// first Append.
type Log struct {
	path string
}

// Open returns the log stored at path.
func Open(path string) *Log {
	return &Log{path: path}
}

// Path returns the file backing the log.
func (l *Log) Path() string {
	return l.path
}

// Append adds entries at the end of the log.
func (l *Log) Append(entries ...Entry) error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return fmt.Errorf("creating run log dir: %w", err)
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat run log: %w", err)
	}

	if err := writeEntries(f, info.Size() == 0, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeEntries(out io.Writer, withHeader bool, entries []Entry) error {
	w := csv.NewWriter(out)
	if withHeader {
		if err := w.Write(columns); err != nil {
			return fmt.Errorf("writing run log header: %w", err)
		}
	}
	for i, e := range entries {
		if err := w.Write(e.Record()); err != nil {
			return fmt.Errorf("writing run log entry %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing run log: %w", err)
	}
	return nil
}

// Entries returns every entry in file order. A log that was never written
// has no entries.
func (l *Log) Entries() ([]Entry, error) {
	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(columns)

	head, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading run log header: %w", err)
	}
	if strings.Join(head, ",") != Header {
		return nil, fmt.Errorf("%s is not a run log", l.path)
	}

	var out []Entry
	for line := 2; ; line++ {
		fields, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading run log: %w", err)
		}
		e, err := ParseEntry(fields)
		if err != nil {
			return nil, fmt.Errorf("run log line %d: %w", line, err)
		}
		out = append(out, e)
	}
}
