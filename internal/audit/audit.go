// Package audit appends attendance events to a CSV log.
package audit

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sync"
	"time"
)

// TimeLayout is the timestamp format of each log line
const TimeLayout = "2006-01-02 15:04:05.000000"

// Entry is one line of the audit log
type Entry struct {
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
	Direction string    `json:"direction"`
}

// Log is an append-only name,timestamp,direction file
type Log struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
}

// NewLog returns a log writing to path. The file is created on first write.
func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Record appends an entry for name with the current local time.
func (l *Log) Record(name, direction string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{name, l.now().Format(TimeLayout), direction}); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("write audit entry: %w", err)
	}
	return nil
}

// Entries reads the whole log. A missing file yields no entries.
// Lines that do not parse are skipped.
func (l *Log) Entries() ([]Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	var entries []Entry
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("read audit log: %w", err)
		}
		if len(record) != 3 {
			continue
		}
		ts, err := time.ParseInLocation("2006-01-02 15:04:05.999999", record[1], time.Local)
		if err != nil {
			continue
		}
		entries = append(entries, Entry{Name: record[0], Timestamp: ts, Direction: record[2]})
	}
	return entries, nil
}
