package evidence

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Record is one entry in the violation log
type Record struct {
	SubjectID int64  `json:"subject_id"`
	Status    string `json:"status"`
	Landmark  string `json:"landmark,omitempty"`
	Frame     int    `json:"frame_number"`
	Count     int    `json:"count"`
	Time      string `json:"datetime"`
}

const (
	// StatusViolation marks a counted violation record
	StatusViolation = "violation"
	// StatusOut marks an elimination record
	StatusOut = "out"
)

// Log is an append-only JSON violation log, persisted after every entry
// so a crash cannot lose counted violations
type Log struct {
	mu      sync.Mutex
	path    string
	records []Record
}

// NewLog creates a Log writing to the given file path, creating parent
// directories as needed
func NewLog(path string) (*Log, error) {

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("error creating log dir: %w", err)
		}
	}

	return &Log{path: path}, nil
}

// Violation appends a counted violation record
func (l *Log) Violation(subjectID int64, landmark string, frame, count int) error {
	return l.append(Record{
		SubjectID: subjectID,
		Status:    StatusViolation,
		Landmark:  landmark,
		Frame:     frame,
		Count:     count,
		Time:      time.Now().Format(time.RFC3339),
	})
}

// Eliminated appends an out record for a subject that reached the
// violation limit
func (l *Log) Eliminated(subjectID int64, frame, total int) error {
	return l.append(Record{
		SubjectID: subjectID,
		Status:    StatusOut,
		Frame:     frame,
		Count:     total,
		Time:      time.Now().Format(time.RFC3339),
	})
}

// Records returns a copy of all records logged so far
func (l *Log) Records() []Record {

	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, len(l.records))
	copy(out, l.records)

	return out
}

// CountFor returns the number of counted violations logged for a subject
func (l *Log) CountFor(subjectID int64) int {

	l.mu.Lock()
	defer l.mu.Unlock()

	n := 0

	for _, r := range l.records {
		if r.SubjectID == subjectID && r.Status == StatusViolation {
			n++
		}
	}

	return n
}

func (l *Log) append(r Record) error {

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, r)

	data, err := json.MarshalIndent(l.records, "", "  ")

	if err != nil {
		return fmt.Errorf("error encoding violation log: %w", err)
	}

	if err := os.WriteFile(l.path, data, 0644); err != nil {
		return fmt.Errorf("error writing violation log: %w", err)
	}

	return nil
}
