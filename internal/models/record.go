package models

import (
	"fmt"
	"time"
)

// FileRecord is one candidate file considered by a batch: the (subject,
// session, run, pattern) coordinates plus the resulting disposition.
// Records are immutable once written.
type FileRecord struct {
	id        string
	batchID   string
	subject   string
	session   string
	run       string
	pattern   string
	outcome   Outcome
	detail    string
	rowCount  int
	createdAt time.Time
}

// NewFileRecord creates a FileRecord stamped with the current time.
func NewFileRecord(batchID, subject, session, run, pattern string, outcome Outcome) *FileRecord {
	return &FileRecord{
		batchID:   batchID,
		subject:   subject,
		session:   session,
		run:       run,
		pattern:   pattern,
		outcome:   outcome,
		createdAt: time.Now(),
	}
}

func (r *FileRecord) ID() string       { return r.id }
func (r *FileRecord) BatchID() string  { return r.batchID }
func (r *FileRecord) Subject() string  { return r.subject }
func (r *FileRecord) Session() string  { return r.session }
func (r *FileRecord) Run() string      { return r.run }
func (r *FileRecord) Pattern() string  { return r.pattern }
func (r *FileRecord) Outcome() Outcome { return r.outcome }
func (r *FileRecord) Detail() string   { return r.detail }
func (r *FileRecord) RowCount() int    { return r.rowCount }

func (r *FileRecord) CreatedAt() time.Time { return r.createdAt }
func (r *FileRecord) UpdatedAt() time.Time { return r.createdAt }

func (r *FileRecord) SetID(id string)          { r.id = id }
func (r *FileRecord) SetDetail(detail string)  { r.detail = detail }
func (r *FileRecord) SetRowCount(n int)        { r.rowCount = n }
func (r *FileRecord) SetCreatedAt(t time.Time) { r.createdAt = t }

// Validate checks that the record carries its batch coordinates and a known outcome.
func (r *FileRecord) Validate() error {
	if r.batchID == "" {
		return fmt.Errorf("record batch ID cannot be empty")
	}
	if r.subject == "" || r.session == "" {
		return fmt.Errorf("record subject and session cannot be empty")
	}
	if !r.outcome.Valid() {
		return fmt.Errorf("invalid outcome: %q", r.outcome)
	}
	return nil
}
