package bids

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fmriprep-tools/motiontsv/internal/shared"
)

// Layout discovers subjects and sessions from the directory names of a
// study root.
type Layout struct {
	root string
}

func NewLayout(root string) *Layout { return &Layout{root: root} }

func (l *Layout) Root() string { return l.root }

// HasSubject reports whether the subject's directory exists under the root.
func (l *Layout) HasSubject(subject string) bool {
	info, err := os.Stat(filepath.Join(l.root, subject))
	return err == nil && info.IsDir()
}

// Subjects lists sub-* directories under the root, sorted by name.
func (l *Layout) Subjects() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrMissingDataset, l.root)
		}
		return nil, fmt.Errorf("reading dataset root %s: %w", l.root, err)
	}
	var subjects []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "sub-") {
			subjects = append(subjects, entry.Name())
		}
	}
	sort.Strings(subjects)
	return subjects, nil
}

// Sessions lists ses-* directories under one subject, sorted by name. A
// missing subject directory yields an empty list.
func (l *Layout) Sessions(subject string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, subject))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading subject %s: %w", subject, err)
	}
	var sessions []string
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), "ses-") {
			sessions = append(sessions, entry.Name())
		}
	}
	sort.Strings(sessions)
	return sessions, nil
}

// SessionUnion returns the sorted union of session names across subjects.
func (l *Layout) SessionUnion(subjects []string) ([]string, error) {
	seen := map[string]bool{}
	for _, subject := range subjects {
		sessions, err := l.Sessions(subject)
		if err != nil {
			return nil, err
		}
		for _, s := range sessions {
			seen[s] = true
		}
	}
	union := make([]string, 0, len(seen))
	for s := range seen {
		union = append(union, s)
	}
	sort.Strings(union)
	return union, nil
}

// description holds the required fields of dataset_description.json.
type description struct {
	Name        string `json:"Name"`
	BIDSVersion string `json:"BIDSVersion"`
}

// Validate performs a structural check of the dataset root: the directory
// must exist, carry a dataset_description.json declaring Name and
// BIDSVersion, and contain at least one sub-* entry.
func (l *Layout) Validate() error {
	info, err := os.Stat(l.root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", shared.ErrMissingDataset, l.root)
	}
	raw, err := os.ReadFile(filepath.Join(l.root, "dataset_description.json"))
	if err != nil {
		return fmt.Errorf("%w: %s has no dataset_description.json", shared.ErrValidation, l.root)
	}
	var desc description
	if err := json.Unmarshal(raw, &desc); err != nil {
		return fmt.Errorf("%w: malformed dataset_description.json: %v", shared.ErrValidation, err)
	}
	if desc.Name == "" || desc.BIDSVersion == "" {
		return fmt.Errorf("%w: dataset_description.json must declare Name and BIDSVersion", shared.ErrValidation)
	}
	subjects, err := l.Subjects()
	if err != nil {
		return err
	}
	if len(subjects) == 0 {
		return fmt.Errorf("%w: %s contains no sub-* directories", shared.ErrValidation, l.root)
	}
	return nil
}
