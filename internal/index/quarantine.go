package index

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// QuarantineEntry records a library file excluded from the index.
type QuarantineEntry struct {
	// Path is where the file was found during the walk.
	Path string `json:"path"`

	// Reason is the verification or decode error that excluded it.
	Reason string `json:"reason"`

	// MovedTo is the file's new location when a quarantine directory is
	// configured and the move succeeded; empty otherwise.
	MovedTo string `json:"moved_to,omitempty"`
}

// QuarantinePath returns the path of the quarantine record kept alongside
// the index at indexPath.
func QuarantinePath(indexPath string) string {
	return indexPath + ".quarantine.csv"
}

// SaveQuarantine writes the quarantine record as CSV (path,reason,moved_to).
// Like Save, it replaces the file atomically.
func SaveQuarantine(path string, entries []QuarantineEntry) error {
	return writeAtomic(path, func(w io.Writer) error {
		return writeQuarantine(w, entries)
	})
}

func writeQuarantine(w io.Writer, entries []QuarantineEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"path", "reason", "moved_to"}); err != nil {
		return err
	}
	for _, e := range entries {
		if err := cw.Write([]string{e.Path, e.Reason, e.MovedTo}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadQuarantine reads a quarantine record. A missing record yields no
// entries and no error.
func LoadQuarantine(path string) ([]QuarantineEntry, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 3
	rows, err := r.ReadAll()
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	if len(rows) == 0 {
		return nil, nil
	}
	entries := make([]QuarantineEntry, 0, len(rows)-1)
	for _, row := range rows[1:] {
		entries = append(entries, QuarantineEntry{Path: row[0], Reason: row[1], MovedTo: row[2]})
	}
	return entries, nil
}

// relocate moves path into dir, appending a numeric suffix when a file of
// the same name is already quarantined.
func relocate(path, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	dest := filepath.Join(dir, base)
	for i := 1; ; i++ {
		if _, err := os.Lstat(dest); errors.Is(err, os.ErrNotExist) {
			break
		}
		if i > 1000 {
			return "", fmt.Errorf("too many quarantined files named %s", base)
		}
		dest = filepath.Join(dir, stem+"-"+strconv.Itoa(i)+ext)
	}
	if err := os.Rename(path, dest); err != nil {
		return "", err
	}
	return dest, nil
}
