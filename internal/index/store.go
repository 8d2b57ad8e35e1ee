package index

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
)

// header is the first row of a persisted index.
var header = []string{"image_path", "R", "G", "B"}

// IOError reports a failure to read or write a persisted index file.
// Malformed content is reported as an IOError on the "load" operation.
type IOError struct {
	Op   string // "load", "save" or "reset"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("index %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// Exists reports whether a persisted index is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Save writes ix to path as CSV.
//
// The data is written to a temporary file in the destination directory and
// renamed into place, so readers never observe a half-written index.
func Save(path string, ix *ColorIndex) error {
	return writeAtomic(path, func(w io.Writer) error { return Write(w, ix) })
}

// writeAtomic streams write into a temporary file next to path and renames
// it over path once the write and close both succeed.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return &IOError{Op: "save", Path: path, Err: err}
	}
	tmpName := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return &IOError{Op: "save", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "save", Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return &IOError{Op: "save", Path: path, Err: err}
	}
	return nil
}

// Write encodes ix as CSV to w.
func Write(w io.Writer, ix *ColorIndex) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, rec := range ix.Records() {
		row := []string{
			rec.Path,
			strconv.Itoa(int(rec.Color.R)),
			strconv.Itoa(int(rec.Color.G)),
			strconv.Itoa(int(rec.Color.B)),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Load reads a persisted index from path.
func Load(path string) (*ColorIndex, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	defer f.Close()

	ix, err := Read(f)
	if err != nil {
		return nil, &IOError{Op: "load", Path: path, Err: err}
	}
	return ix, nil
}

// Read decodes a CSV index from r.
//
// The header row is required. Every data row must carry a non-empty path
// and three integer channels in 0-255.
func Read(r io.Reader) (*ColorIndex, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, err
	}
	for i, name := range header {
		if first[i] != name {
			return nil, fmt.Errorf("unexpected header %v, want %v", first, header)
		}
	}

	var records []TileRecord
	for line := 2; ; line++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rec, err := parseRow(row)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		records = append(records, rec)
	}
	return &ColorIndex{records: records}, nil
}

func parseRow(row []string) (TileRecord, error) {
	if row[0] == "" {
		return TileRecord{}, errors.New("empty image_path")
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.Atoi(row[i+1])
		if err != nil {
			return TileRecord{}, fmt.Errorf("channel %s: %w", header[i+1], err)
		}
		if v < 0 || v > 255 {
			return TileRecord{}, fmt.Errorf("channel %s: value %d out of range 0-255", header[i+1], v)
		}
		ch[i] = uint8(v)
	}
	return TileRecord{
		Path:  row[0],
		Color: imaging.RGB{R: ch[0], G: ch[1], B: ch[2]},
	}, nil
}

// Remove deletes the persisted index at path.
//
// Remove is idempotent: a missing file is not an error.
func Remove(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return &IOError{Op: "reset", Path: path, Err: err}
	}
	return nil
}
