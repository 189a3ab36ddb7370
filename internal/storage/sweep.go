package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/san-kum/bistab/internal/analysis"
)

// RowHeader is the column layout of every sweep table.
var RowHeader = []string{"param", "param_value", "x2_ss", "x4_ss", "stab_2D", "stab_8D", "conflict"}

// SweepFileName is the per-parameter table, rewritten by every sweep.
func SweepFileName(param string) string {
	return fmt.Sprintf("scan_results_%s.csv", param)
}

// SweepWriter streams sweep rows to the per-parameter table and, when
// configured, appends them to a master table shared by all sweeps.
// It satisfies analysis.RowSink.
type SweepWriter struct {
	files   []*os.File
	writers []*csv.Writer
	paths   []string
	rows    int
}

// CreateSweep truncates the table for param and opens master for append.
// The master header is only written when the file is new or empty.
// An empty master disables the master table.
func (s *Store) CreateSweep(param, master string) (*SweepWriter, error) {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return nil, err
	}
	sw := &SweepWriter{}

	path := s.Path(SweepFileName(param))
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := sw.add(f, path, true); err != nil {
		sw.Close()
		return nil, err
	}

	if master != "" {
		mpath := s.Path(master)
		mf, err := os.OpenFile(mpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			sw.Close()
			return nil, err
		}
		info, err := mf.Stat()
		if err != nil {
			mf.Close()
			sw.Close()
			return nil, err
		}
		if err := sw.add(mf, mpath, info.Size() == 0); err != nil {
			sw.Close()
			return nil, err
		}
	}
	return sw, nil
}

func (sw *SweepWriter) add(f *os.File, path string, header bool) error {
	w := csv.NewWriter(f)
	sw.files = append(sw.files, f)
	sw.writers = append(sw.writers, w)
	sw.paths = append(sw.paths, path)
	if !header {
		return nil
	}
	if err := w.Write(RowHeader); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// WriteRows appends rows to every table, one row at a time across all
// tables, then flushes each, so a crashed sweep keeps what it finished.
// Files are not written atomically as a set: when one table fails the
// others may already hold the rows, and the returned error names the
// failing file. Rows only counts batches every table accepted.
func (sw *SweepWriter) WriteRows(rows []analysis.Row) error {
	for _, r := range rows {
		rec := formatRow(r)
		for i, w := range sw.writers {
			if err := w.Write(rec); err != nil {
				return fmt.Errorf("write %s: %w", sw.paths[i], err)
			}
		}
	}
	for i, w := range sw.writers {
		w.Flush()
		if err := w.Error(); err != nil {
			return fmt.Errorf("flush %s: %w", sw.paths[i], err)
		}
	}
	sw.rows += len(rows)
	return nil
}

func (sw *SweepWriter) Rows() int { return sw.rows }

// Paths lists the tables being written, per-parameter table first.
func (sw *SweepWriter) Paths() []string { return sw.paths }

func (sw *SweepWriter) Close() error {
	var first error
	for i, f := range sw.files {
		sw.writers[i].Flush()
		if err := sw.writers[i].Error(); err != nil && first == nil {
			first = err
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	sw.files, sw.writers = nil, nil
	return first
}

func formatRow(r analysis.Row) []string {
	return []string{
		r.Param,
		strconv.FormatFloat(r.Value, 'g', -1, 64),
		strconv.FormatFloat(r.X2, 'g', -1, 64),
		strconv.FormatFloat(r.X4, 'g', -1, 64),
		r.Stab2D.String(),
		r.Stab8D.String(),
		strconv.FormatBool(r.Conflict),
	}
}

// LoadRows reads a sweep table written by SweepWriter.
func LoadRows(path string) ([]analysis.Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadRows(f)
}

func ReadRows(r io.Reader) ([]analysis.Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(RowHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	for i, name := range RowHeader {
		if header[i] != name {
			return nil, fmt.Errorf("column %d is %q, want %q", i+1, header[i], name)
		}
	}

	var rows []analysis.Row
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return nil, err
		}
		row, err := parseRow(rec)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
}

func parseRow(rec []string) (analysis.Row, error) {
	var (
		r   = analysis.Row{Param: rec[0]}
		err error
	)
	floatsAt := []*float64{&r.Value, &r.X2, &r.X4}
	for i, dst := range floatsAt {
		if *dst, err = strconv.ParseFloat(rec[i+1], 64); err != nil {
			return r, err
		}
	}
	if r.Stab2D, err = analysis.ParseStability(rec[4]); err != nil {
		return r, err
	}
	if r.Stab8D, err = analysis.ParseStability(rec[5]); err != nil {
		return r, err
	}
	if r.Conflict, err = strconv.ParseBool(rec[6]); err != nil {
		return r, err
	}
	return r, nil
}
