package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/san-kum/bistab/internal/integrators"
)

const runsDir = "runs"

// Store keeps sweep tables at the top of baseDir and one directory per
// recorded run under baseDir/runs.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

func (s *Store) Path(name string) string { return filepath.Join(s.baseDir, name) }

func (s *Store) Init() error {
	return os.MkdirAll(filepath.Join(s.baseDir, runsDir), 0755)
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Kind         string             `json:"kind"`
	Timestamp    time.Time          `json:"timestamp"`
	Param        string             `json:"param,omitempty"`
	Values       []float64          `json:"values,omitempty"`
	Params       map[string]float64 `json:"params"`
	GuessCount   int                `json:"guess_count,omitempty"`
	StabilityTol float64            `json:"stability_tol,omitempty"`
	Integrator   string             `json:"integrator,omitempty"`
	Rows         int                `json:"rows"`
	Bistable     []float64          `json:"bistable,omitempty"`
	Files        []string           `json:"files,omitempty"`
	Metrics      map[string]float64 `json:"metrics,omitempty"`
}

func (s *Store) runDir(id string) string {
	return filepath.Join(s.baseDir, runsDir, id)
}

// SaveRun assigns meta an ID and timestamp and writes it to
// runs/<id>/metadata.json.
func (s *Store) SaveRun(meta *RunMetadata) (string, error) {
	meta.Timestamp = time.Now()
	if meta.ID == "" {
		name := meta.Kind
		if meta.Param != "" {
			name += "_" + meta.Param
		}
		meta.ID = fmt.Sprintf("%s_%d", name, meta.Timestamp.UnixNano())
	}
	dir := s.runDir(meta.ID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(dir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// List returns every readable run, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(filepath.Join(s.baseDir, runsDir))
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.runDir(runID), "metadata.json"))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// SaveTrajectory writes tr to runs/<id>/states.csv with one column per
// state component, named after names when given.
func (s *Store) SaveTrajectory(runID string, names []string, tr *integrators.Trajectory) error {
	dir := s.runDir(runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, "states.csv"))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if len(tr.States) == 0 {
		w.Flush()
		return w.Error()
	}

	header := []string{"time"}
	for i := range tr.States[0] {
		if i < len(names) {
			header = append(header, names[i])
		} else {
			header = append(header, fmt.Sprintf("x%d", i+1))
		}
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for i, st := range tr.States {
		row := []string{strconv.FormatFloat(tr.Times[i], 'g', -1, 64)}
		for _, v := range st {
			row = append(row, strconv.FormatFloat(v, 'g', -1, 64))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func (s *Store) LoadStates(runID string) ([][]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.runDir(runID), "states.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return [][]float64{}, []float64{}, nil
	}

	times := make([]float64, 0, len(records)-1)
	states := make([][]float64, 0, len(records)-1)
	for _, record := range records[1:] {
		if len(record) == 0 {
			continue
		}
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, nil, fmt.Errorf("run %s: time %q: %w", runID, record[0], err)
		}
		state := make([]float64, 0, len(record)-1)
		for _, field := range record[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("run %s: value %q: %w", runID, field, err)
			}
			state = append(state, v)
		}
		times = append(times, t)
		states = append(states, state)
	}
	return states, times, nil
}
