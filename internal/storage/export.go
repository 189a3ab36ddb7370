package storage

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/model"
)

// Eigenvalue is a complex eigenvalue in JSON-friendly form.
type Eigenvalue struct {
	Re float64 `json:"re"`
	Im float64 `json:"im"`
}

type SteadyStateRecord struct {
	X2       float64            `json:"x2"`
	X4       float64            `json:"x4"`
	Full     map[string]float64 `json:"full_state"`
	Eig2     []Eigenvalue       `json:"eigenvalues_2D"`
	Eig8     []Eigenvalue       `json:"eigenvalues_8D"`
	Stab2D   analysis.Stability `json:"stab_2D"`
	Stab8D   analysis.Stability `json:"stab_8D"`
	Conflict bool               `json:"conflict"`
}

type AnalysisExport struct {
	Params       map[string]float64  `json:"params"`
	StabilityTol float64             `json:"stability_tol"`
	Attempts     int                 `json:"attempts"`
	Outcomes     map[string]int      `json:"outcomes"`
	SteadyStates []SteadyStateRecord `json:"steady_states"`
}

// NewAnalysisExport flattens analysis results for JSON output. report may
// be nil when the states did not come from a multi-start search.
func NewAnalysisExport(p model.Params, tol float64, report *analysis.FindReport, results []*analysis.Result) *AnalysisExport {
	out := &AnalysisExport{
		Params:       p.Map(),
		StabilityTol: tol,
		SteadyStates: make([]SteadyStateRecord, 0, len(results)),
	}
	if report != nil {
		out.Attempts = len(report.Attempts)
		out.Outcomes = make(map[string]int)
		for o, n := range report.Counts() {
			out.Outcomes[o.String()] = n
		}
	}
	names := model.StateNames()
	for _, r := range results {
		full := make(map[string]float64, len(r.Full))
		for i, v := range r.Full {
			full[names[i]] = v
		}
		out.SteadyStates = append(out.SteadyStates, SteadyStateRecord{
			X2:       r.State.X2,
			X4:       r.State.X4,
			Full:     full,
			Eig2:     eigenvalues(r.Eig2),
			Eig8:     eigenvalues(r.Eig8),
			Stab2D:   r.Stab2,
			Stab8D:   r.Stab8,
			Conflict: r.Conflict,
		})
	}
	return out
}

func eigenvalues(eigs []complex128) []Eigenvalue {
	out := make([]Eigenvalue, len(eigs))
	for i, e := range eigs {
		out[i] = Eigenvalue{Re: real(e), Im: imag(e)}
	}
	return out
}

func WriteAnalysis(w io.Writer, data *AnalysisExport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

// SaveAnalysis writes data to runs/<runID>/analysis.json.
func (s *Store) SaveAnalysis(runID string, data *AnalysisExport) error {
	if err := os.MkdirAll(s.runDir(runID), 0755); err != nil {
		return err
	}
	return ExportJSON(filepath.Join(s.runDir(runID), "analysis.json"), data)
}

func ExportJSON(path string, data *AnalysisExport) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	return WriteAnalysis(file, data)
}

func ExportJSONStdout(data *AnalysisExport) error {
	return WriteAnalysis(os.Stdout, data)
}

func (s *Store) LoadAnalysis(runID string) (*AnalysisExport, error) {
	f, err := os.Open(filepath.Join(s.runDir(runID), "analysis.json"))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var data AnalysisExport
	if err := json.NewDecoder(f).Decode(&data); err != nil {
		return nil, err
	}
	return &data, nil
}
