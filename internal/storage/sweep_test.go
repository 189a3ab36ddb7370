package storage

import (
	"os"
	"strings"
	"testing"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleRows = []analysis.Row{
	{Param: "k1", Value: 1e-4, X2: 0, X4: 0, Stab2D: analysis.Stable, Stab8D: analysis.Stable},
	{Param: "k1", Value: 1e-4, X2: 66.09, X4: 478.02, Stab2D: analysis.Saddle, Stab8D: analysis.Saddle},
	{Param: "k1", Value: 1, X2: 5912.03, X4: 5174.29, Stab2D: analysis.Unstable, Stab8D: analysis.Stable, Conflict: true},
}

func TestSweepWriterRoundTrip(t *testing.T) {
	st := New(t.TempDir())

	sw, err := st.CreateSweep("k1", "")
	require.NoError(t, err)
	require.NoError(t, sw.WriteRows(sampleRows[:2]))
	require.NoError(t, sw.WriteRows(sampleRows[2:]))
	assert.Equal(t, 3, sw.Rows())
	require.Len(t, sw.Paths(), 1)
	require.NoError(t, sw.Close())

	rows, err := LoadRows(st.Path(SweepFileName("k1")))
	require.NoError(t, err)
	assert.Equal(t, sampleRows, rows)
}

func TestSweepWriterOverwritesParamTable(t *testing.T) {
	st := New(t.TempDir())

	for i := 0; i < 2; i++ {
		sw, err := st.CreateSweep("k1", "")
		require.NoError(t, err)
		require.NoError(t, sw.WriteRows(sampleRows))
		require.NoError(t, sw.Close())
	}

	rows, err := LoadRows(st.Path("scan_results_k1.csv"))
	require.NoError(t, err)
	assert.Len(t, rows, len(sampleRows))
}

func TestSweepWriterAppendsMaster(t *testing.T) {
	st := New(t.TempDir())
	const master = "all_scan_results.csv"

	for _, param := range []string{"k1", "k9"} {
		sw, err := st.CreateSweep(param, master)
		require.NoError(t, err)
		require.Len(t, sw.Paths(), 2)
		rows := make([]analysis.Row, len(sampleRows))
		for i, r := range sampleRows {
			r.Param = param
			rows[i] = r
		}
		require.NoError(t, sw.WriteRows(rows))
		require.NoError(t, sw.Close())
	}

	data, err := os.ReadFile(st.Path(master))
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "param,param_value"), "header written once")

	rows, err := LoadRows(st.Path(master))
	require.NoError(t, err)
	require.Len(t, rows, 2*len(sampleRows))
	assert.Equal(t, "k1", rows[0].Param)
	assert.Equal(t, "k9", rows[len(rows)-1].Param)
}

func TestSweepWriterMasterFailure(t *testing.T) {
	st := New(t.TempDir())
	sw, err := st.CreateSweep("k1", "all_scan_results.csv")
	require.NoError(t, err)
	require.NoError(t, sw.WriteRows(sampleRows[:1]))
	require.Equal(t, 1, sw.Rows())

	// Lose the master file under the writer.
	require.NoError(t, sw.files[1].Close())

	err = sw.WriteRows(sampleRows[1:])
	require.Error(t, err)
	assert.Contains(t, err.Error(), st.Path("all_scan_results.csv"))
	assert.Equal(t, 1, sw.Rows(), "failed batch is not counted")
	_ = sw.Close()

	// The per-parameter table was flushed before the master failed.
	rows, err := LoadRows(st.Path(SweepFileName("k1")))
	require.NoError(t, err)
	assert.Len(t, rows, len(sampleRows))

	master, err := LoadRows(st.Path("all_scan_results.csv"))
	require.NoError(t, err)
	assert.Len(t, master, 1)
}

func TestReadRowsErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"wrong header", "a,b,c,d,e,f,g\n"},
		{"bad float", strings.Join(RowHeader, ",") + "\nk1,x,0,0,Stable,Stable,false\n"},
		{"bad stability", strings.Join(RowHeader, ",") + "\nk1,1,0,0,Wobbly,Stable,false\n"},
		{"bad bool", strings.Join(RowHeader, ",") + "\nk1,1,0,0,Stable,Stable,maybe\n"},
		{"short record", strings.Join(RowHeader, ",") + "\nk1,1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadRows(strings.NewReader(tt.data))
			assert.Error(t, err)
		})
	}

	rows, err := ReadRows(strings.NewReader(""))
	assert.NoError(t, err)
	assert.Nil(t, rows)
}

func TestRowSinkContract(t *testing.T) {
	var _ analysis.RowSink = (*SweepWriter)(nil)
}
