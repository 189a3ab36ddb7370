package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

var defaultSaddle = Point{X2: 211.2, X4: 511.5}

func TestAnalyzeNegativeLift(t *testing.T) {
	c := compiledWith(t, "", 0)

	r, err := c.Analyze(Point{X2: 100, X4: -1000}, DefaultStabilityTol)
	require.Error(t, err)
	assert.Nil(t, r)
	assert.True(t, errors.Is(err, dynamo.ErrNegativeState), "got %v", err)
	assert.False(t, errors.Is(err, dynamo.ErrEvaluation))
}

func TestAnalyzeEvaluationFailure(t *testing.T) {
	c := compiledWith(t, "", 0)

	_, err := c.Analyze(Point{X2: math.NaN(), X4: math.NaN()}, DefaultStabilityTol)
	require.Error(t, err)
	assert.True(t, errors.Is(err, dynamo.ErrEvaluation), "got %v", err)

	var evalErr *dynamo.EvalError
	assert.True(t, errors.As(err, &evalErr))
}

func TestAnalyzeAllSkipsAndLogs(t *testing.T) {
	c := compiledWith(t, "", 0)
	core, logs := observer.New(zapcore.DebugLevel)

	points := []Point{
		{X2: 100, X4: -1000},
		defaultSaddle,
		{X2: math.NaN(), X4: math.NaN()},
	}
	results := AnalyzeAll(c, points, DefaultStabilityTol, zap.New(core))

	require.Len(t, results, 1)
	assert.Equal(t, defaultSaddle, results[0].State)

	warns := logs.FilterLevelExact(zapcore.WarnLevel).All()
	require.Len(t, warns, 1)
	assert.Equal(t, "skipping steady state with negative concentration", warns[0].Message)
	assert.Equal(t, -1000.0, warns[0].ContextMap()["x4"])

	errs := logs.FilterLevelExact(zapcore.ErrorLevel).All()
	require.Len(t, errs, 1)
	assert.Equal(t, "skipping steady state after evaluation failure", errs[0].Message)

	assert.Equal(t, 2, logs.Len())
}

func TestAnalyzeAllNilLogger(t *testing.T) {
	c := compiledWith(t, "", 0)
	results := AnalyzeAll(c, []Point{{X2: 100, X4: -1000}, defaultSaddle}, DefaultStabilityTol, nil)
	assert.Len(t, results, 1)
}

func TestAnalyzeDefaultParams(t *testing.T) {
	c := compiledWith(t, "", 0)

	r, err := c.Analyze(defaultSaddle, DefaultStabilityTol)
	require.NoError(t, err)
	require.NotNil(t, r)

	require.Len(t, r.Full, 8)
	assert.True(t, r.Full.IsPhysical(), "full state %v", r.Full)
	assert.Equal(t, defaultSaddle.X2, r.Full[1])
	assert.Equal(t, defaultSaddle.X4, r.Full[3])

	assert.Len(t, r.Eig2, 2)
	assert.Len(t, r.Eig8, 8)
	assert.Equal(t, r.Stab2 != r.Stab8, r.Conflict)
	assert.Equal(t, Saddle, r.Stab2)
	assert.Equal(t, Saddle, r.Stab8)
	assert.False(t, r.Conflict)

	rows, cols := r.J8.Dims()
	assert.Equal(t, 8, rows)
	assert.Equal(t, 8, cols)
}
