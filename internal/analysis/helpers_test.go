package analysis

import (
	"sync"
	"testing"

	"github.com/san-kum/bistab/internal/model"
)

var (
	sharedOnce  sync.Once
	sharedModel *Model
	sharedErr   error
)

func testModel(t testing.TB) *Model {
	t.Helper()
	sharedOnce.Do(func() { sharedModel, sharedErr = NewModel() })
	if sharedErr != nil {
		t.Fatalf("NewModel: %v", sharedErr)
	}
	return sharedModel
}

func compiledWith(t testing.TB, name string, value float64) *Compiled {
	t.Helper()
	p := model.DefaultParams()
	if name != "" {
		var err error
		if p, err = p.With(name, value); err != nil {
			t.Fatal(err)
		}
	}
	c, err := testModel(t).Compile(p)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	return c
}

// coarseSearch keeps the multi-start grid small enough for tests.
func coarseSearch() Search {
	s := DefaultSearch()
	s.GuessCount = 20
	return s
}
