package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/bistab/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
	"rk45":  func() dynamo.Integrator { return NewRK45() },
}

// New returns a fresh integrator by name.
func New(name string) (dynamo.Integrator, error) {
	mk, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator %q (have %v)", name, Names())
	}
	return mk(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
