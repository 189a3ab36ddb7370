package symbolic

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Expr is an immutable symbolic expression.
type Expr interface {
	String() string
	Subs(bindings map[string]Expr) Expr
	Diff(varName string) Expr
	Equal(other Expr) bool
	collect(set map[string]struct{})
}

// Const is a numeric constant.
type Const struct{ V float64 }

// Symbol is a named variable or parameter.
type Symbol struct{ Name string }

// Sum is a flattened sum of at least two terms.
type Sum struct{ Terms []Expr }

// Product is a flattened product of at least two factors. A numeric
// coefficient, if any, is the first factor.
type Product struct{ Factors []Expr }

// Power raises Base to a constant exponent.
type Power struct {
	Base Expr
	Exp  float64
}

var (
	zero = &Const{V: 0}
	one  = &Const{V: 1}
)

func Num(v float64) Expr { return &Const{V: v} }

func Sym(name string) *Symbol { return &Symbol{Name: name} }

// Syms returns one symbol per name.
func Syms(names ...string) []*Symbol {
	out := make([]*Symbol, len(names))
	for i, n := range names {
		out[i] = Sym(n)
	}
	return out
}

func isConst(e Expr, v float64) bool {
	c, ok := e.(*Const)
	return ok && c.V == v
}

// ConstValue reports the value of e if it is a constant.
func ConstValue(e Expr) (float64, bool) {
	c, ok := e.(*Const)
	if !ok {
		return 0, false
	}
	return c.V, true
}

// Add builds a flattened sum with constants folded and zeros dropped.
func Add(terms ...Expr) Expr {
	flat := make([]Expr, 0, len(terms))
	acc := 0.0
	for _, t := range terms {
		switch v := t.(type) {
		case *Const:
			acc += v.V
		case *Sum:
			for _, inner := range v.Terms {
				if c, ok := inner.(*Const); ok {
					acc += c.V
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, t)
		}
	}
	if acc != 0 {
		flat = append(flat, &Const{V: acc})
	}
	switch len(flat) {
	case 0:
		return zero
	case 1:
		return flat[0]
	}
	return &Sum{Terms: flat}
}

// Mul builds a flattened product with the numeric coefficient folded first.
func Mul(factors ...Expr) Expr {
	flat := make([]Expr, 0, len(factors))
	coef := 1.0
	for _, f := range factors {
		switch v := f.(type) {
		case *Const:
			coef *= v.V
		case *Product:
			for _, inner := range v.Factors {
				if c, ok := inner.(*Const); ok {
					coef *= c.V
				} else {
					flat = append(flat, inner)
				}
			}
		default:
			flat = append(flat, f)
		}
	}
	if coef == 0 {
		return zero
	}
	if coef != 1 {
		flat = append([]Expr{&Const{V: coef}}, flat...)
	}
	switch len(flat) {
	case 0:
		return one
	case 1:
		return flat[0]
	}
	return &Product{Factors: flat}
}

// Pow raises base to a constant exponent. Constant bases are folded except
// for a zero base with a negative exponent, which is left for evaluation to
// report.
func Pow(base Expr, exp float64) Expr {
	switch {
	case exp == 0:
		return one
	case exp == 1:
		return base
	}
	switch b := base.(type) {
	case *Const:
		if b.V == 0 && exp < 0 {
			return &Power{Base: base, Exp: exp}
		}
		if b.V < 0 && exp != math.Trunc(exp) {
			return &Power{Base: base, Exp: exp}
		}
		return &Const{V: math.Pow(b.V, exp)}
	case *Power:
		if exp == math.Trunc(exp) {
			return Pow(b.Base, b.Exp*exp)
		}
	}
	return &Power{Base: base, Exp: exp}
}

func Neg(e Expr) Expr        { return Mul(Num(-1), e) }
func Sub(a, b Expr) Expr     { return Add(a, Neg(b)) }
func Div(num, den Expr) Expr { return Mul(num, Pow(den, -1)) }
func Sqrt(e Expr) Expr       { return Pow(e, 0.5) }
func Inv(e Expr) Expr        { return Pow(e, -1) }

// Symbols returns the sorted free symbols of e.
func Symbols(e Expr) []string {
	set := make(map[string]struct{})
	e.collect(set)
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name occurs free in e.
func Has(e Expr, name string) bool {
	set := make(map[string]struct{})
	e.collect(set)
	_, ok := set[name]
	return ok
}

// Const

func (c *Const) String() string {
	return strconv.FormatFloat(c.V, 'g', -1, 64)
}
func (c *Const) Subs(map[string]Expr) Expr   { return c }
func (c *Const) Diff(string) Expr            { return zero }
func (c *Const) collect(map[string]struct{}) {}
func (c *Const) Equal(other Expr) bool {
	o, ok := other.(*Const)
	return ok && o.V == c.V
}

// Symbol

func (s *Symbol) String() string { return s.Name }
func (s *Symbol) Subs(bindings map[string]Expr) Expr {
	if v, ok := bindings[s.Name]; ok {
		return v
	}
	return s
}
func (s *Symbol) Diff(varName string) Expr {
	if s.Name == varName {
		return one
	}
	return zero
}
func (s *Symbol) collect(set map[string]struct{}) { set[s.Name] = struct{}{} }
func (s *Symbol) Equal(other Expr) bool {
	o, ok := other.(*Symbol)
	return ok && o.Name == s.Name
}

// Sum

func (a *Sum) String() string {
	var sb strings.Builder
	for i, t := range a.Terms {
		str := t.String()
		if i > 0 {
			if strings.HasPrefix(str, "-") {
				sb.WriteString(" - ")
				str = str[1:]
			} else {
				sb.WriteString(" + ")
			}
		}
		sb.WriteString(str)
	}
	return sb.String()
}

func (a *Sum) Subs(bindings map[string]Expr) Expr {
	terms := make([]Expr, len(a.Terms))
	for i, t := range a.Terms {
		terms[i] = t.Subs(bindings)
	}
	return Add(terms...)
}

func (a *Sum) Diff(varName string) Expr {
	terms := make([]Expr, 0, len(a.Terms))
	for _, t := range a.Terms {
		terms = append(terms, t.Diff(varName))
	}
	return Add(terms...)
}

func (a *Sum) collect(set map[string]struct{}) {
	for _, t := range a.Terms {
		t.collect(set)
	}
}

func (a *Sum) Equal(other Expr) bool {
	o, ok := other.(*Sum)
	if !ok || len(o.Terms) != len(a.Terms) {
		return false
	}
	for i := range a.Terms {
		if !a.Terms[i].Equal(o.Terms[i]) {
			return false
		}
	}
	return true
}

// Product

func (m *Product) String() string {
	var num, den []string
	for i, f := range m.Factors {
		if p, ok := f.(*Power); ok && p.Exp < 0 {
			den = append(den, wrap(Pow(p.Base, -p.Exp)))
			continue
		}
		if isConst(f, -1) {
			num = append(num, "-")
			continue
		}
		if i == 0 {
			num = append(num, f.String())
			continue
		}
		num = append(num, wrap(f))
	}
	s := strings.Join(num, "*")
	s = strings.Replace(s, "-*", "-", 1)
	if s == "" || s == "-" {
		s += "1"
	}
	if len(den) > 0 {
		s += "/" + strings.Join(den, "/")
	}
	return s
}

func (m *Product) Subs(bindings map[string]Expr) Expr {
	factors := make([]Expr, len(m.Factors))
	for i, f := range m.Factors {
		factors[i] = f.Subs(bindings)
	}
	return Mul(factors...)
}

func (m *Product) Diff(varName string) Expr {
	terms := make([]Expr, 0, len(m.Factors))
	for i, f := range m.Factors {
		d := f.Diff(varName)
		if isConst(d, 0) {
			continue
		}
		factors := make([]Expr, len(m.Factors))
		copy(factors, m.Factors)
		factors[i] = d
		terms = append(terms, Mul(factors...))
	}
	return Add(terms...)
}

func (m *Product) collect(set map[string]struct{}) {
	for _, f := range m.Factors {
		f.collect(set)
	}
}

func (m *Product) Equal(other Expr) bool {
	o, ok := other.(*Product)
	if !ok || len(o.Factors) != len(m.Factors) {
		return false
	}
	for i := range m.Factors {
		if !m.Factors[i].Equal(o.Factors[i]) {
			return false
		}
	}
	return true
}

// Power

func (p *Power) String() string {
	switch p.Exp {
	case 0.5:
		return "sqrt(" + p.Base.String() + ")"
	case -1:
		return "1/" + wrap(p.Base)
	}
	return wrap(p.Base) + "^" + strconv.FormatFloat(p.Exp, 'g', -1, 64)
}

func (p *Power) Subs(bindings map[string]Expr) Expr {
	return Pow(p.Base.Subs(bindings), p.Exp)
}

func (p *Power) Diff(varName string) Expr {
	d := p.Base.Diff(varName)
	if isConst(d, 0) {
		return zero
	}
	return Mul(Num(p.Exp), Pow(p.Base, p.Exp-1), d)
}

func (p *Power) collect(set map[string]struct{}) { p.Base.collect(set) }

func (p *Power) Equal(other Expr) bool {
	o, ok := other.(*Power)
	return ok && o.Exp == p.Exp && o.Base.Equal(p.Base)
}

func wrap(e Expr) string {
	switch v := e.(type) {
	case *Sum, *Product:
		return "(" + e.String() + ")"
	case *Const:
		if v.V < 0 {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}
