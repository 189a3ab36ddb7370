package symbolic

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// coefTol is the relative size below which a cancelled coefficient is
// treated as exactly zero.
const coefTol = 1e-12

type varPow struct {
	name string
	exp  int
}

// monomial is a product of variables raised to positive integer powers,
// sorted by name.
type monomial []varPow

func (m monomial) key() string {
	if len(m) == 0 {
		return ""
	}
	parts := make([]string, len(m))
	for i, vp := range m {
		parts[i] = vp.name + "^" + strconv.Itoa(vp.exp)
	}
	return strings.Join(parts, "*")
}

func (m monomial) degree(name string) int {
	for _, vp := range m {
		if vp.name == name {
			return vp.exp
		}
	}
	return 0
}

func (m monomial) mul(o monomial) monomial {
	out := make(monomial, 0, len(m)+len(o))
	i, j := 0, 0
	for i < len(m) && j < len(o) {
		switch {
		case m[i].name < o[j].name:
			out = append(out, m[i])
			i++
		case m[i].name > o[j].name:
			out = append(out, o[j])
			j++
		default:
			out = append(out, varPow{m[i].name, m[i].exp + o[j].exp})
			i++
			j++
		}
	}
	out = append(out, m[i:]...)
	return append(out, o[j:]...)
}

// div returns m/o if o divides m.
func (m monomial) div(o monomial) (monomial, bool) {
	out := make(monomial, 0, len(m))
	j := 0
	for _, vp := range m {
		if j < len(o) && o[j].name < vp.name {
			return nil, false
		}
		if j < len(o) && o[j].name == vp.name {
			e := vp.exp - o[j].exp
			j++
			if e < 0 {
				return nil, false
			}
			if e > 0 {
				out = append(out, varPow{vp.name, e})
			}
			continue
		}
		out = append(out, vp)
	}
	if j < len(o) {
		return nil, false
	}
	return out, true
}

// without drops name from m.
func (m monomial) without(name string) monomial {
	out := make(monomial, 0, len(m))
	for _, vp := range m {
		if vp.name != name {
			out = append(out, vp)
		}
	}
	return out
}

// lexCompare orders monomials lexicographically by variable name.
func lexCompare(a, b monomial) int {
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].name < b[j].name:
			return 1
		case a[i].name > b[j].name:
			return -1
		case a[i].exp != b[j].exp:
			if a[i].exp > b[j].exp {
				return 1
			}
			return -1
		}
		i++
		j++
	}
	switch {
	case i < len(a):
		return 1
	case j < len(b):
		return -1
	}
	return 0
}

type term struct {
	coef float64
	mono monomial
}

// Poly is a multivariate polynomial with float64 coefficients.
// The zero value is the zero polynomial.
type Poly struct {
	terms map[string]term
}

func PolyConst(c float64) Poly {
	p := Poly{terms: map[string]term{}}
	if c != 0 {
		p.terms[""] = term{coef: c}
	}
	return p
}

func PolyVar(name string) Poly {
	m := monomial{{name: name, exp: 1}}
	return Poly{terms: map[string]term{m.key(): {coef: 1, mono: m}}}
}

func (p Poly) clone() Poly {
	out := Poly{terms: make(map[string]term, len(p.terms))}
	for k, t := range p.terms {
		out.terms[k] = t
	}
	return out
}

func (p *Poly) addTerm(t term) {
	if t.coef == 0 {
		return
	}
	if p.terms == nil {
		p.terms = map[string]term{}
	}
	k := t.mono.key()
	prev, ok := p.terms[k]
	if !ok {
		p.terms[k] = t
		return
	}
	c := prev.coef + t.coef
	if math.Abs(c) <= coefTol*(math.Abs(prev.coef)+math.Abs(t.coef)) {
		delete(p.terms, k)
		return
	}
	p.terms[k] = term{coef: c, mono: prev.mono}
}

func (p Poly) IsZero() bool { return len(p.terms) == 0 }

// ConstValue reports the value of p if it has no variables.
func (p Poly) ConstValue() (float64, bool) {
	switch len(p.terms) {
	case 0:
		return 0, true
	case 1:
		t, ok := p.terms[""]
		return t.coef, ok
	}
	return 0, false
}

func (p Poly) Add(q Poly) Poly {
	out := p.clone()
	for _, t := range q.terms {
		out.addTerm(t)
	}
	return out
}

func (p Poly) Scale(c float64) Poly {
	out := Poly{terms: make(map[string]term, len(p.terms))}
	if c == 0 {
		return out
	}
	for k, t := range p.terms {
		out.terms[k] = term{coef: t.coef * c, mono: t.mono}
	}
	return out
}

func (p Poly) Neg() Poly       { return p.Scale(-1) }
func (p Poly) Sub(q Poly) Poly { return p.Add(q.Neg()) }

func (p Poly) Mul(q Poly) Poly {
	out := Poly{terms: map[string]term{}}
	for _, a := range p.terms {
		for _, b := range q.terms {
			out.addTerm(term{coef: a.coef * b.coef, mono: a.mono.mul(b.mono)})
		}
	}
	return out
}

// Degree is the highest power of name in p.
func (p Poly) Degree(name string) int {
	d := 0
	for _, t := range p.terms {
		if e := t.mono.degree(name); e > d {
			d = e
		}
	}
	return d
}

// Coeffs splits p by powers of name: p = sum coeffs[i] * name^i.
func (p Poly) Coeffs(name string) []Poly {
	out := make([]Poly, p.Degree(name)+1)
	for i := range out {
		out[i] = Poly{terms: map[string]term{}}
	}
	for _, t := range p.terms {
		e := t.mono.degree(name)
		out[e].addTerm(term{coef: t.coef, mono: t.mono.without(name)})
	}
	return out
}

func (p Poly) Equal(q Poly) bool {
	if len(p.terms) != len(q.terms) {
		return false
	}
	for k, t := range p.terms {
		o, ok := q.terms[k]
		if !ok || !closeCoef(t.coef, o.coef) {
			return false
		}
	}
	return true
}

// ratioTo reports r such that p = r*q, if one exists.
func (p Poly) ratioTo(q Poly) (float64, bool) {
	if len(p.terms) != len(q.terms) || len(p.terms) == 0 {
		return 0, false
	}
	r := math.NaN()
	for k, t := range p.terms {
		o, ok := q.terms[k]
		if !ok {
			return 0, false
		}
		cur := t.coef / o.coef
		if math.IsNaN(r) {
			r = cur
			continue
		}
		if !closeCoef(r, cur) {
			return 0, false
		}
	}
	return r, true
}

func closeCoef(a, b float64) bool {
	return math.Abs(a-b) <= 1e-9*math.Max(math.Abs(a), math.Abs(b))
}

func (p Poly) sortedTerms() []term {
	keys := make([]string, 0, len(p.terms))
	for k := range p.terms {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]term, len(keys))
	for i, k := range keys {
		out[i] = p.terms[k]
	}
	return out
}

func (p Poly) leading() (term, bool) {
	var lead term
	found := false
	for _, t := range p.terms {
		if !found || lexCompare(t.mono, lead.mono) > 0 {
			lead, found = t, true
		}
	}
	return lead, found
}

// DivExact divides p by q, reporting false unless the division leaves no
// remainder.
func (p Poly) DivExact(q Poly) (Poly, bool) {
	lq, ok := q.leading()
	if !ok {
		return Poly{}, false
	}
	quo := Poly{terms: map[string]term{}}
	rem := p.clone()
	for guard := 0; !rem.IsZero(); guard++ {
		if guard > 10000 {
			return Poly{}, false
		}
		lr, _ := rem.leading()
		m, ok := lr.mono.div(lq.mono)
		if !ok {
			return Poly{}, false
		}
		t := term{coef: lr.coef / lq.coef, mono: m}
		quo.addTerm(t)
		step := Poly{terms: map[string]term{m.key(): t}}
		rem = rem.Sub(step.Mul(q))
		delete(rem.terms, lr.mono.key())
	}
	return quo, true
}

// normalizeSign flips p so its leading coefficient is positive and
// reports the factor applied.
func (p Poly) normalizeSign() (Poly, float64) {
	lead, ok := p.leading()
	if !ok || lead.coef > 0 {
		return p, 1
	}
	return p.Neg(), -1
}

// Expr converts p back to an expression tree with deterministic term order.
func (p Poly) Expr() Expr {
	terms := p.sortedTerms()
	parts := make([]Expr, 0, len(terms))
	for _, t := range terms {
		factors := make([]Expr, 0, len(t.mono)+1)
		factors = append(factors, Num(t.coef))
		for _, vp := range t.mono {
			factors = append(factors, Pow(Sym(vp.name), float64(vp.exp)))
		}
		parts = append(parts, Mul(factors...))
	}
	return Add(parts...)
}

func (p Poly) String() string { return p.Expr().String() }
