package analysis_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/bistab/internal/analysis"
	"github.com/san-kum/bistab/internal/dynamo"
	"github.com/san-kum/bistab/internal/model"
)

var _ = Describe("Steady-state pipeline", func() {
	var (
		m      *analysis.Model
		c      *analysis.Compiled
		search analysis.Search
	)

	BeforeEach(func() {
		var err error
		m, err = analysis.NewModel()
		Expect(err).NotTo(HaveOccurred())

		p, err := model.DefaultParams().With("k1", 1e-4)
		Expect(err).NotTo(HaveOccurred())
		c, err = m.Compile(p)
		Expect(err).NotTo(HaveOccurred())

		search = analysis.DefaultSearch()
		search.GuessCount = 20
	})

	Describe("FindSteadyStates", func() {
		var report *analysis.FindReport

		BeforeEach(func() {
			report = analysis.FindSteadyStates(c, search)
		})

		It("finds several steady states in the bistable regime", func() {
			Expect(len(report.Roots)).To(BeNumerically(">=", 2))
		})

		It("only accepts roots below the residual tolerance", func() {
			for _, r := range report.Roots {
				res, err := c.Residual(r)
				Expect(err).NotTo(HaveOccurred())
				Expect(math.Abs(res[0])).To(BeNumerically("<=", search.ResidualTol))
				Expect(math.Abs(res[1])).To(BeNumerically("<=", search.ResidualTol))
			}
		})

		It("keeps accepted roots apart and inside the domain", func() {
			for i, a := range report.Roots {
				Expect(a.X2).To(BeNumerically(">=", search.X2Min))
				Expect(a.X4).To(BeNumerically(">=", search.X4Min))
				Expect(a.X2).To(BeNumerically("<=", search.X2Max))
				Expect(a.X4).To(BeNumerically("<=", search.X4Max))
				for _, b := range report.Roots[i+1:] {
					Expect(a.Distance(b)).To(BeNumerically(">=", search.MinSeparation))
				}
			}
		})

		It("accounts for every guess exactly once", func() {
			Expect(report.Attempts).To(HaveLen(search.GuessCount * search.GuessCount))
			total := 0
			for _, n := range report.Counts() {
				total += n
			}
			Expect(total).To(Equal(len(report.Attempts)))
			Expect(report.Counts()[analysis.Accepted]).To(Equal(len(report.Roots)))
		})

		It("finds the high steady state near (5816, 5081)", func() {
			high := analysis.Point{X2: 5815.9, X4: 5081.3}
			Expect(report.Roots).To(ContainElement(Satisfy(func(p analysis.Point) bool {
				return p.Distance(high) < 1
			})))
		})

		It("does not lose roots on a denser grid", func() {
			coarse := search
			coarse.GuessCount = 3
			few := analysis.FindSteadyStates(c, coarse)
			Expect(len(report.Roots)).To(BeNumerically(">=", len(few.Roots)))
		})
	})

	Describe("Analyze", func() {
		It("lifts a planar point to a non-negative full state", func() {
			r, err := c.Analyze(analysis.Point{X2: 211.2, X4: 511.5}, analysis.DefaultStabilityTol)
			Expect(err).NotTo(HaveOccurred())
			Expect(r).NotTo(BeNil())
			Expect(r.Full).To(HaveLen(model.NumStates))
			for _, v := range r.Full {
				Expect(v).To(BeNumerically(">=", 0))
			}
			Expect(r.Eig2).To(HaveLen(2))
			Expect(r.Eig8).To(HaveLen(model.NumStates))
		})

		It("flags a conflict exactly when the labels differ", func() {
			report := analysis.FindSteadyStates(c, search)
			results := analysis.AnalyzeAll(c, report.Roots, analysis.DefaultStabilityTol, nil)
			Expect(results).NotTo(BeEmpty())
			for _, r := range results {
				Expect(r.Conflict).To(Equal(r.Stab2 != r.Stab8))
			}
		})

		It("classifies the high steady state as stable in both models", func() {
			r, err := c.Analyze(analysis.Point{X2: 5815.9, X4: 5081.3}, analysis.DefaultStabilityTol)
			Expect(err).NotTo(HaveOccurred())
			Expect(r.Stab2).To(Equal(analysis.Stable))
			Expect(r.Stab8).To(Equal(analysis.Stable))
			Expect(r.Conflict).To(BeFalse())
		})
	})
})

var _ = Describe("Cross-validation at default parameters", func() {
	var c *analysis.Compiled

	BeforeEach(func() {
		m, err := analysis.NewModel()
		Expect(err).NotTo(HaveOccurred())
		c, err = m.Compile(model.DefaultParams())
		Expect(err).NotTo(HaveOccurred())
	})

	It("analyzes (211.2, 511.5) into a full state with both spectra", func() {
		r, err := c.Analyze(analysis.Point{X2: 211.2, X4: 511.5}, analysis.DefaultStabilityTol)
		Expect(err).NotTo(HaveOccurred())
		Expect(r).NotTo(BeNil())

		Expect(r.Full).To(HaveLen(model.NumStates))
		for _, v := range r.Full {
			Expect(v).To(BeNumerically(">=", 0))
		}
		Expect(r.Full[0]).To(BeNumerically("~", 56239.6, 1))
		Expect(r.Full[6]).To(BeNumerically("~", 67404.0, 1))

		Expect(r.Eig2).To(HaveLen(2))
		Expect(r.Eig8).To(HaveLen(model.NumStates))
		Expect(r.Conflict).To(Equal(r.Stab2 != r.Stab8))
	})

	It("rejects a point whose lift has a negative concentration", func() {
		_, err := c.Analyze(analysis.Point{X2: 100, X4: -1000}, analysis.DefaultStabilityTol)
		Expect(err).To(MatchError(dynamo.ErrNegativeState))
	})
})
