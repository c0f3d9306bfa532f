package sim

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/axonguide/internal/cone"
	"github.com/san-kum/axonguide/internal/geom"
	"github.com/san-kum/axonguide/internal/substrate"
)

// poisonSubstrate reports NaN concentrations inside a vertical band.
type poisonSubstrate struct {
	substrate.Substrate
	fromX int
}

func (p poisonSubstrate) At(x, y int) (float64, float64) {
	if x >= p.fromX {
		return nanValue(), nanValue()
	}
	return p.Substrate.At(x, y)
}

func (p poisonSubstrate) Ligand(x, y int) float64 {
	l, _ := p.At(x, y)
	return l
}

func (p poisonSubstrate) Receptor(x, y int) float64 {
	_, r := p.At(x, y)
	return r
}

func nanValue() float64 {
	zero := 0.0
	return zero / zero
}

var _ = Describe("Simulation lifecycle", func() {
	var (
		sub   substrate.Substrate
		cones []*cone.GrowthCone
		cfg   Config
	)

	BeforeEach(func() {
		var err error
		sub, err = substrate.New("stripe_duo", substrate.Params{Rows: 16, Cols: 24, Offset: 2, First: 0.01, Second: 0.99})
		Expect(err).NotTo(HaveOccurred())
		cones, err = cone.NewPopulation(4, 2, 16)
		Expect(err).NotTo(HaveOccurred())
		cfg = DefaultConfig()
		cfg.NumSteps = 20
		cfg.Seed = 3
	})

	It("starts initialized and ends complete", func() {
		s, err := New(sub, cones, cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Phase()).To(Equal(Initialized))

		res, err := s.Run()
		Expect(err).NotTo(HaveOccurred())
		Expect(s.Phase()).To(Equal(Complete))
		Expect(res.StepsTaken).To(Equal(20))
		Expect(res.Cones).To(HaveLen(4))
	})

	It("records one trajectory entry per step on the cones themselves", func() {
		s, err := New(sub, cones, cfg)
		Expect(err).NotTo(HaveOccurred())
		_, err = s.Run()
		Expect(err).NotTo(HaveOccurred())

		for _, gc := range cones {
			Expect(gc.Trajectory).To(HaveLen(20))
			Expect(gc.Pos).To(Equal(gc.Trajectory[19]))
		}
	})

	It("keeps levels fixed when adaptation is disabled", func() {
		before := make([]float64, len(cones))
		for i, gc := range cones {
			before[i] = gc.Receptor
		}
		s, err := New(sub, cones, cfg)
		Expect(err).NotTo(HaveOccurred())
		res, err := s.Run()
		Expect(err).NotTo(HaveOccurred())

		for i, c := range res.Cones {
			Expect(c.Receptor).To(Equal(before[i]))
			Expect(c.InitialReceptor).To(Equal(before[i]))
		}
	})

	Context("when a reading turns non-finite", func() {
		It("fails with the offending step and cone", func() {
			gc, err := cone.New(7, geom.Point{X: 2, Y: 5}, 2, 0.5, 0.5)
			Expect(err).NotTo(HaveOccurred())

			s, err := New(poisonSubstrate{Substrate: sub, fromX: 0}, []*cone.GrowthCone{gc}, cfg)
			Expect(err).NotTo(HaveOccurred())

			res, err := s.Run()
			Expect(errors.Is(err, ErrInvalidState)).To(BeTrue())

			var simErr *SimulationError
			Expect(errors.As(err, &simErr)).To(BeTrue())
			Expect(simErr.Step).To(Equal(0))
			Expect(simErr.ConeID).To(Equal(7))

			Expect(s.Phase()).To(Equal(Failed))
			Expect(res.StepsTaken).To(BeZero())
			Expect(gc.Trajectory).To(BeEmpty())
		})
	})
})
