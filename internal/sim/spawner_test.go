package sim_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orrery/internal/physics"
	"github.com/san-kum/orrery/internal/sim"
)

var _ = Describe("Spawner", func() {
	It("stays inside its ranges", func() {
		s := sim.NewSpawner(7)
		for i := 0; i < 100; i++ {
			b := s.Next()
			Expect(b.Validate()).To(Succeed())
			Expect(b.Pos.X).To(BeNumerically("<=", 20*physics.AU))
			Expect(b.Pos.X).To(BeNumerically(">=", -20*physics.AU))
			Expect(b.Pos.Y).To(BeNumerically("<=", 20*physics.AU))
			Expect(b.Mass).To(BeNumerically(">=", 1e23))
			Expect(b.Mass).To(BeNumerically("<=", 1e28))
			Expect(b.Radius).To(BeNumerically(">=", 2))
			Expect(b.Radius).To(BeNumerically("<=", 7))
			Expect(b.Color).To(MatchRegexp(`^#[0-9a-f]{6}$`))
			Expect(b.Name).To(BeEmpty())
		}
	})

	It("is reproducible for a seed", func() {
		Expect(sim.NewSpawner(3).Next()).To(Equal(sim.NewSpawner(3).Next()))
	})
})
