package policy_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/anggasct/trafficsim/pkg/core"
	"github.com/anggasct/trafficsim/pkg/policy"
)

// fixedRandom returns the same draw every time
type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }
func (f fixedRandom) Intn(n int) int   { return 0 }

func TestScenarioMultiplier(t *testing.T) {
	cases := map[core.Scenario]float64{
		core.ScenarioMorning:   1.5,
		core.ScenarioAfternoon: 1.0,
		core.ScenarioEvening:   1.8,
		core.ScenarioAccident:  2.5,
		core.Scenario("storm"): 1.0,
		core.Scenario(""):      1.0,
	}

	for scenario, want := range cases {
		assert.Equal(t, want, policy.ScenarioMultiplier(scenario), "scenario %q", scenario)
	}
}

func TestClassify(t *testing.T) {
	t.Run("boundaries", func(t *testing.T) {
		assert.Equal(t, core.TierNormal, policy.Classify(0))
		assert.Equal(t, core.TierNormal, policy.Classify(14))
		assert.Equal(t, core.TierModerate, policy.Classify(15))
		assert.Equal(t, core.TierModerate, policy.Classify(34))
		assert.Equal(t, core.TierHeavy, policy.Classify(35))
		assert.Equal(t, core.TierHeavy, policy.Classify(45))
	})

	t.Run("exhaustive range", func(t *testing.T) {
		for c := 0; c < 200; c++ {
			tier := policy.Classify(c)
			assert.Equal(t, c < 15, tier == core.TierNormal, "count %d", c)
			assert.Equal(t, c >= 15 && c < 35, tier == core.TierModerate, "count %d", c)
			assert.Equal(t, c >= 35, tier == core.TierHeavy, "count %d", c)
		}
	})
}

func TestNextPhase(t *testing.T) {
	t.Run("heavy always clears", func(t *testing.T) {
		assert.Equal(t, core.PhaseGreen, policy.NextPhase(fixedRandom(0.9), 50, core.TierHeavy))
		assert.Equal(t, core.PhaseGreen, policy.NextPhase(fixedRandom(0.1), 35, core.TierHeavy))
	})

	t.Run("normal depends on count", func(t *testing.T) {
		assert.Equal(t, core.PhaseGreen, policy.NextPhase(fixedRandom(0.9), 9, core.TierNormal))
		assert.Equal(t, core.PhaseYellow, policy.NextPhase(fixedRandom(0.1), 10, core.TierNormal))
		assert.Equal(t, core.PhaseYellow, policy.NextPhase(fixedRandom(0.1), 14, core.TierNormal))
	})

	t.Run("moderate follows the draw", func(t *testing.T) {
		assert.Equal(t, core.PhaseYellow, policy.NextPhase(fixedRandom(0.51), 20, core.TierModerate))
		assert.Equal(t, core.PhaseGreen, policy.NextPhase(fixedRandom(0.5), 20, core.TierModerate))
	})

	t.Run("moderate stays within yellow and green", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		seen := map[core.Phase]int{}
		for i := 0; i < 1000; i++ {
			phase := policy.NextPhase(rng, 25, core.TierModerate)
			assert.Contains(t, []core.Phase{core.PhaseYellow, core.PhaseGreen}, phase)
			seen[phase]++
		}
		assert.Greater(t, seen[core.PhaseYellow], 0)
		assert.Greater(t, seen[core.PhaseGreen], 0)
		assert.Zero(t, seen[core.PhaseRed])
	})
}
