package alerts_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/trafficsim/pkg/alerts"
	"github.com/anggasct/trafficsim/pkg/core"
)

type fixedRandom float64

func (f fixedRandom) Float64() float64 { return float64(f) }
func (f fixedRandom) Intn(n int) int   { return 0 }

var now = time.Date(2024, 5, 1, 17, 45, 0, 0, time.UTC)

func heavySlow() core.Intersection {
	return core.Intersection{ID: "int-c", Name: "Commerce Dr & Elm St", VehicleCount: 45, AverageSpeed: 9, Congestion: core.TierHeavy}
}

func TestGeneratorScan(t *testing.T) {
	t.Run("both triggers fire on a high draw", func(t *testing.T) {
		g := alerts.NewGenerator(fixedRandom(0.95))
		out := g.Scan([]core.Intersection{heavySlow()}, now)

		require.Len(t, out, 2)
		assert.Equal(t, core.AlertCongestion, out[0].Kind)
		assert.Equal(t, core.SeverityHigh, out[0].Severity)
		assert.Equal(t, "Heavy congestion detected at Commerce Dr & Elm St", out[0].Message)
		assert.Equal(t, core.AlertSpeed, out[1].Kind)
		assert.Equal(t, core.SeverityMedium, out[1].Severity)
		assert.Equal(t, "Low average speed (9 km/h) at Commerce Dr & Elm St", out[1].Message)
		assert.Equal(t, "int-c", out[1].IntersectionID)
		assert.Equal(t, now, out[1].Timestamp)
		assert.NotEqual(t, out[0].ID, out[1].ID)
	})

	t.Run("draw between the thresholds fires congestion only", func(t *testing.T) {
		g := alerts.NewGenerator(fixedRandom(0.75))
		out := g.Scan([]core.Intersection{heavySlow()}, now)
		require.Len(t, out, 1)
		assert.Equal(t, core.AlertCongestion, out[0].Kind)
	})

	t.Run("thresholds are strict", func(t *testing.T) {
		g := alerts.NewGenerator(fixedRandom(0.7))
		assert.Empty(t, g.Scan([]core.Intersection{heavySlow()}, now))
	})

	t.Run("healthy intersections never alert", func(t *testing.T) {
		g := alerts.NewGenerator(fixedRandom(0.99))
		calm := core.Intersection{ID: "int-a", VehicleCount: 12, AverageSpeed: 20, Congestion: core.TierNormal}
		assert.Empty(t, g.Scan([]core.Intersection{calm}, now))
	})

	t.Run("ids stay unique under a frozen clock", func(t *testing.T) {
		g := alerts.NewGenerator(fixedRandom(0.99))
		seen := map[string]bool{}
		for i := 0; i < 50; i++ {
			for _, a := range g.Scan([]core.Intersection{heavySlow()}, now) {
				require.False(t, seen[a.ID], "duplicate id %s", a.ID)
				seen[a.ID] = true
			}
		}
		assert.Len(t, seen, 100)
	})

	t.Run("trigger rates roughly match", func(t *testing.T) {
		g := alerts.NewGenerator(rand.New(rand.NewSource(99)))
		counts := map[core.AlertKind]int{}
		const rounds = 10000
		for i := 0; i < rounds; i++ {
			for _, a := range g.Scan([]core.Intersection{heavySlow()}, now) {
				counts[a.Kind]++
			}
		}
		assert.InDelta(t, 0.3, float64(counts[core.AlertCongestion])/rounds, 0.03)
		assert.InDelta(t, 0.2, float64(counts[core.AlertSpeed])/rounds, 0.03)
	})
}

func TestBuffer(t *testing.T) {
	mk := func(i int) core.Alert {
		return core.Alert{ID: fmt.Sprintf("a-%d", i)}
	}

	t.Run("newest first and bounded", func(t *testing.T) {
		b := alerts.NewBuffer(0)
		assert.Equal(t, alerts.DefaultCapacity, b.Capacity())

		for i := 1; i <= 8; i++ {
			b.Push(mk(i))
			assert.LessOrEqual(t, b.Len(), 5)
		}

		ids := make([]string, 0, 5)
		for _, a := range b.List() {
			ids = append(ids, a.ID)
		}
		assert.Equal(t, []string{"a-8", "a-7", "a-6", "a-5", "a-4"}, ids)
	})

	t.Run("batch push keeps emission order reversed", func(t *testing.T) {
		b := alerts.NewBuffer(5)
		b.Push(mk(1), mk(2), mk(3))
		list := b.List()
		require.Len(t, list, 3)
		assert.Equal(t, "a-3", list[0].ID)
		assert.Equal(t, "a-1", list[2].ID)
	})

	t.Run("dismiss", func(t *testing.T) {
		b := alerts.NewBuffer(5)
		b.Push(mk(1), mk(2))

		assert.True(t, b.Dismiss("a-1"))
		assert.False(t, b.Dismiss("a-1"))
		assert.False(t, b.Dismiss("missing"))
		require.Equal(t, 1, b.Len())
		assert.Equal(t, "a-2", b.List()[0].ID)
	})

	t.Run("list is a copy", func(t *testing.T) {
		b := alerts.NewBuffer(5)
		b.Push(mk(1))
		list := b.List()
		list[0].ID = "mutated"
		assert.Equal(t, "a-1", b.List()[0].ID)
	})

	t.Run("clear", func(t *testing.T) {
		b := alerts.NewBuffer(5)
		b.Push(mk(1), mk(2))
		b.Clear()
		assert.Zero(t, b.Len())
	})
}
