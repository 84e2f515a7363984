package strata

import (
	"fmt"
	"testing"
)

type benchPos struct{ X, Y float32 }
type benchVel struct{ DX, DY float32 }

// BenchmarkEngineSpawnDespawn sizes the world up front, then measures the
// steady-state cost of spawn/despawn with archetype-table routing rather
// than world creation.
func BenchmarkEngineSpawnDespawn(b *testing.B) {
	sizes := []int{1_000, 10_000, 100_000}
	for _, size := range sizes {
		b.Run(benchName(size), func(b *testing.B) {
			e := NewEngine(WithInitialCapacity(size))
			Declare[benchPos](e, NewIdentifier(0xf00d, 1))
			Declare[benchVel](e, NewIdentifier(0xf00d, 2))

			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				entity := Spawn(e, Bundle2[benchPos, benchVel]{
					A: benchPos{X: 1, Y: 2},
					B: benchVel{DX: 3, DY: 4},
				})
				e.Despawn(entity)
			}
		})
	}
}

func BenchmarkEngineSpawnBatch(b *testing.B) {
	e := NewEngine(WithInitialCapacity(100_000))
	Declare[benchPos](e, NewIdentifier(0xf00d, 3))

	bundles := make([]Bundle1[benchPos], 10_000)
	for i := range bundles {
		bundles[i] = Bundle1[benchPos]{A: benchPos{X: float32(i)}}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SpawnBatch(e, bundles)
	}
}

func benchName(size int) string {
	if size == 1_000_000 {
		return "1M"
	}
	return fmt.Sprintf("%dK", size/1000)
}
