package benchmark

import (
	"fmt"
	"runtime"
	"strconv"
	"testing"

	"github.com/levkk/kvstore/internal/storage/memory"
)

// KeyCounts defines the store sizes for benchmarking.
var KeyCounts = []int{10000, 100000, 500000}

// SmallKeyCounts for quick benchmarks.
var SmallKeyCounts = []int{1000, 10000}

func benchKey(i int) string {
	return "key:" + strconv.Itoa(i)
}

// prefillStore stores count keys, alternating integer and raw string values.
func prefillStore(b *testing.B, store *memory.Store, count int) []string {
	b.Helper()
	keys := make([]string, count)
	for i := 0; i < count; i++ {
		keys[i] = benchKey(i)
		value := []byte("value-" + strconv.Itoa(i))
		if i%2 == 0 {
			value = []byte(":" + strconv.Itoa(i))
		}
		if _, err := store.Set(keys[i], value); err != nil {
			b.Fatalf("Set failed: %v", err)
		}
	}
	return keys
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithKeyCounts runs a benchmark function with various store sizes.
func runWithKeyCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("keys_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
