package risk

import (
	"math/rand"
	"time"
)

// RandomSource 표준정규 난수 공급원
// 경로마다 독립 인스턴스를 사용 (경로 간 공유 상태 없음)
type RandomSource interface {
	NormFloat64() float64
}

// SourceFactory returns the random source for path i.
type SourceFactory func(path int) RandomSource

// SeededSource derives an independent math/rand generator per path from seed.
// Same seed → same draws for every path.
func SeededSource(seed int64) SourceFactory {
	return func(path int) RandomSource {
		return rand.New(rand.NewSource(seed + int64(path)*7919))
	}
}

// FreshSource seeds from the clock once per run, so every run draws new values.
func FreshSource() SourceFactory {
	return SeededSource(time.Now().UnixNano())
}
