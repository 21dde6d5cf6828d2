package claim

import (
	"math/rand/v2"
	"sync"
	"time"
)

// RandomSource はクレームで付与するポイントの乱数源。
// IntNは[0, n)の一様な整数を返す。テストでは固定値を返す実装を注入する。
type RandomSource interface {
	IntN(n int) int
}

// lockedRand は*rand.Randを複数goroutineから安全に使うためのラッパー。
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewRandomSource はseedで初期化したPCGベースの乱数源を返す。
// 同じseedからは同じ系列が得られる。
func NewRandomSource(seed uint64) RandomSource {
	return &lockedRand{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// NewTimeSeededRandomSource は現在時刻をseedにした乱数源を返す。本番用。
func NewTimeSeededRandomSource() RandomSource {
	return NewRandomSource(uint64(time.Now().UnixNano()))
}

// IntN は[0, n)の一様な整数を返す。
func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}
