package study

import (
	"math/rand"
	"time"
)

// Shuffle は cards の並び替えたコピーを返します。入力スライスは変更しません。
func Shuffle(cards []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(cards))
	copy(out, cards)
	if rng == nil {
		rng = NewRand()
	}
	rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// NewRand は時刻をシードにした乱数生成器を返します
func NewRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}
