package quizgen

import "math/rand/v2"

// Rand — источник случайности для шума квот и перемешивания.
// *rand.Rand из math/rand/v2 удовлетворяет интерфейсу.
type Rand interface {
	Float64() float64
	Shuffle(n int, swap func(i, j int))
}

// globalRand использует глобальный несидированный источник, безопасный для горутин
type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }

func (globalRand) Shuffle(n int, swap func(i, j int)) { rand.Shuffle(n, swap) }
