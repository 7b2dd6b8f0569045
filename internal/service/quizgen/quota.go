package quizgen

import "math"

// weightEpsilon — сумма весов ниже порога считается нулевой
const weightEpsilon = 1e-9

// Apportion распределяет total между уровнями пропорционально весам методом
// наибольших остатков. Сумма квоты всегда равна total.
//
// Остаток раздаётся по одной единице уровню с наибольшей дробной частью;
// получивший единицу уровень выбывает (остаток -1). При равенстве приоритет
// easy → medium → hard.
func Apportion(w Weights, total int) Quota {
	if total <= 0 {
		return Quota{}
	}
	w = normalize(w)

	e := w.Easy * float64(total)
	m := w.Medium * float64(total)
	h := w.Hard * float64(total)

	q := Quota{
		Easy:   int(math.Floor(e)),
		Medium: int(math.Floor(m)),
		Hard:   int(math.Floor(h)),
	}
	re := e - float64(q.Easy)
	rm := m - float64(q.Medium)
	rh := h - float64(q.Hard)

	for remain := total - q.Sum(); remain > 0; remain-- {
		switch {
		case re >= rm && re >= rh:
			q.Easy++
			re = -1
		case rm >= re && rm >= rh:
			q.Medium++
			rm = -1
		default:
			q.Hard++
			rh = -1
		}
	}
	return q
}

// normalize приводит веса к сумме 1; отрицательные веса обнуляются,
// нулевая сумма даёт равные веса
func normalize(w Weights) Weights {
	w.Easy = math.Max(0, w.Easy)
	w.Medium = math.Max(0, w.Medium)
	w.Hard = math.Max(0, w.Hard)

	sum := w.Sum()
	if sum <= weightEpsilon || math.IsNaN(sum) || math.IsInf(sum, 0) {
		return Weights{Easy: 1.0 / 3, Medium: 1.0 / 3, Hard: 1.0 / 3}
	}
	return Weights{Easy: w.Easy / sum, Medium: w.Medium / sum, Hard: w.Hard / sum}
}

// RandomWeights добавляет к базовым пропорциям независимый шум в [-noise/2, +noise/2]
func RandomWeights(base Weights, noise float64, rnd Rand) Weights {
	jitter := func(v float64) float64 {
		if noise == 0 {
			return v
		}
		return math.Max(0, v+(rnd.Float64()-0.5)*noise)
	}
	return normalize(Weights{
		Easy:   jitter(base.Easy),
		Medium: jitter(base.Medium),
		Hard:   jitter(base.Hard),
	})
}

// AdaptiveWeights смешивает базовые пропорции со слабостями пользователя:
// alpha*base + (1-alpha)*weakness, где weakness = 1 - accuracy (нормированная).
// Точность 1.0 на всех уровнях даёт равные слабости.
func AdaptiveWeights(base Weights, acc Accuracy, alpha float64) Weights {
	weakness := normalize(Weights{
		Easy:   1 - clamp01(acc.Easy),
		Medium: 1 - clamp01(acc.Medium),
		Hard:   1 - clamp01(acc.Hard),
	})
	return normalize(Weights{
		Easy:   alpha*base.Easy + (1-alpha)*weakness.Easy,
		Medium: alpha*base.Medium + (1-alpha)*weakness.Medium,
		Hard:   alpha*base.Hard + (1-alpha)*weakness.Hard,
	})
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return DefaultAccuracy
	}
	return math.Min(1, math.Max(0, v))
}
