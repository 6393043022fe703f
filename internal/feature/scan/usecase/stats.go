package usecase

import "math"

// mean は算術平均を返します。空スライスは0を返します。
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// variance は母分散を返します。空スライスは0を返します。
func variance(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := mean(xs)
	sum := 0.0
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return sum / float64(len(xs))
}

// clamp はxを[lo, hi]に収めます。
func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// round2 は小数第2位に丸めます。
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
