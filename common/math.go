package common

const (
	TPS        = 60
	FixedDelta = 1.0 / TPS

	BaseWidth  = 640
	BaseHeight = 480
)

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
