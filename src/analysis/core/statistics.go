package core

// -----------------------------------------------------------------------------

// CalculateMean returns the arithmetic mean, 0 for no data.
func CalculateMean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// -----------------------------------------------------------------------------

// MovingAverage is the mean of the last periods closes. With fewer closes
// than periods it falls back to the latest close.
func MovingAverage(closes []float64, periods int) float64 {
	if len(closes) == 0 {
		return 0
	}
	if periods > 0 && len(closes) >= periods {
		return CalculateMean(closes[len(closes)-periods:])
	}
	return closes[len(closes)-1]
}
