package core

// -----------------------------------------------------------------------------

// CalculateChangePercent calculates percentage change.
func CalculateChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// RelativeStrengthIndex computes a simple-average RSI over the last periods
// closes. A single close yields 50; no losses yields 100.
func RelativeStrengthIndex(closes []float64, periods int) float64 {
	relevant := closes
	if periods > 0 && len(closes) > periods {
		relevant = closes[len(closes)-periods:]
	}

	numPeriods := len(relevant) - 1
	if numPeriods <= 0 {
		return 50.0
	}

	gains, losses := 0.0, 0.0
	for i := 1; i < len(relevant); i++ {
		change := relevant[i] - relevant[i-1]
		if change > 0 {
			gains += change
		} else {
			losses -= change
		}
	}

	avgGain := gains / float64(numPeriods)
	avgLoss := losses / float64(numPeriods)
	if avgLoss == 0 {
		return 100.0
	}
	rs := avgGain / avgLoss
	return 100 - (100 / (1 + rs))
}

// -----------------------------------------------------------------------------

// Crossover reports whether the fast average crossed the slow one between
// two consecutive samples: upward is a buy, downward a sell.
func Crossover(prevFast, prevSlow, fast, slow float64) (buy bool, sell bool) {
	buy = prevFast <= prevSlow && fast > slow
	sell = prevFast >= prevSlow && fast < slow
	return buy, sell
}
