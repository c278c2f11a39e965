// Package indicator computes technical indicators over closing-price series.
package indicator

// DefaultRSIPeriod is the lookback used for the holdings view.
const DefaultRSIPeriod = 14

// RSI returns the Relative Strength Index of closes (oldest first) aligned to
// the last price, using Wilder's smoothing. The first average gain and loss
// are simple means of the first period deltas; each later delta updates them
// as (avg*(period-1) + x) / period. ok is false when fewer than period+1
// closes are available.
func RSI(closes []float64, period int) (value float64, ok bool) {
	if period <= 0 || len(closes) < period+1 {
		return 0, false
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*float64(period-1) + gain) / float64(period)
		avgLoss = (avgLoss*float64(period-1) + loss) / float64(period)
	}

	if avgLoss == 0 {
		return 100, true
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs), true
}

// LatestRSI is RSI with the default 14-period lookback, returned as a pointer
// so that an undefined value serializes as null.
func LatestRSI(closes []float64) *float64 {
	v, ok := RSI(closes, DefaultRSIPeriod)
	if !ok {
		return nil
	}
	return &v
}

func split(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}
