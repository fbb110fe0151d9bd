package marketdata

import "math"

// trendStats derives the snapshot fields shared by every provider from a
// month of daily closes: last price, percent change over the window,
// volatility (stddev of daily percent changes, x100), and the confidence
// proxy clamp(50 + change*2, 0, 100).
func trendStats(closes []float64) (price, changePct, volatility, confidence float64) {
	if len(closes) == 0 {
		return 0, 0, 0, 0
	}
	start := closes[0]
	price = closes[len(closes)-1]
	if start != 0 {
		changePct = (price - start) / start * 100
	}

	if len(closes) > 1 {
		pct := make([]float64, 0, len(closes)-1)
		var sum float64
		for i := 1; i < len(closes); i++ {
			if closes[i-1] == 0 {
				continue
			}
			p := (closes[i] - closes[i-1]) / closes[i-1]
			pct = append(pct, p)
			sum += p
		}
		if len(pct) > 0 {
			mean := sum / float64(len(pct))
			var variance float64
			for _, p := range pct {
				variance += (p - mean) * (p - mean)
			}
			variance /= float64(len(pct))
			volatility = round2(math.Sqrt(variance) * 100)
		}
	}

	confidence = 50 + changePct*2
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 100 {
		confidence = 100
	}
	confidence = round1(confidence)
	return price, changePct, volatility, confidence
}

func round1(x float64) float64 { return math.Round(x*10) / 10 }
func round2(x float64) float64 { return math.Round(x*100) / 100 }
