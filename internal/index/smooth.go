package index

// Smoothing parameters. The trend window is seven years of calendar days; an
// earlier revision of the index used ten years, but seven is the value the
// published series is built with.
const (
	DefaultSmoothingSpan   = 100
	DefaultTrendWindowDays = 365 * 7
)

// ApplySmoothing recomputes the smoothed, detrended index column over the full
// series: a causal EMA with the given span minus a trailing simple moving
// average over trendWindow days, recentered on 0.5. The first trendWindow-1
// rows lack the history for a trend and keep an undefined smoothed value.
//
// The transform is always recomputed over the complete series rather than
// incrementally; both the EMA and the trend are defined over the full causal
// history, and full recomputation avoids carrying smoother state across runs.
func ApplySmoothing(rows Series, span, trendWindow int) Series {
	if span <= 0 {
		span = DefaultSmoothingSpan
	}
	if trendWindow <= 0 {
		trendWindow = DefaultTrendWindowDays
	}

	values := rows.Values()
	smoothed := ewma(values, span)
	trend := trailingStrictMean(values, trendWindow)

	out := make(Series, len(rows))
	copy(out, rows)
	for i := range out {
		if IsDefined(smoothed[i]) && IsDefined(trend[i]) {
			out[i].SmoothedIndexValue = smoothed[i] - trend[i] + 0.5
		} else {
			out[i].SmoothedIndexValue = Undefined()
		}
	}
	return out
}

// ewma computes an exponentially weighted moving average with decay
// alpha = 2/(span+1). Weights are normalized over the observations seen so
// far, so early values are averaged over a short effective history instead of
// being biased toward the seed.
func ewma(values []float64, span int) []float64 {
	alpha := 2.0 / (float64(span) + 1.0)
	decay := 1.0 - alpha

	out := make([]float64, len(values))
	var num, den float64
	seeded := false
	for i, v := range values {
		if !IsDefined(v) {
			if seeded {
				out[i] = num / den
			} else {
				out[i] = Undefined()
			}
			// decay still advances on gaps
			num *= decay
			den *= decay
			continue
		}
		num = num*decay + v
		den = den*decay + 1
		seeded = true
		out[i] = num / den
	}
	return out
}

// trailingStrictMean computes a trailing simple moving average with a strict
// window: the first window-1 positions are undefined.
func trailingStrictMean(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	var sum float64
	for i, v := range values {
		sum += v
		if i >= window {
			sum -= values[i-window]
		}
		if i >= window-1 {
			out[i] = sum / float64(window)
		} else {
			out[i] = Undefined()
		}
	}
	return out
}
