package index

import "time"

// DefaultResampleWindow is the trailing-average window, in observations, used
// to fill days without a defined index value. Headlines are not published
// daily; filling gaps with a one-year trailing average avoids sharp artificial
// discontinuities while still reflecting locally prevailing sentiment.
const DefaultResampleWindow = 365

// ResampleDaily expands a sparse per-day series into a dense daily series
// spanning min(date)..max(date) inclusive.
//
// Days absent from the sparse series get zero counts. Days whose index value
// is undefined, whether absent or lacking polar headlines, receive the
// trailing average of the last window observations of the sparse series,
// forward-filled across the calendar. Residual undefined values, possible only
// at the very start, default to 0.
func ResampleDaily(rows Series, window int) Series {
	if len(rows) == 0 {
		return rows
	}
	if window <= 0 {
		window = DefaultResampleWindow
	}

	trailing := trailingObservationMean(rows.Values(), window)

	byDay := make(map[time.Time]int, len(rows))
	for i, row := range rows {
		byDay[row.Date] = i
	}

	first := rows[0].Date
	last := rows[len(rows)-1].Date

	dense := make(Series, 0, int(last.Sub(first).Hours()/24)+1)
	fill := Undefined() // most recent trailing average at or before the day
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		if i, ok := byDay[day]; ok {
			fill = trailing[i]
			row := rows[i]
			if !IsDefined(row.IndexValue) {
				row.IndexValue = fill
			}
			if !IsDefined(row.IndexValue) {
				row.IndexValue = 0
			}
			dense = append(dense, row)
			continue
		}
		filled := IndexRow{
			Date:               day,
			IndexValue:         fill,
			SmoothedIndexValue: Undefined(),
		}
		if !IsDefined(filled.IndexValue) {
			filled.IndexValue = 0
		}
		dense = append(dense, filled)
	}
	return dense
}

// trailingObservationMean computes, per observation, the mean of the defined
// values among the last window observations up to and including it. The window
// counts observations, not calendar days, with a minimum of one: early in the
// series the mean covers however many points exist so far. Windows with no
// defined value yield the undefined sentinel.
func trailingObservationMean(values []float64, window int) []float64 {
	means := make([]float64, len(values))
	var sum float64
	var count int
	for i, v := range values {
		if IsDefined(v) {
			sum += v
			count++
		}
		if i >= window {
			if dropped := values[i-window]; IsDefined(dropped) {
				sum -= dropped
				count--
			}
		}
		if count > 0 {
			means[i] = sum / float64(count)
		} else {
			means[i] = Undefined()
		}
	}
	return means
}

// DropIncompleteDay removes the trailing row when it falls on the current
// processing date. A day still in progress holds a truncated sample of
// headlines and would bias its count and index downward; the row is
// recomputed on the next run with a full day of data.
func DropIncompleteDay(rows Series, asOf time.Time) Series {
	if len(rows) == 0 {
		return rows
	}
	if rows[len(rows)-1].Date.Equal(Day(asOf)) {
		return rows[:len(rows)-1]
	}
	return rows
}
