package index

import (
	"math"
	"time"
)

// Sentiment is the classifier-assigned sentiment label of a headline.
type Sentiment string

const (
	SentimentNegative Sentiment = "Negative"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentPositive Sentiment = "Positive"
)

// HeadlineRecord is one classified headline as supplied by the upstream
// classifier. The engine never mutates these.
type HeadlineRecord struct {
	Timestamp time.Time
	Headline  string
	Topic     string
	Sentiment Sentiment
}

// DailyAggregate holds per-day sentiment label counts for one calendar day.
type DailyAggregate struct {
	Date     time.Time
	Negative int
	Neutral  int
	Positive int
}

// IndexRow is the persisted unit of the sentiment index, one per calendar day.
// IndexValue and SmoothedIndexValue use NaN for "undefined"; zero is a valid
// index value and must never stand in for a missing one.
type IndexRow struct {
	Date               time.Time
	Negative           int
	Neutral            int
	Positive           int
	Total              int
	IndexValue         float64
	SmoothedIndexValue float64
}

// Series is a date-ascending sequence of index rows.
type Series []IndexRow

// LastDate returns the date of the final row, or false for an empty series.
func (s Series) LastDate() (time.Time, bool) {
	if len(s) == 0 {
		return time.Time{}, false
	}
	return s[len(s)-1].Date, true
}

// Values returns the raw index column in row order.
func (s Series) Values() []float64 {
	values := make([]float64, len(s))
	for i, row := range s {
		values[i] = row.IndexValue
	}
	return values
}

// IsDense reports whether consecutive rows are exactly one calendar day apart.
func (s Series) IsDense() bool {
	for i := 1; i < len(s); i++ {
		if !s[i].Date.Equal(s[i-1].Date.AddDate(0, 0, 1)) {
			return false
		}
	}
	return true
}

// Day truncates a timestamp to its timezone-naive calendar day.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MonthStart returns the first day of the month containing t.
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// Undefined is the sentinel for index values that have no defined result yet,
// e.g. a day with zero polar headlines before gap-filling runs.
func Undefined() float64 {
	return math.NaN()
}

// IsDefined reports whether v holds a computed value rather than the sentinel.
func IsDefined(v float64) bool {
	return !math.IsNaN(v)
}
