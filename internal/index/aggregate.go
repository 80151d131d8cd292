package index

import (
	"sort"
	"time"
)

// AggregateDaily groups filtered records by calendar day and counts the
// occurrences of each sentiment label. Days present in the input always report
// all three counts, with zero for labels that did not occur. Output is sorted
// ascending by date.
func AggregateDaily(records []HeadlineRecord) []DailyAggregate {
	byDay := make(map[time.Time]*DailyAggregate)
	for _, record := range records {
		day := Day(record.Timestamp)
		agg, ok := byDay[day]
		if !ok {
			agg = &DailyAggregate{Date: day}
			byDay[day] = agg
		}
		switch record.Sentiment {
		case SentimentNegative:
			agg.Negative++
		case SentimentNeutral:
			agg.Neutral++
		case SentimentPositive:
			agg.Positive++
		}
	}

	aggregates := make([]DailyAggregate, 0, len(byDay))
	for _, agg := range byDay {
		aggregates = append(aggregates, *agg)
	}
	sort.Slice(aggregates, func(i, j int) bool {
		return aggregates[i].Date.Before(aggregates[j].Date)
	})
	return aggregates
}

// ComputeRawIndex derives one index row per daily aggregate. The raw index is
// (positive - negative) / (positive + negative); a day with no polar headlines
// has an undefined index value, resolved later by the resampler.
func ComputeRawIndex(aggregates []DailyAggregate) Series {
	rows := make(Series, 0, len(aggregates))
	for _, agg := range aggregates {
		row := IndexRow{
			Date:               agg.Date,
			Negative:           agg.Negative,
			Neutral:            agg.Neutral,
			Positive:           agg.Positive,
			Total:              agg.Negative + agg.Neutral + agg.Positive,
			IndexValue:         Undefined(),
			SmoothedIndexValue: Undefined(),
		}
		if polar := agg.Positive + agg.Negative; polar > 0 {
			row.IndexValue = float64(agg.Positive-agg.Negative) / float64(polar)
		}
		rows = append(rows, row)
	}
	return rows
}
