package index

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func record(y int, m time.Month, d, hour int, topic, headline string, sentiment Sentiment) HeadlineRecord {
	return HeadlineRecord{
		Timestamp: time.Date(y, m, d, hour, 0, 0, 0, time.UTC),
		Headline:  headline,
		Topic:     topic,
		Sentiment: sentiment,
	}
}

func TestFilterRecords(t *testing.T) {
	cfg := DefaultFilterConfig()

	tests := []struct {
		name    string
		records []HeadlineRecord
		want    int
	}{
		{
			name: "keeps in-scope records",
			records: []HeadlineRecord{
				record(2022, 1, 1, 9, "Economics", "Markets rally on earnings", SentimentPositive),
				record(2022, 1, 1, 10, "Economics", "Inflation eases for third month", SentimentPositive),
			},
			want: 2,
		},
		{
			name: "drops other topics",
			records: []HeadlineRecord{
				record(2022, 1, 1, 9, "Sports", "Team wins championship game", SentimentPositive),
				record(2022, 1, 1, 10, "Economics", "Inflation eases for third month", SentimentPositive),
			},
			want: 1,
		},
		{
			name: "drops short headlines",
			records: []HeadlineRecord{
				record(2022, 1, 1, 9, "Economics", "Markets rally", SentimentPositive),
				record(2022, 1, 1, 10, "Economics", "Markets  rally   hard", SentimentPositive),
			},
			want: 1,
		},
		{
			name:    "empty input",
			records: nil,
			want:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterRecords(tt.records, cfg)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestAggregateDaily(t *testing.T) {
	records := []HeadlineRecord{
		record(2022, 1, 3, 8, "Economics", "Stocks slip on rate fears", SentimentNegative),
		record(2022, 1, 1, 9, "Economics", "Markets rally on earnings", SentimentPositive),
		record(2022, 1, 1, 23, "Economics", "Growth outlook stays flat", SentimentNeutral),
		record(2022, 1, 1, 10, "Economics", "Factory output beats forecasts", SentimentPositive),
	}

	aggregates := AggregateDaily(records)
	require.Len(t, aggregates, 2)

	assert.Equal(t, day(2022, 1, 1), aggregates[0].Date)
	assert.Equal(t, 0, aggregates[0].Negative)
	assert.Equal(t, 1, aggregates[0].Neutral)
	assert.Equal(t, 2, aggregates[0].Positive)

	assert.Equal(t, day(2022, 1, 3), aggregates[1].Date)
	assert.Equal(t, 1, aggregates[1].Negative)
	assert.Equal(t, 0, aggregates[1].Neutral)
	assert.Equal(t, 0, aggregates[1].Positive)
}

func TestAggregateDailyGroupsByCalendarDay(t *testing.T) {
	// records 2 hours apart across midnight land on different days
	records := []HeadlineRecord{
		record(2022, 5, 1, 23, "Economics", "Late night market wrap", SentimentPositive),
		record(2022, 5, 2, 1, "Economics", "Early futures tick up", SentimentPositive),
	}

	aggregates := AggregateDaily(records)
	require.Len(t, aggregates, 2)
	assert.Equal(t, day(2022, 5, 1), aggregates[0].Date)
	assert.Equal(t, day(2022, 5, 2), aggregates[1].Date)
}

func TestComputeRawIndex(t *testing.T) {
	tests := []struct {
		name      string
		agg       DailyAggregate
		wantTotal int
		wantValue float64
		undefined bool
	}{
		{
			name:      "all positive",
			agg:       DailyAggregate{Date: day(2022, 1, 1), Positive: 2, Neutral: 1},
			wantTotal: 3,
			wantValue: 1.0,
		},
		{
			name:      "all negative",
			agg:       DailyAggregate{Date: day(2022, 1, 1), Negative: 1},
			wantTotal: 1,
			wantValue: -1.0,
		},
		{
			name:      "mixed",
			agg:       DailyAggregate{Date: day(2022, 1, 1), Negative: 1, Positive: 3},
			wantTotal: 4,
			wantValue: 0.5,
		},
		{
			name:      "neutral only is undefined, not zero",
			agg:       DailyAggregate{Date: day(2022, 1, 1), Neutral: 5},
			wantTotal: 5,
			undefined: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows := ComputeRawIndex([]DailyAggregate{tt.agg})
			require.Len(t, rows, 1)
			row := rows[0]

			assert.Equal(t, tt.wantTotal, row.Total)
			assert.Equal(t, row.Negative+row.Neutral+row.Positive, row.Total)
			if tt.undefined {
				assert.True(t, math.IsNaN(row.IndexValue))
			} else {
				assert.InDelta(t, tt.wantValue, row.IndexValue, 1e-12)
				assert.GreaterOrEqual(t, row.IndexValue, -1.0)
				assert.LessOrEqual(t, row.IndexValue, 1.0)
			}
		})
	}
}
