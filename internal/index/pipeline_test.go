package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineRun(t *testing.T) {
	pipeline := NewPipeline(nil, DefaultPipelineConfig())

	records := []HeadlineRecord{
		record(2022, 1, 1, 9, "Economics", "Markets rally on earnings", SentimentPositive),
		record(2022, 1, 1, 11, "Economics", "Factory output beats forecasts", SentimentPositive),
		record(2022, 1, 1, 13, "Economics", "Growth outlook stays flat", SentimentNeutral),
		record(2022, 1, 3, 8, "Economics", "Stocks slip on rate fears", SentimentNegative),
		record(2022, 1, 2, 8, "Sports", "Team wins championship game", SentimentPositive),
	}

	slice, err := pipeline.Run(records, day(2022, 2, 1))
	require.NoError(t, err)
	require.Len(t, slice, 3)
	assert.True(t, slice.IsDense())
	assert.InDelta(t, 1.0, slice[0].IndexValue, 1e-12)
	assert.InDelta(t, 1.0, slice[1].IndexValue, 1e-12)
	assert.InDelta(t, -1.0, slice[2].IndexValue, 1e-12)
}

func TestPipelineRunEmptyAfterFilter(t *testing.T) {
	pipeline := NewPipeline(nil, DefaultPipelineConfig())

	tests := []struct {
		name    string
		records []HeadlineRecord
	}{
		{name: "no records"},
		{
			name: "nothing in scope",
			records: []HeadlineRecord{
				record(2022, 1, 1, 9, "Sports", "Team wins championship game", SentimentPositive),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pipeline.Run(tt.records, day(2022, 2, 1))
			assert.ErrorIs(t, err, ErrEmptyBatch)
		})
	}
}

func TestPipelineRunOnlyIncompleteDay(t *testing.T) {
	pipeline := NewPipeline(nil, DefaultPipelineConfig())
	records := []HeadlineRecord{
		record(2022, 1, 5, 9, "Economics", "Markets rally on earnings", SentimentPositive),
	}

	// the only day in the batch is still in progress
	_, err := pipeline.Run(records, day(2022, 1, 5))
	assert.ErrorIs(t, err, ErrEmptyBatch)
}
