package index

import "strings"

// FilterConfig selects which classified headlines are in scope for the index.
type FilterConfig struct {
	Topic             string
	MinHeadlineTokens int
}

// DefaultFilterConfig returns the production filter settings.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		Topic:             "Economics",
		MinHeadlineTokens: 3,
	}
}

// FilterRecords returns the records whose topic matches the configured
// category and whose headline has at least the minimum number of
// whitespace-separated tokens. An empty result is not an error; downstream
// stages treat it as "no data for this batch".
func FilterRecords(records []HeadlineRecord, cfg FilterConfig) []HeadlineRecord {
	var filtered []HeadlineRecord
	for _, record := range records {
		if record.Topic != cfg.Topic {
			continue
		}
		if len(strings.Fields(record.Headline)) < cfg.MinHeadlineTokens {
			continue
		}
		filtered = append(filtered, record)
	}
	return filtered
}
