package aggregate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFillAndTotals(t *testing.T) {
	keys := []string{"2024-01-01", "2024-01-02", "2024-01-03"}
	p := Partial{
		"2024-01-02": {Views: 10, Likes: 1},
		"2023-12-31": {Views: 999},
	}
	series := Fill(p, keys)
	assert.Len(t, series, 3)
	assert.Equal(t, "2024-01-01", series[0].Date)
	assert.True(t, series[0].Metrics.IsZero())
	assert.Equal(t, int64(10), series[1].Views)
	assert.Equal(t, Metrics{Views: 10, Likes: 1}, Totals(series))
}

func TestMergePartials_Adds(t *testing.T) {
	merged := MergePartials(
		Partial{"k": {Views: 70}},
		Partial{"k": {Views: 150}, "j": {Likes: 2}},
	)
	assert.Equal(t, int64(220), merged["k"].Views)
	assert.Equal(t, int64(2), merged["j"].Likes)
}

func TestCombinePlatforms_SharesSavesTikTokOnly(t *testing.T) {
	keys := []string{"2024-01-01"}
	per := map[Platform][]SeriesPoint{
		PlatformTikTok:    {{Date: keys[0], Metrics: Metrics{Views: 10, Likes: 1, Comments: 1, Shares: 5, Saves: 2}}},
		PlatformInstagram: {{Date: keys[0], Metrics: Metrics{Views: 20, Likes: 2, Comments: 2, Shares: 3, Saves: 4}}},
		PlatformYouTube:   {{Date: keys[0], Metrics: Metrics{Views: 30, Likes: 3, Comments: 3}}},
	}
	combined := CombinePlatforms(per, keys)
	assert.Equal(t, Metrics{Views: 60, Likes: 6, Comments: 6, Shares: 5, Saves: 2}, combined[0].Metrics)
}

func TestSumSeries(t *testing.T) {
	keys := []string{"a", "b"}
	s1 := Fill(Partial{"a": {Views: 1, Shares: 1}}, keys)
	s2 := Fill(Partial{"a": {Views: 2}, "b": {Saves: 3}}, keys)
	sum := SumSeries(keys, s1, s2)
	assert.Equal(t, Metrics{Views: 3, Shares: 1}, sum[0].Metrics)
	assert.Equal(t, Metrics{Saves: 3}, sum[1].Metrics)
}

func TestRebucket(t *testing.T) {
	days := []DailyValue{
		{Date: day("2024-01-30"), Metrics: Metrics{Views: 1}},
		{Date: day("2024-01-31"), Metrics: Metrics{Views: 2}},
		{Date: day("2024-02-01"), Metrics: Metrics{Views: 4}},
		{Date: day("2024-02-02")},
	}
	p := Rebucket(days, Bucketer{Granularity: Monthly})
	assert.Equal(t, Partial{"2024-01-01": {Views: 3}, "2024-02-01": {Views: 4}}, p)
}
