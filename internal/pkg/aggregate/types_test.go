package aggregate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func mustRange(t *testing.T, start, end string) DateRange {
	t.Helper()
	r, err := NewDateRange(day(start), day(end))
	require.NoError(t, err)
	return r
}

func TestNewDateRange(t *testing.T) {
	r, err := NewDateRange(day("2024-01-01"), day("2024-01-14"))
	require.NoError(t, err)
	assert.Equal(t, 14, r.Days())
	assert.True(t, r.Contains(day("2024-01-14").Add(23*time.Hour)))
	assert.False(t, r.Contains(day("2024-01-15")))

	_, err = NewDateRange(day("2024-01-14"), day("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = NewDateRange(time.Time{}, day("2024-01-01"))
	assert.ErrorIs(t, err, ErrInvalidRange)

	single, err := NewDateRange(day("2024-02-29"), day("2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, 1, single.Days())
}

func TestDay_TruncatesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 2024-01-03 02:00 +08:00 is still 2024-01-02 in UTC
	local := time.Date(2024, 1, 3, 2, 0, 0, 0, loc)
	assert.Equal(t, "2024-01-02", DateKey(Day(local)))
}

func TestMetrics_DeltaSince(t *testing.T) {
	cur := Metrics{Views: 900, Likes: 10, Comments: 3}
	prev := Metrics{Views: 300, Likes: 20, Comments: 3}
	assert.Equal(t, Metrics{Views: 600}, cur.DeltaSince(prev))
}

func TestParsers(t *testing.T) {
	p, ok := ParsePlatform(" TikTok ")
	assert.True(t, ok)
	assert.Equal(t, PlatformTikTok, p)
	_, ok = ParsePlatform("facebook")
	assert.False(t, ok)

	m, ok := ParseMode("")
	assert.True(t, ok)
	assert.Equal(t, ModePostDate, m)
	m, ok = ParseMode("ACCRUAL")
	assert.True(t, ok)
	assert.Equal(t, ModeAccrual, m)
	_, ok = ParseMode("lifetime")
	assert.False(t, ok)
}

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		name     string
		platform Platform
		raw      string
		want     Handle
	}{
		{"tiktok strips at", PlatformTikTok, " @Alice ", "alice"},
		{"instagram lowercases", PlatformInstagram, "Alice_IG", "alice_ig"},
		{"youtube keeps case", PlatformYouTube, " UCabcDEF ", "UCabcDEF"},
		{"blank", PlatformTikTok, "  @ ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeHandle(tt.platform, tt.raw))
		})
	}
}

func TestHandleSet(t *testing.T) {
	s := NewHandleSet()
	assert.True(t, s.Empty())
	s.Add(PlatformTikTok, "@Bob")
	s.Add(PlatformTikTok, "bob")
	s.Add(PlatformTikTok, "alice")
	s.Add(PlatformInstagram, "")
	assert.False(t, s.Empty())
	assert.Equal(t, []Handle{"bob", "alice"}, s[PlatformTikTok])
	assert.Equal(t, []Handle{"alice", "bob"}, s.Sorted()[PlatformTikTok])

	o := NewHandleSet()
	o.Add(PlatformTikTok, "carol")
	o.Add(PlatformYouTube, "UC1")
	u := s.Union(o)
	assert.Len(t, u[PlatformTikTok], 3)
	assert.Equal(t, []Handle{"UC1"}, u[PlatformYouTube])
	assert.Len(t, s[PlatformTikTok], 2)
}
