package aggregate

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func snap(uid uint64, captured string, views int64) Snapshot {
	return Snapshot{UserID: uid, Platform: PlatformTikTok, CapturedAt: day(captured), Metrics: Metrics{Views: views}}
}

func viewsOf(days []DailyValue) []int64 {
	out := make([]int64, 0, len(days))
	for _, d := range days {
		out = append(out, d.Views)
	}
	return out
}

func TestAccrue_NonMonotonicExample(t *testing.T) {
	snaps := []Snapshot{
		snap(7, "2024-01-04", 500),
		snap(7, "2024-01-05", 500),
		snap(7, "2024-01-06", 300),
		snap(7, "2024-01-07", 900),
	}
	res := Accrue(snaps, mustRange(t, "2024-01-05", "2024-01-07"), AccrualOptions{StartCutoff: day("2024-01-01")})

	assert.Equal(t, uint64(7), res.UserID)
	assert.Equal(t, []int64{0, 0, 600}, viewsOf(res.Days))
	assert.Equal(t, int64(600), res.Total().Views)
	assert.Equal(t, 1, res.Clamped)
	assert.Equal(t, 0, res.OutOfOrder)
}

func TestAccrue_SameDayKeepsLast(t *testing.T) {
	snaps := []Snapshot{
		snap(1, "2024-01-01", 100),
		{UserID: 1, CapturedAt: day("2024-01-02").Add(1e9), Metrics: Metrics{Views: 150}},
		{UserID: 1, CapturedAt: day("2024-01-02").Add(2e9), Metrics: Metrics{Views: 180}},
	}
	res := Accrue(snaps, mustRange(t, "2024-01-02", "2024-01-02"), AccrualOptions{})
	assert.Equal(t, []int64{80}, viewsOf(res.Days))
}

func TestAccrue_MissingCurOrPrev(t *testing.T) {
	snaps := []Snapshot{
		snap(1, "2024-01-02", 100),
		snap(1, "2024-01-04", 160),
	}
	res := Accrue(snaps, mustRange(t, "2024-01-01", "2024-01-05"), AccrualOptions{})
	// 01-02 没有 prev；01-04 的 prev 回看到 01-02
	assert.Equal(t, []int64{0, 0, 0, 60, 0}, viewsOf(res.Days))
}

func TestAccrue_LookbackWindow(t *testing.T) {
	snaps := []Snapshot{
		snap(1, "2024-01-01", 100),
		snap(1, "2024-01-20", 400),
	}
	r := mustRange(t, "2024-01-20", "2024-01-20")

	assert.Equal(t, []int64{300}, viewsOf(Accrue(snaps, r, AccrualOptions{}).Days))
	assert.Equal(t, []int64{0}, viewsOf(Accrue(snaps, r, AccrualOptions{LookbackDays: 10}).Days))
}

func TestAccrue_StartCutoff(t *testing.T) {
	snaps := []Snapshot{
		snap(1, "2024-01-01", 100),
		snap(1, "2024-01-02", 200),
		snap(1, "2024-01-03", 350),
		snap(1, "2024-01-04", 400),
	}
	res := Accrue(snaps, mustRange(t, "2024-01-02", "2024-01-04"), AccrualOptions{StartCutoff: day("2024-01-03")})
	// prev 在 01-02 仍然前移，01-03 的增量基于 01-02
	assert.Equal(t, []int64{0, 150, 50}, viewsOf(res.Days))
}

func TestAccrue_OutOfOrderInput(t *testing.T) {
	snaps := []Snapshot{
		snap(1, "2024-01-03", 300),
		snap(1, "2024-01-01", 100),
		snap(1, "2024-01-02", 250),
	}
	res := Accrue(snaps, mustRange(t, "2024-01-02", "2024-01-03"), AccrualOptions{})
	assert.Equal(t, 1, res.OutOfOrder)
	assert.Equal(t, []int64{150, 50}, viewsOf(res.Days))
}

func TestAccrue_NonNegative(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	snaps := make([]Snapshot, 0, 60)
	for i := 0; i < 60; i++ {
		captured := day("2024-01-01").AddDate(0, 0, rng.Intn(40))
		snaps = append(snaps, Snapshot{
			UserID:     1,
			CapturedAt: captured,
			Metrics: Metrics{
				Views:    rng.Int63n(10000),
				Likes:    rng.Int63n(500),
				Comments: rng.Int63n(50),
				Shares:   rng.Int63n(50),
				Saves:    rng.Int63n(50),
			},
		})
	}
	r := mustRange(t, "2024-01-05", "2024-02-05")
	res := Accrue(snaps, r, AccrualOptions{StartCutoff: day("2024-01-15")})
	assert.Len(t, res.Days, r.Days())
	for _, d := range res.Days {
		assert.GreaterOrEqual(t, d.Views, int64(0))
		assert.GreaterOrEqual(t, d.Likes, int64(0))
		assert.GreaterOrEqual(t, d.Comments, int64(0))
		assert.GreaterOrEqual(t, d.Shares, int64(0))
		assert.GreaterOrEqual(t, d.Saves, int64(0))
		if d.Date.Before(day("2024-01-15")) {
			assert.True(t, d.Metrics.IsZero(), "day %s before cutoff", DateKey(d.Date))
		}
	}
}

func TestAccrueUsers_GroupsByUser(t *testing.T) {
	snaps := []Snapshot{
		snap(2, "2024-01-01", 10),
		snap(1, "2024-01-01", 100),
		snap(2, "2024-01-02", 40),
		snap(1, "2024-01-02", 130),
	}
	results := AccrueUsers(snaps, mustRange(t, "2024-01-02", "2024-01-02"), AccrualOptions{})
	assert.Len(t, results, 2)
	assert.Equal(t, uint64(2), results[0].UserID)
	assert.Equal(t, int64(30), results[0].Total().Views)
	assert.Equal(t, uint64(1), results[1].UserID)
	assert.Equal(t, int64(30), results[1].Total().Views)
}
