package feedback

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/trailrank/core"
)

const day = 24 * time.Hour

func entry(item string, reason core.Reason) core.FeedbackEntry {
	return core.FeedbackEntry{SubjectID: "u1", ItemID: item, Reason: reason}
}

func basePref() *core.PreferenceVector {
	return &core.PreferenceVector{
		DifficultyRange: []float64{1, 2},
		MinDistanceKm:   5,
		MaxDistanceKm:   20,
		PreferredTags:   []string{"forest", "lake", "scenic"},
	}
}

var vectors = map[string]core.ItemVector{
	"r1": {Difficulty: 3, LengthKm: 30, Tags: []string{"Forest", "panorama"}},
	"r2": {Difficulty: 0, LengthKm: 2, Tags: []string{"lake"}},
}

func TestRecencyWeight(t *testing.T) {
	assert.Equal(t, 1.0, RecencyWeight(0, DefaultHalfLife))
	assert.Equal(t, 1.0, RecencyWeight(-day, DefaultHalfLife))
	assert.InDelta(t, math.Exp(-1), RecencyWeight(30*day, DefaultHalfLife), 1e-12)
	assert.InDelta(t, math.Exp(-0.5), RecencyWeight(15*day, 0), 1e-12)
	assert.Greater(t, RecencyWeight(day, DefaultHalfLife), RecencyWeight(10*day, DefaultHalfLife))
}

func TestAdjust_TooHardSequence(t *testing.T) {
	l := NewLearner()
	want := [][]float64{{0.5, 1.5}, {0, 1}, {0, 1}}
	for i, w := range want {
		entries := make([]core.FeedbackEntry, i+1)
		for j := range entries {
			entries[j] = entry("r1", core.ReasonTooHard)
		}
		got := l.Adjust(basePref(), entries, vectors)
		assert.InDeltaSlice(t, w, got.DifficultyRange, 1e-12, "after %d entries", i+1)
	}
}

func TestAdjust_TooEasy(t *testing.T) {
	l := NewLearner()
	entries := []core.FeedbackEntry{entry("r2", core.ReasonTooEasy), entry("r2", core.ReasonTooEasy)}
	got := l.Adjust(basePref(), entries, vectors)
	assert.InDeltaSlice(t, []float64{2, 3}, got.DifficultyRange, 1e-12)

	entries = append(entries, entry("r2", core.ReasonTooEasy), entry("r2", core.ReasonTooEasy))
	got = l.Adjust(basePref(), entries, vectors)
	assert.InDeltaSlice(t, []float64{2, 3}, got.DifficultyRange, 1e-12)
}

func TestAdjust_TooFar(t *testing.T) {
	l := NewLearner()
	got := l.Adjust(basePref(), []core.FeedbackEntry{entry("r1", core.ReasonTooFar)}, vectors)
	assert.InDelta(t, 18.0, got.MaxDistanceKm, 1e-12)

	narrow := &core.PreferenceVector{DifficultyRange: []float64{0, 3}, MinDistanceKm: 5, MaxDistanceKm: 7.5}
	got = l.Adjust(narrow, []core.FeedbackEntry{entry("r1", core.ReasonTooFar), entry("r1", core.ReasonTooFar)}, vectors)
	assert.InDelta(t, 7.0, got.MaxDistanceKm, 1e-12)
}

func TestAdjust_NotInterested(t *testing.T) {
	l := NewLearner()
	got := l.Adjust(basePref(), []core.FeedbackEntry{entry("r1", core.ReasonNotInterested)}, vectors)
	assert.Equal(t, []string{"lake", "scenic"}, got.PreferredTags)
}

func TestAdjust_RecencyScalesShift(t *testing.T) {
	l := NewLearner()
	e := entry("r1", core.ReasonTooHard)
	e.Age = 30 * day
	got := l.Adjust(basePref(), []core.FeedbackEntry{e}, vectors)
	shift := 0.5 * math.Exp(-1)
	assert.InDeltaSlice(t, []float64{1 - shift, 2 - shift}, got.DifficultyRange, 1e-12)
}

func TestAdjust_SkipsAndGuards(t *testing.T) {
	l := NewLearner()
	base := basePref()

	t.Run("empty feedback returns equal copy", func(t *testing.T) {
		got := l.Adjust(base, nil, vectors)
		assert.Equal(t, base, got)
		assert.NotSame(t, base, got)
	})

	t.Run("unknown item skipped", func(t *testing.T) {
		got := l.Adjust(base, []core.FeedbackEntry{entry("missing", core.ReasonTooHard)}, vectors)
		assert.Equal(t, base, got)
	})

	t.Run("unknown reason ignored", func(t *testing.T) {
		got := l.Adjust(base, []core.FeedbackEntry{entry("r1", core.Reason("too-wet"))}, vectors)
		assert.Equal(t, base, got)
	})

	t.Run("degenerate range left alone", func(t *testing.T) {
		p := &core.PreferenceVector{DifficultyRange: []float64{2}, MaxDistanceKm: 10}
		got := l.Adjust(p, []core.FeedbackEntry{entry("r1", core.ReasonTooHard)}, vectors)
		assert.Equal(t, []float64{2}, got.DifficultyRange)
	})

	t.Run("inverted range restored", func(t *testing.T) {
		p := &core.PreferenceVector{DifficultyRange: []float64{2.5, 0.2}, MaxDistanceKm: 10}
		got := l.Adjust(p, []core.FeedbackEntry{entry("r1", core.ReasonTooHard)}, vectors)
		assert.Equal(t, []float64{2.5, 0.2}, got.DifficultyRange)
	})

	t.Run("non-positive max restored", func(t *testing.T) {
		p := &core.PreferenceVector{DifficultyRange: []float64{0, 3}, MinDistanceKm: -10, MaxDistanceKm: -4}
		got := l.Adjust(p, []core.FeedbackEntry{entry("r1", core.ReasonTooFar)}, vectors)
		assert.Equal(t, -4.0, got.MaxDistanceKm)
	})

	t.Run("input never mutated", func(t *testing.T) {
		entries := []core.FeedbackEntry{
			entry("r1", core.ReasonTooHard),
			entry("r1", core.ReasonTooFar),
			entry("r1", core.ReasonNotInterested),
		}
		_ = l.Adjust(base, entries, vectors)
		assert.Equal(t, basePref(), base)
	})

	assert.Nil(t, l.Adjust(nil, nil, nil))
}

func TestPenalty(t *testing.T) {
	l := NewLearner()
	tests := []struct {
		count int
		want  float64
	}{
		{0, 1.0}, {1, 0.5}, {2, 0.1}, {3, 0.01}, {4, 0.01}, {10, 0.01},
	}
	prev := math.Inf(1)
	for _, tt := range tests {
		got := l.PenaltyForCount(tt.count)
		assert.Equal(t, tt.want, got, "count %d", tt.count)
		assert.LessOrEqual(t, got, prev)
		prev = got
	}

	entries := []core.FeedbackEntry{entry("x", core.ReasonTooHard), entry("x", core.ReasonTooFar), entry("y", core.ReasonTooEasy)}
	assert.Equal(t, 0.1, l.Penalty("x", entries))
	assert.Equal(t, 0.5, l.Penalty("y", entries))
	assert.Equal(t, 1.0, l.Penalty("z", entries))
	assert.Equal(t, map[string]int{"x": 2, "y": 1}, CountByItem(entries))
}

func TestExcluded(t *testing.T) {
	l := NewLearner()
	assert.False(t, l.Excluded(3))
	assert.True(t, l.Excluded(4))
	assert.True(t, l.Excluded(9))

	custom := NewLearner(WithExclusionThreshold(2))
	assert.True(t, custom.Excluded(2))
}

func TestOptions(t *testing.T) {
	l := NewLearner(
		WithHalfLife(7*day),
		WithPenalties([]float64{1, 0.2}),
		WithExclusionThreshold(0),
	)
	assert.Equal(t, 7*day, l.HalfLife)
	assert.Equal(t, []float64{1, 0.2}, l.Penalties)
	assert.Equal(t, DefaultExclusionThreshold, l.ExclusionThreshold)
	assert.Equal(t, 0.2, l.PenaltyForCount(5))

	ignored := NewLearner(WithPenalties([]float64{0.5, 1}))
	assert.Equal(t, DefaultPenalties(), ignored.Penalties)
}
