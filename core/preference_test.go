package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePreference(t *testing.T) {
	tests := []struct {
		name string
		data string
		want *PreferenceVector
	}{
		{
			name: "all fields",
			data: `{"difficulty_range":[1,2],"min_distance_km":5,"max_distance_km":20,"preferred_tags":["Forest","forest","Lake"]}`,
			want: &PreferenceVector{
				DifficultyRange: []float64{1, 2},
				MinDistanceKm:   5,
				MaxDistanceKm:   20,
				PreferredTags:   []string{"forest", "lake"},
			},
		},
		{
			name: "missing keys use defaults",
			data: `{}`,
			want: &PreferenceVector{
				DifficultyRange: []float64{0, 3},
				MinDistanceKm:   0,
				MaxDistanceKm:   100,
				PreferredTags:   []string{},
			},
		},
		{
			name: "explicit empty range stays degenerate",
			data: `{"difficulty_range":[],"max_distance_km":0}`,
			want: &PreferenceVector{
				DifficultyRange: []float64{},
				MinDistanceKm:   0,
				MaxDistanceKm:   0,
				PreferredTags:   []string{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodePreference([]byte(tt.data))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePreference_Malformed(t *testing.T) {
	for _, data := range []string{"", "not json", "[1,2]", "null", `{"difficulty_range":"x"}`} {
		_, err := DecodePreference([]byte(data))
		require.Error(t, err, data)
		assert.ErrorIs(t, err, ErrMalformedPreference, data)
		assert.True(t, IsMalformed(err), data)
	}
}

func TestPreferenceVector_Clone(t *testing.T) {
	p := &PreferenceVector{DifficultyRange: []float64{1, 2}, MaxDistanceKm: 10, PreferredTags: []string{"a"}}
	cp := p.Clone()
	cp.DifficultyRange[0] = 0
	cp.PreferredTags[0] = "b"
	assert.Equal(t, []float64{1, 2}, p.DifficultyRange)
	assert.Equal(t, []string{"a"}, p.PreferredTags)
	assert.Nil(t, (*PreferenceVector)(nil).Clone())
}

func TestDomainError_Wrap(t *testing.T) {
	cause := assert.AnError
	err := ErrStoreUnavailable.Wrap(cause)

	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsStoreNotFound(err))
	assert.Nil(t, ErrStoreUnavailable.Err)
}

func TestReason_Valid(t *testing.T) {
	for _, r := range Reasons() {
		assert.True(t, r.Valid())
	}
	assert.False(t, Reason("too-wet").Valid())
	assert.False(t, Reason("").Valid())
}

func TestLessID(t *testing.T) {
	assert.True(t, LessID("2", "10"))
	assert.False(t, LessID("10", "2"))
	assert.True(t, LessID("7", "a"))
	assert.False(t, LessID("a", "7"))
	assert.True(t, LessID("a", "b"))
	assert.False(t, LessID("5", "5"))
}
