package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/trailrank/core"
)

func TestWeights_Validate(t *testing.T) {
	require.NoError(t, DefaultWeights().Validate())
	assert.InDelta(t, 1.0, DefaultWeights().Difficulty+DefaultWeights().Distance+DefaultWeights().Tags, 1e-12)

	assert.Error(t, Weights{Difficulty: 0.5, Distance: 0.5, Tags: 0.5}.Validate())
	assert.Error(t, Weights{Difficulty: 1.2, Distance: -0.1, Tags: -0.1}.Validate())

	_, err := NewCBFModel(Weights{Difficulty: 1})
	require.NoError(t, err)
	_, err = NewCBFModel(Weights{})
	require.Error(t, err)
}

func TestCBFModel_Score(t *testing.T) {
	m, err := NewCBFModel(DefaultWeights())
	require.NoError(t, err)

	pref := &core.PreferenceVector{
		DifficultyRange: []float64{1, 2},
		MinDistanceKm:   5,
		MaxDistanceKm:   20,
		PreferredTags:   []string{"forest"},
	}
	vec := core.ItemVector{Difficulty: 2, LengthKm: 15, Tags: []string{"forest", "scenic"}}

	score, bd := m.Score(pref, vec)
	assert.InDelta(t, 0.85, score, 1e-9)
	assert.InDelta(t, 1.0, bd.Difficulty.Score, 1e-12)
	assert.InDelta(t, 0.4, bd.Difficulty.WeightedScore, 1e-12)
	assert.InDelta(t, 1.0, bd.Distance.Score, 1e-12)
	assert.InDelta(t, 0.5, bd.Tags.Score, 1e-12)
	assert.InDelta(t, 0.15, bd.Tags.WeightedScore, 1e-12)
	assert.Equal(t, []float64{1, 2}, bd.Difficulty.UserRange)
	assert.Equal(t, [2]float64{5, 20}, bd.Distance.UserRange)
	assert.Equal(t, 15.0, bd.Distance.ItemValue)
	assert.Equal(t, []string{"forest", "scenic"}, bd.Tags.ItemTags)
	assert.Equal(t, score, bd.BaseScore)
	assert.Equal(t, 1.0, bd.PenaltyMultiplier)
	assert.Equal(t, score, bd.FinalScore)
}

func TestCBFModel_MissingItemData(t *testing.T) {
	m, err := NewCBFModel(DefaultWeights())
	require.NoError(t, err)

	for _, rng := range [][]float64{{0, 3}, {2, 3}, {}} {
		pref := &core.PreferenceVector{DifficultyRange: rng, MaxDistanceKm: 30, PreferredTags: []string{"lake"}}
		vec := core.ItemVector{Difficulty: 0, LengthKm: 0, Tags: []string{}}

		score, bd := m.Score(pref, vec)
		assert.InDelta(t, 0.3, bd.Distance.Score, 1e-12)
		assert.InDelta(t, 0.2, bd.Tags.Score, 1e-12)
		assert.LessOrEqual(t, score, 0.4*bd.Difficulty.Score+0.09+0.06+1e-12)
	}
}

func TestCBFModel_ScoreInUnitInterval(t *testing.T) {
	m := &CBFModel{Weights: DefaultWeights()}
	prefs := []*core.PreferenceVector{
		nil,
		{DifficultyRange: []float64{3, 0}, MinDistanceKm: 50, MaxDistanceKm: 1},
		{DifficultyRange: []float64{0, 0}, MaxDistanceKm: 0, PreferredTags: []string{"x"}},
	}
	vecs := []core.ItemVector{
		{},
		{Difficulty: 3, LengthKm: 1000, Tags: []string{"x", "y"}},
		{Difficulty: 1, LengthKm: 0.1},
	}
	for _, p := range prefs {
		for _, v := range vecs {
			score, _ := m.Score(p, v)
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		}
	}
}
