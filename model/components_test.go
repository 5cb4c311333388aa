package model

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDifficultyScore(t *testing.T) {
	tests := []struct {
		name  string
		rng   []float64
		value int
		want  float64
	}{
		{"inside", []float64{1, 2}, 2, 1.0},
		{"lower bound inclusive", []float64{1, 2}, 1, 1.0},
		{"one below", []float64{1, 2}, 0, 0.5},
		{"one above", []float64{0, 1}, 2, 0.5},
		{"two above", []float64{0, 1}, 3, 0.25},
		{"fractional bound", []float64{0.5, 1.5}, 3, math.Pow(0.5, 1.5)},
		{"empty range", []float64{}, 3, 0.5},
		{"single bound", []float64{2}, 0, 0.5},
		{"nil range", nil, 1, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, DifficultyScore(tt.rng, tt.value), 1e-12)
		})
	}
}

func TestDifficultyScore_MonotonicInDistance(t *testing.T) {
	rng := []float64{1, 1}
	prev := DifficultyScore(rng, 1)
	for v := 2; v <= 3; v++ {
		cur := DifficultyScore(rng, v)
		assert.LessOrEqual(t, cur, prev)
		assert.GreaterOrEqual(t, cur, 0.0)
		prev = cur
	}
}

func TestDistanceScore(t *testing.T) {
	tests := []struct {
		name                string
		minKm, maxKm, value float64
		want                float64
	}{
		{"unknown length", 5, 20, 0, 0.3},
		{"inside", 5, 20, 15, 1.0},
		{"upper bound inclusive", 5, 20, 20, 1.0},
		{"above", 5, 20, 40, math.Pow(0.7, 1)},
		{"below", 5, 20, 1, math.Pow(0.7, 0.2)},
		{"zero max above", 0, 0, 3, 0},
		{"negative max clamps into unit", 0, -5, 3, 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceScore(tt.minKm, tt.maxKm, tt.value)
			assert.InDelta(t, tt.want, got, 1e-12)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.LessOrEqual(t, got, 1.0)
		})
	}
}

func TestTagScore(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want float64
	}{
		{"both empty", nil, []string{}, 0.5},
		{"left empty", nil, []string{"forest"}, 0.2},
		{"right empty", []string{"forest"}, nil, 0.2},
		{"half overlap", []string{"forest"}, []string{"forest", "scenic"}, 0.5},
		{"case insensitive identity", []string{"Forest", "LAKE"}, []string{"forest", "lake"}, 1.0},
		{"disjoint", []string{"a"}, []string{"b"}, 0},
		{"empty string is a tag", []string{""}, []string{"forest"}, 0},
		{"whitespace kept", []string{" forest"}, []string{"forest"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TagScore(tt.a, tt.b), 1e-12)
			assert.InDelta(t, TagScore(tt.a, tt.b), TagScore(tt.b, tt.a), 1e-12, "symmetric")
		})
	}
}
