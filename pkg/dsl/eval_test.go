package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rushteam/trailrank/core"
	"github.com/rushteam/trailrank/pkg/utils"
)

func TestProgram_Eval(t *testing.T) {
	item := &core.Item{
		ID:     "42",
		Raw:    &core.RawItem{ID: "42", Title: "Ridge loop", CategoryName: "Hiking trail"},
		Vector: core.ItemVector{Difficulty: 2, LengthKm: 12.5, Tags: []string{"forest", "scenic"}},
		Score:  0.8,
		Labels: map[string]utils.Label{"rank_model": {Value: "cbf", Source: "rank"}},
	}
	rctx := &core.RecommendContext{
		SubjectID:      "u1",
		Mode:           core.ModePersonalized,
		FeedbackCounts: map[string]int{"42": 1},
		Params:         map[string]any{"max_km": 20.0},
	}

	tests := []struct {
		expr string
		want bool
	}{
		{`item.length_km <= 30.0`, true},
		{`item.difficulty >= 3`, false},
		{`"forest" in item.tags && item.category == "Hiking trail"`, true},
		{`label.rank_model == "cbf" && item.score > 0.7`, true},
		{`rctx.mode == "PERSONALIZED" && item.feedback_count == 0`, false},
		{`item.length_km < rctx.params.max_km`, true},
		{`item.title.startsWith("Ridge")`, true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			prg, err := Compile(tt.expr)
			require.NoError(t, err)
			got, err := prg.Eval(item, rctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	_, err := Compile(`item.length_km <=`)
	assert.Error(t, err)

	prg, err := Compile(`item.length_km`)
	require.NoError(t, err)
	_, err = prg.Eval(&core.Item{ID: "1"}, nil)
	assert.ErrorContains(t, err, "boolean")
}

func TestCompile_EmptyAlwaysTrue(t *testing.T) {
	prg, err := Compile("")
	require.NoError(t, err)
	ok, err := prg.Eval(nil, nil)
	require.NoError(t, err)
	assert.True(t, ok)
}
