package feature

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rushteam/trailrank/core"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func TestParseTags(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{"flat strings", `["Forest","Lake"]`, []string{"forest", "lake"}},
		{"name objects", `[{"name":"Forest"},{"name":"Scenic","id":3}]`, []string{"forest", "scenic"}},
		{"mixed and duplicated", `["forest",{"name":"FOREST"},{"name":"lake"}]`, []string{"forest", "lake"}},
		{"foreign elements ignored", `[1,null,{"label":"x"},["y"],"ok"]`, []string{"ok"}},
		{"empty payload", ``, []string{}},
		{"malformed json", `["forest",`, []string{}},
		{"not a list", `{"name":"forest"}`, []string{}},
		{"empty list", `[]`, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTags(tt.payload))
		})
	}
}

func TestExtractor_Extract(t *testing.T) {
	tests := []struct {
		name string
		raw  *core.RawItem
		want core.ItemVector
	}{
		{
			name: "complete record",
			raw:  &core.RawItem{ID: "1", Difficulty: intPtr(2), LengthMeters: floatPtr(15000), TagsJSON: `["Forest","Scenic"]`},
			want: core.ItemVector{Difficulty: 2, LengthKm: 15, Tags: []string{"forest", "scenic"}},
		},
		{
			name: "missing data",
			raw:  &core.RawItem{ID: "2"},
			want: core.ItemVector{Difficulty: 0, LengthKm: 0, Tags: []string{}},
		},
		{
			name: "zero length and malformed tags",
			raw:  &core.RawItem{ID: "3", Difficulty: intPtr(1), LengthMeters: floatPtr(0), TagsJSON: "oops"},
			want: core.ItemVector{Difficulty: 1, LengthKm: 0, Tags: []string{}},
		},
		{
			name: "out of range difficulty is clamped",
			raw:  &core.RawItem{ID: "4", Difficulty: intPtr(7), LengthMeters: floatPtr(-5)},
			want: core.ItemVector{Difficulty: 3, LengthKm: 0, Tags: []string{}},
		},
		{
			name: "nil record",
			raw:  nil,
			want: core.ItemVector{Tags: []string{}},
		},
	}
	e := NewExtractor()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Extract(tt.raw))
		})
	}
}

func TestExtractor_ExtractAll(t *testing.T) {
	items := []*core.RawItem{
		{ID: "a", Difficulty: intPtr(1)},
		nil,
		{ID: "b", LengthMeters: floatPtr(2500)},
	}
	got := NewExtractor().ExtractAll(items)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, got["a"].Difficulty)
	assert.InDelta(t, 2.5, got["b"].LengthKm, 1e-9)
}

func TestExtractor_Monitor(t *testing.T) {
	mon := NewCountingMonitor()
	e := NewExtractor(WithMonitor(mon))

	e.Extract(&core.RawItem{ID: "ok", Difficulty: intPtr(2), LengthMeters: floatPtr(1000), TagsJSON: `["a"]`})
	assert.Empty(t, mon.Snapshot())

	e.Extract(&core.RawItem{ID: "bare"})
	e.Extract(&core.RawItem{ID: "bad", Difficulty: intPtr(9), LengthMeters: floatPtr(0), TagsJSON: `{oops`})

	assert.Equal(t, int64(2), mon.Count(FieldDifficulty))
	assert.Equal(t, int64(2), mon.Count(FieldLength))
	assert.Equal(t, int64(2), mon.Count(FieldTags))
}

func TestExtractor_ExtractAllUsesCache(t *testing.T) {
	cache := NewVectorCache(10, 0)
	defer cache.Close()
	mon := NewCountingMonitor()
	e := NewExtractor(WithVectorCache(cache), WithMonitor(mon))

	items := []*core.RawItem{
		{ID: "a", TagsJSON: `["x"]`},
		{ID: "b", Difficulty: intPtr(1), LengthMeters: floatPtr(3000), TagsJSON: `{oops`},
	}
	first := e.ExtractAll(items)
	second := e.ExtractAll(items)

	assert.Equal(t, first, second)
	assert.Equal(t, 2, cache.Len())
	// 命中缓存时照样上报缺失字段
	assert.Equal(t, int64(2), mon.Count(FieldDifficulty))
	assert.Equal(t, int64(2), mon.Count(FieldLength))
	assert.Equal(t, int64(2), mon.Count(FieldTags))
}
