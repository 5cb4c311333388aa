package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeLabel(t *testing.T) {
	tests := []struct {
		name     string
		existing Label
		incoming Label
		want     Label
	}{
		{"empty existing", Label{}, Label{Value: "a", Source: "rank"}, Label{Value: "a", Source: "rank"}},
		{"empty incoming", Label{Value: "a", Source: "rank"}, Label{}, Label{Value: "a", Source: "rank"}},
		{"different sources", Label{Value: "a", Source: "filter"}, Label{Value: "b", Source: "rank"}, Label{Value: "a|b", Source: "filter,rank"}},
		{"same source", Label{Value: "a", Source: "rank"}, Label{Value: "b", Source: "rank"}, Label{Value: "a|b", Source: "rank"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeLabel(tt.existing, tt.incoming))
		})
	}
}
