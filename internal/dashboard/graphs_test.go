package dashboard

import (
	"testing"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Plain output so rendered frames can be compared as text.
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestRenderBarChart(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		width  int
		height int
		want   []string
	}{
		{
			name:   "empty data renders blank rows",
			data:   nil,
			width:  5,
			height: 1,
			want:   []string{"     "},
		},
		{
			name:   "short history is right aligned",
			data:   []float64{1},
			width:  4,
			height: 1,
			want:   []string{"   █"},
		},
		{
			name:   "peak fills the row",
			data:   []float64{1, 4},
			width:  2,
			height: 1,
			want:   []string{"▄█"},
		},
		{
			name:   "sqrt scaling keeps small values visible",
			data:   []float64{1, 64},
			width:  2,
			height: 1,
			want:   []string{"▁█"},
		},
		{
			name:   "only the newest samples are shown",
			data:   []float64{9, 0, 0, 4},
			width:  2,
			height: 1,
			want:   []string{" █"},
		},
		{
			name:   "non-positive values are blank",
			data:   []float64{-1, 0, 4},
			width:  3,
			height: 1,
			want:   []string{"  █"},
		},
		{
			name:   "all zero renders blank",
			data:   []float64{0, 0, 0},
			width:  3,
			height: 2,
			want:   []string{"   ", "   "},
		},
		{
			name:   "rows stack top first",
			data:   []float64{1, 4},
			width:  2,
			height: 2,
			want:   []string{" █", "██"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderBarChart(tt.data, tt.width, tt.height))
		})
	}
}

func TestRenderBarChart_RowWidth(t *testing.T) {
	data := make([]float64, 500)
	for i := range data {
		data[i] = float64(i % 17)
	}

	rows := RenderBarChart(data, 73, 3)
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Equal(t, 73, utf8.RuneCountInString(row))
	}
}

func TestRenderBarChart_InvalidSize(t *testing.T) {
	assert.Nil(t, RenderBarChart([]float64{1}, 0, 1))
	assert.Nil(t, RenderBarChart([]float64{1}, 4, 0))
}

func TestClampInt(t *testing.T) {
	assert.Equal(t, 0, clampInt(-3, 8))
	assert.Equal(t, 5, clampInt(5, 8))
	assert.Equal(t, 8, clampInt(12, 8))
}
