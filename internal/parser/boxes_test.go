package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvision/internal/domain"
	"docvision/internal/parser"
)

func TestParseBoundingBox_EncodingsAgree(t *testing.T) {
	want := &domain.Box{X1: 10, Y1: 20, X2: 100, Y2: 200}

	inputs := []string{
		"[10, 20, 100, 200]",
		"(10, 20, 100, 200)",
		`{"x1": 10, "y1": 20, "x2": 100, "y2": 200}`,
		"The box is at [10,20,100,200] in the image",
		"located at (10, 20, 100, 200).",
		"10, 20, 100, 200",
		`The box is {"x1": 10, "y1": 20, "x2": 100, "y2": 200} in the image`,
		"```json\n{\"x1\": 10, \"y1\": 20, \"x2\": 100, \"y2\": 200}\n```",
	}
	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, parser.ParseBoundingBox(in))
		})
	}
}

func TestParseBoundingBox_CoercesNumbers(t *testing.T) {
	got := parser.ParseBoundingBox(`{"x1": 10.7, "y1": "20", "x2": 100, "y2": 200}`)

	require.NotNil(t, got)
	assert.Equal(t, 10, got.X1)
	assert.Equal(t, 20, got.Y1)
}

func TestParseBoundingBox_NormalizesReversedCorners(t *testing.T) {
	got := parser.ParseBoundingBox("[100, 200, 10, 20]")

	require.NotNil(t, got)
	assert.Equal(t, domain.Box{X1: 10, Y1: 20, X2: 100, Y2: 200}, *got)
}

func TestParseBoundingBox_None(t *testing.T) {
	assert.Nil(t, parser.ParseBoundingBox("no numbers"))
	assert.Nil(t, parser.ParseBoundingBox("[1, 2, 3]"))
	assert.Nil(t, parser.ParseBoundingBox(`{"x1": 1, "y1": 2}`))
}

func TestBoxFromValue(t *testing.T) {
	b, ok := parser.BoxFromValue([]any{float64(5), float64(6), float64(7), float64(8)})
	require.True(t, ok)
	assert.Equal(t, domain.Box{X1: 5, Y1: 6, X2: 7, Y2: 8}, b)

	_, ok = parser.BoxFromValue("not a box")
	assert.False(t, ok)

	assert.Nil(t, parser.BoxPtr(map[string]any{"x1": 1}))
}

func TestParseLabeledBoxes_JSONArray(t *testing.T) {
	text := "```json\n" + `[
		{"text": "Hello", "bbox": {"x1": 0, "y1": 0, "x2": 50, "y2": 10}},
		{"label": "Title", "type": "header", "level": 1, "bbox": [5, 5, 60, 20]}
	]` + "\n```"

	got := parser.ParseLabeledBoxes(text)

	require.Len(t, got, 2)
	assert.Equal(t, "Hello", got[0].Label)
	assert.Equal(t, domain.Box{X1: 0, Y1: 0, X2: 50, Y2: 10, Label: "Hello"}, got[0].BBox)
	assert.Equal(t, "Title", got[1].Label)
	assert.Equal(t, "header", got[1].Attrs["type"])
	assert.Equal(t, float64(1), got[1].Attrs["level"])
}

func TestParseLabeledBoxes_SingleObject(t *testing.T) {
	got := parser.ParseLabeledBoxes(`{"label": "logo", "x1": 1, "y1": 2, "x2": 3, "y2": 4}`)

	require.Len(t, got, 1)
	assert.Equal(t, "logo", got[0].Label)
	assert.Nil(t, got[0].Attrs)
}

func TestParseLabeledBoxes_WrappedArray(t *testing.T) {
	text := `{"elements": [{"type": "table", "bbox": [0, 0, 10, 10]}]}`

	got := parser.ParseLabeledBoxes(text)

	require.Len(t, got, 1)
	assert.Equal(t, "table", got[0].Attrs["type"])
}

func TestParseLabeledBoxes_LineFallback(t *testing.T) {
	text := "The model said:\n\"header\": [0, 0, 500, 50]\nfooter: (0, 900, 500, 1000)\n"

	got := parser.ParseLabeledBoxes(text)

	require.Len(t, got, 2)
	assert.Equal(t, "header", got[0].Label)
	assert.Equal(t, domain.Box{X1: 0, Y1: 0, X2: 500, Y2: 50, Label: "header"}, got[0].BBox)
	assert.Equal(t, "footer", got[1].Label)
	assert.Equal(t, 900, got[1].BBox.Y1)
}

func TestParseLabeledBoxes_Nothing(t *testing.T) {
	assert.Empty(t, parser.ParseLabeledBoxes("plain text"))
}
