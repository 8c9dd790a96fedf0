package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	data := Dataset{
		Headers: []string{"Day", "Subject"},
		Rows:    []map[string]string{{"Day": "Day 1", "Subject": "Math, visual"}},
	}
	out, err := NewCSVExporter().Render(data, "Plan for Alex")
	require.NoError(t, err)
	assert.Equal(t, "Plan for Alex\nDay,Subject\nDay 1,\"Math, visual\"\n", string(out))

	_, err = NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	doc := Document{
		Title:    "Learning Plan – Alex",
		Subtitle: "Generated 2024-03-04",
		Sections: []Section{{Heading: "Accommodations", Items: []string{"Visual schedule"}}},
		Groups: []TableGroup{{
			Heading: "Day 1 - Monday",
			Notes:   "Use a timer",
			Table: Dataset{
				Headers: []string{"Time", "Activity"},
				Rows:    []map[string]string{{"Time": "9:00-9:20", "Activity": string(bytes.Repeat([]byte("long "), 80))}},
			},
			Widths: []float64{1, 4},
		}},
	}
	out, err := NewPDFExporter().Render(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Document{Groups: []TableGroup{{Heading: "x"}}})
	assert.Error(t, err)
}

func TestColumnWidths(t *testing.T) {
	assert.Equal(t, []float64{95, 95}, columnWidths(2, nil))
	assert.Equal(t, []float64{38, 152}, columnWidths(2, []float64{1, 4}))
}
