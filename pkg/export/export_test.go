package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Roster",
		Headers: []string{"ID", "Email", "Team"},
		Rows: [][]string{
			{"GC-8000", "jane@x.com", "Eagles, North"},
			{"GC-8001", "sam@x.com"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "ID,Email,Team\nGC-8000,jane@x.com,\"Eagles, North\"\nGC-8001,sam@x.com,\n", string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestXLSXExporterRender(t *testing.T) {
	out, err := NewXLSXExporter().Render(sampleDataset())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Roster")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"ID", "Email", "Team"}, rows[0])
	assert.Equal(t, "Eagles, North", rows[1][2])
	assert.Equal(t, "sam@x.com", rows[2][1])
}
