package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizeSplitsQuotedCells(t *testing.T) {
	rows := Tokenize("\ufeffEmail,Name,Notes\r\njane@x.com, \"Doe, Jane\" ,\"likes \"\"low\"\" shots\"\r\n\r\n\n")

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Email", "Name", "Notes"}, rows[0])
	assert.Equal(t, []string{"jane@x.com", "Doe, Jane", "likes low shots"}, rows[1])
}

func TestTokenizeUnterminatedQuoteConsumesRow(t *testing.T) {
	rows := Tokenize("a,\"b,c\nd,e")

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"a", "b,c"}, rows[0])
	assert.Equal(t, []string{"d", "e"}, rows[1])
}

func TestTokenizeEmpty(t *testing.T) {
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize("\ufeff\r\n  \n"))
}
