package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRowsCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vocab.csv")
	content := "text,translation,kind\n" +
		"hola,hello,lemma\n" +
		"\"echar de menos\",\"to miss\",phrase\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	rows, err := readRows(path, "Sheet1")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "hola", rows[1][0])
	assert.Equal(t, "echar de menos", rows[2][0])
	assert.Equal(t, "phrase", rows[2][2])
}

func TestReadRowsCSVRaggedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ragged.csv")
	require.NoError(t, os.WriteFile(path, []byte("a,b,c\nx\n"), 0644))

	rows, err := readRows(path, "")
	require.NoError(t, err, "rows with fewer columns are tolerated")
	require.Len(t, rows, 2)
	assert.Equal(t, "x", cell(rows[1], 0))
	assert.Equal(t, "", cell(rows[1], 2), "missing cells read as empty")
}

func TestCellTrimsWhitespace(t *testing.T) {
	row := []string{"  hola  ", "\thello\n"}
	assert.Equal(t, "hola", cell(row, 0))
	assert.Equal(t, "hello", cell(row, 1))
	assert.Equal(t, "", cell(row, 5))
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 7, parseInt("7"))
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, 0, parseInt("x"))

	assert.True(t, parseBool("1"))
	assert.True(t, parseBool("TRUE"))
	assert.True(t, parseBool("yes"))
	assert.False(t, parseBool(""))
	assert.False(t, parseBool("0"))
	assert.False(t, parseBool("no"))
}
