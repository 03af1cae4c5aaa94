package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseTable_csv(t *testing.T) {
	contents := []byte("Email, Name ,,Year\n" +
		"awe@test.cd,Awe Mbuyi,ignored,2\n" +
		"kim@test.cd,Kim Ilunga\n")

	rows, err := ParseTable(contents, "roster.csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// headers are kept verbatim; the empty-header column is dropped
	assert.Equal(t, []string{"Email", " Name ", "Year"}, rows[0].Headers)
	assert.Equal(t, "awe@test.cd", rows[0].Cells["Email"])
	assert.Equal(t, "Awe Mbuyi", rows[0].Cells[" Name "])
	assert.Equal(t, "2", rows[0].Cells["Year"])

	// short rows read as empty cells
	assert.Equal(t, "kim@test.cd", rows[1].Cells["Email"])
	assert.Equal(t, "", rows[1].Cells["Year"])
}

func TestParseTable_csvHeaderOnly(t *testing.T) {
	rows, err := ParseTable([]byte("Email,Name\n"), "roster.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseTable_empty(t *testing.T) {
	rows, err := ParseTable(nil, "roster.csv")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestParseTable_unsupportedFormat(t *testing.T) {
	_, err := ParseTable([]byte("lol"), "roster.pdf")
	assert.Equal(t, ErrUnsupportedFormat, err)
}

func TestParseTable_xlsx(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Email", "Name"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"awe@test.cd", "Awe Mbuyi"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	rows, err := ParseTable(buf.Bytes(), "roster.xlsx")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Email", "Name"}, rows[0].Headers)
	assert.Equal(t, "awe@test.cd", rows[0].Cells["Email"])
}
