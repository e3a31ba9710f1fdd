package csvimport

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// buildWorkbook writes rows into a single-sheet workbook and returns its bytes
func buildWorkbook(t *testing.T, sheet string, rows [][]interface{}) []byte {
	t.Helper()

	f := excelize.NewFile()
	if sheet != "Sheet1" {
		require.NoError(t, f.SetSheetName("Sheet1", sheet))
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &rows[i]))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestNewXLSXParser(t *testing.T) {
	t.Run("Valid workbook", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name"},
			{"001", "Widget"},
		})

		parser, err := NewXLSXParser(data)

		require.NoError(t, err)
		require.NotNil(t, parser)
		assert.Equal(t, "Sheet1", parser.Sheet())
	})

	t.Run("Empty data returns error", func(t *testing.T) {
		parser, err := NewXLSXParser(nil)

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Not a workbook returns error", func(t *testing.T) {
		parser, err := NewXLSXParser([]byte("code,name\n001,Widget"))

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrInvalidWorkbook)
	})

	t.Run("Workbook without rows returns error", func(t *testing.T) {
		f := excelize.NewFile()
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		parser, err := NewXLSXParser(buf.Bytes())

		assert.Nil(t, parser)
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("Named sheet", func(t *testing.T) {
		data := buildWorkbook(t, "Products", [][]interface{}{
			{"code", "name"},
			{"001", "Widget"},
		})

		parser, err := NewXLSXParser(data, WithSheet("Products"))

		require.NoError(t, err)
		assert.Equal(t, "Products", parser.Sheet())
	})

	t.Run("Missing named sheet returns error", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code"},
		})

		_, err := NewXLSXParser(data, WithSheet("Nope"))

		assert.Error(t, err)
	})
}

func TestXLSXParser_ParseHeader(t *testing.T) {
	t.Run("Headers trimmed and indexed", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"  code  ", "name", "price"},
			{"001", "Widget", "10.00"},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)

		require.NoError(t, parser.ParseHeader())

		assert.Equal(t, []string{"code", "name", "price"}, parser.Headers())
		assert.Equal(t, map[string]int{"code": 0, "name": 1, "price": 2}, parser.HeaderMap())
		assert.True(t, parser.HasHeader("code"))
		assert.False(t, parser.HasHeader("description"))
		assert.Equal(t, 1, parser.CurrentRow())
	})

	t.Run("ValidateHeaders finds missing", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name"},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		missing := parser.ValidateHeaders([]string{"code", "name", "price"})

		assert.Equal(t, []string{"price"}, missing)
	})
}

func TestXLSXParser_ReadRow(t *testing.T) {
	t.Run("Rows keep sheet line numbers", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name", "price"},
			{"001", "Widget", "10.00"},
			{"002", "Gadget", "12.50"},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 2, row.LineNumber)
		assert.Equal(t, "001", row.Get("code"))
		assert.Equal(t, "Widget", row.Get("name"))

		row, err = parser.ReadRow()
		require.NoError(t, err)
		assert.Equal(t, 3, row.LineNumber)
		assert.Equal(t, "12.50", row.Get("price"))

		_, err = parser.ReadRow()
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Missing trailing cells are empty", func(t *testing.T) {
		// excelize drops trailing empty cells from GetRows
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name", "price"},
			{"001"},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()

		require.NoError(t, err)
		assert.Equal(t, "001", row.Get("code"))
		assert.Equal(t, "", row.Get("name"))
		assert.Equal(t, "", row.Get("price"))
	})

	t.Run("Cell values are trimmed", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name"},
			{"  001  ", "  Widget  "},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		row, err := parser.ReadRow()

		require.NoError(t, err)
		assert.Equal(t, "001", row.Get("code"))
		assert.Equal(t, "Widget", row.Get("name"))
	})
}

func TestXLSXParser_ReadAllRows(t *testing.T) {
	t.Run("Skips empty rows", func(t *testing.T) {
		data := buildWorkbook(t, "Sheet1", [][]interface{}{
			{"code", "name"},
			{"001", "Widget"},
			{},
			{"002", "Gadget"},
		})
		parser, err := NewXLSXParser(data)
		require.NoError(t, err)
		require.NoError(t, parser.ParseHeader())

		rows, err := parser.ReadAllRows()

		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "001", rows[0].Get("code"))
		assert.Equal(t, "002", rows[1].Get("code"))
		// Line numbers still count the skipped sheet row
		assert.Equal(t, 2, rows[0].LineNumber)
		assert.Equal(t, 4, rows[1].LineNumber)
	})
}
