package csvimport

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

// XLSXParser reads rows from the first (or a named) worksheet of an XLSX
// workbook and exposes the same Row-based surface as CSVParser so the import
// pipeline can treat both formats uniformly.
type XLSXParser struct {
	sheet      string
	headers    []string
	headerMap  map[string]int
	rows       [][]string
	currentRow int
	totalRows  int
	pos        int
}

// XLSXOption is a functional option for XLSXParser configuration
type XLSXOption func(*XLSXParser)

// WithSheet selects a worksheet by name instead of the first sheet
func WithSheet(name string) XLSXOption {
	return func(p *XLSXParser) {
		p.sheet = name
	}
}

// NewXLSXParser opens a workbook from its raw bytes and loads all rows of the
// target worksheet into memory. The workbook handle is closed before returning.
func NewXLSXParser(data []byte, opts ...XLSXOption) (*XLSXParser, error) {
	if len(data) == 0 {
		return nil, ErrEmptyFile
	}

	parser := &XLSXParser{
		headerMap: make(map[string]int),
	}
	for _, opt := range opts {
		opt(parser)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
	}
	defer func() { _ = f.Close() }()

	if parser.sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFile
		}
		parser.sheet = sheets[0]
	}

	rows, err := f.GetRows(parser.sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", parser.sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	parser.rows = rows

	return parser, nil
}

// Sheet returns the name of the worksheet being read
func (p *XLSXParser) Sheet() string {
	return p.sheet
}

// ParseHeader parses the first sheet row as the header row
func (p *XLSXParser) ParseHeader() error {
	if len(p.rows) == 0 {
		return ErrMissingHeader
	}

	record := p.rows[0]
	p.headers = make([]string, len(record))
	for i, h := range record {
		header := trimSpaces(h)
		p.headers[i] = header
		p.headerMap[header] = i
	}

	if len(p.headers) == 0 {
		return ErrMissingHeader
	}

	p.currentRow = 1 // Header is row 1
	p.pos = 1

	return nil
}

// Headers returns the parsed header names
func (p *XLSXParser) Headers() []string {
	return p.headers
}

// HeaderMap returns a map of header name to column index
func (p *XLSXParser) HeaderMap() map[string]int {
	return p.headerMap
}

// HasHeader checks if a header exists
func (p *XLSXParser) HasHeader(name string) bool {
	_, ok := p.headerMap[name]
	return ok
}

// ReadRow reads the next sheet row. Cells beyond the header width are
// dropped; missing trailing cells are filled with empty strings.
func (p *XLSXParser) ReadRow() (*Row, error) {
	if p.pos >= len(p.rows) {
		return nil, io.EOF
	}

	record := p.rows[p.pos]
	p.pos++
	p.currentRow++
	p.totalRows++

	row := &Row{
		LineNumber: p.currentRow,
		Data:       make(map[string]string, len(p.headers)),
		RawFields:  record,
	}

	for i, header := range p.headers {
		if i < len(record) {
			row.Data[header] = trimSpaces(record[i])
		} else {
			row.Data[header] = ""
		}
	}

	return row, nil
}

// ReadAllRows reads all remaining data rows, skipping completely empty ones
func (p *XLSXParser) ReadAllRows() ([]*Row, error) {
	var rows []*Row

	for {
		row, err := p.ReadRow()
		if err == io.EOF {
			break
		}
		if err != nil {
			return rows, err
		}

		if row.IsEmpty() {
			continue
		}

		rows = append(rows, row)
	}

	return rows, nil
}

// CurrentRow returns the current row number (1-indexed, header is row 1)
func (p *XLSXParser) CurrentRow() int {
	return p.currentRow
}

// TotalRows returns the total number of data rows read
func (p *XLSXParser) TotalRows() int {
	return p.totalRows
}

// ValidateHeaders checks if required headers are present
func (p *XLSXParser) ValidateHeaders(required []string) []string {
	var missing []string
	for _, h := range required {
		if !p.HasHeader(h) {
			missing = append(missing, h)
		}
	}
	return missing
}

// GetColumnIndex returns the index of a column by name
func (p *XLSXParser) GetColumnIndex(name string) (int, bool) {
	idx, ok := p.headerMap[name]
	return idx, ok
}
