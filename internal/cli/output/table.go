package output

import (
	"io"

	"github.com/olekukonko/tablewriter"
)

// TableRenderer is implemented by list results that know their own
// column layout.
type TableRenderer interface {
	Headers() []string
	Rows() [][]string
}

// plainTable configures the borderless, left-aligned style every
// gatewatch listing uses.
func plainTable(w io.Writer) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetAutoWrapText(false)
	t.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	t.SetAlignment(tablewriter.ALIGN_LEFT)
	t.SetCenterSeparator("")
	t.SetColumnSeparator("")
	t.SetRowSeparator("")
	t.SetHeaderLine(false)
	t.SetBorder(false)
	t.SetTablePadding("  ")
	t.SetNoWhiteSpace(true)
	return t
}

// PrintTable renders r with upper-cased headers and aligned columns.
func PrintTable(w io.Writer, r TableRenderer) error {
	t := plainTable(w)
	t.SetAutoFormatHeaders(true)
	t.SetHeader(r.Headers())
	t.AppendBulk(r.Rows())
	t.Render()
	return nil
}

// SimpleTable renders label/value pairs in two aligned columns. Labels
// keep their casing; get/show commands use it for single resources.
func SimpleTable(w io.Writer, pairs [][2]string) error {
	t := plainTable(w)
	t.SetAutoFormatHeaders(false)
	t.SetColumnSeparator(":")
	for _, p := range pairs {
		t.Append([]string{p[0], p[1]})
	}
	t.Render()
	return nil
}

// TableData is an ad-hoc TableRenderer for commands that assemble rows
// on the fly instead of defining a renderer type.
type TableData struct {
	headers []string
	rows    [][]string
}

func NewTableData(headers ...string) *TableData {
	return &TableData{headers: headers}
}

func (t *TableData) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *TableData) Headers() []string {
	return t.headers
}

func (t *TableData) Rows() [][]string {
	return t.rows
}
