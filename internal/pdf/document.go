package pdf

import (
	"strings"

	"github.com/a3tai/pdfsheetdiff/internal/table"
)

// Page is the extracted content of one document page
type Page struct {
	Number int              `json:"number" yaml:"number"`
	Text   string           `json:"text" yaml:"text"`
	Tables []table.RawTable `json:"tables" yaml:"tables"`
}

// Document is the ordered result of extracting every page. It is not
// modified after Extract returns.
type Document struct {
	Pages    []Page   `json:"pages" yaml:"pages"`
	Version  string   `json:"version,omitempty" yaml:"version,omitempty"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Text joins the page texts with newlines
func (d *Document) Text() string {
	if d == nil || len(d.Pages) == 0 {
		return ""
	}
	texts := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		texts[i] = p.Text
	}
	return strings.Join(texts, "\n")
}

// Tables returns every table in page order, then extraction order within a page
func (d *Document) Tables() []table.RawTable {
	if d == nil {
		return nil
	}
	var all []table.RawTable
	for _, p := range d.Pages {
		all = append(all, p.Tables...)
	}
	return all
}

// gridToTable applies the header policy to a detected grid: the first row is
// the header when there are at least two rows; a lone row is kept as data.
func gridToTable(grid [][]*string) (table.RawTable, bool) {
	switch len(grid) {
	case 0:
		return table.RawTable{}, false
	case 1:
		return table.RawTable{Rows: grid}, true
	}

	header := make([]string, len(grid[0]))
	for i, cell := range grid[0] {
		if cell != nil {
			header[i] = *cell
		}
	}
	return table.RawTable{Header: header, Rows: grid[1:]}, true
}
