// Package pdftest builds small uncompressed PDF documents for tests.
package pdftest

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	fontSize   = 10
	leading    = 14
	left       = 72
	top        = 740
	tableTop   = 700
	colSpacing = 128
	glyphWidth = 500 // thousandths of an em, same for every glyph
)

// Text returns a page content stream with lines laid out top to bottom
func Text(lines ...string) string {
	if len(lines) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "BT /F1 %d Tf %d TL %d %d Td\n", fontSize, leading, left, top)
	for i, line := range lines {
		if i > 0 {
			b.WriteString("T*\n")
		}
		fmt.Fprintf(&b, "(%s) Tj\n", escape(line))
	}
	b.WriteString("ET\n")
	return b.String()
}

// Table returns a page content stream drawing rows as a left-aligned grid.
// Empty strings leave the cell blank.
func Table(rows ...[]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "BT /F1 %d Tf %d TL\n", fontSize, leading)
	for r, row := range rows {
		if r > 0 {
			b.WriteString("T*\n")
		}
		y := tableTop - r*leading
		first := true
		for c, cell := range row {
			if cell == "" {
				continue
			}
			if !first {
				b.WriteString("( ) Tj\n")
			}
			first = false
			fmt.Fprintf(&b, "1 0 0 1 %d %d Tm (%s) Tj\n", left+c*colSpacing, y, escape(cell))
		}
	}
	b.WriteString("ET\n")
	return b.String()
}

// Document assembles one page per content stream into a PDF file
func Document(pages ...string) []byte {
	var b strings.Builder
	offsets := map[int]int{}

	b.WriteString("%PDF-1.4\n")

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = strconv.Itoa(pageObject(i)) + " 0 R"
	}
	offsets[2] = b.Len()
	fmt.Fprintf(&b, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n", strings.Join(kids, " "), len(pages))

	widths := strings.TrimSpace(strings.Repeat(strconv.Itoa(glyphWidth)+" ", 95))
	offsets[3] = b.Len()
	fmt.Fprintf(&b, "3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 /Widths [%s] >>\nendobj\n", widths)

	for i, stream := range pages {
		page := pageObject(i)
		contents := page + 1

		offsets[page] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n", page, contents)

		offsets[contents] = b.Len()
		fmt.Fprintf(&b, "%d 0 obj\n<< /Length %d >>\nstream\n%s", contents, len(stream), stream)
		if !strings.HasSuffix(stream, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("endstream\nendobj\n")
	}

	maxObj := 3 + 2*len(pages)
	xrefStart := b.Len()
	fmt.Fprintf(&b, "xref\n0 %d\n", maxObj+1)
	b.WriteString(pad10(0) + " 65535 f \n")
	for i := 1; i <= maxObj; i++ {
		b.WriteString(pad10(offsets[i]) + " 00000 n \n")
	}
	fmt.Fprintf(&b, "trailer\n<< /Root 1 0 R /Size %d >>\nstartxref\n%d\n%%%%EOF\n", maxObj+1, xrefStart)

	return []byte(b.String())
}

func pageObject(i int) int {
	return 4 + 2*i
}

// pad10 formats n as a 10-digit zero-padded string (xref format).
func pad10(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= 10 {
		return s
	}
	return strings.Repeat("0", 10-len(s)) + s
}

func escape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`)
	return r.Replace(s)
}
