// Package tables finds grid-shaped runs of positioned text on a page.
//
// The detector is text based: it groups glyph runs into rows by baseline,
// splits each row into cells wherever the gap between words is wider than
// normal word spacing, and derives columns from the horizontal extent of
// the cells. Runs of consecutive rows that fill at least two columns become
// grids of optional cells.
package tables

import (
	"math"
	"sort"
	"strings"
)

// DefaultFontSize is assumed for words that carry no font size
const DefaultFontSize = 10.0

// Word is a run of text at a position on the page. Y grows upward, as in
// PDF user space.
type Word struct {
	Text     string  `json:"text"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	W        float64 `json:"w"`
	FontSize float64 `json:"font_size,omitempty"`
}

// End returns the right edge of the word
func (w Word) End() float64 {
	return w.X + w.W
}

func (w Word) size() float64 {
	if w.FontSize > 0 {
		return w.FontSize
	}
	return DefaultFontSize
}

// DetectOptions tunes table detection. Gaps are measured in em, the font
// size of the larger of the two neighbouring words.
type DetectOptions struct {
	// RowTolerance is the maximum baseline difference for two words to share a row
	RowTolerance float64 `json:"row_tolerance"`
	// WordGap is the largest horizontal gap between glyph runs merged into one word
	WordGap float64 `json:"word_gap"`
	// SnapTolerance is how close two cells may come and still be separate columns
	SnapTolerance float64 `json:"snap_tolerance"`
	// ColumnGap is the smallest gap, in em, that separates two cells of a row
	ColumnGap float64 `json:"column_gap"`
	// SingleRowGap is the smallest gap, in em, between every cell of a
	// one-row table. A lone row has no neighbours to confirm its columns.
	SingleRowGap float64 `json:"single_row_gap"`
	// MinRows discards shorter grids
	MinRows int `json:"min_rows"`
}

// DefaultDetectOptions returns detection settings tuned for typical
// generated reports set in 8-12pt type.
func DefaultDetectOptions() DetectOptions {
	return DetectOptions{
		RowTolerance:  2.0,
		WordGap:       1.0,
		SnapTolerance: 3.0,
		ColumnGap:     1.5,
		SingleRowGap:  3.0,
		MinRows:       1,
	}
}

// Detect returns the grids found among words, top to bottom. A nil cell
// means no text was placed in that column.
func Detect(words []Word, opts DetectOptions) [][][]*string {
	defaults := DefaultDetectOptions()
	if opts.MinRows < 1 {
		opts.MinRows = 1
	}
	if opts.ColumnGap <= 0 {
		opts.ColumnGap = defaults.ColumnGap
	}
	if opts.SingleRowGap <= 0 {
		opts.SingleRowGap = defaults.SingleRowGap
	}

	rows := groupByRow(words, opts.RowTolerance)
	cellRows := make([][]cell, len(rows))
	for i := range rows {
		cellRows[i] = splitCells(mergeWords(rows[i], opts.WordGap), opts.ColumnGap)
	}

	var grids [][][]*string
	for _, block := range multiCellBlocks(cellRows) {
		grids = append(grids, detectInBlock(block, opts)...)
	}
	return grids
}

// groupByRow sorts words top to bottom and splits them into rows whose
// baselines stay within tolerance of the row's first word.
func groupByRow(words []Word, tolerance float64) [][]Word {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]Word, len(words))
	copy(sorted, words)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y > sorted[j].Y
	})

	var rows [][]Word
	current := []Word{sorted[0]}
	currentY := sorted[0].Y

	for _, w := range sorted[1:] {
		if math.Abs(w.Y-currentY) <= tolerance {
			current = append(current, w)
			continue
		}
		rows = append(rows, current)
		current = []Word{w}
		currentY = w.Y
	}
	rows = append(rows, current)

	for _, row := range rows {
		sort.SliceStable(row, func(i, j int) bool {
			return row[i].X < row[j].X
		})
	}
	return rows
}

// mergeWords joins glyph runs that touch into words; whitespace glyphs end a word
func mergeWords(row []Word, gap float64) []Word {
	var merged []Word
	var current *Word

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			merged = append(merged, *current)
		}
		current = nil
	}

	for _, w := range row {
		if strings.TrimSpace(w.Text) == "" {
			flush()
			continue
		}
		if current != nil && w.X-current.End() <= gap {
			current.Text += w.Text
			current.W = w.End() - current.X
			continue
		}
		flush()
		next := w
		current = &next
	}
	flush()

	return merged
}

// cell is a group of words on one row separated from its neighbours by a
// column-sized gap
type cell struct {
	text string
	x    float64
	end  float64
	size float64
}

// gapEm returns the space between two cells in em of the larger font
func gapEm(left, right cell) float64 {
	return (right.x - left.end) / math.Max(left.size, right.size)
}

// splitCells groups a row's words into cells, breaking wherever the gap to
// the next word is at least columnGap em
func splitCells(row []Word, columnGap float64) []cell {
	var cells []cell
	for _, w := range row {
		next := cell{text: w.Text, x: w.X, end: w.End(), size: w.size()}
		if n := len(cells); n > 0 && gapEm(cells[n-1], next) < columnGap {
			last := &cells[n-1]
			last.text += " " + w.Text
			last.end = math.Max(last.end, next.end)
			last.size = math.Max(last.size, next.size)
			continue
		}
		cells = append(cells, next)
	}
	return cells
}

// multiCellBlocks splits rows into maximal runs of rows holding two or more cells
func multiCellBlocks(rows [][]cell) [][][]cell {
	var blocks [][][]cell
	var block [][]cell
	for _, row := range rows {
		if len(row) >= 2 {
			block = append(block, row)
			continue
		}
		if len(block) > 0 {
			blocks = append(blocks, block)
			block = nil
		}
	}
	if len(block) > 0 {
		blocks = append(blocks, block)
	}
	return blocks
}

func detectInBlock(block [][]cell, opts DetectOptions) [][][]*string {
	columns := columnSpans(block, opts.SnapTolerance)
	if len(columns) < 2 {
		return nil
	}

	var grids [][][]*string
	var run [][]cell
	emit := func() {
		if accept(run, opts) {
			grids = append(grids, buildGrid(run, columns, opts.SnapTolerance))
		}
		run = nil
	}

	for _, row := range block {
		if filledColumns(row, columns, opts.SnapTolerance) >= 2 {
			run = append(run, row)
			continue
		}
		emit()
	}
	emit()

	return grids
}

// accept applies the row minimum, and the wider gap rule to one-row runs
func accept(run [][]cell, opts DetectOptions) bool {
	if len(run) == 0 || len(run) < opts.MinRows {
		return false
	}
	if len(run) > 1 {
		return true
	}

	row := run[0]
	for i := 1; i < len(row); i++ {
		if gapEm(row[i-1], row[i]) < opts.SingleRowGap {
			return false
		}
	}
	return true
}

type span struct {
	start, end float64
}

// columnSpans merges the horizontal extents of every cell in the block.
// Cells whose extents overlap (within snap) end up in the same column, so
// gaps that do not line up from row to row never form a column boundary.
func columnSpans(block [][]cell, snap float64) []span {
	var spans []span
	for _, row := range block {
		for _, c := range row {
			spans = append(spans, span{start: c.x, end: c.end})
		}
	}
	sort.SliceStable(spans, func(i, j int) bool {
		return spans[i].start < spans[j].start
	})

	var merged []span
	for _, s := range spans {
		if n := len(merged); n > 0 && s.start <= merged[n-1].end+snap {
			merged[n-1].end = math.Max(merged[n-1].end, s.end)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

// columnIndex returns the column whose span holds x
func columnIndex(x float64, columns []span, snap float64) int {
	idx := sort.Search(len(columns), func(i int) bool {
		return columns[i].start > x+snap
	})
	if idx == 0 {
		return 0
	}
	return idx - 1
}

func filledColumns(row []cell, columns []span, snap float64) int {
	seen := make(map[int]bool, len(row))
	for _, c := range row {
		seen[columnIndex(c.x, columns, snap)] = true
	}
	return len(seen)
}

func buildGrid(rows [][]cell, columns []span, snap float64) [][]*string {
	grid := make([][]*string, 0, len(rows))
	for _, row := range rows {
		parts := make([][]string, len(columns))
		for _, c := range row {
			idx := columnIndex(c.x, columns, snap)
			parts[idx] = append(parts[idx], c.text)
		}

		cells := make([]*string, len(columns))
		for i, p := range parts {
			if len(p) > 0 {
				text := strings.Join(p, " ")
				cells[i] = &text
			}
		}
		grid = append(grid, cells)
	}
	return grid
}
