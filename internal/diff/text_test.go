package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", []string{}},
		{"a", []string{"a"}},
		{"a\n", []string{"a"}},
		{"\n", []string{""}},
		{"a\n\nb", []string{"a", "", "b"}},
		{"a\r\nb\rc", []string{"a", "b", "c"}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SplitLines(tt.input), "input %q", tt.input)
	}
}

func TestDiffTextIdenticalIsEmpty(t *testing.T) {
	for _, text := range []string{"", "one", "line1\nline2\n", "a\n\n\nb"} {
		report := DiffText(text, text, DefaultTextOptions())
		assert.True(t, report.Empty(), "input %q", text)
		assert.NotNil(t, report.Hunks)
		assert.Zero(t, report.Stats.Inserted+report.Stats.Deleted+report.Stats.Changed)
	}
}

func TestDiffTextChangedLine(t *testing.T) {
	report := DiffText("line1\nline2", "line1\nline3", DefaultTextOptions())

	require.Len(t, report.Hunks, 1)
	hunk := report.Hunks[0]
	assert.Equal(t, 1, hunk.LeftStart)
	assert.Equal(t, 2, hunk.LeftCount)

	require.Len(t, hunk.Lines, 2)
	assert.Equal(t, LineDiff{Op: OpEqual, LeftLine: 1, RightLine: 1, Left: "line1", Right: "line1"}, hunk.Lines[0])
	assert.Equal(t, LineDiff{Op: OpChange, LeftLine: 2, RightLine: 2, Left: "line2", Right: "line3"}, hunk.Lines[1])
	assert.Equal(t, TextStats{Equal: 1, Changed: 1}, report.Stats)
}

func TestDiffTextEmptyLeftInsertsEverything(t *testing.T) {
	report := DiffText("", "Name\nQty\nbolt\n10", DefaultTextOptions())

	require.Len(t, report.Hunks, 1)
	lines := report.Hunks[0].Lines
	require.Len(t, lines, 4)
	for i, l := range lines {
		assert.Equal(t, OpInsert, l.Op)
		assert.Equal(t, 0, l.LeftLine)
		assert.Equal(t, i+1, l.RightLine)
	}
	assert.Equal(t, TextStats{Inserted: 4}, report.Stats)
}

func TestDiffTextReplaceWithLeftovers(t *testing.T) {
	report := DiffText("a\nx\ny\nz\nb", "a\nq\nb", DefaultTextOptions())

	require.Len(t, report.Hunks, 1)
	var ops []Op
	for _, l := range report.Hunks[0].Lines {
		ops = append(ops, l.Op)
	}
	assert.Equal(t, []Op{OpEqual, OpChange, OpDelete, OpDelete, OpEqual}, ops)
	assert.Equal(t, TextStats{Equal: 2, Changed: 1, Deleted: 2}, report.Stats)
}

func TestDiffTextContextWindow(t *testing.T) {
	left := "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\n19\n20"
	right := "1\nTWO\n3\n4\n5\n6\n7\n8\n9\n10\n11\n12\n13\n14\n15\n16\n17\n18\nNINETEEN\n20"

	report := DiffText(left, right, TextOptions{ContextLines: 2})
	require.Len(t, report.Hunks, 2, "distant changes form separate hunks")
	assert.Len(t, report.Hunks[0].Lines, 4) // 1, change, 3, 4
	assert.Len(t, report.Hunks[1].Lines, 4) // 17, 18, change, 20

	wide := DiffText(left, right, DefaultTextOptions())
	assert.Len(t, wide.Hunks, 2)

	none := DiffText(left, right, TextOptions{ContextLines: 0})
	require.Len(t, none.Hunks, 2)
	for _, h := range none.Hunks {
		for _, l := range h.Lines {
			assert.NotEqual(t, OpEqual, l.Op)
		}
	}
}

func TestDiffTextMirror(t *testing.T) {
	pairs := [][2]string{
		{"line1\nline2", "line1\nline3"},
		{"", "a\nb"},
		{"a\nb\nc\nd", "a\nc\nd\ne"},
		{"header\nx\ny\nfooter", "header\nfooter"},
		{"a\nx\ny\nz\nb", "a\nq\nb"},
	}

	swap := map[Op]Op{OpEqual: OpEqual, OpChange: OpChange, OpInsert: OpDelete, OpDelete: OpInsert}

	for _, p := range pairs {
		forward := DiffText(p[0], p[1], DefaultTextOptions())
		backward := DiffText(p[1], p[0], DefaultTextOptions())

		require.Len(t, backward.Hunks, len(forward.Hunks), "pair %q", p)
		for h := range forward.Hunks {
			fl, bl := forward.Hunks[h].Lines, backward.Hunks[h].Lines
			require.Len(t, bl, len(fl))
			for i := range fl {
				assert.Equal(t, swap[fl[i].Op], bl[i].Op)
				assert.Equal(t, fl[i].Left, bl[i].Right)
				assert.Equal(t, fl[i].Right, bl[i].Left)
				assert.Equal(t, fl[i].LeftLine, bl[i].RightLine)
				assert.Equal(t, fl[i].RightLine, bl[i].LeftLine)
			}
		}
		assert.Equal(t, forward.Stats.Inserted, backward.Stats.Deleted)
		assert.Equal(t, forward.Stats.Deleted, backward.Stats.Inserted)
	}
}
