package workbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCell(t *testing.T) {
	tests := []struct {
		raw  string
		kind CellKind
		num  float64
	}{
		{"", Empty, 0},
		{"   ", Empty, 0},
		{"20", Number, 20},
		{" 20.5 ", Number, 20.5},
		{"NAME", Text, 0},
		{"1,000", Text, 0},
		{"NaN", Text, 0},
		{"Inf", Text, 0},
	}

	for _, test := range tests {
		c := ParseCell(test.raw)
		assert.Equal(t, test.kind, c.Kind, test.raw)
		assert.Equal(t, test.num, c.Num, test.raw)
	}
}

func TestCellAmount(t *testing.T) {
	v, ok := ParseCell("").Amount()
	assert.False(t, ok)
	assert.Zero(t, v)

	v, ok = ParseCell("₹1,500").Amount()
	assert.True(t, ok)
	assert.Equal(t, 1500.0, v)

	v, ok = ParseCell("abc").Amount()
	assert.True(t, ok)
	assert.Zero(t, v)

	v, ok = ParseCell("250.5").Amount()
	assert.True(t, ok)
	assert.Equal(t, 250.5, v)
}

func TestCleanPlanAmount(t *testing.T) {
	assert.Equal(t, 20000, CleanPlanAmount("20,000"))
	assert.Equal(t, 50000, CleanPlanAmount("₹50000.00"))
	assert.Equal(t, 0, CleanPlanAmount("PLAN"))
	assert.Equal(t, 0, CleanPlanAmount(""))
}

func TestIsNumericLabel(t *testing.T) {
	assert.True(t, IsNumericLabel("20"))
	assert.True(t, IsNumericLabel("20.0"))
	assert.False(t, IsNumericLabel("20.0.1"))
	assert.False(t, IsNumericLabel(""))
	assert.False(t, IsNumericLabel("."))
	assert.False(t, IsNumericLabel("-5"))
	assert.False(t, IsNumericLabel("NAME"))
}

func TestNormalizeAndTitle(t *testing.T) {
	assert.Equal(t, "rameshkumar", Normalize(" Ramesh K.umar: "))
	assert.Equal(t, Normalize("RAMESH KUMAR"), Normalize("ramesh kumar"))
	assert.Equal(t, "Ramesh Kumar", TitleCase("RAMESH kUMAR"))
	assert.Equal(t, "Ramesh Kumar", ParseCell("  ramesh kumar ").Title())
	assert.Equal(t, "S.Kumar", TitleCase("s.kumar"))
	assert.Equal(t, "O'Brien", TitleCase("o'brien"))
	assert.Equal(t, "Ravi2Nd", TitleCase("ravi2nd"))
	assert.Equal(t, "A.R. Rahman-Khan", TitleCase("a.r. RAHMAN-khan"))
}

func TestGridAccessAndSet(t *testing.T) {
	g := NewGrid("Sheet1", [][]string{
		{"NAME", "Ramesh"},
		{"20", "20000", "", "1000"},
	})

	assert.Equal(t, 2, g.Rows())
	assert.Equal(t, 4, g.Cols())
	assert.Equal(t, "Ramesh", g.At(0, 1).String())
	assert.Equal(t, Empty, g.At(0, 3).Kind)
	assert.Equal(t, Empty, g.At(50, 50).Kind)
	assert.Equal(t, Empty, g.At(-1, 0).Kind)

	clone := g.Clone("Copy")
	assert.NoError(t, clone.Set(5, 6, 12.5))
	assert.NoError(t, clone.Set(1, 0, "21"))
	assert.Equal(t, 6, clone.Rows())
	assert.Equal(t, 7, clone.Cols())
	assert.Equal(t, 12.5, clone.At(5, 6).Num)
	assert.Equal(t, "21", clone.At(1, 0).String())

	// the original is untouched
	assert.Equal(t, "20", g.At(1, 0).String())
	assert.Equal(t, 2, g.Rows())
}
