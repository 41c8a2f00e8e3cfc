// Package workbook reads and writes the ledger workbook and exposes its sheets as
// loosely typed cell grids.
package workbook

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CellKind is the weak type of a grid cell.
type CellKind int

const (
	Empty CellKind = iota
	Text
	Number
)

// Cell is one loosely typed grid value. Raw keeps the text exactly as stored so
// labels used inside identifiers render the same way on every read.
type Cell struct {
	Kind CellKind
	Raw  string
	Num  float64
}

// ParseCell classifies a raw cell value.
func ParseCell(raw string) Cell {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Cell{}
	}
	if strings.ContainsAny(trimmed, "0123456789") {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return Cell{Kind: Number, Raw: raw, Num: f}
		}
	}
	return Cell{Kind: Text, Raw: raw}
}

// String renders the cell the way a label is compared or embedded in an id.
func (c Cell) String() string {
	if c.Kind == Empty {
		return ""
	}
	return c.Raw
}

// Trimmed is String with surrounding whitespace removed.
func (c Cell) Trimmed() string {
	return strings.TrimSpace(c.String())
}

// Upper is the trimmed, upper-cased text of the cell.
func (c Cell) Upper() string {
	return strings.ToUpper(c.Trimmed())
}

// Title is the trimmed, title-cased text of the cell.
func (c Cell) Title() string {
	return TitleCase(c.Trimmed())
}

// Amount parses the cell as a money value. Currency symbols and thousands
// separators are ignored; text that still does not parse counts as zero. A blank
// cell reports ok=false so callers can tell "no amount" from "zero".
func (c Cell) Amount() (value float64, ok bool) {
	switch c.Kind {
	case Empty:
		return 0, false
	case Number:
		return c.Num, true
	}
	return CleanNumber(c.Raw), true
}

// CleanNumber strips ',' and '₹' and parses what is left; unparseable input is 0.
func CleanNumber(s string) float64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// CleanPlanAmount extracts the integer face value of a plan label such as
// "20,000" or "₹50000.00". Anything unparseable is 0.
func CleanPlanAmount(s string) int {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "₹", "")
	s = strings.SplitN(s, ".", 2)[0]
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// IsNumericLabel reports whether s is a plain non-negative number with at most one
// decimal point ("20", "20.0"). Ledger data rows start with such a label.
func IsNumericLabel(s string) bool {
	s = strings.Replace(s, ".", "", 1)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Normalize lower-cases text and drops dots, spaces and colons. It is the key
// used for member identity and item identifiers.
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = strings.NewReplacer(".", "", " ", "", ":", "").Replace(text)
	return strings.TrimSpace(text)
}

var (
	upperCaser = cases.Upper(language.Und)
	lowerCaser = cases.Lower(language.Und)
)

// TitleCase upper-cases every letter that follows a non-letter and lower-cases
// the others, so "s.kumar" becomes "S.Kumar" and "ravi2nd" becomes "Ravi2Nd".
// Stored payment ids were written with this rule.
func TitleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := isCased(r)
		switch {
		case cased && !prevCased:
			b.WriteString(upperCaser.String(string(r)))
		case cased:
			b.WriteString(lowerCaser.String(string(r)))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}

// Grid is one sheet as a rectangular array of cells addressed by 0-based (row, col).
type Grid struct {
	Name  string
	cells [][]Cell
	cols  int
}

// NewGrid builds a grid from raw string rows as returned by a workbook reader.
func NewGrid(name string, rows [][]string) *Grid {
	g := &Grid{Name: name, cells: make([][]Cell, len(rows))}
	for r, row := range rows {
		g.cells[r] = make([]Cell, len(row))
		for c, raw := range row {
			g.cells[r][c] = ParseCell(raw)
		}
		if len(row) > g.cols {
			g.cols = len(row)
		}
	}
	return g
}

// Rows is the number of rows in the grid.
func (g *Grid) Rows() int { return len(g.cells) }

// Cols is the width of the widest row.
func (g *Grid) Cols() int { return g.cols }

// At returns the cell at (r, c); anything outside the grid is Empty.
func (g *Grid) At(r, c int) Cell {
	if r < 0 || c < 0 || r >= len(g.cells) || c >= len(g.cells[r]) {
		return Cell{}
	}
	return g.cells[r][c]
}

// Set stores v at (r, c), growing the grid as needed. It satisfies CellWriter so a
// grid can receive a settlement directly.
func (g *Grid) Set(r, c int, v any) error {
	if r < 0 || c < 0 {
		return nil
	}
	for len(g.cells) <= r {
		g.cells = append(g.cells, nil)
	}
	for len(g.cells[r]) <= c {
		g.cells[r] = append(g.cells[r], Cell{})
	}
	if c+1 > g.cols {
		g.cols = c + 1
	}
	g.cells[r][c] = valueCell(v)
	return nil
}

// Clone returns a deep copy of the grid under a new name.
func (g *Grid) Clone(name string) *Grid {
	out := &Grid{Name: name, cols: g.cols, cells: make([][]Cell, len(g.cells))}
	for r, row := range g.cells {
		out.cells[r] = append([]Cell(nil), row...)
	}
	return out
}

func valueCell(v any) Cell {
	switch val := v.(type) {
	case nil:
		return Cell{}
	case string:
		return ParseCell(val)
	case int:
		return Cell{Kind: Number, Raw: strconv.Itoa(val), Num: float64(val)}
	case int64:
		return Cell{Kind: Number, Raw: strconv.FormatInt(val, 10), Num: float64(val)}
	case float64:
		return Cell{Kind: Number, Raw: strconv.FormatFloat(val, 'f', -1, 64), Num: val}
	default:
		return Cell{Kind: Text, Raw: strings.TrimSpace(fmt.Sprint(val))}
	}
}
