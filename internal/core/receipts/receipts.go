// Package receipts renders member receipts as a formatted workbook and orders
// members for the printable preview.
package receipts

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"chitfund-service/internal/domain"
)

const (
	SheetName   = "Payment Receipts"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	dateLayout  = "02-Jan-2006"
	greyFill    = "E0E0E0"
	numFmtMoney = 4 // #,##0.00
)

var columnWidths = []struct {
	col   string
	width float64
}{
	{"A", 15}, {"B", 25}, {"C", 25}, {"D", 20},
}

// Filename is the download name for a workbook built at now.
func Filename(now time.Time) string {
	return "Payment_Receipts_" + now.Format("20060102_150405") + ".xlsx"
}

type styles struct {
	header, headerDate   int
	columnHead           int
	cell, money          int
	spacer               int
	footer, footerFilled int
	footerMoney          int
}

func newStyles(f *excelize.File) (styles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	grey := excelize.Fill{Type: "pattern", Color: []string{greyFill}, Pattern: 1}
	bold := &excelize.Font{Bold: true}

	var s styles
	defs := []struct {
		dst   *int
		style excelize.Style
	}{
		{&s.header, excelize.Style{Font: bold, Border: border}},
		{&s.headerDate, excelize.Style{Font: bold, Border: border, Alignment: &excelize.Alignment{Horizontal: "right"}}},
		{&s.columnHead, excelize.Style{Fill: grey, Border: border}},
		{&s.cell, excelize.Style{Border: border}},
		{&s.money, excelize.Style{Border: border, NumFmt: numFmtMoney}},
		{&s.spacer, excelize.Style{Fill: grey}},
		{&s.footer, excelize.Style{Font: bold, Fill: grey, Border: border}},
		{&s.footerFilled, excelize.Style{Fill: grey, Border: border}},
		{&s.footerMoney, excelize.Style{Font: bold, Fill: grey, Border: border, NumFmt: numFmtMoney}},
	}
	for _, d := range defs {
		id, err := f.NewStyle(&d.style)
		if err != nil {
			return styles{}, fmt.Errorf("failed to create style: %w", err)
		}
		*d.dst = id
	}
	return s, nil
}

// Build renders one receipt block per member. Members without items get a single
// summary line carrying their total. now supplies the date of unpaid receipts.
func Build(members []*domain.Member, now time.Time) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, err
	}
	for _, cw := range columnWidths {
		if err := f.SetColWidth(SheetName, cw.col, cw.col, cw.width); err != nil {
			return nil, err
		}
	}
	st, err := newStyles(f)
	if err != nil {
		return nil, err
	}

	w := &sheet{f: f}
	row := 1
	for _, m := range members {
		date := now.Format(dateLayout)
		if m.PaidDate != nil && *m.PaidDate != "" {
			date = *m.PaidDate
		}
		w.row(row, st.header, "Name", m.Name, m.Area)
		w.cell(4, row, date, st.headerDate)
		row++

		w.row(row, st.columnHead, "Month", "Plan", "Commission", "Amount")
		row++

		items := m.Items
		if len(items) == 0 {
			items = []domain.Item{{Month: "-", Plan: "-", Commission: "-", Amount: m.Total}}
		}
		for _, it := range items {
			w.cell(1, row, it.Month, st.cell)
			w.numberOrText(2, row, it.Plan, st)
			w.numberOrText(3, row, it.Commission, st)
			w.cell(4, row, it.Amount, st.money)
			row++
		}

		for i := 0; i < 2; i++ {
			for col := 1; col <= 4; col++ {
				w.style(col, row, st.spacer)
			}
			row++
		}

		w.cell(1, row, "Total Payable", st.footer)
		w.style(2, row, st.footerFilled)
		w.style(3, row, st.footerFilled)
		w.cell(4, row, m.Total, st.footerMoney)
		row += 4
	}
	if w.err != nil {
		return nil, fmt.Errorf("failed to write receipts: %w", w.err)
	}

	return f.WriteToBuffer()
}

// sheet writes cells into the receipts sheet, keeping the first error.
type sheet struct {
	f   *excelize.File
	err error
}

func (w *sheet) style(col, row, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellStyle(SheetName, cell, cell, style)
}

func (w *sheet) cell(col, row int, value any, style int) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		w.err = err
		return
	}
	if w.err = w.f.SetCellValue(SheetName, cell, value); w.err != nil {
		return
	}
	w.style(col, row, style)
}

func (w *sheet) row(row, style int, values ...string) {
	for i, v := range values {
		w.cell(i+1, row, v, style)
	}
}

// numberOrText writes plan and commission labels as numbers when they parse.
func (w *sheet) numberOrText(col, row int, value string, st styles) {
	if f, ok := asNumber(value); ok {
		w.cell(col, row, f, st.money)
		return
	}
	w.cell(col, row, value, st.cell)
}

func asNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(s, ",", "")), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// SortForPreview orders members by area, then name, ignoring case and
// surrounding spaces.
func SortForPreview(members []*domain.Member) []*domain.Member {
	out := append([]*domain.Member(nil), members...)
	key := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := key(out[i].Area), key(out[j].Area)
		if ai != aj {
			return ai < aj
		}
		return key(out[i].Name) < key(out[j].Name)
	})
	return out
}
