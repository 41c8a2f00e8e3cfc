package auction

import (
	"strings"

	"github.com/shopspring/decimal"

	"chitfund-service/internal/core/ledger"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

// Layout of the member blocks and the auction plan listing, 0-based.
var ledgerBlocks = []int{0, 5}

const (
	planFirstRow = 1
	planLastRow  = 98
	planMonthCol = 11
	planValueCol = 12
	planBidCol   = 13
	planDivCol   = 15
	planPayCol   = 17
)

// Outcome counts what Apply wrote.
type Outcome struct {
	LedgerRows   int
	SummaryCells int
	FooterRows   int
	PlanRows     int
	// Unmatched lists plan ids that matched no ledger or plan row.
	Unmatched []string
}

type cellRef struct{ row, col int }

// summaryIndex maps a normalized member name to the summary amount cells showing
// that member's payable, with their running values.
type summaryIndex struct {
	cells  map[string][]cellRef
	values map[cellRef]int64
}

func newSummaryIndex(src *workbook.Grid) *summaryIndex {
	idx := &summaryIndex{cells: map[string][]cellRef{}, values: map[cellRef]int64{}}
	for _, b := range ledger.SummaryBlocks {
		for r := 0; r < src.Rows(); r++ {
			name := src.At(r, b.Name).Title()
			switch strings.ToUpper(name) {
			case "", "NAN", "NAME", "AMOUNT":
				continue
			}
			ref := cellRef{r, b.Amount}
			amt, _ := src.At(r, b.Amount).Amount()
			key := workbook.Normalize(name)
			idx.cells[key] = append(idx.cells[key], ref)
			idx.values[ref] = decimal.NewFromFloat(amt).IntPart()
		}
	}
	return idx
}

// Apply writes a settlement of src into dst. src is the generation being copied
// and is never modified; every read comes from it. date stamps each member header.
// Bids that do not derive are ignored.
func Apply(src *workbook.Grid, dst workbook.CellWriter, bids []domain.Bid, date string) (Outcome, error) {
	return apply(src, dst, derived(bids), date)
}

func apply(src *workbook.Grid, dst workbook.CellWriter, bids []settlement, date string) (Outcome, error) {
	var out Outcome
	matched := map[string]bool{}
	summary := newSummaryIndex(src)

	for _, col := range ledgerBlocks {
		var member string
		var payableSum, dividendSum decimal.Decimal

		for r := 0; r < src.Rows(); r++ {
			label := src.At(r, col).Upper()

			if strings.Contains(label, "NAME") {
				member = src.At(r, col+1).Title()
				if err := dst.Set(r, col+3, date); err != nil {
					return out, err
				}
				payableSum, dividendSum = decimal.Zero, decimal.Zero
			}

			if month := src.At(r, col).Trimmed(); workbook.IsNumericLabel(month) {
				planValue := workbook.CleanPlanAmount(src.At(r, col+1).Trimmed())
				oldPayF, _ := src.At(r, col+3).Amount()
				oldDivF, _ := src.At(r, col+2).Amount()
				payable := decimal.NewFromFloat(oldPayF)
				dividend := decimal.NewFromFloat(oldDivF)

				if s, ok := findBid(bids, planValue, month); ok {
					matched[s.planID] = true
					if err := writeAll(dst,
						cellWrite{r, col, monthValue(s.newMonth)},
						cellWrite{r, col + 2, s.dividend},
						cellWrite{r, col + 3, s.payable},
					); err != nil {
						return out, err
					}
					out.LedgerRows++

					diff := decimal.NewFromInt(s.payable).Sub(payable).IntPart()
					for _, ref := range summary.cells[workbook.Normalize(member)] {
						summary.values[ref] += diff
						if err := dst.Set(ref.row, ref.col, summary.values[ref]); err != nil {
							return out, err
						}
						out.SummaryCells++
					}
					payable = decimal.NewFromInt(s.payable)
					dividend = decimal.NewFromInt(s.dividend)
				}
				payableSum = payableSum.Add(payable)
				dividendSum = dividendSum.Add(dividend)
			}

			if strings.Contains(label, "TOTAL") {
				if err := writeAll(dst,
					cellWrite{r, col + 3, payableSum.IntPart()},
					cellWrite{r, col + 2, dividendSum.IntPart()},
				); err != nil {
					return out, err
				}
				out.FooterRows++
				payableSum, dividendSum = decimal.Zero, decimal.Zero
			}
		}
	}

	for r := planFirstRow; r <= planLastRow && r < src.Rows(); r++ {
		planValue := workbook.CleanPlanAmount(src.At(r, planValueCol).String())
		if planValue <= 0 {
			continue
		}
		month := src.At(r, planMonthCol).Trimmed()
		for _, s := range bids {
			if s.planValue != planValue || !sameMonth(s.oldMonth, month) {
				continue
			}
			bid, _ := s.totalBid.Float64()
			if err := writeAll(dst,
				cellWrite{r, planMonthCol, monthValue(s.newMonth)},
				cellWrite{r, planBidCol, bid},
				cellWrite{r, planDivCol, s.dividend},
				cellWrite{r, planPayCol, s.payable},
			); err != nil {
				return out, err
			}
			matched[s.planID] = true
			out.PlanRows++
		}
	}

	for _, s := range bids {
		if !matched[s.planID] {
			out.Unmatched = append(out.Unmatched, s.planID)
		}
	}
	return out, nil
}

// findBid returns the first bid for the plan value whose old month matches.
func findBid(bids []settlement, planValue int, month string) (settlement, bool) {
	for _, s := range bids {
		if s.planValue == planValue && sameMonth(s.oldMonth, month) {
			return s, true
		}
	}
	return settlement{}, false
}

type cellWrite struct {
	row, col int
	value    any
}

func writeAll(dst workbook.CellWriter, writes ...cellWrite) error {
	for _, w := range writes {
		if err := dst.Set(w.row, w.col, w.value); err != nil {
			return err
		}
	}
	return nil
}
