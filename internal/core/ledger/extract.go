// Package ledger turns one generation of the chit-fund workbook into a member
// ledger reconciled against the payment status store.
package ledger

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

type extractor struct {
	grid   *workbook.Grid
	snap   paystatus.Snapshot
	roster *roster
	diag   Diagnostics
}

// receiptCursor is the state threaded through one receipt block scan.
type receiptCursor struct {
	member *domain.Member
}

// ExtractGrid runs the summary, receipt, commission and aggregation passes over one
// generation. It is pure: the same grid and snapshot always give the same result.
func ExtractGrid(g *workbook.Grid, snap paystatus.Snapshot) (domain.LedgerResult, Diagnostics) {
	x := &extractor{grid: g, snap: snap, roster: newRoster()}

	for _, b := range SummaryBlocks {
		for r := 0; r < g.Rows(); r++ {
			x.diag.record(PassSummary, x.summaryRow(r, b))
		}
	}
	for _, col := range ReceiptBlocks {
		cur := &receiptCursor{}
		for r := 0; r < g.Rows(); r++ {
			x.diag.record(PassReceipt, x.receiptRow(r, col, cur))
		}
	}
	if col := x.commissionColumn(); col >= 0 {
		for r := 0; r < g.Rows(); r++ {
			x.diag.record(PassCommission, x.commissionRow(r, col))
		}
	}
	x.aggregate()

	grand, _ := g.At(grandTotalRow, grandTotalCol).Amount()

	members := x.roster.list
	if members == nil {
		members = []*domain.Member{}
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Name < members[j].Name })

	return domain.LedgerResult{Members: members, GrandTotal: grand}, x.diag
}

func (x *extractor) summaryRow(r int, b SummaryBlock) SkipReason {
	name := x.grid.At(r, b.Name).Title()
	if name == "" {
		return SkipBlankName
	}
	if deniedNames[strings.ToUpper(name)] {
		return SkipDeniedName
	}
	amt, ok := x.grid.At(r, b.Amount).Amount()
	if !ok {
		return SkipBlankAmount
	}
	if isDecoy(amt) {
		return SkipDecoyTotal
	}
	area := areaOf(x.grid.At(r, b.Area))
	key := memberKey(name, area)

	if m, ok := x.roster.byKey[key]; ok {
		m.Total += amt
		m.PaymentID = paymentID(m.Name, m.Total)
		m.IsPaid, m.PaidDate = x.status(m.PaymentID)
		return Used
	}

	m := &domain.Member{
		Name:      name,
		Area:      area,
		Total:     amt,
		Items:     []domain.Item{},
		PaymentID: paymentID(name, amt),
	}
	m.IsPaid, m.PaidDate = x.status(m.PaymentID)
	x.roster.add(key, m)
	return Used
}

func (x *extractor) receiptRow(r, col int, cur *receiptCursor) SkipReason {
	label := x.grid.At(r, col).Trimmed()
	if strings.Contains(strings.ToUpper(label), "NAME") && utf8.RuneCountInString(label) < maxLabelLen {
		return x.receiptHeader(r, col, cur)
	}
	if !workbook.IsNumericLabel(label) {
		return SkipNotDataRow
	}
	if cur.member == nil {
		return SkipNoMember
	}
	amt, _ := x.grid.At(r, col+3).Amount()
	if !(amt > 0) {
		return SkipNoAmount
	}

	m := cur.member
	plan := x.grid.At(r, col+1)
	commission := x.grid.At(r, col+2)
	item := domain.Item{
		Month:      label,
		Plan:       plan.Trimmed(),
		Commission: commission.Trimmed(),
		Amount:     amt,
		ID:         itemID(m.Name, amt, label, idText(plan)),
	}
	if e, ok := x.snap.Lookup(item.ID); ok {
		item.IsPaid, item.PaidDate = true, e.Date()
	} else if e, ok := x.snap.Lookup(m.PaymentID); ok {
		// statuses recorded before per-item tracking are keyed by the member
		item.IsPaid, item.PaidDate = true, e.Date()
	}
	m.Items = append(m.Items, item)
	return Used
}

func (x *extractor) receiptHeader(r, col int, cur *receiptCursor) SkipReason {
	name := x.grid.At(r, col+1).Title()
	switch strings.ToUpper(name) {
	case "", "NONE", "NAN":
		cur.member = nil
		return SkipBlankName
	}
	cur.member = x.roster.resolve(name, areaOf(x.grid.At(r, col+2)))
	return Used
}

// commissionColumn is the last column whose header rows mention the commission
// total, or -1.
func (x *extractor) commissionColumn() int {
	found := -1
	rows := min(commissionHeaderRows, x.grid.Rows())
	for c := 0; c < x.grid.Cols(); c++ {
		for r := 0; r < rows; r++ {
			if strings.Contains(x.grid.At(r, c).Upper(), commissionHeader) {
				found = c
				break
			}
		}
	}
	return found
}

func (x *extractor) commissionRow(r, col int) SkipReason {
	val, _ := x.grid.At(r, col).Amount()
	if !(val > 0) {
		return SkipNoAmount
	}
	left := col - 1
	if left < 0 {
		left = x.grid.Cols() - 1
	}
	if strings.Contains(x.grid.At(r, left).Upper(), "TOTAL") {
		return SkipSubtotal
	}
	payer := x.grid.At(r, commissionPayerCol).Title()
	if payer == "" {
		return SkipBlankName
	}
	m := x.roster.first(payer)
	if m == nil {
		return SkipUnknownPayer
	}
	m.Items = append(m.Items, domain.Item{
		Month:      "-",
		Plan:       "Comm.",
		Commission: "-",
		Amount:     val,
		ID:         fmt.Sprintf("comm_%d_%d", int64(val), r),
		IsPaid:     true,
	})
	return Used
}

// aggregate derives totals from items where a member has any; the summary total
// stands otherwise.
func (x *extractor) aggregate() {
	for _, m := range x.roster.list {
		if len(m.Items) == 0 {
			if m.IsPaid {
				m.PaidAmount = m.Total
			} else {
				m.PaidAmount = 0
			}
			continue
		}
		var total, paid float64
		for _, it := range m.Items {
			total += it.Amount
			if it.IsPaid {
				paid += it.Amount
			}
		}
		m.Total = total
		m.PaidAmount = paid
		m.IsPaid = paid >= total && total > 0
	}
}

func (x *extractor) status(id string) (bool, *string) {
	e, ok := x.snap.Lookup(id)
	if !ok {
		return false, nil
	}
	return true, e.Date()
}

func isDecoy(amt float64) bool {
	for _, d := range decoyTotals {
		if math.Abs(amt-d) < 1 {
			return true
		}
	}
	return false
}

func areaOf(c workbook.Cell) string {
	val := c.Title()
	if val == "" || strings.ToUpper(val) == "NAN" || workbook.IsNumericLabel(val) {
		return defaultArea
	}
	return val
}

// idText renders a cell for use inside an item identifier. Blank cells render as
// "nan", matching identifiers already held by the status store.
func idText(c workbook.Cell) string {
	if c.Kind == workbook.Empty {
		return "nan"
	}
	return c.Trimmed()
}

func paymentID(name string, total float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%s_%d", name, int64(total)), " ", "")
}

func itemID(name string, amt float64, month, plan string) string {
	id := fmt.Sprintf("%s_%d_%s_%s", workbook.Normalize(name), int64(amt), month, plan)
	return strings.ReplaceAll(id, " ", "")
}
