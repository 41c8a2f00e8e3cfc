// Package auction settles a month's auction results into a new ledger generation.
package auction

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"chitfund-service/internal/domain"
)

// Form field prefixes of the auction batch form.
const (
	bidField      = "bid_for_"
	newMonthField = "new_month_for_"
)

// Shares of a plan: the dividend and the payable are both a twentieth.
var shares = decimal.NewFromInt(20)

var (
	// ErrNoValidInputs is returned when a batch carries no usable bid.
	ErrNoValidInputs = errors.New("no valid inputs")
	// ErrSheetNameRequired is returned when the new generation has no name.
	ErrSheetNameRequired = errors.New("sheet name is required")
)

// ParseBids reads bid_for_{id} / new_month_for_{id} pairs from a submitted form.
// Pairs with a blank month are dropped; bids that do not parse are dropped later
// by derive. Bids are ordered by plan id.
func ParseBids(form url.Values) []domain.Bid {
	var bids []domain.Bid
	for key, vals := range form {
		if !strings.HasPrefix(key, bidField) || len(vals) == 0 {
			continue
		}
		id := strings.TrimPrefix(key, bidField)
		month := strings.TrimSpace(form.Get(newMonthField + id))
		if month == "" {
			continue
		}
		total, err := decimal.NewFromString(strings.TrimSpace(vals[0]))
		if err != nil {
			continue
		}
		f, _ := total.Float64()
		bids = append(bids, domain.Bid{PlanID: id, NewMonth: month, TotalBid: f})
	}
	sort.Slice(bids, func(i, j int) bool { return bids[i].PlanID < bids[j].PlanID })
	return bids
}

// settlement is a bid with its derived amounts.
type settlement struct {
	planID    string
	oldMonth  string
	planValue int
	newMonth  string
	totalBid  decimal.Decimal
	dividend  int64
	payable   int64
}

// derive validates a bid and computes the dividend and payable, both truncated
// toward zero.
func derive(b domain.Bid) (settlement, error) {
	parts := strings.Split(b.PlanID, "_")
	if len(parts) < 2 {
		return settlement{}, fmt.Errorf("plan id %q has no plan value", b.PlanID)
	}
	planValue, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return settlement{}, fmt.Errorf("plan id %q: %w", b.PlanID, err)
	}
	month := strings.TrimSpace(b.NewMonth)
	if month == "" {
		return settlement{}, fmt.Errorf("plan id %q has no new month", b.PlanID)
	}
	if math.IsNaN(b.TotalBid) || math.IsInf(b.TotalBid, 0) {
		return settlement{}, fmt.Errorf("plan id %q: invalid bid", b.PlanID)
	}

	total := decimal.NewFromFloat(b.TotalBid)
	return settlement{
		planID:    b.PlanID,
		oldMonth:  parts[0],
		planValue: planValue,
		newMonth:  month,
		totalBid:  total,
		dividend:  total.Div(shares).IntPart(),
		payable:   decimal.NewFromInt(int64(planValue)).Sub(total).Div(shares).IntPart(),
	}, nil
}

// derived keeps the bids that derive, in order.
func derived(bids []domain.Bid) []settlement {
	var out []settlement
	for _, b := range bids {
		if s, err := derive(b); err == nil {
			out = append(out, s)
		}
	}
	return out
}

// sameMonth compares month labels as text, then numerically within 0.001.
func sameMonth(a, b string) bool {
	a, b = strings.TrimSpace(a), strings.TrimSpace(b)
	if a == b {
		return true
	}
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA != nil || errB != nil {
		return false
	}
	return math.Abs(fa-fb) < 0.001
}

// monthValue is the cell value written for a month label: integral numbers as
// integers, other numbers as floats, anything else unchanged.
func monthValue(s string) any {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return s
	}
	if f == math.Trunc(f) {
		return int64(f)
	}
	return f
}
