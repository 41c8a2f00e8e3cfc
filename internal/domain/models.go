// package domain/models.go
package domain

// --- Ledger models ---

// Item is one payment or commission line belonging to a Member.
type Item struct {
	Month      string  `json:"month"`
	Plan       string  `json:"plan"`
	Commission string  `json:"commission"`
	Amount     float64 `json:"amount"`
	ID         string  `json:"id"`
	IsPaid     bool    `json:"is_paid"`
	PaidDate   *string `json:"paid_date"`
}

// Member is a chit-fund participant identified by normalized name and area.
//
// PaymentID is derived from the display name and the current total, so it changes
// whenever duplicate summary rows are merged. Stored statuses keyed by an earlier
// PaymentID are orphaned by such a merge; the format is kept because the status
// store already holds keys in it.
type Member struct {
	Name       string  `json:"name"`
	Area       string  `json:"area"`
	Total      float64 `json:"total"`
	PaidAmount float64 `json:"paid_amount"`
	Items      []Item  `json:"items"`
	PaymentID  string  `json:"payment_id"`
	IsPaid     bool    `json:"is_paid"`
	PaidDate   *string `json:"paid_date"`
}

// LedgerResult is the output of one extraction run.
type LedgerResult struct {
	Members    []*Member `json:"members"`
	GrandTotal float64   `json:"grand_total"`
}

// EmptyLedger is returned when the grid source is missing or unreadable.
func EmptyLedger() LedgerResult {
	return LedgerResult{Members: []*Member{}}
}

// --- Auction models ---

// AuctionPlan is one row of the auction plan listing.
type AuctionPlan struct {
	CurrentMonth string `json:"current_month"`
	PlanDisplay  string `json:"plan_display"`
	PlanValue    int    `json:"plan_value"`
	ID           string `json:"id"`
	MemberCount  string `json:"member_count"`
}

// Bid is the auction result for one plan in one month.
// PlanID has the form "{month}_{planValue}".
type Bid struct {
	PlanID   string  `json:"plan_id"`
	NewMonth string  `json:"new_month"`
	TotalBid float64 `json:"total_bid"`
}

// SettleRequest describes one settlement batch.
type SettleRequest struct {
	Bids          []Bid  `json:"bids"`
	SheetName     string `json:"sheet_name"`
	EffectiveDate string `json:"effective_date"`
}

// SettleReport summarizes what a settlement run changed.
type SettleReport struct {
	SheetName     string   `json:"sheet_name"`
	SourceSheet   string   `json:"source_sheet"`
	LedgerRows    int      `json:"ledger_rows"`
	SummaryCells  int      `json:"summary_cells"`
	FooterRows    int      `json:"footer_rows"`
	PlanRows      int      `json:"plan_rows"`
	UnmatchedBids []string `json:"unmatched_bids,omitempty"`
}

// ToggleResult is the answer to a paid-status toggle.
type ToggleResult struct {
	Success   bool    `json:"success"`
	NewStatus bool    `json:"new_status"`
	PaidOn    *string `json:"paid_on"`
}
