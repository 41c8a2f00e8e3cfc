package ledger

// Fixed column layout of a ledger generation, 0-based.

// SummaryBlock locates one of the two summary tables on the right of the sheet.
type SummaryBlock struct {
	Amount, Name, Area int
}

// SummaryBlocks are the member summary tables (columns T-V and X-Z).
var SummaryBlocks = []SummaryBlock{
	{Amount: 19, Name: 20, Area: 21},
	{Amount: 23, Name: 24, Area: 25},
}

// ReceiptBlocks are the label columns of the receipt blocks. Relative to the label:
// +1 name or plan, +2 area or commission, +3 amount.
var ReceiptBlocks = []int{0, 5, 10}

// decoyTotals are grand totals that appear in the summary columns and must not be
// read as member rows.
var decoyTotals = []float64{4132350, 3708850, 7841200}

// deniedNames are summary-column labels that never name a member.
var deniedNames = map[string]bool{
	"NAN": true, "NAME": true, "AMOUNT": true, "TOTAL": true,
	"": true, "0": true, "TOTAL PAYABLE": true, "AREA": true,
}

const (
	grandTotalRow = 22
	grandTotalCol = 14

	commissionHeader     = "TOTAL COMMISSION"
	commissionHeaderRows = 20
	commissionPayerCol   = 1

	defaultArea = "General"
	maxLabelLen = 25
)
