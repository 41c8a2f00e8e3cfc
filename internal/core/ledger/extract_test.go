package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chitfund-service/internal/core/paystatus"
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

type cells map[[2]int]string

func buildGrid(c cells) *workbook.Grid {
	rows, cols := 0, 0
	for k := range c {
		rows = max(rows, k[0]+1)
		cols = max(cols, k[1]+1)
	}
	data := make([][]string, rows)
	for r := range data {
		data[r] = make([]string, cols)
	}
	for k, v := range c {
		data[k[0]][k[1]] = v
	}
	return workbook.NewGrid("Test", data)
}

func findMember(t *testing.T, res domain.LedgerResult, name, area string) *domain.Member {
	t.Helper()
	for _, m := range res.Members {
		if m.Name == name && m.Area == area {
			return m
		}
	}
	t.Fatalf("member %s/%s not found", name, area)
	return nil
}

func names(res domain.LedgerResult) []string {
	out := make([]string, len(res.Members))
	for i, m := range res.Members {
		out[i] = m.Name
	}
	return out
}

func ledgerGrid() *workbook.Grid {
	return buildGrid(cells{
		// summary block 1
		{2, 19}: "AMOUNT", {2, 20}: "NAME", {2, 21}: "AREA",
		{3, 19}: "600", {3, 20}: "ramesh kumar", {3, 21}: "anna nagar",
		{4, 19}: "4132350", {4, 20}: "Grand",
		{5, 20}: "Blank",
		{8, 19}: "7841200.4", {8, 20}: "Bonus",
		{9, 19}: "900", {9, 20}: "TOTAL PAYABLE",
		// summary block 2
		{6, 23}: "500", {6, 24}: "suresh",
		{7, 23}: "250", {7, 24}: "SURESH", {7, 25}: "5",
		// receipts
		{10, 0}: "NAME", {10, 1}: "Ramesh Kumar", {10, 2}: "Anna Nagar",
		{11, 0}: "20", {11, 1}: "20000", {11, 2}: "100", {11, 3}: "100",
		{12, 0}: "21", {12, 1}: "20000", {12, 2}: "100", {12, 3}: "200",
		{13, 0}: "22", {13, 1}: "20000", {13, 3}: "300",
		{14, 0}: "TOTAL", {14, 3}: "600",
		// grand total
		{22, 14}: "1,234,567",
	})
}

func TestExtractGrid_SummaryAndReceipts(t *testing.T) {
	snap := paystatus.Snapshot{
		"rameshkumar_100_20_20000": {},
		"rameshkumar_200_21_20000": {PaidOn: "01 Feb, 10:30 AM"},
		"Suresh_750":               {},
	}

	res, diag := ExtractGrid(ledgerGrid(), snap)

	assert.Equal(t, []string{"Ramesh Kumar", "Suresh"}, names(res))
	assert.Equal(t, 1234567.0, res.GrandTotal)

	ramesh := findMember(t, res, "Ramesh Kumar", "Anna Nagar")
	require.Len(t, ramesh.Items, 3)
	assert.Equal(t, "rameshkumar_100_20_20000", ramesh.Items[0].ID)
	assert.True(t, ramesh.Items[0].IsPaid)
	assert.Nil(t, ramesh.Items[0].PaidDate)
	require.NotNil(t, ramesh.Items[1].PaidDate)
	assert.Equal(t, "01 Feb, 10:30 AM", *ramesh.Items[1].PaidDate)
	assert.False(t, ramesh.Items[2].IsPaid)
	assert.Equal(t, "", ramesh.Items[2].Commission)

	// partial payment
	assert.Equal(t, 600.0, ramesh.Total)
	assert.Equal(t, 300.0, ramesh.PaidAmount)
	assert.False(t, ramesh.IsPaid)
	assert.Equal(t, "RameshKumar_600", ramesh.PaymentID)

	// duplicate summary rows merge, numeric area falls back to General
	suresh := findMember(t, res, "Suresh", "General")
	assert.Equal(t, 750.0, suresh.Total)
	assert.Equal(t, "Suresh_750", suresh.PaymentID)
	assert.True(t, suresh.IsPaid)
	assert.Equal(t, 750.0, suresh.PaidAmount)
	assert.Empty(t, suresh.Items)
	assert.NotNil(t, suresh.Items)

	assert.Equal(t, 2, diag.Count(PassSummary, SkipDecoyTotal))
	assert.Equal(t, 1, diag.Count(PassSummary, SkipBlankAmount))
	assert.Equal(t, 2, diag.Count(PassSummary, SkipDeniedName))
}

func TestExtractGrid_Idempotent(t *testing.T) {
	g := ledgerGrid()
	snap := paystatus.Snapshot{"rameshkumar_100_20_20000": {}}

	first, _ := ExtractGrid(g, snap)
	second, _ := ExtractGrid(g, snap)
	assert.Equal(t, first, second)
}

func TestExtractGrid_MemberLevelStatusCoversItems(t *testing.T) {
	g := buildGrid(cells{
		{1, 19}: "400", {1, 20}: "Mohan", {1, 21}: "West",
		{3, 5}: "NAME :", {3, 6}: "mohan", {3, 7}: "West",
		{4, 5}: "20", {4, 6}: "20000", {4, 7}: "100", {4, 8}: "250",
		{5, 5}: "21.0", {5, 6}: "20,000", {5, 7}: "100", {5, 8}: "150",
	})
	snap := paystatus.Snapshot{"Mohan_400": {PaidOn: "03 Mar, 09:00 AM"}}

	res, _ := ExtractGrid(g, snap)
	mohan := findMember(t, res, "Mohan", "West")

	require.Len(t, mohan.Items, 2)
	for _, it := range mohan.Items {
		assert.True(t, it.IsPaid)
		require.NotNil(t, it.PaidDate)
		assert.Equal(t, "03 Mar, 09:00 AM", *it.PaidDate)
	}
	assert.Equal(t, "mohan_150_21.0_20,000", mohan.Items[1].ID)
	assert.True(t, mohan.IsPaid)
	assert.Equal(t, 400.0, mohan.PaidAmount)
}

func TestExtractGrid_MemberResolution(t *testing.T) {
	g := buildGrid(cells{
		{1, 19}: "100", {1, 20}: "Ravi", {1, 21}: "North",
		{2, 19}: "200", {2, 20}: "Ravi", {2, 21}: "South",
		{3, 19}: "300", {3, 20}: "Mohan", {3, 21}: "West",
		// exact key
		{10, 0}: "NAME", {10, 1}: "Ravi", {10, 2}: "north",
		{11, 0}: "20", {11, 1}: "20000", {11, 3}: "100",
		// unique name, different area
		{12, 0}: "NAME", {12, 1}: "Mohan",
		{13, 0}: "20", {13, 1}: "30000", {13, 3}: "300",
		// ambiguous name creates a new member
		{14, 0}: "NAME", {14, 1}: "Ravi", {14, 2}: "East",
		{15, 0}: "20", {15, 1}: "20000", {15, 3}: "50",
	})

	res, _ := ExtractGrid(g, nil)

	assert.Len(t, findMember(t, res, "Ravi", "North").Items, 1)
	assert.Empty(t, findMember(t, res, "Ravi", "South").Items)
	assert.Len(t, findMember(t, res, "Mohan", "West").Items, 1)

	east := findMember(t, res, "Ravi", "East")
	assert.Equal(t, "ravi_east_auto", east.PaymentID)
	assert.Equal(t, 50.0, east.Total)
	assert.False(t, east.IsPaid)
	assert.Len(t, res.Members, 4)
}

// The cursor resets for every block and on a blank NAME header. Rows there are
// skipped rather than attached to the previous block's member, which is where a
// cursor kept across headers would put them.
func TestExtractGrid_ReceiptCursor(t *testing.T) {
	g := buildGrid(cells{
		{1, 19}: "100", {1, 20}: "Anil",
		// block at column 5 starts with data before any header
		{2, 5}: "20", {2, 6}: "20000", {2, 8}: "70",
		// block at column 0: a blank header ends the previous member
		{3, 0}: "NAME", {3, 1}: "Anil",
		{4, 0}: "20", {4, 1}: "20000", {4, 3}: "100",
		{5, 0}: "NAME", {5, 1}: "  ",
		{6, 0}: "21", {6, 1}: "20000", {6, 3}: "999",
		{7, 0}: "22", {7, 1}: "20000", {7, 3}: "0",
	})

	res, diag := ExtractGrid(g, nil)
	anil := findMember(t, res, "Anil", "General")

	require.Len(t, anil.Items, 1)
	assert.Equal(t, 100.0, anil.Total)
	assert.Equal(t, 1, diag.Count(PassReceipt, SkipBlankName))
	assert.Equal(t, 3, diag.Count(PassReceipt, SkipNoMember))
}

func TestExtractGrid_Commissions(t *testing.T) {
	g := buildGrid(cells{
		{0, 16}: "Total Commission",
		{1, 19}: "500", {1, 20}: "Ramesh Kumar",
		{1, 1}: "ramesh kumar", {1, 16}: "75",
		{2, 15}: "TOTAL", {2, 1}: "ramesh kumar", {2, 16}: "75",
		{3, 1}: "Stranger", {3, 16}: "10",
		{4, 16}: "0",
	})

	res, diag := ExtractGrid(g, nil)
	ramesh := findMember(t, res, "Ramesh Kumar", "General")

	require.Len(t, ramesh.Items, 1)
	it := ramesh.Items[0]
	assert.Equal(t, domain.Item{
		Month: "-", Plan: "Comm.", Commission: "-", Amount: 75, ID: "comm_75_1", IsPaid: true,
	}, it)
	// items replace the summary total
	assert.Equal(t, 75.0, ramesh.Total)
	assert.True(t, ramesh.IsPaid)
	assert.Equal(t, 1, diag.Count(PassCommission, SkipSubtotal))
	assert.Equal(t, 1, diag.Count(PassCommission, SkipUnknownPayer))
}

func TestExtractGrid_CommissionHeaderInShortSheet(t *testing.T) {
	g := buildGrid(cells{{0, 3}: "TOTAL COMMISSION"})
	assert.NotPanics(t, func() { ExtractGrid(g, nil) })
}

func TestExtractGrid_Empty(t *testing.T) {
	res, _ := ExtractGrid(workbook.NewGrid("Empty", nil), nil)
	assert.NotNil(t, res.Members)
	assert.Empty(t, res.Members)
	assert.Zero(t, res.GrandTotal)
}

func TestExtractGrid_SortedByName(t *testing.T) {
	g := buildGrid(cells{
		{1, 19}: "1", {1, 20}: "zoya",
		{2, 19}: "1", {2, 20}: "arun",
		{3, 23}: "1", {3, 24}: "meena",
	})
	res, _ := ExtractGrid(g, nil)
	assert.Equal(t, []string{"Arun", "Meena", "Zoya"}, names(res))
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "RameshKumar_600", paymentID("Ramesh Kumar", 600.9))
	assert.Equal(t, "rameshkumar_100_20_20000", itemID("Ramesh Kumar", 100.5, "20", "20000"))
	assert.Equal(t, "nan", idText(workbook.ParseCell("")))
	assert.True(t, isDecoy(3708850.5))
	assert.False(t, isDecoy(3708852))
	assert.Equal(t, "General", areaOf(workbook.ParseCell("12.5")))
	assert.Equal(t, "Anna Nagar", areaOf(workbook.ParseCell(" anna nagar ")))
}

func TestExtractGrid_TitleCasedPaymentIDs(t *testing.T) {
	g := buildGrid(cells{
		{1, 19}: "500", {1, 20}: "s.kumar",
		{2, 19}: "700", {2, 20}: "o'brien",
		{3, 19}: "300", {3, 20}: "ravi2nd",
	})
	snap := paystatus.Snapshot{
		"S.Kumar_500": {},
		"O'Brien_700": {PaidOn: "01 Feb, 10:30 AM"},
		"Ravi2Nd_300": {},
	}

	res, _ := ExtractGrid(g, snap)
	require.Equal(t, []string{"O'Brien", "Ravi2Nd", "S.Kumar"}, names(res))
	for _, m := range res.Members {
		assert.True(t, m.IsPaid, m.PaymentID)
	}
	assert.Equal(t, "S.Kumar_500", findMember(t, res, "S.Kumar", "General").PaymentID)
	assert.Equal(t, "O'Brien_700", findMember(t, res, "O'Brien", "General").PaymentID)
}
