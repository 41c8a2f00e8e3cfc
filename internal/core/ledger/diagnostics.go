package ledger

// Pass names one extraction pass.
type Pass string

const (
	PassSummary    Pass = "summary"
	PassReceipt    Pass = "receipt"
	PassCommission Pass = "commission"
)

// SkipReason says why a row contributed nothing. The empty reason means the row
// was used.
type SkipReason string

const (
	Used             SkipReason = ""
	SkipDeniedName   SkipReason = "denied name"
	SkipBlankAmount  SkipReason = "blank amount"
	SkipDecoyTotal   SkipReason = "decoy total"
	SkipBlankName    SkipReason = "blank name"
	SkipNoMember     SkipReason = "no current member"
	SkipNoAmount     SkipReason = "non-positive amount"
	SkipNotDataRow   SkipReason = "not a data row"
	SkipSubtotal     SkipReason = "subtotal row"
	SkipUnknownPayer SkipReason = "unknown payer"
)

// Diagnostics counts skipped rows per pass and reason.
type Diagnostics struct {
	counts map[Pass]map[SkipReason]int
}

func (d *Diagnostics) record(p Pass, r SkipReason) {
	if r == Used {
		return
	}
	if d.counts == nil {
		d.counts = map[Pass]map[SkipReason]int{}
	}
	if d.counts[p] == nil {
		d.counts[p] = map[SkipReason]int{}
	}
	d.counts[p][r]++
}

// Count returns how many rows the pass skipped for reason.
func (d Diagnostics) Count(p Pass, r SkipReason) int {
	return d.counts[p][r]
}

// Each calls fn for every non-zero count.
func (d Diagnostics) Each(fn func(p Pass, r SkipReason, n int)) {
	for p, reasons := range d.counts {
		for r, n := range reasons {
			fn(p, r, n)
		}
	}
}
