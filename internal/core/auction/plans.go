package auction

import (
	"fmt"
	"strings"

	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

const (
	listFirstRow = 2
	listLastRow  = 49
)

// ListPlans reads the auction plan listing of a generation. The listing ends at
// the first row whose bid column mentions TOTAL.
func ListPlans(g *workbook.Grid) []domain.AuctionPlan {
	plans := []domain.AuctionPlan{}
	for r := listFirstRow; r <= listLastRow && r < g.Rows(); r++ {
		month := g.At(r, planMonthCol).Trimmed()
		if month == "" || strings.EqualFold(month, "nan") {
			continue
		}
		if strings.Contains(g.At(r, planBidCol).Upper(), "TOTAL") {
			break
		}
		display := g.At(r, planValueCol).Trimmed()
		value := workbook.CleanPlanAmount(display)
		if value <= 0 {
			continue
		}
		plans = append(plans, domain.AuctionPlan{
			CurrentMonth: month,
			PlanDisplay:  display,
			PlanValue:    value,
			ID:           fmt.Sprintf("%s_%d", month, value),
			MemberCount:  "-",
		})
	}
	return plans
}
