package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/domain"
)

var (
	settleSheet string
	settleDate  string
	settleBids  []string
	settleSync  bool
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Apply auction results as a new ledger generation",
	Example: `  chitfund settle --sheet "Feb 26" --date 10-Feb-2026 \
    --bid 20_20000=2000:21 --bid 18_50000=6000:19`,
	RunE: func(cmd *cobra.Command, args []string) error {
		bids, err := parseBidFlags(settleBids)
		if err != nil {
			return err
		}
		date := settleDate
		if date == "" {
			date = time.Now().Format("02-Jan-2006")
		}

		source := newSource()
		var uploader auction.Uploader
		if settleSync {
			client, err := newFirestore(cmd.Context())
			if err != nil {
				return err
			}
			defer client.Close()
			uploader = newSyncer(client, source)
		}

		svc := auction.NewService(source, uploader, nil, logger)
		report, err := svc.Settle(cmd.Context(), domain.SettleRequest{
			Bids:          bids,
			SheetName:     settleSheet,
			EffectiveDate: date,
		})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), report)
	},
}

func init() {
	settleCmd.Flags().StringVarP(&settleSheet, "sheet", "s", "", "name of the new generation")
	settleCmd.Flags().StringVarP(&settleDate, "date", "d", "", "effective date written into the headers (default today)")
	settleCmd.Flags().StringArrayVarP(&settleBids, "bid", "b", nil, "bid as PLAN_ID=TOTAL:NEW_MONTH, repeatable")
	settleCmd.Flags().BoolVar(&settleSync, "sync", false, "upload the workbook after settling (needs sync.enabled)")
	_ = settleCmd.MarkFlagRequired("sheet")
	rootCmd.AddCommand(settleCmd)
}

// parseBidFlags reads PLAN_ID=TOTAL:NEW_MONTH values.
func parseBidFlags(values []string) ([]domain.Bid, error) {
	bids := make([]domain.Bid, 0, len(values))
	for _, v := range values {
		id, rest, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("bid %q: want PLAN_ID=TOTAL:NEW_MONTH", v)
		}
		total, month, ok := strings.Cut(rest, ":")
		if !ok || strings.TrimSpace(month) == "" {
			return nil, fmt.Errorf("bid %q: missing new month", v)
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(total))
		if err != nil {
			return nil, fmt.Errorf("bid %q: %w", v, err)
		}
		f, _ := amount.Float64()
		bids = append(bids, domain.Bid{
			PlanID:   strings.TrimSpace(id),
			NewMonth: strings.TrimSpace(month),
			TotalBid: f,
		})
	}
	return bids, nil
}
