package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"chitfund-service/internal/core/auction"
	"chitfund-service/internal/core/ledger"
)

var (
	extractSheet string
	lookupLimit  int
)

var sheetsCmd = &cobra.Command{
	Use:   "sheets",
	Short: "List the ledger generations, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		sheets, err := newSource().Sheets()
		if err != nil {
			return err
		}
		for _, s := range sheets {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return nil
	},
}

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract members and payments as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		svc := ledger.NewService(newSource(), store, nil, logger)
		return writeJSON(cmd.OutOrStdout(), svc.Extract(cmd.Context(), extractSheet))
	},
}

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List the auction plans of the newest generation as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc := auction.NewService(newSource(), nil, nil, logger)
		return writeJSON(cmd.OutOrStdout(), svc.Plans(cmd.Context()))
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup NAME",
	Short: "Suggest member names close to NAME",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer store.Close()

		svc := ledger.NewService(newSource(), store, nil, logger)
		for _, name := range svc.Lookup(cmd.Context(), args[0], lookupLimit) {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractSheet, "sheet", "s", "", "generation to extract (default newest)")
	lookupCmd.Flags().IntVarP(&lookupLimit, "limit", "n", 5, "maximum suggestions")
	rootCmd.AddCommand(sheetsCmd, extractCmd, plansCmd, lookupCmd)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
