package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Saifnaser12/peergos-sub004/internal/application/dto"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	"github.com/Saifnaser12/peergos-sub004/internal/domain/entity"
)

var validateCmd = &cobra.Command{
	Use:   "validate [invoice.json]",
	Short: "Validate an invoice file against the Phase 2 schema rules",
	Long: `Reads an invoice from a JSON file and runs the schema validation:
required fields, 15-digit TRNs, line item amounts. Every violation is
reported, not just the first one.

Exit code 0 means valid, 1 means violations were found.`,
	Example: `  einvoice validate invoice.json
  einvoice validate invoice.json --strict-totals`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().Bool("strict-totals", false, "Cross-check invoice totals against line sums")
	validateCmd.Flags().Bool("require-exemption-reason", false, "Require an exemption reason on exempt zero-rated lines")
}

func runValidate(cmd *cobra.Command, args []string) error {
	strictTotals, _ := cmd.Flags().GetBool("strict-totals")
	requireReason, _ := cmd.Flags().GetBool("require-exemption-reason")

	inv, err := readInvoiceFile(args[0])
	if err != nil {
		return err
	}

	var opts []rules.ValidatorOption
	if strictTotals {
		opts = append(opts, rules.WithTotalsConsistency())
	}
	if requireReason {
		opts = append(opts, rules.WithExemptionReasonRequired())
	}

	res := rules.NewValidator(opts...).Validate(inv)
	if res.IsValid() {
		fmt.Println("invoice is valid")
		return nil
	}
	for _, fe := range res.Errors {
		fmt.Printf("  %s: %s\n", fe.Field, fe.Message)
	}
	return fmt.Errorf("%d validation error(s)", len(res.Errors))
}

func readInvoiceFile(path string) (*entity.Invoice, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read invoice file: %w", err)
	}
	var req dto.CreateInvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("parse invoice JSON: %w", err)
	}
	entityInv, err := req.ToEntity()
	if err != nil {
		return nil, fmt.Errorf("invoice dates must use the YYYY-MM-DD layout: %w", err)
	}
	return entityInv, nil
}
