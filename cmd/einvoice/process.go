package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	appeinvoice "github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	infrafta "github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
)

var processCmd = &cobra.Command{
	Use:   "process [invoice.json]",
	Short: "Run the full compliance pipeline on an invoice file",
	Long: `Validates the invoice, serializes it to UBL XML, computes the
canonical SHA-256 hash, signs it, renders the QR code and evaluates the
Phase 2 compliance gate. No database or FTA endpoint is involved.`,
	Example: `  # Print hash, signature and compliance state
  einvoice process invoice.json

  # Also write the signed XML and the full artifact JSON
  einvoice process invoice.json --signed-xml signed.xml -o artifacts.json`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("output", "o", "", "Write the artifact JSON to this file (default: stdout summary)")
	processCmd.Flags().String("signed-xml", "", "Write the signed XML document to this file")
}

type processOutput struct {
	InvoiceNumber string   `json:"invoiceNumber"`
	Hash          string   `json:"hash"`
	Signature     string   `json:"signature"`
	SignatureDate string   `json:"signatureDate"`
	KeyID         string   `json:"keyId"`
	QRDataURL     string   `json:"qrDataUrl"`
	Compliance    string   `json:"compliance"`
	Errors        []string `json:"errors,omitempty"`
}

func runProcess(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	signedXMLPath, _ := cmd.Flags().GetString("signed-xml")

	inv, err := readInvoiceFile(args[0])
	if err != nil {
		return err
	}
	sgn, err := loadSigner()
	if err != nil {
		return err
	}

	pipeline := appeinvoice.NewPipeline(rules.NewValidator(), infrafta.NewXMLBuilder(), sgn)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pkg, err := pipeline.Process(ctx, inv)
	if err != nil {
		var verr *rules.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Result.Errors {
				fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("%d validation error(s)", len(verr.Result.Errors))
		}
		return err
	}

	report := appeinvoice.Evaluate(pkg)
	out := processOutput{
		InvoiceNumber: pkg.Invoice.InvoiceNumber,
		Hash:          pkg.Hash,
		Signature:     pkg.Signature,
		SignatureDate: pkg.SignatureDate.Format(time.RFC3339),
		KeyID:         sgn.KeyID(),
		QRDataURL:     pkg.QRDataURL,
		Compliance:    report.State,
		Errors:        report.Errors,
	}

	if signedXMLPath != "" {
		if err := os.WriteFile(signedXMLPath, []byte(pkg.SignedXML), 0o644); err != nil {
			return fmt.Errorf("write signed XML: %w", err)
		}
	}

	if outputPath != "" {
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return err
		}
		return os.WriteFile(outputPath, data, 0o644)
	}

	fmt.Printf("invoice:    %s\n", out.InvoiceNumber)
	fmt.Printf("hash:       %s\n", out.Hash)
	fmt.Printf("signature:  %s\n", out.Signature)
	fmt.Printf("key id:     %s\n", out.KeyID)
	fmt.Printf("compliance: %s\n", out.Compliance)
	for _, msg := range out.Errors {
		fmt.Printf("  - %s\n", msg)
	}
	return nil
}
