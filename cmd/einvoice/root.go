package main

import (
	"crypto/tls"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta/signer"
	"github.com/Saifnaser12/peergos-sub004/pkg/config"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
)

var rootCmd = &cobra.Command{
	Use:   "einvoice",
	Short: "UAE FTA Phase 2 e-invoice toolbox",
	Long: `einvoice validates invoices, generates the Phase 2 compliance
artifacts (UBL XML, SHA-256 hash, digital signature, QR code) and verifies
signatures, all from JSON files on disk.

Signing key material comes from the same environment variables the API
uses (FTA_CERT_PATH, FTA_SIGNING_KEY_ID, ...).`,
	SilenceUsage: true,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadSigner builds the signer the same way the API does: RSA when a
// certificate is configured, keyed placeholder otherwise.
func loadSigner() (fta.Signer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	ftaCfg := cfg.FTA
	if ftaCfg.CertPath == "" {
		return signer.NewKeyedSigner(ftaCfg.SigningKeyID), nil
	}
	var cert tls.Certificate
	if strings.HasSuffix(ftaCfg.CertPath, ".p12") || strings.HasSuffix(ftaCfg.CertPath, ".pfx") {
		cert, err = signer.LoadFromP12(ftaCfg.CertPath, ftaCfg.CertPassword)
	} else {
		cert, err = signer.LoadFromPEM(ftaCfg.CertPath, ftaCfg.CertKeyPath)
	}
	if err != nil {
		return nil, err
	}
	return signer.NewRSASigner(cert)
}
