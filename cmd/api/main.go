package main

import (
	"context"
	"crypto/tls"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	appeinvoice "github.com/Saifnaser12/peergos-sub004/internal/application/einvoice"
	rules "github.com/Saifnaser12/peergos-sub004/internal/domain/einvoice"
	infrafta "github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta"
	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/fta/signer"
	"github.com/Saifnaser12/peergos-sub004/internal/infrastructure/postgres"
	httpRouter "github.com/Saifnaser12/peergos-sub004/internal/interfaces/http"
	"github.com/Saifnaser12/peergos-sub004/pkg/config"
	"github.com/Saifnaser12/peergos-sub004/pkg/fta"
	"github.com/Saifnaser12/peergos-sub004/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("fta_env", cfg.FTA.Env).
		Msg("starting application")

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("PostgreSQL connection")
	}
	defer pool.Close()

	invoiceRepo := postgres.NewInvoiceRepository(pool)
	validator := rules.NewValidator()

	sgn, err := buildSigner(cfg.FTA)
	if err != nil {
		log.Fatal().Err(err).Msg("signing key material")
	}
	log.Info().Str("key_id", sgn.KeyID()).Msg("signer ready")

	pipeline := appeinvoice.NewPipeline(validator, infrafta.NewXMLBuilder(), sgn)

	// Submission client is only used when FTA_ENV is "test" or "prod"; in
	// "dev" the orchestrator simulates the clearance.
	var submitter infrafta.Submitter
	if cfg.FTA.Env != infrafta.AppEnvDev && cfg.FTA.Env != "" {
		submitter = infrafta.NewHTTPSubmitter(cfg.FTA.SubmitURL)
	}

	orchestrator := appeinvoice.NewOrchestrator(pipeline, invoiceRepo, submitter, cfg.FTA.Env, log)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	httpRouter.Router(app, httpRouter.RouterDeps{
		Invoices:     invoiceRepo,
		Orchestrator: orchestrator,
		Validator:    validator,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("HTTP server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutdown signal received, closing server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}

	log.Info().Msg("application stopped")
}

// buildSigner picks the signing implementation: an RSA signer when a
// certificate is configured, otherwise the keyed placeholder.
func buildSigner(cfg config.FTAConfig) (fta.Signer, error) {
	if cfg.CertPath == "" {
		return signer.NewKeyedSigner(cfg.SigningKeyID), nil
	}
	var (
		cert tls.Certificate
		err  error
	)
	if strings.HasSuffix(cfg.CertPath, ".p12") || strings.HasSuffix(cfg.CertPath, ".pfx") {
		cert, err = signer.LoadFromP12(cfg.CertPath, cfg.CertPassword)
	} else {
		cert, err = signer.LoadFromPEM(cfg.CertPath, cfg.CertKeyPath)
	}
	if err != nil {
		return nil, err
	}
	return signer.NewRSASigner(cert)
}
