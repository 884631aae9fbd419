package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/healingsoulutions/intake-api/internal/config"
	"github.com/healingsoulutions/intake-api/internal/infra/history"
	"github.com/healingsoulutions/intake-api/internal/infra/http/handlers"
	"github.com/healingsoulutions/intake-api/internal/infra/http/middleware"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/intakeq"
	"github.com/healingsoulutions/intake-api/internal/infra/integration/stripe"
	"github.com/healingsoulutions/intake-api/internal/infra/logger"
	"github.com/healingsoulutions/intake-api/internal/infra/mail"
	"github.com/healingsoulutions/intake-api/internal/usecase"
)

const version = "1.0.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zl, err := logger.NewZapLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	// 1. Vendor clients. Each stays nil when its key is missing.
	var records usecase.RecordSystem
	if cfg.RecordsConfigured() {
		records = intakeq.NewClient(cfg.IntakeQAPIKey, cfg.IntakeQBaseURL, cfg.HTTPTimeout(), zl)
	} else {
		zl.Warn("INTAKEQ_API_KEY not set; submissions will be rejected")
	}

	var vault usecase.CardVault
	if cfg.PaymentsConfigured() {
		vault = stripe.NewClient(cfg.StripeSecretKey, stripe.Options{
			HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		}, zl)
	} else {
		zl.Warn("STRIPE_SECRET_KEY not set; card verification disabled")
	}

	emailService, mailKind := buildMailer(cfg, zl)

	// 2. UseCases
	outcomes := history.NewRing(cfg.OutcomeHistorySize)

	submitUC := usecase.NewSubmitIntakeUseCase(records, emailService, outcomes, usecase.SubmitIntakeOptions{
		Tags:            cfg.IntakeQTags,
		QuestionnaireID: cfg.IntakeQQuestionnaireID,
		PracticePhone:   cfg.PracticePhone,
		PracticeEmail:   cfg.PracticeInbox,
		OnStep: func(step, service string, result usecase.StepResult) {
			middleware.RecordStep(step, service, string(result))
		},
	}, zl)

	verifyUC := usecase.NewVerifyCardUseCase(vault, usecase.VerifyCardOptions{
		PracticeName: cfg.PracticeName,
		OnResult:     middleware.RecordCardVerification,
	}, zl)

	// 3. Handlers + router
	router := handlers.NewRouter(
		handlers.RouterConfig{
			CORSOrigins:        cfg.CORSOrigins,
			RateLimitPerMinute: cfg.RateLimitPerMinute,
		},
		handlers.NewIntakeHandler(submitUC, outcomes, zl),
		handlers.NewCardHandler(verifyUC),
		handlers.NewHealthHandler(handlers.Dependencies{
			IntakeQ: records != nil,
			Mail:    mailKind,
			Stripe:  vault != nil,
		}, version),
	)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zl.Info("server listening", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zl.Error("shutdown", zap.Error(err))
	}
	zl.Info("server stopped")
}

// buildMailer prefers the Resend API and falls back to SMTP. With neither
// configured both emails are skipped.
func buildMailer(cfg *config.Config, zl *zap.Logger) (usecase.EmailService, string) {
	practice := mail.Practice{
		Name:  cfg.PracticeName,
		Inbox: cfg.PracticeInbox,
		Phone: cfg.PracticePhone,
		From:  cfg.MailFrom,
	}

	if !cfg.MailConfigured() {
		zl.Warn("no mail transport configured; notification emails disabled")
		return nil, ""
	}

	if cfg.ResendAPIKey != "" {
		sender, err := mail.NewResendSender(cfg.ResendAPIKey, "", zl)
		if err != nil {
			zl.Error("resend sender", zap.Error(err))
			return nil, ""
		}
		return mail.NewNotifier(sender, practice), "resend"
	}

	sender := mail.NewSMTPSender(cfg.MailHost, cfg.MailPort, cfg.MailUser, cfg.MailPass)
	return mail.NewNotifier(sender, practice), "smtp"
}
