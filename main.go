package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"travelbook/config"
	"travelbook/gateway"
	httpserver "travelbook/http"
	"travelbook/service"
	"travelbook/tracing"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logrus.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	tp := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown trace provider")
		}
	}()

	database, err := sqlx.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logrus.WithError(err).Fatal("could not connect to postgres")
	}
	defer database.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	defer redisClient.Close()

	gatewayHTTPClient := &http.Client{Timeout: cfg.GatewayTimeout}

	razorpayClient := gateway.NewRazorpayClient(gatewayHTTPClient, cfg.Razorpay.BaseURL, cfg.Razorpay.KeyID, cfg.Razorpay.KeySecret)
	stripeClient := gateway.NewStripeClient(gatewayHTTPClient, cfg.Stripe.BaseURL, cfg.Stripe.APIKey)
	documentsClient := gateway.NewDocumentsClient(gatewayHTTPClient, cfg.DocumentsBaseURL)
	financeClient := gateway.NewFinanceSheetClient(gatewayHTTPClient, cfg.FinanceSheetBaseURL)

	svc := service.New(
		cfg.HTTPAddr,
		database,
		redisClient,
		razorpayClient,
		stripeClient,
		documentsClient,
		financeClient,
		httpserver.WebhookSecrets{
			Stripe:   cfg.Stripe.WebhookSecret,
			Razorpay: cfg.Razorpay.WebhookSecret,
		},
		cfg.AdminToken,
	)

	if err := svc.Run(ctx); err != nil {
		logrus.WithError(err).Fatal("service stopped")
	}
}
