package cmd

import (
	"context"
	"database/sql"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/zemen-travel/ms-go-payments/app/controller"
	"github.com/zemen-travel/ms-go-payments/app/notifier"
	"github.com/zemen-travel/ms-go-payments/app/provider"
	"github.com/zemen-travel/ms-go-payments/app/repository"
	"github.com/zemen-travel/ms-go-payments/app/service"
	"github.com/zemen-travel/ms-go-payments/config"

	_ "github.com/go-sql-driver/mysql"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  "Start the Echo HTTP server exposing the payment initiation and verification endpoints.",
	Run:   runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) {
	cfg, paymentService, cleanup := mustCreatePaymentService()
	defer cleanup()

	paymentController := controller.NewPaymentController(paymentService)
	e := setupHTTPServer(paymentController)

	go func() {
		httpAddr := net.JoinHostPort(cfg.HTTP.Host, cfg.HTTP.Port)
		logrus.WithField("addr", httpAddr).Info("Starting HTTP server")
		if err := e.Start(httpAddr); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("HTTP server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Warn("HTTP shutdown error")
	}

	logrus.Info("Server stopped")
}

func setupHTTPServer(paymentController *controller.PaymentController) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogRemoteIP:  true,
		LogLatency:   true,
		LogUserAgent: true,
		LogError:     true,
		HandleError:  true,
		LogRequestID: true,
		LogValuesFunc: func(_ echo.Context, v echomiddleware.RequestLoggerValues) error {
			fields := logrus.Fields{
				"remote_ip":  v.RemoteIP,
				"host":       v.Host,
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"latency_ns": v.Latency.Nanoseconds(),
				"user_agent": v.UserAgent,
				"request_id": v.RequestID,
			}
			entry := logrus.WithFields(fields)
			if v.Error != nil {
				entry = entry.WithError(v.Error)
			}
			entry.Info("http_request")
			return nil
		},
	}))
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())

	e.GET("/health", paymentController.Health)
	e.POST("/initiate", paymentController.InitiatePayment)
	e.GET("/verify", paymentController.VerifyPayment)
	e.GET("/payments", paymentController.ListPayments)

	return e
}

func mustCreatePaymentService() (*config.Config, *service.PaymentService, func()) {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := configureLogging(cfg); err != nil {
		logrus.WithError(err).Fatal("Failed to configure logging")
	}

	if strings.TrimSpace(cfg.Chapa.SecretKey) == "" {
		logrus.Warn("CHAPA_SECRET_KEY is empty; gateway requests will be sent without a usable credential")
	}

	db, err := sql.Open("mysql", cfg.MySQL.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to database")
	}

	db.SetMaxOpenConns(cfg.MySQL.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MySQL.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MySQL.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		logrus.WithError(err).Fatal("Failed to ping database")
	}

	paymentRepo := repository.NewPaymentRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)

	chapaProvider := provider.NewChapaProvider(provider.ChapaConfig{
		SecretKey:   cfg.Chapa.SecretKey,
		BaseURL:     cfg.Chapa.BaseURL,
		CallbackURL: cfg.Chapa.CallbackURL,
		ReturnURL:   cfg.Chapa.ReturnURL,
		HTTPTimeout: cfg.Chapa.HTTPTimeout,
	})

	dispatcher := notifier.NewDispatcher(notifier.NewSMTPMailer(cfg.SMTP), cfg.Payments.NotificationQueueSize)
	dispatcher.Start()

	paymentService := service.NewPaymentService(
		paymentRepo,
		eventRepo,
		chapaProvider,
		dispatcher,
		cfg.Payments,
	)

	cleanup := func() {
		dispatcher.Stop()
		if err := db.Close(); err != nil {
			logrus.WithError(err).Warn("Failed to close database")
		}
	}

	return cfg, paymentService, cleanup
}
