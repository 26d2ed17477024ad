package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nurpe/finishing-touch/internal/auth"
	"github.com/nurpe/finishing-touch/internal/config"
	"github.com/nurpe/finishing-touch/internal/db"
	"github.com/nurpe/finishing-touch/internal/excel"
	httphandler "github.com/nurpe/finishing-touch/internal/http"
	"github.com/nurpe/finishing-touch/internal/http/middleware"
	"github.com/nurpe/finishing-touch/internal/logger"
	"github.com/nurpe/finishing-touch/internal/metrics"
	"github.com/nurpe/finishing-touch/internal/pdf"
	"github.com/nurpe/finishing-touch/internal/repository"
	"github.com/nurpe/finishing-touch/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	customerRepo := repository.NewCustomerRepository(database)
	estimateRepo := repository.NewEstimateRepository(database)
	invoiceRepo := repository.NewInvoiceRepository(database)
	employeeRepo := repository.NewEmployeeRepository(database)
	jobRepo := repository.NewJobRepository(database)
	timeEntryRepo := repository.NewTimeEntryRepository(database)
	leadRepo := repository.NewLeadRepository(database)
	userRepo := repository.NewUserRepository(database)

	loc := cfg.Location()
	appMetrics := metrics.New(nil)

	pdfGenerator, err := pdf.NewGenerator(cfg.App.PDFFontPath, loc)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator(loc)

	authService := service.NewAuthService(userRepo, auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.AccessTTL), log)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	err = authService.EnsureAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword)
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to bootstrap admin user")
	}

	handler := httphandler.NewHandler(httphandler.Services{
		Auth:      authService,
		Estimates: service.NewEstimateService(estimateRepo, customerRepo, invoiceRepo, pdfGenerator, cfg, appMetrics, log),
		Invoices:  service.NewInvoiceService(invoiceRepo, estimateRepo, pdfGenerator, cfg, appMetrics, log),
		Jobs:      service.NewJobService(jobRepo, estimateRepo, employeeRepo, loc),
		Time:      service.NewTimeService(timeEntryRepo, employeeRepo, excelGenerator, loc, appMetrics),
		Employees: service.NewEmployeeService(employeeRepo),
		Leads:     service.NewLeadService(leadRepo, loc, log),
	}, log)

	authMiddleware := middleware.Auth(auth.NewParser(cfg.Auth.AccessSecret))
	router := httphandler.NewRouter(handler, authMiddleware, cfg, log, appMetrics)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Str("timezone", loc.String()).Msg("starting painting service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
