package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	httpapi "github.com/i474232898/weather-report/internal/api/http"
	"github.com/i474232898/weather-report/internal/cities"
	"github.com/i474232898/weather-report/internal/common"
	"github.com/i474232898/weather-report/internal/config"
	"github.com/i474232898/weather-report/internal/logging"
	"github.com/i474232898/weather-report/internal/scheduler"
	"github.com/i474232898/weather-report/internal/weather"
	"github.com/i474232898/weather-report/internal/weather/providers"
)

func main() {
	city := flag.String("city", "", "Print one report for this city and exit instead of serving")
	days := flag.Int("days", 0, "Number of forecast days in a one-shot report (0-7)")
	unit := flag.String("unit", "", "Temperature unit for a one-shot report (F or C)")
	show := flag.String("show", "", "Comma-separated day details: temp,conditions,wind,humidity,uv,air,realfeel")
	flag.Parse()

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.EnvFileErr != nil {
		log.Info("no .env file loaded", zap.Error(cfg.EnvFileErr))
	}

	table, err := loadCities(cfg, log)
	if err != nil {
		log.Fatal("failed to load cities", zap.Error(err))
	}

	// Shared HTTP client for outbound calls; the timeout bounds each call.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	nws := providers.NewNWSProvider(httpClient, providers.NWSConfig{
		BaseURL:     cfg.NWSBaseURL,
		UserAgent:   cfg.UserAgent,
		MaxStations: cfg.MaxStations,
		Limiter:     rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateBurst),
	}, log)

	service := weather.NewService(nws, log)

	if *city != "" {
		if err := runOnce(service, table, cfg, *city, *days, *unit, *show); err != nil {
			fmt.Fprintf(os.Stderr, "Error:\n%v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := serve(service, table, cfg, log); err != nil {
		log.Fatal("server failed", zap.Error(err))
	}
}

func loadCities(cfg *config.AppConfig, log *zap.Logger) (*cities.Table, error) {
	table := cities.Default()

	if cfg.GazetteerFile != "" {
		extra, err := cities.LoadGazetteerFile(cfg.GazetteerFile)
		if err != nil {
			return nil, err
		}
		table.Add(extra...)
		log.Info("loaded gazetteer cities", zap.String("path", cfg.GazetteerFile), zap.Int("count", len(extra)))
	}

	if cfg.CitiesFile != "" {
		extra, err := cities.LoadTOMLFile(cfg.CitiesFile)
		if err != nil {
			return nil, err
		}
		table.Add(extra...)
		log.Info("loaded cities file", zap.String("path", cfg.CitiesFile), zap.Int("count", len(extra)))
	}

	return table, nil
}

func runOnce(service *weather.Service, table *cities.Table, cfg *config.AppConfig, name string, days int, unit, show string) error {
	c, err := table.Lookup(name)
	if err != nil {
		return fmt.Errorf("%q: %w (try one of: %s)", name, err, strings.Join(table.Search(name), "; "))
	}

	req := weather.ReportRequest{Days: days, Unit: cfg.DefaultUnit}
	if unit != "" {
		if req.Unit, err = weather.ParseUnit(unit); err != nil {
			return err
		}
	}
	if req.Options, err = parseDetails(show); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	report, err := service.Report(ctx, c.Location(), req)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(report.Lines(), "\n"))
	return nil
}

func parseDetails(show string) (weather.FormatOptions, error) {
	var opts weather.FormatOptions
	for _, d := range common.SplitList(show, ",") {
		switch strings.ToLower(d) {
		case "temp":
			opts.TempRange = true
		case "conditions":
			opts.Conditions = true
		case "wind":
			opts.Wind = true
		case "humidity":
			opts.Humidity = true
		case "uv":
			opts.UVIndex = true
		case "air":
			opts.AirQuality = true
		case "realfeel":
			opts.RealFeel = true
		default:
			return opts, fmt.Errorf("unknown detail %q", d)
		}
	}
	return opts, nil
}

func serve(service *weather.Service, table *cities.Table, cfg *config.AppConfig, log *zap.Logger) error {
	// Scheduler that periodically logs reports for watched cities.
	var watched []weather.Location
	for _, name := range cfg.WatchCities {
		c, err := table.Lookup(name)
		if err != nil {
			log.Warn("ignoring unknown watch city", zap.String("city", name))
			continue
		}
		watched = append(watched, c.Location())
	}
	sched := scheduler.New(watched, cfg.WatchInterval, 2*time.Minute, weather.ReportRequest{
		Days: cfg.WatchDays,
		Unit: cfg.DefaultUnit,
		Options: weather.FormatOptions{
			TempRange:  true,
			Conditions: true,
			Wind:       true,
		},
	}, service, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "weather-report",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-report",
		})
	})

	// API routes.
	httpapi.RegisterRoutes(app, service, table, cfg.DefaultUnit)

	go func() {
		log.Info("listening", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return app.ShutdownWithContext(shutdownCtx)
}
