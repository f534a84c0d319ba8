package httpapi

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-report/internal/cities"
	"github.com/i474232898/weather-report/internal/weather"
)

var validate = validator.New()

// Reporter builds a weather report for one location.
type Reporter interface {
	Report(ctx context.Context, loc weather.Location, req weather.ReportRequest) (weather.Report, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, reporter Reporter, table *cities.Table, defaultUnit weather.Unit) {
	v1 := app.Group("/api/v1")

	v1.Get("/cities", func(c *fiber.Ctx) error {
		var q citiesQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		names := table.Search(q.Q)
		if names == nil {
			names = []string{}
		}
		return c.JSON(fiber.Map{"cities": names})
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		var q forecastQuery
		if err := c.QueryParser(&q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		city, err := table.Lookup(q.City)
		if err != nil {
			if errors.Is(err, cities.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "city not found in city list")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to look up city")
		}

		req, err := q.toRequest(defaultUnit)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := reporter.Report(c.UserContext(), city.Location(), req)
		if err != nil {
			return reportError(err)
		}

		if q.Format == "text" {
			c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
			return c.SendString(strings.Join(report.Lines(), "\n"))
		}
		return c.JSON(forecastResponse{Report: report, Lines: report.Lines()})
	})
}

// reportError maps pipeline failures to HTTP errors.
func reportError(err error) error {
	switch {
	case errors.Is(err, weather.ErrEmptyForecast):
		return fiber.NewError(fiber.StatusBadGateway, "forecast returned no periods")
	case errors.Is(err, weather.ErrUpstream):
		return fiber.NewError(fiber.StatusBadGateway, "weather service request failed: "+err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build weather report")
	}
}

type forecastResponse struct {
	weather.Report
	Lines []string `json:"lines"`
}

// citiesQuery holds query parameters for the city search endpoint.
type citiesQuery struct {
	Q string `query:"q" validate:"max=100"`
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	City   string `query:"city" validate:"required"`
	Days   int    `query:"days" validate:"min=0,max=7"`
	Unit   string `query:"unit" validate:"omitempty,oneof=F C f c"`
	Format string `query:"format" validate:"omitempty,oneof=json text"`

	TempRange  bool `query:"temp_range"`
	Conditions bool `query:"conditions"`
	Wind       bool `query:"wind"`
	Humidity   bool `query:"humidity"`
	UVIndex    bool `query:"uv"`
	AirQuality bool `query:"air"`
	RealFeel   bool `query:"real_feel"`
}

func (q forecastQuery) toRequest(defaultUnit weather.Unit) (weather.ReportRequest, error) {
	unit := defaultUnit
	if q.Unit != "" {
		u, err := weather.ParseUnit(q.Unit)
		if err != nil {
			return weather.ReportRequest{}, err
		}
		unit = u
	}

	return weather.ReportRequest{
		Days: q.Days,
		Unit: unit,
		Options: weather.FormatOptions{
			TempRange:  q.TempRange,
			Conditions: q.Conditions,
			Wind:       q.Wind,
			Humidity:   q.Humidity,
			UVIndex:    q.UVIndex,
			AirQuality: q.AirQuality,
			RealFeel:   q.RealFeel,
		},
	}, nil
}
