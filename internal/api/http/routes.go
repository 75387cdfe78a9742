package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/air-quality-monitor/internal/airquality"
)

var validate = validator.New()

// ErrorHandler renders every error as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *airquality.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/data", func(c *fiber.Ctx) error {
		reading, err := service.Latest(c.UserContext())
		if err != nil {
			if errors.Is(err, airquality.ErrNoData) {
				return c.JSON(fiber.Map{
					"data":    nil,
					"message": "No data available",
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch data")
		}

		return c.JSON(fiber.Map{
			"data": latestView{
				Reading: reading,
				IsAlert: airquality.IsAlert(&reading.PPM),
			},
		})
	})

	v1.Get("/history", func(c *fiber.Ctx) error {
		q := historyQuery{
			Hours: queryInt(c, "hours", airquality.DefaultHistoryHours),
			Limit: queryInt(c, "limit", airquality.DefaultHistoryLimit),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		readings, err := service.History(c.UserContext(), q.Hours, q.Limit)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch history")
		}

		return c.JSON(fiber.Map{
			"data":   readings,
			"count":  len(readings),
			"period": fmt.Sprintf("%d hours", q.Hours),
		})
	})

	v1.Get("/stats/daily", func(c *fiber.Ctx) error {
		q := dailyQuery{Days: queryInt(c, "days", airquality.DefaultDailyDays)}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stats, err := service.Daily(c.UserContext(), q.Days)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch daily stats")
		}

		return c.JSON(fiber.Map{
			"data":   stats,
			"count":  len(stats),
			"period": fmt.Sprintf("%d days", q.Days),
		})
	})

	v1.Get("/stats/monthly", func(c *fiber.Ctx) error {
		q := monthlyQuery{Months: queryInt(c, "months", airquality.DefaultMonthlyCount)}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stats, err := service.Monthly(c.UserContext(), q.Months)
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to fetch monthly stats")
		}

		return c.JSON(fiber.Map{
			"data":   stats,
			"count":  len(stats),
			"period": fmt.Sprintf("%d months", q.Months),
		})
	})

	v1.Post("/sensor", func(c *fiber.Ctx) error {
		payload, err := parsePayload(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		reading, err := service.Ingest(c.UserContext(), payload)
		if err != nil {
			if errors.Is(err, airquality.ErrMissingField) {
				return fiber.NewError(fiber.StatusBadRequest, "PPM value is required")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "Failed to save data")
		}

		return c.JSON(fiber.Map{
			"success": true,
			"message": "Data received",
			"data":    reading,
		})
	})

	v1.Get("/sensor", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Use POST to send sensor data",
			"format": fiber.Map{
				"ppm":         "number (required)",
				"airQuality":  "string (optional)",
				"temperature": "number (optional)",
				"humidity":    "number (optional)",
				"motion":      "boolean (optional)",
			},
		})
	})

	v1.Post("/realtime", func(c *fiber.Ctx) error {
		payload, err := parsePayload(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		service.IngestRealtime(payload)
		return c.JSON(fiber.Map{"success": true})
	})

	v1.Get("/realtime", func(c *fiber.Ctx) error {
		snap := service.Realtime()
		return c.JSON(fiber.Map{
			"data":    snap,
			"isAlert": airquality.IsAlert(snap.PPM),
		})
	})

	v1.Get("/store/status", func(c *fiber.Ctx) error {
		status := service.StoreStatus(c.UserContext())
		code := fiber.StatusOK
		if !status.OK {
			code = fiber.StatusServiceUnavailable
		}
		return c.Status(code).JSON(status)
	})
}

// latestView is the latest reading plus its alert flag.
type latestView struct {
	airquality.Reading
	IsAlert bool `json:"isAlert"`
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Hours int `validate:"gte=1,lte=8760"`
	Limit int `validate:"gte=1,lte=10000"`
}

type dailyQuery struct {
	Days int `validate:"gte=1,lte=366"`
}

type monthlyQuery struct {
	Months int `validate:"gte=1,lte=120"`
}

// queryInt reads an integer query parameter. Missing, zero or unparseable
// values fall back to def; negative values are kept so validation rejects them.
func queryInt(c *fiber.Ctx, key string, def int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n == 0 {
		return def
	}
	return n
}

// parsePayload decodes a JSON object body regardless of the Content-Type header.
func parsePayload(c *fiber.Ctx) (map[string]any, error) {
	var payload map[string]any
	if err := json.Unmarshal(c.Body(), &payload); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if payload == nil {
		return nil, errors.New("request body must be a JSON object")
	}
	return payload, nil
}
