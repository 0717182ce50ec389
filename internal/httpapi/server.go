package httpapi

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hearings/internal/metrics"
)

// NewApp builds the API routes over store.
func NewApp(store *Store, m *metrics.API) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Committee Meetings API",
		DisableStartupMessage: true,
	})

	if m != nil {
		app.Use(func(c *fiber.Ctx) error {
			err := c.Next()
			m.ObserveRequest(c.Route().Path, c.Response().StatusCode())

			return err
		})
	}

	app.Get("/api/meetings", MeetingsHandler(store, false))
	app.Get("/api/meetings/legacy", MeetingsHandler(store, true))
	app.Get("/healthz", HealthHandler(store))

	if m != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	return app
}

// MeetingsHandler serves the snapshot, or only its meetings array for
// legacy consumers. Responses carry an ETag and honor If-None-Match.
func MeetingsHandler(store *Store, legacy bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := store.snapshot()

		etag := st.etag
		if legacy {
			etag = `"legacy-` + etag[1:]
		}

		c.Set(fiber.HeaderETag, etag)
		c.Set(fiber.HeaderCacheControl, "no-cache")

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			return c.SendStatus(fiber.StatusNotModified)
		}

		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		if legacy {
			return c.Send(st.legacy)
		}

		return c.Send(st.wrapped)
	}
}

// HealthHandler reports liveness, snapshot freshness and the meetings
// digest recorded in run history.
func HealthHandler(store *Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		st := store.snapshot()

		updated := ""
		if !st.updatedAt.IsZero() {
			updated = st.updatedAt.UTC().Format(time.RFC3339)
		}

		return c.JSON(fiber.Map{
			"status":     "ok",
			"count":      st.count,
			"updated_at": updated,
			"digest":     st.meta.Hash,
		})
	}
}
