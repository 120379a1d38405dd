package server

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/aldoetobex/legalflow-backend/internal/store"
)

// HeaderStorageBackend tells the client which store served the response.
const HeaderStorageBackend = "X-Storage-Backend"

// storageBackend attaches a store.Recorder to the request context and reports
// the serving backend once the handler chain is done. Requests that never
// touched the store report the selector's current connectivity.
func storageBackend(connected func() bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, rec := store.WithRecorder(c.UserContext())
		c.SetUserContext(ctx)

		err := c.Next()

		b := store.BackendFallback
		switch {
		case rec.Used():
			b = rec.Backend()
		case connected():
			b = store.BackendPrimary
		}
		c.Set(HeaderStorageBackend, string(b))
		return err
	}
}

// requestLogger logs one line per request. Errors are rendered here through
// the app's error handler so the logged status is the one the client sees.
func requestLogger(log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		if strings.HasPrefix(c.Path(), "/swagger") {
			return nil
		}

		fields := []zap.Field{
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
			zap.Duration("duration", time.Since(start)),
			zap.Any("request_id", c.Locals("requestid")),
			zap.String("client_ip", c.IP()),
		}
		if b := c.GetRespHeader(HeaderStorageBackend); b != "" {
			fields = append(fields, zap.String("storage", b))
		}
		if id, ok := c.Locals("userID").(uint); ok {
			fields = append(fields, zap.Uint("user_id", id))
		}
		log.Info("HTTP Request", fields...)
		return nil
	}
}
