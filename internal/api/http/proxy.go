package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/i474232898/weather-map/internal/proxy"
	"github.com/i474232898/weather-map/internal/weather"
)

// ProxyErrorTitle is the error field of every proxy failure body.
const ProxyErrorTitle = "Server proxy error"

const invalidBodyDetail = "invalid request body"

// proxyHandler relays POST /api/weather to the upstream. Upstream status and
// JSON body pass through; a non-JSON upstream body becomes null.
func proxyHandler(gw *proxy.Gateway, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, "no-store")

		if !gw.Configured() {
			logger.Error("weather proxy called without a backend base URL")
			return proxyFailure(c, proxy.ErrNotConfigured.Error())
		}

		var req weather.Request
		if err := c.App().Config().JSONDecoder(c.Body(), &req); err != nil {
			logger.Warn("weather proxy body is not valid JSON", zap.Error(err))
			return proxyFailure(c, invalidBodyDetail)
		}
		if err := validate.Struct(req); err != nil {
			logger.Warn("weather proxy body rejected", zap.Error(err))
			return proxyFailure(c, invalidBodyDetail)
		}

		res, err := gw.Forward(c.UserContext(), req.WithDefaults(), c.Get(proxy.RequestIDHeader))
		if err != nil {
			detail := "upstream request failed"
			switch {
			case errors.Is(err, proxy.ErrCircuitOpen):
				detail = "upstream temporarily unavailable"
			case errors.Is(err, proxy.ErrBodyTooLarge):
				detail = "upstream response too large"
			}
			return proxyFailure(c, detail)
		}

		body := []byte(res.Data)
		if body == nil {
			body = []byte("null")
		}
		c.Status(res.Status)
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Send(body)
	}
}

func proxyFailure(c *fiber.Ctx, detail string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":  ProxyErrorTitle,
		"detail": detail,
	})
}
