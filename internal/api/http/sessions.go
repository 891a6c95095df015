package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-map/internal/mapview"
	"github.com/i474232898/weather-map/internal/region"
	"github.com/i474232898/weather-map/internal/session"
)

type selectBody struct {
	Region string `json:"region" validate:"required"`
}

type monthBody struct {
	Index *int `json:"index" validate:"required"`
}

type keyBody struct {
	Key string `json:"key" validate:"required"`
}

type pointerBody struct {
	Type   string  `json:"type" validate:"required,oneof=down move up cancel"`
	X      float64 `json:"x"`
	Inside bool    `json:"inside"`
}

type resizeBody struct {
	Width      float64 `json:"width" validate:"gte=0"`
	Height     float64 `json:"height" validate:"gte=0"`
	PanelWidth float64 `json:"panel_width" validate:"gte=0"`
}

// registerSessionRoutes serves one page per session: the browser reports
// input events and reads back the render state.
func registerSessionRoutes(api fiber.Router, m *session.Manager) {
	api.Post("/sessions", func(c *fiber.Ctx) error {
		s, err := m.Create()
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(s.Snapshot())
	})

	api.Get("/sessions/:id", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		return c.JSON(s.Snapshot())
	}))

	api.Delete("/sessions/:id", func(c *fiber.Ctx) error {
		if !m.Delete(c.Params("id")) {
			return fiber.NewError(fiber.StatusNotFound, session.ErrNotFound.Error())
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	api.Post("/sessions/:id/select", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		var body selectBody
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if err := s.Controller().SelectRegion(body.Region); err != nil {
			if errors.Is(err, region.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "unknown region")
			}
			return err
		}
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/month", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		var body monthBody
		if err := parseBody(c, &body); err != nil {
			return err
		}
		if _, err := s.Controller().Drawer().SelectMonth(*body.Index); err != nil {
			return monthError(err)
		}
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/close", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		s.Controller().CloseDrawer()
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/key", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		var body keyBody
		if err := parseBody(c, &body); err != nil {
			return err
		}
		s.Controller().Drawer().KeyDown(body.Key)
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/backdrop", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		s.Controller().Drawer().BackdropClick()
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/pointer", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		var body pointerBody
		if err := parseBody(c, &body); err != nil {
			return err
		}
		d := s.Controller().Drawer()
		switch body.Type {
		case "down":
			d.PointerDown(body.X)
		case "move":
			d.PointerMove(body.X)
		case "up":
			d.PointerUp(body.Inside)
		case "cancel":
			d.PointerCancel()
		}
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/resize", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		var body resizeBody
		if err := parseBody(c, &body); err != nil {
			return err
		}
		s.Controller().Resize(mapview.Size{Width: body.Width, Height: body.Height})
		if body.PanelWidth > 0 {
			s.Controller().Drawer().SetPanelWidth(body.PanelWidth)
		}
		return accepted(c, s)
	}))

	api.Post("/sessions/:id/markers/:key/:event", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		mk, ok := s.Marker(c.Params("key"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "unknown region")
		}
		switch c.Params("event") {
		case "enter":
			mk.HoverStart()
		case "leave":
			mk.HoverEnd()
		case "click":
			mk.Click()
		default:
			return fiber.NewError(fiber.StatusBadRequest, "marker event must be enter, leave or click")
		}
		return accepted(c, s)
	}))

	api.Get("/sessions/:id/charts", withSession(m, func(c *fiber.Ctx, s *session.Session) error {
		st := s.Controller().State()
		if st.Charts == 0 {
			return fiber.NewError(fiber.StatusNotFound, "no charts for this session")
		}
		c.Type("html", "utf-8")
		return s.Controller().Charts().Render(c, st.Title)
	}))
}

func withSession(m *session.Manager, fn func(*fiber.Ctx, *session.Session) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, err := m.Get(c.Params("id"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}
		return fn(c, s)
	}
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return nil
}

func accepted(c *fiber.Ctx, s *session.Session) error {
	return c.Status(fiber.StatusAccepted).JSON(s.Snapshot())
}
