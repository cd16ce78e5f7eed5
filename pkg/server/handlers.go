package server

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/lcalzada-xor/xsslab/pkg/models"
	"github.com/lcalzada-xor/xsslab/pkg/output"
	"github.com/lcalzada-xor/xsslab/pkg/presets"
	"github.com/lcalzada-xor/xsslab/pkg/sinks"
)

type sessionHandler func(c *fiber.Ctx, sess *Session) error

// withSession resolves :id and runs h holding the session lock.
func (s *Server) withSession(h sessionHandler) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess, ok := s.sessions.get(c.Params("id"))
		if !ok {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		return h(c, sess)
	}
}

var errInvalidBody = errors.New("invalid request body")

// parse decodes and validates a JSON body into dst.
func (s *Server) parse(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return errInvalidBody
	}
	return s.validate.Struct(dst)
}

func badRequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
}

func (s *Server) getCatalog(c *fiber.Ctx) error {
	return c.JSON(output.CatalogJSON(s.catalog))
}

func (s *Server) getPresets(c *fiber.Ctx) error {
	groups, err := presets.Groups()
	if err != nil {
		s.logger.Err(err, "listing presets")
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(groups)
}

func (s *Server) getSource(c *fiber.Ctx) error {
	key := c.Params("key")
	src, err := sinks.Source(key)
	if err != nil {
		if errors.Is(err, sinks.ErrUnknownFunction) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(SourceView{Key: key, Source: src, Technologies: sinks.Technologies(key)})
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var input CreateSessionInput
	if len(c.Body()) > 0 {
		if err := s.parse(c, &input); err != nil {
			return badRequest(c, err)
		}
	}

	settings := s.settings
	if input.AutoUpdate != nil {
		settings.AutoUpdate = *input.AutoUpdate
	}
	sess, err := newSession(settings, s.catalog, s.loader, s.logger)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: err.Error()})
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if input.Payload != "" {
		sess.controller.Type(input.Payload)
	}
	if input.Context != "" {
		if err := sess.controller.SelectOutput(models.InjectionContext(input.Context), input.OutputID); err != nil {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
		}
	}

	for _, id := range s.sessions.add(sess) {
		s.logger.V("Session %s expired", id)
	}
	s.logger.V("Session %s created (%d live)", sess.ID, s.sessions.len())
	return c.Status(fiber.StatusCreated).JSON(sess.view())
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	sess, ok := s.sessions.get(c.Params("id"))
	if !ok || !s.sessions.remove(sess.ID) {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "session not found"})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (s *Server) getSession(c *fiber.Ctx, sess *Session) error {
	return c.JSON(sess.view())
}

func (s *Server) setPayload(c *fiber.Ctx, sess *Session) error {
	var input PayloadInput
	if err := s.parse(c, &input); err != nil {
		return badRequest(c, err)
	}
	sess.controller.Type(input.Payload)
	return c.JSON(sess.view())
}

func (s *Server) setOutput(c *fiber.Ctx, sess *Session) error {
	var input OutputInput
	if err := s.parse(c, &input); err != nil {
		return badRequest(c, err)
	}
	if err := sess.controller.SelectOutput(models.InjectionContext(input.Context), input.ID); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(sess.view())
}

func (s *Server) loadPreset(c *fiber.Ctx, sess *Session) error {
	var input PresetInput
	if err := s.parse(c, &input); err != nil {
		return badRequest(c, err)
	}
	p, ok := presets.Find(models.InjectionContext(input.Context), input.Name)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "preset not found"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.settings.FetchTimeout)
	defer cancel()
	if err := sess.controller.LoadPreset(ctx, p); err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(sess.view())
}

func (s *Server) update(c *fiber.Ctx, sess *Session) error {
	sess.renderer.Update()
	return c.JSON(sess.view())
}

func (s *Server) setAutoUpdate(c *fiber.Ctx, sess *Session) error {
	var input AutoUpdateInput
	if err := s.parse(c, &input); err != nil {
		return badRequest(c, err)
	}
	sess.renderer.SetAutoUpdate(*input.Enabled)
	return c.JSON(sess.view())
}

func (s *Server) interact(c *fiber.Ctx, sess *Session) error {
	sess.doc.Interact(sess.renderer.Container())
	return c.JSON(sess.view())
}

func (s *Server) runTimers(c *fiber.Ctx, sess *Session) error {
	ran := sess.doc.RunTimers()
	return c.JSON(TimersView{Ran: ran, Session: sess.view()})
}

func (s *Server) dismissAlert(c *fiber.Ctx, sess *Session) error {
	sess.probe.Reset()
	return c.JSON(sess.view())
}

func (s *Server) getEvents(c *fiber.Ctx, sess *Session) error {
	since := 0
	if raw := c.Query("since"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "since must be an integer"})
		}
		since = n
	}
	return c.JSON(sess.eventsSince(since))
}
