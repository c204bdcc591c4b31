package server

import (
	"time"

	"foodfeed/internal/middleware"
	"foodfeed/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// SessionCookie identifies the browser session flash messages belong to.
const SessionCookie = "foodfeed_session"

const sessionLifetime = 30 * 24 * time.Hour

// sessionID returns the request's session, starting one when needed.
func (s *Server) sessionID(c *fiber.Ctx) string {
	if id := c.Cookies(SessionCookie); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	id := uuid.NewString()
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(sessionLifetime),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	// Later reads within this request see the new session.
	c.Request().Header.SetCookie(SessionCookie, id)
	return id
}

func (s *Server) pushMessages(c *fiber.Ctx, msgs ...models.Message) {
	if len(msgs) == 0 {
		return
	}
	if err := s.flash.Push(c.UserContext(), s.sessionID(c), msgs...); err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to store flash messages", "error", err)
	}
}

// popMessages consumes the session's pending messages.
func (s *Server) popMessages(c *fiber.Ctx) []models.Message {
	id := c.Cookies(SessionCookie)
	if id == "" {
		return []models.Message{}
	}
	msgs, err := s.flash.Pop(c.UserContext(), id)
	if err != nil {
		middleware.Logger.WarnContext(c.UserContext(), "failed to read flash messages", "error", err)
		return []models.Message{}
	}
	if msgs == nil {
		msgs = []models.Message{}
	}
	return msgs
}

// redirectWith queues msgs and redirects to target.
func (s *Server) redirectWith(c *fiber.Ctx, target string, msgs ...models.Message) error {
	s.pushMessages(c, msgs...)
	return c.Redirect(target, fiber.StatusFound)
}

// render answers a GET page with its data, the acting user and the
// messages queued for the session.
func (s *Server) render(c *fiber.Ctx, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	data["messages"] = s.popMessages(c)
	data["user"] = middleware.ActingIdentity(c)
	return c.JSON(data)
}
