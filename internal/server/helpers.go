package server

import (
	"errors"
	"fmt"

	"foodfeed/internal/imagestore"
	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper.  Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// MsgTooManyRequests is shown when a form is submitted too often.
const MsgTooManyRequests = "You are doing that too often. Please wait a moment."

// parseID extracts a route parameter as a positive uint. Anything else is an
// unknown page, so it writes a 404 and returns errResponseWritten.
func (s *Server) parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id <= 0 {
		_ = models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("Page", c.Params(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// respondError answers a failed read. Missing entities are 404s.
func (s *Server) respondError(c *fiber.Ctx, err error) error {
	if models.HasCode(err, models.CodeNotFound) {
		return models.RespondWithError(c, fiber.StatusNotFound, err)
	}
	middleware.Logger.ErrorContext(c.UserContext(), "request failed", "path", c.Path(), "error", err)
	return models.RespondWithError(c, fiber.StatusInternalServerError, err)
}

// finish redirects to target with the outcome's messages, or answers 404
// when the service reported a missing entity.
func (s *Server) finish(c *fiber.Ctx, o service.Outcome, err error, target string) error {
	if err != nil {
		return s.respondError(c, err)
	}
	return s.redirectWith(c, target, o.Messages...)
}

// formImage reads the optional "image" upload.
func (s *Server) formImage(c *fiber.Ctx) (imagestore.Submission, error) {
	fh, err := c.FormFile("image")
	if err != nil {
		// Not multipart, or no file in the field.
		return imagestore.NoFile(), nil
	}
	return imagestore.FromMultipart(fh, s.config.MaxUploadBytes())
}

// imageFailure is the redirect for an upload that could not be read.
func (s *Server) imageFailure(c *fiber.Ctx, err error, target, summary string) error {
	msg := service.MsgSomethingWentWrong
	if errors.Is(err, imagestore.ErrTooLarge) {
		msg = service.MsgImageTooLarge
	} else {
		middleware.Logger.WarnContext(c.UserContext(), "failed to read upload", "error", err)
	}
	return s.redirectWith(c, target, models.Error(msg), models.Error(summary))
}

func profileURL(id uint) string {
	return fmt.Sprintf("/user-profile/%d", id)
}

// slowDown answers a rate-limited form submission with a redirect to the
// feed instead of a bare 429.
func (s *Server) slowDown(summary string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return s.redirectWith(c, "/", models.Error(MsgTooManyRequests), models.Error(summary))
	}
}
