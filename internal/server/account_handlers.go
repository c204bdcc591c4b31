package server

import (
	"time"

	"foodfeed/internal/auth"
	"foodfeed/internal/middleware"
	"foodfeed/internal/models"
	"foodfeed/internal/service"

	"github.com/gofiber/fiber/v2"
)

type credentials struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Signup handles POST /accounts/signup
func (s *Server) Signup(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Signup(c.UserContext(), service.SignupInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case models.HasCode(err, models.CodeValidation):
			return models.RespondWithError(c, fiber.StatusBadRequest, err)
		case models.HasCode(err, models.CodeConflict):
			return models.RespondWithError(c, fiber.StatusConflict, err)
		}
		return s.respondError(c, err)
	}

	token, err := s.startSession(c, user)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /accounts/login
func (s *Server) Login(c *fiber.Ctx) error {
	var req credentials
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	user, err := s.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		if models.HasCode(err, models.CodeUnauthorized) {
			return models.RespondWithError(c, fiber.StatusUnauthorized, err)
		}
		return s.respondError(c, err)
	}

	token, err := s.startSession(c, user)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Logout handles POST /accounts/logout
func (s *Server) Logout(c *fiber.Ctx) error {
	s.endSession(c)
	return s.redirectWith(c, "/", models.Info("You have been signed out."))
}

// DeleteAccount handles POST /accounts/delete for the signed-in user.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	who := middleware.ActingIdentity(c)
	if !who.Authenticated() {
		return s.redirectWith(c, "/", models.Info("Sign in to delete your account!"))
	}
	if _, err := s.authService.DeleteAccount(c.UserContext(), who.UserID); err != nil {
		if models.HasCode(err, models.CodeNotFound) {
			return s.respondError(c, err)
		}
		middleware.Logger.ErrorContext(c.UserContext(), "account deletion failed", "error", err)
		return s.redirectWith(c, "/", models.Error(service.MsgSomethingWentWrong))
	}
	s.endSession(c)
	return s.redirectWith(c, "/", models.Success("Your account has been deleted."))
}

// startSession issues a token and stores it in the session cookie.
func (s *Server) startSession(c *fiber.Ctx, user *models.User) (string, error) {
	token, err := s.tokens.Issue(user.ID, user.Username)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return token, nil
}

// endSession revokes the current token and clears the cookie.
func (s *Server) endSession(c *fiber.Ctx) {
	if claims, ok := middleware.SessionClaims(c); ok {
		if err := s.tokens.Revoke(c.UserContext(), claims); err != nil {
			middleware.Logger.WarnContext(c.UserContext(), "failed to revoke token", "error", err)
		}
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
