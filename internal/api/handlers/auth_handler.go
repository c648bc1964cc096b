package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	config "github.com/maheshrc27/editorial-api/configs"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/service"
)

type AuthHandler struct {
	s   service.AuthService
	cfg config.Config
}

func NewAuthHandler(cfg config.Config, service service.AuthService) *AuthHandler {
	return &AuthHandler{s: service, cfg: cfg}
}

// IssueToken lets an admin mint a session token for a user, e.g. for an
// automation account. The token is also set as the session cookie when the
// admin issues it for themselves.
func (h *AuthHandler) IssueToken(c *fiber.Ctx) error {
	actor := GetUser(c)
	if actor == nil || actor.Role != models.RoleAdmin {
		return errorResponse(c, models.ErrUnauthorized)
	}

	userID, err := strconv.ParseInt(c.Query("user_id", strconv.FormatInt(actor.ID, 10)), 10, 64)
	if err != nil {
		return badRequest(c, "invalid user_id")
	}

	token, err := h.s.IssueToken(c.Context(), userID)
	if err != nil {
		return errorResponse(c, err)
	}

	if userID == actor.ID {
		c.Cookie(&fiber.Cookie{
			Name:     h.cfg.CookieName,
			Value:    token,
			HTTPOnly: true,
			Secure:   false,
			SameSite: fiber.CookieSameSiteNoneMode,
			Path:     "/",
			Expires:  time.Now().Add(h.cfg.TokenDuration),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token":      token,
		"expires_in": int64(h.cfg.TokenDuration.Seconds()),
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:   h.cfg.CookieName,
		Value:  "",
		Path:   "/",
		MaxAge: -1, // Delete cookie
	})
	return c.Redirect(h.cfg.FrontendURL, fiber.StatusTemporaryRedirect)
}
