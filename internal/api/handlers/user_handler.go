package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/editorial-api/internal/service"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type UserHandler struct {
	s service.UserService
}

func NewUserHandler(service service.UserService) *UserHandler {
	return &UserHandler{s: service}
}

func (h *UserHandler) GetUserInfo(c *fiber.Ctx) error {
	userId := GetUserID(c)

	userInfo, err := h.s.GetUserInfo(c.Context(), userId)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(userInfo)
}

func (h *UserHandler) CreateUser(c *fiber.Ctx) error {
	var uc transfer.UserCreation
	if err := c.BodyParser(&uc); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	user, err := h.s.CreateUser(c.Context(), GetUser(c), &uc)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(user)
}

func (h *UserHandler) RemoveUser(c *fiber.Ctx) error {
	userID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.RemoveUser(c.Context(), GetUser(c), userID); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
