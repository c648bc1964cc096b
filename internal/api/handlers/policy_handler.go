package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/editorial-api/internal/policy"
)

type PolicyHandler struct{}

func NewPolicyHandler() *PolicyHandler {
	return &PolicyHandler{}
}

// GetRules serves the decision table as the declarative rule document.
func (h *PolicyHandler) GetRules(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(policy.Export())
}
