package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/service"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type ContentRequestHandler struct {
	s service.ContentRequestService
}

func NewContentRequestHandler(service service.ContentRequestService) *ContentRequestHandler {
	return &ContentRequestHandler{s: service}
}

func (h *ContentRequestHandler) CreateRequest(c *fiber.Ctx) error {
	var rc transfer.ContentRequestCreation
	if err := c.BodyParser(&rc); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	request, err := h.s.Create(c.Context(), GetUser(c), &rc)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(request)
}

func (h *ContentRequestHandler) ListRequests(c *fiber.Ctx) error {
	clientID := c.QueryInt("client_id", 0)
	status := models.ContentRequestStatus(c.Query("status"))

	requests, err := h.s.List(c.Context(), GetUser(c), int64(clientID), status)
	if err != nil {
		return errorResponse(c, err)
	}
	if requests == nil {
		requests = []*models.ContentRequest{}
	}

	return c.Status(fiber.StatusOK).JSON(requests)
}

func (h *ContentRequestHandler) ConvertRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var conv transfer.ContentRequestConversion
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&conv); err != nil {
			return badRequest(c, "Unable to parse body")
		}
	}

	request, post, err := h.s.Convert(c.Context(), GetUser(c), requestID, &conv)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"request": request,
		"post":    post,
	})
}

func (h *ContentRequestHandler) RejectRequest(c *fiber.Ctx) error {
	requestID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	request, err := h.s.Reject(c.Context(), GetUser(c), requestID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(request)
}
