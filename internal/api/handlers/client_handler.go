package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/scheduler"
	"github.com/maheshrc27/editorial-api/internal/service"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

const (
	dateLayout         = "2006-01-02"
	defaultCalendarLen = 28 * 24 * time.Hour
)

type ClientHandler struct {
	s service.ClientService
	q service.QueueService
}

func NewClientHandler(service service.ClientService, queue service.QueueService) *ClientHandler {
	return &ClientHandler{s: service, q: queue}
}

func (h *ClientHandler) CreateClient(c *fiber.Ctx) error {
	var cc transfer.ClientCreation
	if err := c.BodyParser(&cc); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	client, err := h.s.Create(c.Context(), GetUser(c), &cc)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(client)
}

func (h *ClientHandler) ListClients(c *fiber.Ctx) error {
	clients, err := h.s.List(c.Context(), GetUser(c))
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(clients)
}

func (h *ClientHandler) GetClient(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	client, err := h.s.Get(c.Context(), GetUser(c), clientID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(client)
}

func (h *ClientHandler) UpdateCadence(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var cadence models.Cadence
	if err := c.BodyParser(&cadence); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	client, err := h.s.UpdateCadence(c.Context(), GetUser(c), clientID, cadence)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(client)
}

// RemoveClient deletes the client and leaves its posts in place.
func (h *ClientHandler) RemoveClient(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Remove(c.Context(), GetUser(c), clientID); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseDate(value string, fallback time.Time) (time.Time, error) {
	if value == "" {
		return fallback, nil
	}
	return time.ParseInLocation(dateLayout, value, time.UTC)
}

// Calendar returns the scheduled posts in [from, to). Both bounds are dates;
// the range defaults to four weeks starting today.
func (h *ClientHandler) Calendar(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	from, err := parseDate(c.Query("from"), today)
	if err != nil {
		return badRequest(c, "from must be a date (YYYY-MM-DD)")
	}
	to, err := parseDate(c.Query("to"), from.Add(defaultCalendarLen))
	if err != nil {
		return badRequest(c, "to must be a date (YYYY-MM-DD)")
	}

	seq, err := h.q.GetCalendar(c.Context(), GetUser(c), clientID, from, to)
	if err != nil {
		return errorResponse(c, err)
	}

	entries := []scheduler.Entry{}
	for entry, err := range seq {
		if err != nil {
			return errorResponse(c, err)
		}
		entries = append(entries, entry)
	}

	return c.Status(fiber.StatusOK).JSON(entries)
}

func (h *ClientHandler) RecalculateQueue(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	moved, err := h.q.Recalculate(c.Context(), GetUser(c), clientID)
	if err != nil {
		return errorResponse(c, err)
	}
	if moved == nil {
		moved = []*models.Post{}
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"moved": moved,
	})
}

func (h *ClientHandler) SuggestPillar(c *fiber.Ctx) error {
	clientID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	suggestion, err := h.q.SuggestPillar(c.Context(), GetUser(c), clientID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(suggestion)
}
