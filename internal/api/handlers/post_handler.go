package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/editorial-api/internal/models"
	"github.com/maheshrc27/editorial-api/internal/service"
	"github.com/maheshrc27/editorial-api/internal/transfer"
)

type PostHandler struct {
	s  service.PostService
	cs service.CommentService
}

func NewPostHandler(service service.PostService, comments service.CommentService) *PostHandler {
	return &PostHandler{s: service, cs: comments}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	post, err := h.s.Create(c.Context(), GetUser(c), &pc)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	clientID := c.QueryInt("client_id", 0)
	status := models.PostStatus(c.Query("status"))

	posts, err := h.s.List(c.Context(), GetUser(c), int64(clientID), status)
	if err != nil {
		return errorResponse(c, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) GetPost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	post, err := h.s.Get(c.Context(), GetUser(c), postID)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) TransitionPost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var req transfer.TransitionRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return badRequest(c, "status is required")
	}

	post, err := h.s.Transition(c.Context(), GetUser(c), postID, req.Status)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) EditContent(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var patch models.ContentPatch
	if err := c.BodyParser(&patch); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	post, err := h.s.EditContent(c.Context(), GetUser(c), postID, patch)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusOK).JSON(post)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	if err := h.s.Remove(c.Context(), GetUser(c), postID); err != nil {
		return errorResponse(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *PostHandler) PostHistory(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	history, err := h.s.History(c.Context(), GetUser(c), postID)
	if err != nil {
		return errorResponse(c, err)
	}
	if history == nil {
		history = []*models.PostHistory{}
	}

	return c.Status(fiber.StatusOK).JSON(history)
}

func (h *PostHandler) CreateComment(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	var cc transfer.CommentCreation
	if err := c.BodyParser(&cc); err != nil {
		return badRequest(c, "Unable to parse body")
	}

	comment, err := h.cs.Create(c.Context(), GetUser(c), postID, &cc)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(comment)
}

func (h *PostHandler) ListComments(c *fiber.Ctx) error {
	postID, err := paramID(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}

	comments, err := h.cs.List(c.Context(), GetUser(c), postID)
	if err != nil {
		return errorResponse(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return c.Status(fiber.StatusOK).JSON(comments)
}
