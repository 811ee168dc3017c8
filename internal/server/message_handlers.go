package server

import (
	"chirper/internal/models"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/feed. The feed is the viewer's own messages plus
// those of everyone they follow, newest first. Anonymous viewers get an
// empty feed.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	viewerID, _ := s.optionalUserID(c)

	messages, err := s.feedService.Compose(c.Context(), viewerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages":  messages,
		"anonymous": viewerID == 0,
	})
}

// GetMessages handles GET /api/messages (newest across all users).
func (s *Server) GetMessages(c *fiber.Ctx) error {
	p := parsePagination(c, 20)
	viewerID, _ := s.optionalUserID(c)

	messages, err := s.messageService.ListRecent(c.Context(), p.Limit, p.Offset, viewerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
	})
}

// GetMessage handles GET /api/messages/:id
func (s *Server) GetMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	viewerID, _ := s.optionalUserID(c)

	message, err := s.messageService.Get(c.Context(), id, viewerID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(message)
}

// CreateMessage handles POST /api/messages
func (s *Server) CreateMessage(c *fiber.Ctx) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	message, err := s.messageService.Post(c.Context(), currentUserID(c), req.Text)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// DeleteMessage handles DELETE /api/messages/:id. Owner only.
func (s *Server) DeleteMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Delete(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// LikeMessage handles POST /api/messages/:id/like
func (s *Server) LikeMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Like(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// UnlikeMessage handles DELETE /api/messages/:id/like
func (s *Server) UnlikeMessage(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.messageService.Unlike(c.Context(), currentUserID(c), id); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// GetMessageLikers handles GET /api/messages/:id/likes
func (s *Server) GetMessageLikers(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	users, err := s.messageService.Likers(c.Context(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": users,
	})
}
