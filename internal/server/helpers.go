package server

import (
	"errors"
	"strconv"

	"traveldesk/internal/models"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that the handler already wrote an error
// response and the caller should just return nil.
var errResponseWritten = errors.New("response already written")

// parseID extracts and validates a numeric URL parameter. On failure it
// writes a 404 response and returns errResponseWritten.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	raw := c.Params(param)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		_ = models.RespondWithError(c, models.NewNotFoundError("Travel request"))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// parsePagination reads page/per_page query params with sane fallbacks.
// Range clamping happens in the service layer.
func parsePagination(c *fiber.Ctx) (page, perPage int) {
	page = c.QueryInt("page", 1)
	perPage = c.QueryInt("per_page", 0)
	return page, perPage
}

// respondOK writes the standard success envelope.
func respondOK(c *fiber.Ctx, message string, data any) error {
	return respondStatus(c, fiber.StatusOK, message, data)
}

func respondStatus(c *fiber.Ctx, status int, message string, data any) error {
	body := fiber.Map{
		"success": true,
		"message": message,
	}
	if data != nil {
		body["data"] = data
	}
	return c.Status(status).JSON(body)
}

// currentUser loads the authenticated user for the request. AuthRequired
// guarantees the userID local is set; the user row is loaded fresh so role
// changes take effect without re-login.
func (s *Server) currentUser(c *fiber.Ctx) (*models.User, error) {
	userID, ok := c.Locals("userID").(uint)
	if !ok {
		_ = models.RespondWithError(c, models.NewUnauthorizedError("Authorization required"))
		return nil, errResponseWritten
	}

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		_ = models.RespondWithError(c, models.NewUnauthorizedError("Account not found"))
		return nil, errResponseWritten
	}
	return user, nil
}
