package server

import (
	"traveldesk/internal/models"
	"traveldesk/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateTravelRequest handles POST /api/v1/travel-requests
func (s *Server) CreateTravelRequest(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	var in service.CreateTravelRequestInput
	if err := c.BodyParser(&in); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	tr, err := s.travelService.Create(c.UserContext(), user, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondStatus(c, fiber.StatusCreated,
		"Travel request created successfully", tr.ToResponse())
}

// GetTravelRequest handles GET /api/v1/travel-requests/:id
func (s *Server) GetTravelRequest(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	tr, err := s.travelService.Get(c.UserContext(), user, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondOK(c, "OK", tr.ToResponse())
}

// ListTravelRequests handles GET /api/v1/travel-requests
func (s *Server) ListTravelRequests(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	page, perPage := parsePagination(c)
	in := service.ListTravelRequestsInput{
		Status:          c.Query("status"),
		Destination:     c.Query("destination"),
		DateFrom:        c.Query("date_from"),
		DateTo:          c.Query("date_to"),
		RequestDateFrom: c.Query("request_date_from"),
		RequestDateTo:   c.Query("request_date_to"),
		Page:            page,
		PerPage:         perPage,
	}

	items, meta, err := s.travelService.List(c.UserContext(), user, in)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondOK(c, "OK", fiber.Map{
		"items": models.ToResponseList(items),
		"meta":  meta,
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateTravelRequestStatus handles PATCH /api/v1/travel-requests/:id/status
func (s *Server) UpdateTravelRequestStatus(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c,
			models.NewValidationError("Invalid request body"))
	}

	tr, err := s.travelService.UpdateStatus(c.UserContext(), user, id, req.Status)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondOK(c, "Status updated successfully", tr.ToResponse())
}

// CancelTravelRequest handles PATCH /api/v1/travel-requests/:id/cancel
func (s *Server) CancelTravelRequest(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	tr, err := s.travelService.Cancel(c.UserContext(), user, id)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondOK(c, "Travel request cancelled successfully", tr.ToResponse())
}

// GetTravelRequestStats handles GET /api/v1/travel-requests/stats
func (s *Server) GetTravelRequestStats(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return nil
	}

	stats, err := s.travelService.Stats(c.UserContext(), user)
	if err != nil {
		return models.RespondWithError(c, err)
	}

	return respondOK(c, "OK", stats)
}
