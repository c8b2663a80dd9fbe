// Package service contains the business logic of the application.
package service

import (
	"context"
	"log/slog"
	"time"

	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
	"traveldesk/internal/policy"
	"traveldesk/internal/repository"
)

// DefaultPerPage is the page size when the caller does not specify one.
const DefaultPerPage = 15

const maxPerPage = 100

// StatusNotifier receives committed status transitions for asynchronous
// delivery. Implementations must not block the request path.
type StatusNotifier interface {
	DispatchStatusChanged(ctx context.Context, tr *models.TravelRequest, previous models.TravelRequestStatus) error
}

// TravelRequestService implements the travel request operations. Every
// method takes the acting user explicitly; there is no ambient identity.
type TravelRequestService struct {
	repo     repository.TravelRequestRepository
	notifier StatusNotifier
}

// NewTravelRequestService creates the service. notifier may be nil, in
// which case status changes are not announced.
func NewTravelRequestService(repo repository.TravelRequestRepository, notifier StatusNotifier) *TravelRequestService {
	return &TravelRequestService{repo: repo, notifier: notifier}
}

// CreateTravelRequestInput is the payload for Create.
type CreateTravelRequestInput struct {
	RequesterName string `json:"requester_name"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date"`
	Notes         string `json:"notes"`
}

// ListTravelRequestsInput is the payload for List.
type ListTravelRequestsInput struct {
	Status          string
	Destination     string
	DateFrom        string
	DateTo          string
	RequestDateFrom string
	RequestDateTo   string
	Page            int
	PerPage         int
}

// ListMeta describes the returned page.
type ListMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
}

// Create validates and persists a new travel request owned by the actor.
func (s *TravelRequestService) Create(ctx context.Context, actor *models.User, in CreateTravelRequestInput) (*models.TravelRequest, error) {
	if !policy.Authorize(actor, policy.ActionCreate, nil) {
		return nil, models.NewForbiddenError("You do not have permission to create travel requests")
	}

	fields := map[string][]string{}

	if in.RequesterName == "" {
		fields["requester_name"] = append(fields["requester_name"], "The requester name is required")
	} else if len(in.RequesterName) > 255 {
		fields["requester_name"] = append(fields["requester_name"], "The requester name cannot exceed 255 characters")
	}
	if in.Destination == "" {
		fields["destination"] = append(fields["destination"], "The destination is required")
	} else if len(in.Destination) > 255 {
		fields["destination"] = append(fields["destination"], "The destination cannot exceed 255 characters")
	}
	if len(in.Notes) > 1000 {
		fields["notes"] = append(fields["notes"], "The notes cannot exceed 1000 characters")
	}

	departure, err := parseDate(in.DepartureDate)
	if err != nil {
		fields["departure_date"] = append(fields["departure_date"], "The departure date must be a valid date (YYYY-MM-DD)")
	}
	ret, err := parseDate(in.ReturnDate)
	if err != nil {
		fields["return_date"] = append(fields["return_date"], "The return date must be a valid date (YYYY-MM-DD)")
	}

	if len(fields) == 0 {
		today := truncateToDay(time.Now().UTC())
		if departure.Before(today) {
			fields["departure_date"] = append(fields["departure_date"], "The departure date cannot be in the past")
		}
		if ret.Before(departure) {
			fields["return_date"] = append(fields["return_date"], "The return date cannot be before the departure date")
		}
		if ret.Equal(departure) {
			fields["return_date"] = append(fields["return_date"], "The return date must be different from the departure date")
		}
	}

	if len(fields) > 0 {
		return nil, models.NewFieldValidationError(fields, "Validation failed")
	}

	tr := &models.TravelRequest{
		UserID:        actor.ID,
		RequesterName: in.RequesterName,
		Destination:   in.Destination,
		DepartureDate: departure,
		ReturnDate:    ret,
		Status:        models.StatusRequested,
		Notes:         in.Notes,
	}
	if err := s.repo.Create(ctx, tr); err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "travel request created",
		slog.Any("travel_request_id", tr.ID),
		slog.Any("owner_id", tr.UserID),
		slog.String("destination", tr.Destination),
		slog.String("departure_date", in.DepartureDate),
		slog.String("return_date", in.ReturnDate),
	)
	return tr, nil
}

// Get loads a single request, enforcing the view rule (owner or admin).
func (s *TravelRequestService) Get(ctx context.Context, actor *models.User, id uint) (*models.TravelRequest, error) {
	tr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.Authorize(actor, policy.ActionView, tr) {
		return nil, models.NewForbiddenError("You do not have permission to view this request")
	}
	return tr, nil
}

// List returns a page of requests. Non-admin actors are force-scoped to
// their own rows no matter what filters ask for.
func (s *TravelRequestService) List(ctx context.Context, actor *models.User, in ListTravelRequestsInput) ([]*models.TravelRequest, ListMeta, error) {
	filters := repository.TravelRequestFilters{
		Destination: in.Destination,
	}

	if in.Status != "" {
		status, ok := models.ParseStatus(in.Status)
		if !ok {
			return nil, ListMeta{}, models.NewFieldValidationError(
				map[string][]string{"status": {"The status must be one of: requested, approved, cancelled"}},
				"Invalid status filter")
		}
		filters.Status = status
	}

	var err error
	if filters.DateFrom, err = parseOptionalDate(in.DateFrom); err != nil {
		return nil, ListMeta{}, models.NewFieldValidationError(
			map[string][]string{"date_from": {"The date_from filter must be a valid date (YYYY-MM-DD)"}}, "Invalid date filter")
	}
	if filters.DateTo, err = parseOptionalDate(in.DateTo); err != nil {
		return nil, ListMeta{}, models.NewFieldValidationError(
			map[string][]string{"date_to": {"The date_to filter must be a valid date (YYYY-MM-DD)"}}, "Invalid date filter")
	}
	if filters.RequestDateFrom, err = parseOptionalDate(in.RequestDateFrom); err != nil {
		return nil, ListMeta{}, models.NewFieldValidationError(
			map[string][]string{"request_date_from": {"The request_date_from filter must be a valid date (YYYY-MM-DD)"}}, "Invalid date filter")
	}
	if filters.RequestDateTo, err = parseOptionalDate(in.RequestDateTo); err != nil {
		return nil, ListMeta{}, models.NewFieldValidationError(
			map[string][]string{"request_date_to": {"The request_date_to filter must be a valid date (YYYY-MM-DD)"}}, "Invalid date filter")
	}

	if !actor.IsAdmin() {
		filters.OwnerID = actor.ID
	}

	page := repository.Page{Number: in.Page, PerPage: in.PerPage}
	if page.Number <= 0 {
		page.Number = 1
	}
	if page.PerPage <= 0 {
		page.PerPage = DefaultPerPage
	}
	if page.PerPage > maxPerPage {
		page.PerPage = maxPerPage
	}

	items, total, err := s.repo.List(ctx, filters, page)
	if err != nil {
		return nil, ListMeta{}, err
	}

	meta := ListMeta{
		Total:   total,
		Page:    page.Number,
		PerPage: page.PerPage,
	}
	meta.TotalPages = int((total + int64(page.PerPage) - 1) / int64(page.PerPage))
	return items, meta, nil
}

// UpdateStatus moves a request to a new status. Admin-only; the transition
// table decides legality independent of the actor.
func (s *TravelRequestService) UpdateStatus(ctx context.Context, actor *models.User, id uint, status string) (*models.TravelRequest, error) {
	tr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.Authorize(actor, policy.ActionUpdateStatus, tr) {
		return nil, models.NewForbiddenError("Only administrators can change the status of travel requests")
	}

	newStatus, ok := models.ParseStatus(status)
	if !ok {
		return nil, models.NewFieldValidationError(
			map[string][]string{"status": {"The status must be one of: requested, approved, cancelled"}},
			"Invalid status")
	}

	if err := models.ValidateTransition(tr.Status, newStatus); err != nil {
		return nil, err
	}

	previous := tr.Status
	if err := s.repo.UpdateStatus(ctx, tr.ID, newStatus); err != nil {
		return nil, err
	}
	tr.Status = newStatus

	middleware.StatusTransitions.WithLabelValues(string(previous), string(newStatus)).Inc()
	middleware.Logger.InfoContext(ctx, "travel request status updated",
		slog.Any("travel_request_id", tr.ID),
		slog.String("old_status", string(previous)),
		slog.String("new_status", string(newStatus)),
		slog.Any("updated_by", actor.ID),
		slog.String("actor_role", string(actor.Role)),
	)

	s.dispatch(ctx, tr, previous)
	return tr, nil
}

// Cancel cancels a request through the dedicated cancel path. Owners and
// admins alike may only cancel while the request is still in the requested
// state; the distinct rejections below preserve that rule while naming the
// reason.
func (s *TravelRequestService) Cancel(ctx context.Context, actor *models.User, id uint) (*models.TravelRequest, error) {
	tr, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !policy.IsOwnerOrAdmin(actor, tr) {
		return nil, models.NewForbiddenError("You do not have permission to cancel this request")
	}

	switch tr.Status {
	case models.StatusApproved:
		msg := "Approved requests cannot be cancelled"
		return nil, models.NewFieldValidationError(map[string][]string{"status": {msg}}, msg)
	case models.StatusCancelled:
		msg := "This request is already cancelled"
		return nil, models.NewFieldValidationError(map[string][]string{"status": {msg}}, msg)
	}

	previous := tr.Status
	if err := s.repo.UpdateStatus(ctx, tr.ID, models.StatusCancelled); err != nil {
		return nil, err
	}
	tr.Status = models.StatusCancelled

	middleware.StatusTransitions.WithLabelValues(string(previous), string(models.StatusCancelled)).Inc()
	middleware.Logger.InfoContext(ctx, "travel request cancelled",
		slog.Any("travel_request_id", tr.ID),
		slog.String("old_status", string(previous)),
		slog.Any("cancelled_by", actor.ID),
		slog.String("actor_role", string(actor.Role)),
		slog.Any("owner_id", tr.UserID),
	)

	s.dispatch(ctx, tr, previous)
	return tr, nil
}

// Stats aggregates request counts by status: the actor's own requests for
// regular users, system-wide for admins.
func (s *TravelRequestService) Stats(ctx context.Context, actor *models.User) (*models.TravelRequestStats, error) {
	ownerID := actor.ID
	if actor.IsAdmin() {
		ownerID = 0
	}
	return s.repo.CountByStatus(ctx, ownerID)
}

// dispatch hands a committed transition to the notifier. Delivery failures
/// are logged and never surfaced: the state change already happened.
func (s *TravelRequestService) dispatch(ctx context.Context, tr *models.TravelRequest, previous models.TravelRequestStatus) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.DispatchStatusChanged(ctx, tr, previous); err != nil {
		middleware.Logger.ErrorContext(ctx, "failed to dispatch status notification",
			slog.Any("travel_request_id", tr.ID),
			slog.String("error", err.Error()),
		)
	}
}

func parseDate(v string) (time.Time, error) {
	return time.Parse(models.DateLayout, v)
}

func parseOptionalDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(models.DateLayout, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
