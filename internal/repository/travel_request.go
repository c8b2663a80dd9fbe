package repository

import (
	"context"
	"errors"
	"time"

	"traveldesk/internal/models"

	"gorm.io/gorm"
)

// TravelRequestFilters holds the optional list predicates. A zero filter
// matches everything. OwnerID scopes to a single user's requests; the
// service layer forces it for non-admin actors.
type TravelRequestFilters struct {
	OwnerID         uint
	Status          models.TravelRequestStatus
	Destination     string
	DateFrom        *time.Time
	DateTo          *time.Time
	RequestDateFrom *time.Time
	RequestDateTo   *time.Time
}

// Page holds pagination parameters for list queries.
type Page struct {
	Number  int
	PerPage int
}

// Offset returns the row offset for the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// TravelRequestRepository defines persistence operations for travel requests.
type TravelRequestRepository interface {
	Create(ctx context.Context, tr *models.TravelRequest) error
	GetByID(ctx context.Context, id uint) (*models.TravelRequest, error)
	UpdateStatus(ctx context.Context, id uint, status models.TravelRequestStatus) error
	List(ctx context.Context, filters TravelRequestFilters, page Page) ([]*models.TravelRequest, int64, error)
	CountByStatus(ctx context.Context, ownerID uint) (*models.TravelRequestStats, error)
}

type travelRequestRepository struct {
	db *gorm.DB
}

// NewTravelRequestRepository returns a new TravelRequestRepository implementation.
func NewTravelRequestRepository(db *gorm.DB) TravelRequestRepository {
	return &travelRequestRepository{db: db}
}

func (r *travelRequestRepository) Create(ctx context.Context, tr *models.TravelRequest) error {
	if err := r.db.WithContext(ctx).Create(tr).Error; err != nil {
		return models.NewInternalError(err)
	}
	// Reload with the owner so callers get a complete record.
	return r.db.WithContext(ctx).Preload("User").First(tr, tr.ID).Error
}

func (r *travelRequestRepository) GetByID(ctx context.Context, id uint) (*models.TravelRequest, error) {
	var tr models.TravelRequest
	err := r.db.WithContext(ctx).Preload("User").First(&tr, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Travel request")
		}
		return nil, models.NewInternalError(err)
	}
	return &tr, nil
}

func (r *travelRequestRepository) UpdateStatus(ctx context.Context, id uint, status models.TravelRequestStatus) error {
	res := r.db.WithContext(ctx).
		Model(&models.TravelRequest{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Travel request")
	}
	return nil
}

func (r *travelRequestRepository) List(ctx context.Context, filters TravelRequestFilters, page Page) ([]*models.TravelRequest, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.TravelRequest{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}

	var items []*models.TravelRequest
	err := query.
		Preload("User").
		Order("created_at DESC").
		Limit(page.PerPage).
		Offset(page.Offset()).
		Find(&items).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *travelRequestRepository) applyFilters(db *gorm.DB, f TravelRequestFilters) *gorm.DB {
	if f.OwnerID != 0 {
		db = db.Where("user_id = ?", f.OwnerID)
	}
	if f.Status != "" {
		db = db.Where("status = ?", f.Status)
	}
	if f.Destination != "" {
		db = db.Where("destination LIKE ?", "%"+f.Destination+"%")
	}
	if f.DateFrom != nil {
		db = db.Where("departure_date >= ?", *f.DateFrom)
	}
	if f.DateTo != nil {
		db = db.Where("departure_date <= ?", *f.DateTo)
	}
	if f.RequestDateFrom != nil {
		db = db.Where("created_at >= ?", *f.RequestDateFrom)
	}
	if f.RequestDateTo != nil {
		db = db.Where("created_at <= ?", *f.RequestDateTo)
	}
	return db
}

// CountByStatus aggregates request counts, scoped to ownerID when non-zero.
func (r *travelRequestRepository) CountByStatus(ctx context.Context, ownerID uint) (*models.TravelRequestStats, error) {
	type row struct {
		Status models.TravelRequestStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.TravelRequest{}).
		Select("status, COUNT(*) as count").
		Group("status")
	if ownerID != 0 {
		query = query.Where("user_id = ?", ownerID)
	}

	var rows []row
	if err := query.Find(&rows).Error; err != nil {
		return nil, models.NewInternalError(err)
	}

	stats := &models.TravelRequestStats{}
	for _, r := range rows {
		stats.Total += r.Count
		switch r.Status {
		case models.StatusRequested:
			stats.Pending = r.Count
		case models.StatusApproved:
			stats.Approved = r.Count
		case models.StatusCancelled:
			stats.Cancelled = r.Count
		}
	}
	return stats, nil
}
