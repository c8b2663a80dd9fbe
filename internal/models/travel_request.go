package models

import "time"

// DateLayout is the wire format for travel dates.
const DateLayout = "2006-01-02"

// TravelRequest represents a corporate travel request submitted by a user.
// Ownership is immutable after creation; the record is never deleted in
// normal operation, cancellation is its terminal state.
type TravelRequest struct {
	ID            uint                `gorm:"primaryKey" json:"id"`
	UserID        uint                `gorm:"not null;index" json:"user_id"`
	User          *User               `gorm:"foreignKey:UserID" json:"user,omitempty"`
	RequesterName string              `gorm:"size:255;not null" json:"requester_name"`
	Destination   string              `gorm:"size:255;not null" json:"destination"`
	DepartureDate time.Time           `gorm:"not null" json:"-"`
	ReturnDate    time.Time           `gorm:"not null" json:"-"`
	Status        TravelRequestStatus `gorm:"type:varchar(20);not null;default:'requested';index" json:"status"`
	Notes         string              `gorm:"size:1000" json:"notes,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// DurationDays is the inclusive length of the trip in days.
func (t *TravelRequest) DurationDays() int {
	return int(t.ReturnDate.Sub(t.DepartureDate).Hours()/24) + 1
}

// TravelRequestResponse is the wire representation of a travel request.
// Dates are rendered as YYYY-MM-DD and the status carries its label.
type TravelRequestResponse struct {
	ID            uint         `json:"id"`
	UserID        uint         `json:"user_id"`
	User          *User        `json:"user,omitempty"`
	RequesterName string       `json:"requester_name"`
	Destination   string       `json:"destination"`
	DepartureDate string       `json:"departure_date"`
	ReturnDate    string       `json:"return_date"`
	Status        StatusOnWire `json:"status"`
	Notes         string       `json:"notes,omitempty"`
	DurationDays  int          `json:"duration_days"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// StatusOnWire pairs the status value with its display label.
type StatusOnWire struct {
	Value TravelRequestStatus `json:"value"`
	Label string              `json:"label"`
}

// ToResponse converts the model into its wire representation.
func (t *TravelRequest) ToResponse() TravelRequestResponse {
	return TravelRequestResponse{
		ID:            t.ID,
		UserID:        t.UserID,
		User:          t.User,
		RequesterName: t.RequesterName,
		Destination:   t.Destination,
		DepartureDate: t.DepartureDate.Format(DateLayout),
		ReturnDate:    t.ReturnDate.Format(DateLayout),
		Status:        StatusOnWire{Value: t.Status, Label: StatusLabel(t.Status)},
		Notes:         t.Notes,
		DurationDays:  t.DurationDays(),
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToResponseList converts a slice of records into wire representations.
func ToResponseList(items []*TravelRequest) []TravelRequestResponse {
	out := make([]TravelRequestResponse, 0, len(items))
	for _, item := range items {
		out = append(out, item.ToResponse())
	}
	return out
}

// TravelRequestStats aggregates a user's (or, for admins, the system's)
// request counts by status.
type TravelRequestStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Approved  int64 `json:"approved"`
	Cancelled int64 `json:"cancelled"`
}
