// Package notifications delivers status-change emails for travel requests
// through a Redis-backed job queue with best-effort retry.
package notifications

import (
	"traveldesk/internal/models"
)

// StatusChangedJob is the queued payload for one status-change email. It
// carries everything the worker needs so delivery does not depend on the
// database row still being readable.
type StatusChangedJob struct {
	TravelRequestID uint                       `json:"travel_request_id"`
	OwnerEmail      string                     `json:"owner_email"`
	OwnerName       string                     `json:"owner_name"`
	RequesterName   string                     `json:"requester_name"`
	Destination     string                     `json:"destination"`
	DepartureDate   string                     `json:"departure_date"`
	ReturnDate      string                     `json:"return_date"`
	PreviousStatus  models.TravelRequestStatus `json:"previous_status"`
	NewStatus       models.TravelRequestStatus `json:"new_status"`
	Attempts        int                        `json:"attempts"`
}

// NewStatusChangedJob builds a job from a travel request with its owner
// preloaded and the status it transitioned away from.
func NewStatusChangedJob(tr *models.TravelRequest, previous models.TravelRequestStatus) StatusChangedJob {
	job := StatusChangedJob{
		TravelRequestID: tr.ID,
		RequesterName:   tr.RequesterName,
		Destination:     tr.Destination,
		DepartureDate:   tr.DepartureDate.Format(models.DateLayout),
		ReturnDate:      tr.ReturnDate.Format(models.DateLayout),
		PreviousStatus:  previous,
		NewStatus:       tr.Status,
	}
	if tr.User != nil {
		job.OwnerEmail = tr.User.Email
		job.OwnerName = tr.User.Name
	}
	return job
}
