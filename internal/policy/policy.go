// Package policy contains the pure authorization rules for travel requests.
// Every predicate is a function of the actor, the action, and the record;
// nothing here touches storage or the request context.
package policy

import "traveldesk/internal/models"

// Action identifies an operation an actor may attempt on a travel request.
type Action string

const (
	ActionView         Action = "view"
	ActionCreate       Action = "create"
	ActionUpdateStatus Action = "update_status"
	ActionCancel       Action = "cancel"
)

// CanView allows the owner of a request and any admin.
func CanView(actor *models.User, tr *models.TravelRequest) bool {
	return actor.ID == tr.UserID || actor.IsAdmin()
}

// CanCreate allows every authenticated actor.
func CanCreate(actor *models.User) bool {
	return actor != nil
}

// CanUpdateStatus allows admins only, independent of the request.
func CanUpdateStatus(actor *models.User) bool {
	return actor.IsAdmin()
}

// IsOwnerOrAdmin is the identity half of the cancel rule: the owner of the
// request or any admin.
func IsOwnerOrAdmin(actor *models.User, tr *models.TravelRequest) bool {
	return actor.ID == tr.UserID || actor.IsAdmin()
}

// CanCancel allows cancellation only while the request is still in the
// requested state, by its owner or an admin. Note this is deliberately
// stricter than the transition table, which permits approved->cancelled:
// that move stays reachable for admins through the update-status path only.
func CanCancel(actor *models.User, tr *models.TravelRequest) bool {
	if tr.Status != models.StatusRequested {
		return false
	}
	return IsOwnerOrAdmin(actor, tr)
}

// Authorize reports whether the actor may perform action on the request.
// tr may be nil only for ActionCreate.
func Authorize(actor *models.User, action Action, tr *models.TravelRequest) bool {
	if actor == nil {
		return false
	}
	switch action {
	case ActionView:
		return CanView(actor, tr)
	case ActionCreate:
		return CanCreate(actor)
	case ActionUpdateStatus:
		return CanUpdateStatus(actor)
	case ActionCancel:
		return CanCancel(actor, tr)
	}
	return false
}
