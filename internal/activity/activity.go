// Package activity defines the append-only audit trail of contact mutations.
package activity

import "time"

// Action identifies the kind of contact mutation an entry records.
type Action string

const (
	ActionAdded          Action = "added"
	ActionUpdated        Action = "updated"
	ActionDeleted        Action = "deleted"
	ActionToggleFavorite Action = "toggle_favorite"
	ActionSetStatus      Action = "set_status"
)

// Entry is one audit record. ContactName is a denormalized snapshot of the
// contact's name at mutation time, so the entry survives contact deletion.
// Entries are never updated or deleted.
type Entry struct {
	ID          string
	UserID      string
	Action      Action
	ActionType  string // qualifier; empty for added/updated/deleted
	ContactName string
	Timestamp   time.Time
}

// FavoriteLabel is the ActionType written for a favorite toggle: the state
// the contact ended up in.
func FavoriteLabel(favorite bool) string {
	if favorite {
		return "favorited"
	}
	return "unfavorited"
}
