package policy

import (
	"slices"

	"github.com/maheshrc27/editorial-api/internal/models"
)

// Resource describes what a subject wants to act on. OwnerClientID is the
// client that owns the resource (for clients, the client itself).
type Resource struct {
	Type            ResourceType
	OwnerClientID   int64
	Fields          []models.ContentField
	CurrentStatus   models.PostStatus
	RequestedStatus models.PostStatus
}

// CanPerform reports whether user may perform action on resource. It has no
// hidden state: the answer depends only on its arguments and the table.
func CanPerform(user *models.User, action Action, res Resource) bool {
	if user == nil || !user.Role.Valid() {
		return false
	}
	if !ownsResource(user, res) {
		return false
	}
	for i := range table {
		if matches(&table[i], user.Role, action, res) {
			return true
		}
	}
	return false
}

func ownsResource(user *models.User, res Resource) bool {
	if user.Role != models.RoleClient {
		return true
	}
	clientID, ok := user.ClientScope()
	return ok && clientID == res.OwnerClientID
}

func matches(r *Rule, role models.Role, action Action, res Resource) bool {
	if r.Resource != res.Type || r.Action != action {
		return false
	}
	if !slices.Contains(r.Roles, role) {
		return false
	}
	if len(r.From) > 0 && !slices.Contains(r.From, res.CurrentStatus) {
		return false
	}
	if r.Action == ActionTransition && r.To != res.RequestedStatus {
		return false
	}
	for _, f := range res.Fields {
		if !slices.Contains(r.Fields, f) {
			return false
		}
	}
	return true
}
