package models

import "time"

type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleCreative   Role = "creative"
	RoleProduction Role = "production"
	RoleClient     Role = "client"
)

var Roles = []Role{RoleAdmin, RoleManager, RoleCreative, RoleProduction, RoleClient}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Staff roles work for the agency; client users only see their own client.
func (r Role) Staff() bool {
	return r.Valid() && r != RoleClient
}

type User struct {
	ID               int64     `db:"id" json:"id"`
	Email            string    `db:"email" json:"email"`
	Name             string    `db:"name" json:"name"`
	Role             Role      `db:"role" json:"role"`
	AssignedClientID *int64    `db:"assigned_client_id" json:"assigned_client_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// ClientScope returns the client a client-role user is bound to.
func (u *User) ClientScope() (int64, bool) {
	if u.Role != RoleClient || u.AssignedClientID == nil {
		return 0, false
	}
	return *u.AssignedClientID, true
}
