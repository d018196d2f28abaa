package model

import "github.com/google/uuid"

type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RolePropertyAdmin Role = "PROPERTY_ADMIN"
	RoleAgent         Role = "AGENT"
	RoleClient        Role = "CLIENT"
)

// Principal is the authenticated caller extracted from the access token.
type Principal struct {
	UserID uuid.UUID
	Role   Role
}

func (p Principal) IsAdmin() bool         { return p.Role == RoleAdmin }
func (p Principal) IsPropertyAdmin() bool { return p.Role == RolePropertyAdmin }
func (p Principal) IsAgent() bool         { return p.Role == RoleAgent }
func (p Principal) IsClient() bool        { return p.Role == RoleClient }
