package domain

import "time"

// Scope names a permission granted to a service token.
type Scope string

const (
	ScopeAssignmentsWrite Scope = "assignments:write"
	ScopeAssignmentsRead  Scope = "assignments:read"
)

// Token represents issued service token metadata.
type Token struct {
	Subject   string
	Scopes    []Scope
	ExpiresAt time.Time
	IssuedAt  time.Time
}
