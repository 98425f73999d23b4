/*
Package auth provides role-based authorization and bearer-token
verification for the tracker API.

PURPOSE:
  Roles form a CLOSED enumeration checked through capability sets, not
  ad-hoc string comparison. A typo in a role claim fails ParseRole loudly
  instead of silently disabling authorization.

CAPABILITIES:
  EMPLOYEE: write own call entries and payments, read own records
  MANAGER:  everything an employee can, plus edit/delete payments,
            manage WhatsApp customers and recurring payments, and view
            team records
  ADMIN:    everything a manager can, plus user management

TOKENS:
  The identity provider is an external collaborator; this package only
  verifies HS256 bearer tokens and extracts the uid/email/role claims.

SEE ALSO:
  - jwt.go: token issuing and verification
  - api/middleware.go: HTTP enforcement
*/
package auth

import (
	"fmt"
	"strings"
)

// =============================================================================
// ROLES - closed enumeration
// =============================================================================

type Role string

const (
	RoleEmployee Role = "EMPLOYEE"
	RoleManager  Role = "MANAGER"
	RoleAdmin    Role = "ADMIN"
)

// ParseRole accepts only members of the closed set (case-insensitively).
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToUpper(s)) {
	case RoleEmployee:
		return RoleEmployee, nil
	case RoleManager:
		return RoleManager, nil
	case RoleAdmin:
		return RoleAdmin, nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

func (r Role) String() string { return string(r) }

// =============================================================================
// CAPABILITIES
// =============================================================================

type Capability string

const (
	CapWriteOwnRecords   Capability = "write_own_records"
	CapReadOwnRecords    Capability = "read_own_records"
	CapEditPayments      Capability = "edit_payments"
	CapDeletePayments    Capability = "delete_payments"
	CapManageRecurring   Capability = "manage_recurring"
	CapViewTeamRecords   Capability = "view_team_records"
	CapManageUsers       Capability = "manage_users"
)

var roleCapabilities = map[Role]map[Capability]bool{
	RoleEmployee: caps(CapWriteOwnRecords, CapReadOwnRecords),
	RoleManager: caps(CapWriteOwnRecords, CapReadOwnRecords,
		CapEditPayments, CapDeletePayments, CapManageRecurring, CapViewTeamRecords),
	RoleAdmin: caps(CapWriteOwnRecords, CapReadOwnRecords,
		CapEditPayments, CapDeletePayments, CapManageRecurring, CapViewTeamRecords,
		CapManageUsers),
}

func caps(cs ...Capability) map[Capability]bool {
	m := make(map[Capability]bool, len(cs))
	for _, c := range cs {
		m[c] = true
	}
	return m
}

// Can reports whether the role holds the capability. Unknown roles hold
// nothing.
func (r Role) Can(c Capability) bool {
	return roleCapabilities[r][c]
}
