package auth

import "github.com/frahmantamala/hrm/internal/core/role"

type PermissionChecker interface {
	CanWriteTenantData(actor *Actor) bool
	CanAccessPersonalDetail(actor *Actor, employeeID int64) bool
}

type DefaultPermissionChecker struct{}

func NewPermissionChecker() PermissionChecker {
	return &DefaultPermissionChecker{}
}

// CanWriteTenantData gates every tenant-scoped create, update and delete.
func (c *DefaultPermissionChecker) CanWriteTenantData(actor *Actor) bool {
	return actor != nil && actor.Role.AtLeast(role.Manager)
}

// CanAccessPersonalDetail allows the employee themselves, or a manager.
func (c *DefaultPermissionChecker) CanAccessPersonalDetail(actor *Actor, employeeID int64) bool {
	if actor == nil {
		return false
	}
	if actor.EmployeeID != 0 && actor.EmployeeID == employeeID {
		return true
	}
	return c.CanWriteTenantData(actor)
}
