// Package policy holds the pure authorization decisions for the lost-and-found
// lifecycle. No I/O: callers fetch the acting user and the target first, then
// ask. Claim-setting is delegated to the reporter (they know when their item
// came back); unclaiming and deletion rewrite history and stay admin-only.
package policy

// User roles.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Role string
}

// IsAdmin reports whether a is an administrator.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// CanCreateItem allows any authenticated user to file a report.
func CanCreateItem(a Actor) bool {
	return a.ID != ""
}

// CanMarkClaimed allows the reporter of the item or an admin.
func CanMarkClaimed(a Actor, reporterID string) bool {
	return a.IsAdmin() || (a.ID != "" && a.ID == reporterID)
}

// CanUnmarkClaimed allows admins only.
func CanUnmarkClaimed(a Actor) bool {
	return a.IsAdmin()
}

// CanDeleteItem allows admins only.
func CanDeleteItem(a Actor) bool {
	return a.IsAdmin()
}

// CanDeleteUser allows admins to delete any account but their own.
func CanDeleteUser(a Actor, targetID string) bool {
	return a.IsAdmin() && a.ID != targetID
}
