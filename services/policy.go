package services

import "github.com/cppla/forumcore/models"

// Role is the privilege level of a caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Caller is the authenticated identity attached to a request.
type Caller struct {
	ID       string
	Username string
	Role     Role
}

// Authenticated reports whether the caller carries a user id.
func (c Caller) Authenticated() bool { return c.ID != "" }

// IsAdmin reports whether the caller holds the admin role.
func (c Caller) IsAdmin() bool { return c.Role == RoleAdmin }

// Action is a kind of mutation gated by CanMutate.
type Action string

const (
	ActionUpdate       Action = "update"
	ActionDelete       Action = "delete"
	ActionModerate     Action = "moderate"
	ActionMarkSolution Action = "markSolution"
)

// CanMutate decides whether caller may perform action on post. Only the
// author may pick the accepted solution; every other action is open to the
// author and to admins.
func CanMutate(post *models.Post, caller Caller, action Action) bool {
	if post == nil || !caller.Authenticated() {
		return false
	}
	isAuthor := post.AuthorID == caller.ID
	switch action {
	case ActionMarkSolution:
		return isAuthor
	case ActionUpdate, ActionDelete, ActionModerate:
		return isAuthor || caller.IsAdmin()
	default:
		return false
	}
}
