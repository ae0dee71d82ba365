package models

type AuthRole string

const (
	RoleAdmin        AuthRole = "Admin"
	RoleOperator     AuthRole = "Operator"
	RoleEventCreator AuthRole = "EventCreator"
	RoleUser         AuthRole = "User"
)

// CanSeeAll reports whether the role may read every user's resources.
func (r AuthRole) CanSeeAll() bool {
	return r == RoleAdmin || r == RoleOperator
}
