package volunteer

import "strings"

// Role discriminates the kinds of users in the users collection.
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleOrgRep      Role = "orgRep"
	RoleCoordinator Role = "vc"
	RoleVolunteer   Role = "volunteer"
)

// User is a member of one or more organizations.
type User struct {
	ID              string
	Role            Role
	FirstName       string
	LastName        string
	OrganizationIDs []string
}

// DisplayName joins first and last name, falling back to the ID when both are empty.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.ID
	}
	return name
}

// SharesOrganization reports whether u and other have at least one organization in common.
func (u *User) SharesOrganization(other *User) bool {
	if len(u.OrganizationIDs) == 0 || len(other.OrganizationIDs) == 0 {
		return false
	}
	orgs := make(map[string]struct{}, len(u.OrganizationIDs))
	for _, id := range u.OrganizationIDs {
		orgs[id] = struct{}{}
	}
	for _, id := range other.OrganizationIDs {
		if _, ok := orgs[id]; ok {
			return true
		}
	}
	return false
}
