package role

import "strings"

// Role is the capability level an employee holds inside a tenant.
type Role string

const (
	Owner    Role = "owner"
	Manager  Role = "manager"
	Employee Role = "employee"
)

var ranks = map[Role]int{
	Employee: 1,
	Manager:  2,
	Owner:    3,
}

func Parse(s string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	_, ok := ranks[r]
	return r, ok
}

func (r Role) Valid() bool {
	_, ok := ranks[r]
	return ok
}

// AtLeast reports whether r grants every capability of min.
func (r Role) AtLeast(min Role) bool {
	return ranks[r] >= ranks[min] && ranks[r] > 0
}

func (r Role) String() string {
	return string(r)
}
