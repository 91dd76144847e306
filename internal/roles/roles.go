package roles

// Role is the closed set of audiences a token can carry.
type Role string

const (
	Guest      Role = "GUEST"
	User       Role = "USER"
	Superuser  Role = "SUPERUSER"
	Admin      Role = "ADMIN"
	Superadmin Role = "SUPERADMIN"
)

// parents is the role inheritance graph: every role inherits the full
// permission set of each of its parents. GUEST < USER < (SUPERUSER, ADMIN)
// < SUPERADMIN.
var parents = map[Role][]Role{
	Guest:      nil,
	User:       {Guest},
	Superuser:  {User},
	Admin:      {User},
	Superadmin: {Superuser, Admin},
}

// ownPermissions lists the top-level GraphQL fields each role grants on top
// of what it inherits.
var ownPermissions = map[Role][]string{
	Guest: {
		"createAT",
		"busyTimesAtDay",
		"busyDaysAtMonth",
		"isDayBusy",
		"contactData",
		"adminLogin",
		"getWorks",
		"newWorks",
	},
	User: {},
	Superuser: {
		"createRT",
	},
	Admin: {
		"appointment",
		"appointments",
		"createAppointment",
		"updateAppointment",
		"updateManyAppointments",

		"siteConfig",
		"updateSiteConfig",

		"work",
		"works",
		"createWork",
		"updateWork",
		"updateManyWorks",
		"deleteWork",
		"deleteManyWorks",
		"searchWorks",

		"startImageUpload",
		"finalizeImageUpload",

		"adminLogout",
	},
	Superadmin: {},
}

// permissions is the flattened role -> field set table, resolved once at
// startup so no inheritance walk happens per request.
var permissions = map[Role]map[string]struct{}{}

func init() {
	for role := range parents {
		set := map[string]struct{}{}
		collect(role, set)
		permissions[role] = set
	}
}

func collect(role Role, into map[string]struct{}) {
	for _, p := range ownPermissions[role] {
		into[p] = struct{}{}
	}
	for _, parent := range parents[role] {
		collect(parent, into)
	}
}

// Parse returns the Role for s, reporting whether s names a known role.
func Parse(s string) (Role, bool) {
	switch Role(s) {
	case Guest, User, Superuser, Admin, Superadmin:
		return Role(s), true
	}
	return "", false
}

// HasPermission reports whether role may invoke the named top-level field.
func HasPermission(role Role, field string) bool {
	set, ok := permissions[role]
	if !ok {
		return false
	}
	_, ok = set[field]
	return ok
}

// Extends reports whether role inherits (or is) required.
func Extends(role, required Role) bool {
	if role == required {
		return true
	}
	for _, parent := range parents[role] {
		if Extends(parent, required) {
			return true
		}
	}
	return false
}
