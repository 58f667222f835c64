package static

const defaultRealm = "genoserve"

type Config struct {
	UsersJsonPath string
	// Realm reported in WWW-Authenticate challenges, defaults to "genoserve"
	Realm string
}

// Auth holds bcrypt password hashes keyed by username.
type Auth struct {
	Users map[string]string
	realm string
}
