package static

import (
	"encoding/json"
	"fmt"
	"golang.org/x/crypto/bcrypt"
	"os"
)

// NewAuthFromConfig loads a JSON object of username to bcrypt hash. Every
// hash is checked up front so a bad users file fails at startup.
func NewAuthFromConfig(config *Config) (*Auth, error) {
	f, err := os.Open(config.UsersJsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open users file: %w", err)
	}
	defer f.Close()

	users := make(map[string]string)
	if err := json.NewDecoder(f).Decode(&users); err != nil {
		return nil, fmt.Errorf("failed to decode users file %s: %w", config.UsersJsonPath, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("users file %s defines no users", config.UsersJsonPath)
	}
	for name, hash := range users {
		if _, err := bcrypt.Cost([]byte(hash)); err != nil {
			return nil, fmt.Errorf("user %q: not a bcrypt hash: %w", name, err)
		}
	}

	realm := config.Realm
	if realm == "" {
		realm = defaultRealm
	}
	return &Auth{Users: users, realm: realm}, nil
}
