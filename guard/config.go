package guard

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrConfig is returned for an invalid route-table configuration.
var ErrConfig = errors.New("invalid route config")

// LoadRoutes reads a YAML route table from path, layered over DefaultRoutes.
// Unknown fields are rejected so typos fail loudly at startup.
func LoadRoutes(path string) (Routes, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Routes{}, err
	}
	return parseRoutes(b)
}

func parseRoutes(b []byte) (Routes, error) {
	routes := DefaultRoutes()

	dec := yaml.NewDecoder(strings.NewReader(string(b)))
	dec.KnownFields(true)
	if err := dec.Decode(&routes); err != nil {
		return Routes{}, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	if err := validateRoutes(routes); err != nil {
		return Routes{}, err
	}
	return routes, nil
}

func validateRoutes(r Routes) error {
	for name, v := range map[string]string{
		"admin_prefix":    r.AdminPrefix,
		"user_landing":    r.UserLanding,
		"admin_landing":   r.AdminLanding,
		"user_management": r.UserManagement,
	} {
		if !strings.HasPrefix(v, "/") {
			return fmt.Errorf("%w: %s must start with /", ErrConfig, name)
		}
	}
	if len(r.PublicEntries) == 0 {
		return fmt.Errorf("%w: public_entries must not be empty", ErrConfig)
	}
	for _, e := range r.PublicEntries {
		if !strings.HasPrefix(e, "/") {
			return fmt.Errorf("%w: public entry %q must start with /", ErrConfig, e)
		}
	}

	// The landings must live in their own namespaces or every redirect loops.
	if !strings.HasPrefix(r.AdminLanding, r.AdminPrefix+"/") {
		return fmt.Errorf("%w: admin_landing must be under admin_prefix", ErrConfig)
	}
	if !strings.HasPrefix(r.UserManagement, r.AdminPrefix+"/") {
		return fmt.Errorf("%w: user_management must be under admin_prefix", ErrConfig)
	}
	if strings.HasPrefix(r.UserLanding, r.AdminPrefix+"/") || r.UserLanding == r.AdminPrefix {
		return fmt.Errorf("%w: user_landing must not be under admin_prefix", ErrConfig)
	}

	return nil
}
