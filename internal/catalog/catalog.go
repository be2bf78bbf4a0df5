// Package catalog loads the cricketer master list served to every room.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cagdev/cag-backend/internal/engine"
)

// Load reads the catalog JSON file, a flat array of cricketers.
func Load(path string) ([]engine.Cricketer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]engine.Cricketer, error) {
	var list []engine.Cricketer
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}
	if err := validate(list); err != nil {
		return nil, err
	}
	return list, nil
}

func validate(list []engine.Cricketer) error {
	seen := make(map[int]bool, len(list))
	for i, c := range list {
		if c.ID == 0 {
			return fmt.Errorf("catalog: entry %d (%q) has no id", i, c.Name)
		}
		if seen[c.ID] {
			return fmt.Errorf("catalog: duplicate id %d", c.ID)
		}
		seen[c.ID] = true
		if c.Name == "" {
			return fmt.Errorf("catalog: entry %d has no name", i)
		}
		switch c.Role {
		case engine.RoleBatsman, engine.RoleBowler, engine.RoleAllRounder, engine.RoleWicketKeeper:
		default:
			return fmt.Errorf("catalog: %q has unknown role %q", c.Name, c.Role)
		}
		if c.BasePrice <= 0 {
			return fmt.Errorf("catalog: %q has non-positive base price %d", c.Name, c.BasePrice)
		}
	}
	return nil
}
