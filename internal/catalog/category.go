package catalog

import (
	"encoding/json"
	"fmt"
)

// Category normalizes the catalog's loose category shape at the boundary.
// Upstream sends either a bare string, an object with a name field, or
// nothing at all; downstream code only ever sees this type.
type Category struct {
	Name  string
	Named bool
}

func (c *Category) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Category{}
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*c = Category{Name: name, Named: name != ""}
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("decode category: %w", err)
	}
	*c = Category{Name: obj.Name, Named: obj.Name != ""}
	return nil
}

func (c Category) MarshalJSON() ([]byte, error) {
	if !c.Named {
		return []byte("null"), nil
	}
	return json.Marshal(c.Name)
}
