package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// ConditionSnapshot records free-form condition notes keyed by aspect
// ("screen", "keyboard", ...). Stored as a jsonb column.
type ConditionSnapshot map[string]string

func (c ConditionSnapshot) Value() (driver.Value, error) {
	if c == nil {
		return nil, nil
	}
	return json.Marshal(c)
}

func (c *ConditionSnapshot) Scan(value interface{}) error {
	if value == nil {
		*c = nil
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("condition snapshot: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, c)
}

// AccessoryList holds the accessories issued alongside an asset, e.g.
// charger or dock. Stored as a jsonb array column.
type AccessoryList []string

func (a AccessoryList) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *AccessoryList) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}
	raw, ok := toBytes(value)
	if !ok {
		return fmt.Errorf("accessory list: unsupported scan type %T", value)
	}
	return json.Unmarshal(raw, a)
}

func toBytes(value interface{}) ([]byte, bool) {
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
