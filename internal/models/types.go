package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores a free-form object column, used for wallet metadata. It
// marshals to jsonb on postgres and a text blob on sqlite.
type JSON map[string]interface{}

func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return "{}", nil
	}
	return json.Marshal(j)
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = JSON{}
		return nil
	}

	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into JSON", value)
	}

	if len(raw) == 0 {
		*j = JSON{}
		return nil
	}

	parsed := map[string]interface{}{}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return err
	}
	*j = JSON(parsed)
	return nil
}
