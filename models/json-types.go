package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// JSONMap stores flexible object attributes (preferences, geometry, analysis
// payloads) as a jsonb column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for JSONMap")
		}
		b = []byte(s)
	}

	return json.Unmarshal(b, m)
}

// JSONList stores flexible array attributes (detected items, palette colors)
// as a jsonb column.
type JSONList []interface{}

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *JSONList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return errors.New("unsupported type for JSONList")
		}
		b = []byte(s)
	}

	return json.Unmarshal(b, l)
}
