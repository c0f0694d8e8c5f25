package models

import (
	"database/sql/driver"
	"errors"
	"strings"
)

// SerializableColours is a custom DB extension type that stores
// a string slice as a comma separate value in the database
// Example input: []string{"#020304", "#6581be"}
// Example DB value: #020304,#6581be
type SerializableColours []string

func (s SerializableColours) Value() (driver.Value, error) {
	return strings.Join(s, ","), nil
}

func (s *SerializableColours) Scan(src interface{}) error {
	var source string
	switch v := src.(type) {
	case string:
		source = v
	case []byte:
		source = string(v)
	case nil:
		*s = SerializableColours{}
		return nil
	default:
		return errors.New("incompatible type for SerializableColours")
	}
	if source == "" {
		*s = SerializableColours{}
		return nil
	}
	*s = SerializableColours(strings.Split(source, ","))
	return nil
}

// Primary returns the most dominant colour or the fallback when none were extracted
func (s SerializableColours) Primary(fallback string) string {
	if len(s) == 0 {
		return fallback
	}
	return s[0]
}
