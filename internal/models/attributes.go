package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Attributes is an ordered string map preserving the insertion order of keys.
// It keeps importer-specific columns verbatim alongside first-class fields.
type Attributes struct {
	keys   []string
	values map[string]string
}

// NewAttributes builds an empty attribute bag.
func NewAttributes() Attributes {
	return Attributes{values: make(map[string]string)}
}

// Set stores value under key. Re-setting an existing key keeps its position.
func (a *Attributes) Set(key, value string) {
	if a.values == nil {
		a.values = make(map[string]string)
	}
	if _, ok := a.values[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.values[key] = value
}

// Get returns the value for key.
func (a Attributes) Get(key string) (string, bool) {
	v, ok := a.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (a Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len reports the number of entries.
func (a Attributes) Len() int {
	return len(a.keys)
}

// MarshalJSON encodes the bag as a JSON object with keys in insertion order.
func (a Attributes) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range a.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(a.values[key])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object keeping the order keys appear in the document.
func (a *Attributes) UnmarshalJSON(data []byte) error {
	*a = NewAttributes()
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("attributes: expected object")
	}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("attributes: expected string key")
		}
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("attributes: value for %q: %w", key, err)
		}
		a.Set(key, value)
	}
	_, err = dec.Token()
	return err
}

// Value implements driver.Valuer storing the bag as a JSON document.
func (a Attributes) Value() (driver.Value, error) {
	return a.MarshalJSON()
}

// Scan implements sql.Scanner.
func (a *Attributes) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*a = NewAttributes()
		return nil
	case []byte:
		return a.UnmarshalJSON(v)
	case string:
		return a.UnmarshalJSON([]byte(v))
	default:
		return fmt.Errorf("attributes: unsupported scan type %T", src)
	}
}
