// Package types holds the shared data structures used across the
// application. Keeping them in one place prevents import cycles:
// handlers, storage, registry, and insight all import types without
// depending on each other.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Student represents one stored student record.
//
// The json tags match the field names the browser client sends and the
// names already present in existing students.json files, so those files
// load without migration.
//
// validate:"required" marks the four fields a record cannot be created
// without. The remaining fields are free-form and may be empty.
type Student struct {
	// ID is assigned by the registry at creation time and is the only
	// key used for deletion. Clients never send it.
	ID int64 `json:"id"`

	StudentID string `json:"studentID" validate:"required"`
	FullName  string `json:"fullName"  validate:"required"`
	Gender    string `json:"gender"    validate:"required"`
	Gmail     string `json:"gmail"     validate:"required"`

	Program    string `json:"program"`
	YearLevel  string `json:"yearLevel"`
	University string `json:"university"`
}

// UnmarshalJSON accepts any JSON scalar for the text fields. Data files
// written by earlier versions stored request bodies verbatim, so a record
// may hold "yearLevel": 2 or "program": null. Strings are taken as-is,
// null becomes "", and other values keep their compact JSON text. Only a
// non-numeric id is an error.
func (s *Student) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID         int64           `json:"id"`
		StudentID  json.RawMessage `json:"studentID"`
		FullName   json.RawMessage `json:"fullName"`
		Gender     json.RawMessage `json:"gender"`
		Gmail      json.RawMessage `json:"gmail"`
		Program    json.RawMessage `json:"program"`
		YearLevel  json.RawMessage `json:"yearLevel"`
		University json.RawMessage `json:"university"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		name string
		src  json.RawMessage
		dst  *string
	}{
		{"studentID", raw.StudentID, &s.StudentID},
		{"fullName", raw.FullName, &s.FullName},
		{"gender", raw.Gender, &s.Gender},
		{"gmail", raw.Gmail, &s.Gmail},
		{"program", raw.Program, &s.Program},
		{"yearLevel", raw.YearLevel, &s.YearLevel},
		{"university", raw.University, &s.University},
	}

	s.ID = raw.ID
	for _, f := range fields {
		v, err := text(f.src)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return nil
}

func text(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", nil
	}
	if raw[0] == '"' {
		var v string
		err := json.Unmarshal(raw, &v)
		return v, err
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Criteria narrows a list request. Empty fields impose no constraint.
type Criteria struct {
	Name    string
	Program string
	Gender  string
}
