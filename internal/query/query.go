// Package query narrows a student collection by name, program, and
// gender. It is pure: it never touches storage.
package query

import (
	"net/url"
	"strings"

	"github.com/aanand-mishra/students-records/internal/types"
)

// CriteriaFromQuery reads the name, program, and gender query parameters.
func CriteriaFromQuery(v url.Values) types.Criteria {
	return types.Criteria{
		Name:    v.Get("name"),
		Program: v.Get("program"),
		Gender:  v.Get("gender"),
	}
}

// Filter returns the records that satisfy every non-empty criterion, in
// their original order. Criteria are trimmed and compared
// case-insensitively: name and program by substring, gender exactly.
// The result is never nil.
func Filter(students []types.Student, c types.Criteria) []types.Student {
	name := normalize(c.Name)
	program := normalize(c.Program)
	gender := normalize(c.Gender)

	out := make([]types.Student, 0, len(students))
	for _, s := range students {
		if name != "" && !strings.Contains(strings.ToLower(s.FullName), name) {
			continue
		}
		if program != "" && !strings.Contains(strings.ToLower(s.Program), program) {
			continue
		}
		if gender != "" && strings.ToLower(s.Gender) != gender {
			continue
		}
		out = append(out, s)
	}
	return out
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
