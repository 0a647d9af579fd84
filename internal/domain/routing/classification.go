package routing

import "errors"

// ErrEmptyQuery is returned when the query text is empty or whitespace only
var ErrEmptyQuery = errors.New("empty query")

// Classification is the result of matching a query against a role's rule table
type Classification struct {
	Role  Role
	Query string
	// Tools is ordered by rule evaluation order, not by relevance. It is never empty.
	Tools []string
}

// NewClassification creates a Classification
func NewClassification(role Role, query string, tools []string) Classification {
	return Classification{
		Role:  role,
		Query: query,
		Tools: tools,
	}
}

// Primary returns the authoritative candidate. The rest of the list is advisory.
func (c Classification) Primary() string {
	if len(c.Tools) == 0 {
		return ""
	}
	return c.Tools[0]
}
