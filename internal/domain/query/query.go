package query

import (
	"strings"

	"github.com/Nyukimin/schooloo/internal/domain/routing"
)

// Query is one user question. It is a value object and is discarded after dispatch.
type Query struct {
	jobID     JobID
	text      string
	role      routing.Role
	sessionID string
	args      map[string]interface{}
}

// NewQuery creates a new Query
func NewQuery(jobID JobID, text string, role routing.Role, sessionID string) Query {
	return Query{
		jobID:     jobID,
		text:      text,
		role:      role,
		sessionID: sessionID,
	}
}

// JobID returns the job id
func (q Query) JobID() JobID {
	return q.jobID
}

// Text returns the raw text
func (q Query) Text() string {
	return q.text
}

// Role returns the caller role
func (q Query) Role() routing.Role {
	return q.role
}

// SessionID returns the session the query belongs to
func (q Query) SessionID() string {
	return q.sessionID
}

// IsEmpty reports whether the text is empty or whitespace only
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.text) == ""
}

// Args returns a copy of the caller-supplied argument bag
func (q Query) Args() map[string]interface{} {
	out := make(map[string]interface{}, len(q.args))
	for k, v := range q.args {
		out[k] = v
	}
	return out
}

// WithArgs returns a new Query carrying args
func (q Query) WithArgs(args map[string]interface{}) Query {
	copied := make(map[string]interface{}, len(args))
	for k, v := range args {
		copied[k] = v
	}
	q.args = copied
	return q
}
