package query

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobID identifies one dispatched query
type JobID struct {
	value string
}

// NewJobID generates a JobID formatted as YYYYMMDD-HHMMSS-{first 8 chars of a UUID}
func NewJobID() JobID {
	now := time.Now()
	datePrefix := now.Format("20060102-150405")
	uuidStr := uuid.New().String()[:8]

	return JobID{
		value: fmt.Sprintf("%s-%s", datePrefix, uuidStr),
	}
}

// JobIDFromString restores a JobID from its string form
func JobIDFromString(s string) JobID {
	return JobID{value: s}
}

// String returns the JobID value
func (j JobID) String() string {
	return j.value
}

// Equals reports whether two JobIDs are equal
func (j JobID) Equals(other JobID) bool {
	return j.value == other.value
}

// IsZero reports whether the JobID is unset
func (j JobID) IsZero() bool {
	return j.value == ""
}
