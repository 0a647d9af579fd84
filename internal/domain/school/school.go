// Package school holds the records served by the REST backend.
package school

import "errors"

// ErrNotFound is returned when a record does not exist
var ErrNotFound = errors.New("not found")

// School is a school listing
type School struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Location        string            `json:"location"`
	Latitude        float64           `json:"latitude"`
	Longitude       float64           `json:"longitude"`
	FeeStructure    map[string]string `json:"fee_structure"`
	ClassesOffered  []string          `json:"classes_offered"`
	Facilities      []string          `json:"facilities"`
	ContactEmail    string            `json:"contact_email"`
	ContactPhone    string            `json:"contact_phone"`
	Website         string            `json:"website"`
	EstablishedYear int               `json:"established_year"`
}

// Admission holds the admission requirements of one school
type Admission struct {
	SchoolID             string            `json:"school_id"`
	EntranceExamRequired bool              `json:"entrance_exam_required"`
	ExamName             *string           `json:"exam_name"`
	ExamPattern          *string           `json:"exam_pattern"`
	AdmissionDeadline    string            `json:"admission_deadline"`
	RequiredDocuments    []string          `json:"required_documents"`
	EligibilityCriteria  map[string]string `json:"eligibility_criteria"`
}

// FAQ is a frequently asked question. Category is parent, student or general.
type FAQ struct {
	ID        string  `json:"id"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Category  string  `json:"category"`
	SchoolID  *string `json:"school_id"`
	UpdatedAt string  `json:"updated_at"`
}

// Lead statuses
const (
	LeadNew       = "new"
	LeadContacted = "contacted"
	LeadConverted = "converted"
)

// Lead is a captured prospective-customer inquiry
type Lead struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	SchoolInterested string `json:"school_interested"`
	QueryType        string `json:"query_type"` // parent, student, admin
	QueryText        string `json:"query_text"`
	Status           string `json:"status"`
	CreatedAt        string `json:"created_at"`
}

// NearbySchool is a School annotated with its distance from a point
type NearbySchool struct {
	School
	DistanceKM float64 `json:"distance_km"`
}
