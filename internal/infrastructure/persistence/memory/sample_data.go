package memory

import (
	"time"

	"github.com/Nyukimin/schooloo/internal/domain/school"
)

func strPtr(s string) *string {
	return &s
}

// LoadSampleData seeds two schools, their admission rules and four FAQs
func (s *Store) LoadSampleData() {
	s.AddSchool(school.School{
		ID:        "school_001",
		Name:      "Delhi Public School",
		Location:  "New Delhi, India",
		Latitude:  28.5355,
		Longitude: 77.2030,
		FeeStructure: map[string]string{
			"kindergarten": "₹2,50,000/year",
			"primary":      "₹3,50,000/year",
			"secondary":    "₹4,50,000/year",
		},
		ClassesOffered:  []string{"KG", "1-5", "6-10", "11-12"},
		Facilities:      []string{"Swimming Pool", "Computer Lab", "Sports Ground", "Library"},
		ContactEmail:    "admin@dps-delhi.edu",
		ContactPhone:    "+91-11-4152-7000",
		Website:         "https://www.dpsdelhi.edu.in",
		EstablishedYear: 1949,
	})

	s.AddSchool(school.School{
		ID:        "school_002",
		Name:      "Greenfield Public School",
		Location:  "Bangalore, India",
		Latitude:  13.0827,
		Longitude: 77.6054,
		FeeStructure: map[string]string{
			"kindergarten": "₹2,00,000/year",
			"primary":      "₹2,80,000/year",
			"secondary":    "₹3,80,000/year",
		},
		ClassesOffered:  []string{"Nursery", "KG", "1-5", "6-10", "11-12"},
		Facilities:      []string{"Sports Complex", "STEM Lab", "Auditorium", "Cafeteria"},
		ContactEmail:    "info@greenfield.edu",
		ContactPhone:    "+91-80-4141-2020",
		Website:         "https://www.greenfieldschool.in",
		EstablishedYear: 2005,
	})

	s.AddAdmission(school.Admission{
		SchoolID:             "school_001",
		EntranceExamRequired: true,
		ExamName:             strPtr("DPS Entrance Exam"),
		ExamPattern:          strPtr("Multiple Choice + Verbal + Math + Reasoning"),
		AdmissionDeadline:    "March 31, 2024",
		RequiredDocuments:    []string{"Birth Certificate", "Marks Sheet", "Address Proof", "Transfer Certificate"},
		EligibilityCriteria: map[string]string{
			"age_limit":            "4-5 years for KG",
			"academic_requirement": "No prior experience required for KG",
			"nationality":          "Indian or International",
		},
	})

	s.AddAdmission(school.Admission{
		SchoolID:             "school_002",
		EntranceExamRequired: false,
		AdmissionDeadline:    "April 30, 2024",
		RequiredDocuments:    []string{"Birth Certificate", "Previous School Report", "Medical Fitness Certificate"},
		EligibilityCriteria: map[string]string{
			"age_limit":            "3+ years",
			"academic_requirement": "Assessments only",
			"nationality":          "Open for all",
		},
	})

	updatedAt := s.now().Format(time.RFC3339)
	faqs := []school.FAQ{
		{
			ID:       "faq_001",
			Question: "What is the admission fee?",
			Answer:   "Admission fee varies from ₹25,000 to ₹75,000 depending on the class.",
			Category: "parent",
			SchoolID: strPtr("school_001"),
		},
		{
			ID:       "faq_002",
			Question: "Do you provide transportation?",
			Answer:   "Yes, school buses are available in multiple routes across the city.",
			Category: "parent",
			SchoolID: strPtr("school_001"),
		},
		{
			ID:       "faq_003",
			Question: "What is the dress code?",
			Answer:   "Formal uniform is compulsory from KG onwards. Details are provided at admission.",
			Category: "student",
			SchoolID: strPtr("school_001"),
		},
		{
			ID:       "faq_004",
			Question: "Are hostels available?",
			Answer:   "Yes, separate hostels for boys and girls with 24/7 supervision.",
			Category: "parent",
			SchoolID: strPtr("school_002"),
		},
	}
	for _, f := range faqs {
		f.UpdatedAt = updatedAt
		s.AddFAQ(f)
	}
}
