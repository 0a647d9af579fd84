// Package backendapi serves the school catalogue, admissions, FAQs and leads over REST.
package backendapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Nyukimin/schooloo/internal/domain/school"
	"github.com/Nyukimin/schooloo/pkg/logger"
)

const defaultRadiusKM = 5.0

// Store is the data source behind the API
type Store interface {
	AllSchools() []school.School
	SchoolByID(id string) (school.School, error)
	SchoolsByLocation(location string) []school.School
	NearbySchools(lat, lon, radiusKM float64) []school.NearbySchool
	Admission(schoolID string) (school.Admission, error)
	FAQs(category string) []school.FAQ
	AddFAQ(f school.FAQ) school.FAQ
	CreateLead(l school.Lead) school.Lead
	AllLeads() []school.Lead
	UpdateLeadStatus(id, status string) (school.Lead, error)
}

// Server is the backend HTTP handler
type Server struct {
	store  Store
	router chi.Router
}

// NewServer builds the router over store
func NewServer(store Store) *Server {
	s := &Server{store: store}

	r := chi.NewRouter()
	r.Use(recoverMiddleware)
	r.Use(loggingMiddleware)
	r.Use(corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/health", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/schools", s.handleSchools)
		r.Post("/schools/search", s.handleSearch)
		r.Post("/schools/nearby", s.handleNearby)
		r.Post("/schools/compare", s.handleCompare)
		r.Get("/schools/{id}", s.handleSchool)

		r.Get("/admissions/documents/{id}", s.handleDocuments)
		r.Get("/admissions/exam-pattern/{id}", s.handleExamPattern)
		r.Get("/admissions/eligibility/{id}", s.handleEligibility)
		r.Get("/admissions/{id}", s.handleAdmission)

		r.Get("/faqs", s.handleFAQs)
		r.Post("/faqs", s.handleCreateFAQ)

		r.Get("/leads", s.handleLeads)
		r.Post("/leads", s.handleCreateLead)
		r.Patch("/leads/{id}", s.handleUpdateLead)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "Schooloo Backend",
	})
}

func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	schools := s.store.AllSchools()
	writeList(w, schools, len(schools))
}

func (s *Server) handleSchool(w http.ResponseWriter, r *http.Request) {
	sc, err := s.store.SchoolByID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "School not found")
		return
	}
	writeData(w, http.StatusOK, sc)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Location string `json:"location"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	var schools []school.School
	if body.Location != "" {
		schools = s.store.SchoolsByLocation(body.Location)
	} else {
		schools = s.store.AllSchools()
	}
	writeList(w, schools, len(schools))
}

func (s *Server) handleNearby(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
		RadiusKM  *float64 `json:"radius_km"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	// zero coordinates count as missing
	if body.Latitude == nil || body.Longitude == nil || *body.Latitude == 0 || *body.Longitude == 0 {
		writeError(w, http.StatusBadRequest, "Latitude and longitude required")
		return
	}

	radius := defaultRadiusKM
	if body.RadiusKM != nil {
		radius = *body.RadiusKM
	}

	nearby := s.store.NearbySchools(*body.Latitude, *body.Longitude, radius)
	writeList(w, nearby, len(nearby))
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SchoolIDs []string `json:"school_ids"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	schools := make([]school.School, 0, len(body.SchoolIDs))
	names := make([]string, 0, len(body.SchoolIDs))
	for _, id := range body.SchoolIDs {
		sc, err := s.store.SchoolByID(id)
		if err != nil {
			continue
		}
		schools = append(schools, sc)
		names = append(names, sc.Name)
	}

	if len(schools) == 0 {
		writeError(w, http.StatusNotFound, "No schools found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    schools,
		"comparison": map[string]interface{}{
			"count":   len(schools),
			"schools": names,
		},
	})
}

func (s *Server) handleAdmission(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Admission(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "Admission info not found")
		return
	}
	writeData(w, http.StatusOK, a)
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.Admission(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "School not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":   true,
		"school_id": id,
		"documents": a.RequiredDocuments,
	})
}

func (s *Server) handleExamPattern(w http.ResponseWriter, r *http.Request) {
	a, err := s.store.Admission(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "School not found")
		return
	}

	if !a.EntranceExamRequired {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success":       true,
			"exam_required": false,
			"message":       "No entrance exam required",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"exam_required": true,
		"exam_name":     a.ExamName,
		"exam_pattern":  a.ExamPattern,
		"syllabus":      "Available on school website",
	})
}

func (s *Server) handleEligibility(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := s.store.Admission(id)
	if err != nil {
		writeError(w, http.StatusNotFound, "School not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":     true,
		"school_id":   id,
		"eligibility": a.EligibilityCriteria,
	})
}

func (s *Server) handleFAQs(w http.ResponseWriter, r *http.Request) {
	faqs := s.store.FAQs(r.URL.Query().Get("category"))
	writeList(w, faqs, len(faqs))
}

func (s *Server) handleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Question string  `json:"question"`
		Answer   string  `json:"answer"`
		Category string  `json:"category"`
		SchoolID *string `json:"school_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	faq := s.store.AddFAQ(school.FAQ{
		Question: body.Question,
		Answer:   body.Answer,
		Category: body.Category,
		SchoolID: body.SchoolID,
	})
	writeData(w, http.StatusCreated, faq)
}

func (s *Server) handleLeads(w http.ResponseWriter, r *http.Request) {
	leads := s.store.AllLeads()
	writeList(w, leads, len(leads))
}

func (s *Server) handleCreateLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name             string `json:"name"`
		Email            string `json:"email"`
		Phone            string `json:"phone"`
		SchoolInterested string `json:"school_interested"`
		QueryType        string `json:"query_type"`
		QueryText        string `json:"query_text"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	lead := s.store.CreateLead(school.Lead{
		Name:             body.Name,
		Email:            body.Email,
		Phone:            body.Phone,
		SchoolInterested: body.SchoolInterested,
		QueryType:        body.QueryType,
		QueryText:        body.QueryText,
	})
	logger.InfoCF("backendapi", "Lead captured", map[string]interface{}{
		"lead_id": lead.ID,
		"school":  lead.SchoolInterested,
	})
	writeData(w, http.StatusCreated, lead)
}

func (s *Server) handleUpdateLead(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status *string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	status := ""
	if body.Status != nil {
		status = *body.Status
	}

	lead, err := s.store.UpdateLeadStatus(chi.URLParam(r, "id"), status)
	if err != nil {
		writeError(w, http.StatusNotFound, "Lead not found")
		return
	}
	writeData(w, http.StatusOK, lead)
}

// decodeBody decodes a JSON body. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "Invalid JSON body")
	return false
}

func writeList(w http.ResponseWriter, data interface{}, count int) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    data,
		"count":   count,
	})
}

func writeData(w http.ResponseWriter, status int, data interface{}) {
	writeJSON(w, status, map[string]interface{}{
		"success": true,
		"data":    data,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"success": false,
		"error":   msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.WarnCF("backendapi", "Failed to encode response", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		logger.DebugCF("backendapi", "Request handled", map[string]interface{}{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"elapsed_ms": time.Since(start).Milliseconds(),
		})
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorCF("backendapi", "Handler panicked", map[string]interface{}{
					"path":  r.URL.Path,
					"panic": rec,
				})
				writeError(w, http.StatusInternalServerError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
