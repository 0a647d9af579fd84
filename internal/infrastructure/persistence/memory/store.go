package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nyukimin/schooloo/internal/domain/school"
)

// Store is the in-memory backend database. Records keep insertion order.
type Store struct {
	mu         sync.RWMutex
	schools    map[string]school.School
	schoolIDs  []string
	admissions map[string]school.Admission
	faqs       map[string]school.FAQ
	faqIDs     []string
	leads      map[string]school.Lead
	leadIDs    []string
	now        func() time.Time
}

// NewStore creates an empty Store
func NewStore() *Store {
	return &Store{
		schools:    make(map[string]school.School),
		admissions: make(map[string]school.Admission),
		faqs:       make(map[string]school.FAQ),
		leads:      make(map[string]school.Lead),
		now:        time.Now,
	}
}

// NewSampleStore creates a Store preloaded with the sample dataset
func NewSampleStore() *Store {
	s := NewStore()
	s.LoadSampleData()
	return s
}

// AddSchool inserts or replaces a school
func (s *Store) AddSchool(sc school.School) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.schools[sc.ID]; !exists {
		s.schoolIDs = append(s.schoolIDs, sc.ID)
	}
	s.schools[sc.ID] = sc
}

// AddAdmission inserts or replaces admission info
func (s *Store) AddAdmission(a school.Admission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.admissions[a.SchoolID] = a
}

// AllSchools returns every school
func (s *Store) AllSchools() []school.School {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]school.School, 0, len(s.schoolIDs))
	for _, id := range s.schoolIDs {
		out = append(out, s.schools[id])
	}
	return out
}

// SchoolByID returns one school
func (s *Store) SchoolByID(id string) (school.School, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc, ok := s.schools[id]
	if !ok {
		return school.School{}, school.ErrNotFound
	}
	return sc, nil
}

// SchoolsByLocation returns schools whose location contains location, case-insensitively
func (s *Store) SchoolsByLocation(location string) []school.School {
	needle := strings.ToLower(location)
	out := make([]school.School, 0)
	for _, sc := range s.AllSchools() {
		if strings.Contains(strings.ToLower(sc.Location), needle) {
			out = append(out, sc)
		}
	}
	return out
}

// NearbySchools returns schools within radiusKM of the point, nearest first
func (s *Store) NearbySchools(lat, lon, radiusKM float64) []school.NearbySchool {
	out := make([]school.NearbySchool, 0)
	for _, sc := range s.AllSchools() {
		d := school.HaversineKM(lat, lon, sc.Latitude, sc.Longitude)
		if d <= radiusKM {
			out = append(out, school.NearbySchool{School: sc, DistanceKM: school.RoundKM(d)})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DistanceKM < out[j].DistanceKM
	})
	return out
}

// Admission returns admission info for a school
func (s *Store) Admission(schoolID string) (school.Admission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.admissions[schoolID]
	if !ok {
		return school.Admission{}, school.ErrNotFound
	}
	return a, nil
}

// FAQs returns all FAQs, or only those of category when it is non-empty
func (s *Store) FAQs(category string) []school.FAQ {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]school.FAQ, 0, len(s.faqIDs))
	for _, id := range s.faqIDs {
		f := s.faqs[id]
		if category != "" && f.Category != category {
			continue
		}
		out = append(out, f)
	}
	return out
}

// AddFAQ stores a FAQ, assigning id, default category and timestamp
func (s *Store) AddFAQ(f school.FAQ) school.FAQ {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f.ID == "" {
		f.ID = uuid.New().String()
	}
	if f.Category == "" {
		f.Category = "general"
	}
	if f.UpdatedAt == "" {
		f.UpdatedAt = s.now().Format(time.RFC3339)
	}

	if _, exists := s.faqs[f.ID]; !exists {
		s.faqIDs = append(s.faqIDs, f.ID)
	}
	s.faqs[f.ID] = f
	return f
}

// CreateLead stores a new lead with status "new"
func (s *Store) CreateLead(l school.Lead) school.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	l.ID = uuid.New().String()
	l.Status = school.LeadNew
	l.CreatedAt = s.now().Format(time.RFC3339)
	if l.QueryType == "" {
		l.QueryType = "general"
	}

	s.leads[l.ID] = l
	s.leadIDs = append(s.leadIDs, l.ID)
	return l
}

// AllLeads returns every lead in creation order
func (s *Store) AllLeads() []school.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]school.Lead, 0, len(s.leadIDs))
	for _, id := range s.leadIDs {
		out = append(out, s.leads[id])
	}
	return out
}

// UpdateLeadStatus sets a lead's status. An empty status leaves the lead unchanged.
func (s *Store) UpdateLeadStatus(id, status string) (school.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return school.Lead{}, school.ErrNotFound
	}
	if status != "" {
		l.Status = status
		s.leads[id] = l
	}
	return l, nil
}
