package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyukimin/schooloo/internal/domain/school"
)

func TestSampleStore_Schools(t *testing.T) {
	s := NewSampleStore()

	all := s.AllSchools()
	require.Len(t, all, 2)
	assert.Equal(t, "school_001", all[0].ID)
	assert.Equal(t, "school_002", all[1].ID)

	dps, err := s.SchoolByID("school_001")
	require.NoError(t, err)
	assert.Equal(t, "Delhi Public School", dps.Name)
	assert.Equal(t, "+91-11-4152-7000", dps.ContactPhone)

	_, err = s.SchoolByID("school_999")
	assert.ErrorIs(t, err, school.ErrNotFound)
}

func TestSampleStore_SchoolsByLocation(t *testing.T) {
	s := NewSampleStore()

	delhi := s.SchoolsByLocation("delhi")
	require.Len(t, delhi, 1)
	assert.Equal(t, "Delhi Public School", delhi[0].Name)

	assert.Len(t, s.SchoolsByLocation("India"), 2)
	assert.Empty(t, s.SchoolsByLocation("Prayagraj"))
}

func TestSampleStore_NearbySchools(t *testing.T) {
	s := NewSampleStore()

	nearby := s.NearbySchools(28.54, 77.20, 5)
	require.Len(t, nearby, 1)
	assert.Equal(t, "school_001", nearby[0].ID)
	assert.Less(t, nearby[0].DistanceKM, 1.0)

	all := s.NearbySchools(20.0, 77.4, 2000)
	require.Len(t, all, 2)
	assert.LessOrEqual(t, all[0].DistanceKM, all[1].DistanceKM)
}

func TestSampleStore_Admissions(t *testing.T) {
	s := NewSampleStore()

	dps, err := s.Admission("school_001")
	require.NoError(t, err)
	assert.True(t, dps.EntranceExamRequired)
	require.NotNil(t, dps.ExamName)
	assert.Equal(t, "DPS Entrance Exam", *dps.ExamName)

	greenfield, err := s.Admission("school_002")
	require.NoError(t, err)
	assert.False(t, greenfield.EntranceExamRequired)
	assert.Nil(t, greenfield.ExamName)

	_, err = s.Admission("missing")
	assert.ErrorIs(t, err, school.ErrNotFound)
}

func TestStore_FAQs(t *testing.T) {
	s := NewSampleStore()

	assert.Len(t, s.FAQs(""), 4)
	assert.Len(t, s.FAQs("parent"), 3)
	assert.Len(t, s.FAQs("student"), 1)

	added := s.AddFAQ(school.FAQ{Question: "Is there a canteen?", Answer: "Yes."})
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "general", added.Category)
	assert.NotEmpty(t, added.UpdatedAt)
	assert.Len(t, s.FAQs(""), 5)
}

func TestStore_Leads(t *testing.T) {
	s := NewStore()

	lead := s.CreateLead(school.Lead{Name: "Asha", Email: "asha@example.com", Phone: "9999999999"})
	assert.NotEmpty(t, lead.ID)
	assert.Equal(t, school.LeadNew, lead.Status)
	assert.Equal(t, "general", lead.QueryType)

	updated, err := s.UpdateLeadStatus(lead.ID, school.LeadContacted)
	require.NoError(t, err)
	assert.Equal(t, school.LeadContacted, updated.Status)

	unchanged, err := s.UpdateLeadStatus(lead.ID, "")
	require.NoError(t, err)
	assert.Equal(t, school.LeadContacted, unchanged.Status)

	_, err = s.UpdateLeadStatus("missing", "converted")
	assert.ErrorIs(t, err, school.ErrNotFound)

	assert.Len(t, s.AllLeads(), 1)
}

func TestStore_ConcurrentLeads(t *testing.T) {
	s := NewStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.CreateLead(school.Lead{Name: "n"})
		}()
	}
	wg.Wait()

	assert.Len(t, s.AllLeads(), 50)
}
