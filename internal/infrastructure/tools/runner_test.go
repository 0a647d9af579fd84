package tools

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/internal/infrastructure/backend"
)

// fakeBackend records calls and answers with canned bodies
type fakeBackend struct {
	calls    []string
	lastArgs []interface{}
	resp     backend.Response
	err      error
	panicOn  string
}

func (f *fakeBackend) record(name string, args ...interface{}) (backend.Response, error) {
	f.calls = append(f.calls, name)
	f.lastArgs = args
	if f.panicOn == name {
		panic("boom")
	}
	return f.resp, f.err
}

func (f *fakeBackend) SearchSchools(ctx context.Context, location string) (backend.Response, error) {
	return f.record("SearchSchools", location)
}
func (f *fakeBackend) NearbySchools(ctx context.Context, lat, lon, radius float64) (backend.Response, error) {
	return f.record("NearbySchools", lat, lon, radius)
}
func (f *fakeBackend) School(ctx context.Context, id string) (backend.Response, error) {
	return f.record("School", id)
}
func (f *fakeBackend) CompareSchools(ctx context.Context, ids []string) (backend.Response, error) {
	return f.record("CompareSchools", ids)
}
func (f *fakeBackend) Admission(ctx context.Context, id string) (backend.Response, error) {
	return f.record("Admission", id)
}
func (f *fakeBackend) RequiredDocuments(ctx context.Context, id string) (backend.Response, error) {
	return f.record("RequiredDocuments", id)
}
func (f *fakeBackend) ExamPattern(ctx context.Context, id string) (backend.Response, error) {
	return f.record("ExamPattern", id)
}
func (f *fakeBackend) Eligibility(ctx context.Context, id string) (backend.Response, error) {
	return f.record("Eligibility", id)
}
func (f *fakeBackend) FAQs(ctx context.Context, category string) (backend.Response, error) {
	return f.record("FAQs", category)
}
func (f *fakeBackend) AddFAQ(ctx context.Context, in backend.FAQInput) (backend.Response, error) {
	return f.record("AddFAQ", in)
}
func (f *fakeBackend) CreateLead(ctx context.Context, in backend.LeadInput) (backend.Response, error) {
	return f.record("CreateLead", in)
}
func (f *fakeBackend) Leads(ctx context.Context) (backend.Response, error) {
	return f.record("Leads")
}
func (f *fakeBackend) UpdateLeadStatus(ctx context.Context, id, status string) (backend.Response, error) {
	return f.record("UpdateLeadStatus", id, status)
}

type recordingObserver struct {
	names   []string
	results []bool
}

func (o *recordingObserver) ObserveTool(name string, success bool, elapsed time.Duration) {
	o.names = append(o.names, name)
	o.results = append(o.results, success)
}

func newRunner(t *testing.T, b Backend) *ToolRunner {
	t.Helper()
	registry, err := NewRegistry(b)
	require.NoError(t, err)
	return NewToolRunner(registry)
}

func TestNewRegistry_Catalog(t *testing.T) {
	registry, err := NewRegistry(&fakeBackend{})
	require.NoError(t, err)

	assert.Equal(t, 14, registry.Len())
	assert.Equal(t, "search_schools", registry.Names()[0])
	for _, name := range []string{
		"search_schools", "get_nearby_schools", "get_school_details", "get_fee_structure",
		"compare_schools", "get_admission_info", "get_required_documents", "get_exam_pattern",
		"get_eligibility_criteria", "get_faqs", "add_faq", "capture_lead", "get_all_leads",
		"update_lead_status",
	} {
		_, ok := registry.Lookup(name)
		assert.True(t, ok, name)
	}
}

func TestToolRunner_Execute_UnknownTool(t *testing.T) {
	fb := &fakeBackend{}
	res := newRunner(t, fb).Execute(context.Background(), "book_flight", nil)

	assert.False(t, res.Success)
	assert.Equal(t, "unknown tool: book_flight", res.Error)
	assert.Empty(t, fb.calls)
}

func TestToolRunner_Execute_MissingParam(t *testing.T) {
	fb := &fakeBackend{}
	runner := newRunner(t, fb)

	res := runner.Execute(context.Background(), "get_school_details", map[string]interface{}{})
	assert.False(t, res.Success)
	assert.Equal(t, "missing required parameter: school_id", res.Error)

	res = runner.Execute(context.Background(), "update_lead_status", map[string]interface{}{"lead_id": "x", "status": ""})
	assert.Equal(t, "missing required parameter: status", res.Error)
	assert.Empty(t, fb.calls)
}

func TestToolRunner_Execute_Success(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{
		"success": true,
		"data":    []interface{}{map[string]interface{}{"name": "Delhi Public School"}},
	}}
	obs := &recordingObserver{}
	runner := newRunner(t, fb).WithObserver(obs)

	res := runner.Execute(context.Background(), "search_schools", map[string]interface{}{"location": "Delhi"})

	require.True(t, res.Success)
	data, ok := res.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Len(t, data["data"], 1)
	assert.Equal(t, []string{"SearchSchools"}, fb.calls)
	assert.Equal(t, []interface{}{"Delhi"}, fb.lastArgs)
	assert.Equal(t, []string{"search_schools"}, obs.names)
	assert.Equal(t, []bool{true}, obs.results)
}

func TestToolRunner_Execute_WeakArguments(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{"success": true, "data": []interface{}{}}}
	runner := newRunner(t, fb)

	res := runner.Execute(context.Background(), "get_nearby_schools", map[string]interface{}{
		"latitude": "28.6", "longitude": 77.2,
	})
	require.True(t, res.Success)
	assert.Equal(t, []interface{}{28.6, 77.2, 0.0}, fb.lastArgs)

	res = runner.Execute(context.Background(), "compare_schools", map[string]interface{}{
		"school_ids": "school_001, school_002",
	})
	require.True(t, res.Success)
	assert.Equal(t, []interface{}{[]string{"school_001", "school_002"}}, fb.lastArgs)
}

func TestToolRunner_Execute_BackendFailureBody(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{"success": false, "error": "School not found"}}
	res := newRunner(t, fb).Execute(context.Background(), "get_school_details", map[string]interface{}{"school_id": "nope"})

	assert.False(t, res.Success)
	assert.Equal(t, "School not found", res.Error)
	assert.NotNil(t, res.Data)
}

func TestToolRunner_Execute_TransportError(t *testing.T) {
	fb := &fakeBackend{err: errors.New("connection refused")}
	res := newRunner(t, fb).Execute(context.Background(), "get_all_leads", nil)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "connection refused")
}

func TestToolRunner_Execute_Panic(t *testing.T) {
	fb := &fakeBackend{panicOn: "Leads"}
	obs := &recordingObserver{}
	res := newRunner(t, fb).WithObserver(obs).Execute(context.Background(), "get_all_leads", nil)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "boom")
	assert.Equal(t, []bool{false}, obs.results)
}

func TestToolRunner_Execute_FeeStructure(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{
		"success": true,
		"data": map[string]interface{}{
			"name":          "Delhi Public School",
			"fee_structure": map[string]interface{}{"Class 1": "₹50,000"},
		},
	}}
	res := newRunner(t, fb).Execute(context.Background(), "get_fee_structure", map[string]interface{}{"school_id": "school_001"})

	require.True(t, res.Success)
	data := res.Data.(map[string]interface{})
	assert.Equal(t, true, data["success"])
	assert.Equal(t, "Delhi Public School", data["school_name"])
	assert.Equal(t, map[string]interface{}{"Class 1": "₹50,000"}, data["fees"])
	assert.Equal(t, []string{"School"}, fb.calls)
}

func TestToolRunner_Execute_FeeStructureMalformed(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{"success": true, "data": map[string]interface{}{"name": "X"}}}
	res := newRunner(t, fb).Execute(context.Background(), "get_fee_structure", map[string]interface{}{"school_id": "school_001"})

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "no fee structure")
}

func TestToolRunner_Execute_AddFAQOptionalSchool(t *testing.T) {
	fb := &fakeBackend{resp: backend.Response{"success": true, "data": map[string]interface{}{}}}
	runner := newRunner(t, fb)

	res := runner.Execute(context.Background(), "add_faq", map[string]interface{}{
		"question": "Q", "answer": "A", "category": "parent",
	})
	require.True(t, res.Success)
	in := fb.lastArgs[0].(backend.FAQInput)
	assert.Nil(t, in.SchoolID)
}

func TestToolRunner_Execute_AgainstHTTPBackend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	runner := newRunner(t, backend.NewClient(server.URL, time.Second))
	res := runner.Execute(context.Background(), "get_faqs", nil)

	assert.False(t, res.Success)
	assert.Contains(t, res.Error, "non-JSON")
}

func TestToolRunner_List(t *testing.T) {
	runner := newRunner(t, &fakeBackend{})
	assert.Equal(t, runner.Registry().Names(), runner.List())
}

func TestDescriptors_RequiredParams(t *testing.T) {
	for _, d := range Descriptors(&fakeBackend{}) {
		if d.Name == "get_all_leads" {
			assert.Empty(t, d.Params)
			continue
		}
		if d.Name == "get_faqs" {
			_, missing := d.MissingParam(tool.Args{})
			assert.False(t, missing)
		}
	}
}
