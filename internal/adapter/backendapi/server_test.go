package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nyukimin/schooloo/internal/infrastructure/backend"
	"github.com/Nyukimin/schooloo/internal/infrastructure/persistence/memory"
)

func newTestServer() *Server {
	return NewServer(memory.NewSampleStore())
}

func do(t *testing.T, h http.Handler, method, path, body string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

func TestServer_Health(t *testing.T) {
	code, body := do(t, newTestServer(), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Schooloo Backend", body["service"])
}

func TestServer_Schools(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodGet, "/api/schools", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["count"])

	code, body = do(t, srv, http.MethodGet, "/api/schools/school_002", "")
	assert.Equal(t, http.StatusOK, code)
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Greenfield Public School", data["name"])

	code, body = do(t, srv, http.MethodGet, "/api/schools/school_999", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "School not found", body["error"])
}

func TestServer_Search(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodPost, "/api/schools/search", `{"location":"bangalore"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(1), body["count"])

	_, body = do(t, srv, http.MethodPost, "/api/schools/search", `{}`)
	assert.Equal(t, float64(2), body["count"])

	_, body = do(t, srv, http.MethodPost, "/api/schools/search", `{"location":"Mumbai"}`)
	assert.Equal(t, float64(0), body["count"])
	assert.Equal(t, []interface{}{}, body["data"])

	code, body = do(t, srv, http.MethodPost, "/api/schools/search", `{bad`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
}

func TestServer_Nearby(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodPost, "/api/schools/nearby", `{"latitude":28.54,"longitude":77.21}`)
	assert.Equal(t, http.StatusOK, code)
	require.Equal(t, float64(1), body["count"])
	first := body["data"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "school_001", first["id"])
	assert.Less(t, first["distance_km"].(float64), 5.0)

	_, body = do(t, srv, http.MethodPost, "/api/schools/nearby", `{"latitude":28.54,"longitude":77.21,"radius_km":5000}`)
	data := body["data"].([]interface{})
	require.Len(t, data, 2)
	assert.Equal(t, "school_001", data[0].(map[string]interface{})["id"])

	code, body = do(t, srv, http.MethodPost, "/api/schools/nearby", `{"latitude":28.54}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Latitude and longitude required", body["error"])
}

func TestServer_Compare(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodPost, "/api/schools/compare", `{"school_ids":["school_001","school_404","school_002"]}`)
	assert.Equal(t, http.StatusOK, code)
	comparison := body["comparison"].(map[string]interface{})
	assert.Equal(t, float64(2), comparison["count"])
	assert.Equal(t, []interface{}{"Delhi Public School", "Greenfield Public School"}, comparison["schools"])

	code, body = do(t, srv, http.MethodPost, "/api/schools/compare", `{"school_ids":["school_404"]}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "No schools found", body["error"])
}

func TestServer_Admissions(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodGet, "/api/admissions/school_001", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "March 31, 2024", body["data"].(map[string]interface{})["admission_deadline"])

	_, body = do(t, srv, http.MethodGet, "/api/admissions/documents/school_002", "")
	assert.Equal(t, "school_002", body["school_id"])
	assert.Len(t, body["documents"], 3)

	_, body = do(t, srv, http.MethodGet, "/api/admissions/exam-pattern/school_001", "")
	assert.Equal(t, true, body["exam_required"])
	assert.Equal(t, "DPS Entrance Exam", body["exam_name"])

	_, body = do(t, srv, http.MethodGet, "/api/admissions/exam-pattern/school_002", "")
	assert.Equal(t, false, body["exam_required"])
	assert.Equal(t, "No entrance exam required", body["message"])

	_, body = do(t, srv, http.MethodGet, "/api/admissions/eligibility/school_002", "")
	assert.Equal(t, "3+ years", body["eligibility"].(map[string]interface{})["age_limit"])

	code, body = do(t, srv, http.MethodGet, "/api/admissions/eligibility/school_404", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "School not found", body["error"])

	code, body = do(t, srv, http.MethodGet, "/api/admissions/school_404", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Admission info not found", body["error"])
}

func TestServer_FAQs(t *testing.T) {
	srv := newTestServer()

	_, body := do(t, srv, http.MethodGet, "/api/faqs", "")
	assert.Equal(t, float64(4), body["count"])

	_, body = do(t, srv, http.MethodGet, "/api/faqs?category=student", "")
	assert.Equal(t, float64(1), body["count"])

	code, body := do(t, srv, http.MethodPost, "/api/faqs", `{"question":"Is there a canteen?","answer":"Yes."}`)
	assert.Equal(t, http.StatusCreated, code)
	faq := body["data"].(map[string]interface{})
	assert.Equal(t, "general", faq["category"])
	assert.NotEmpty(t, faq["id"])
	assert.Nil(t, faq["school_id"])

	_, body = do(t, srv, http.MethodGet, "/api/faqs", "")
	assert.Equal(t, float64(5), body["count"])
}

func TestServer_Leads(t *testing.T) {
	srv := newTestServer()

	code, body := do(t, srv, http.MethodPost, "/api/leads", `{"name":"Asha","email":"asha@example.com","phone":"+91-9000000000","school_interested":"school_001","query_text":"fees?"}`)
	require.Equal(t, http.StatusCreated, code)
	lead := body["data"].(map[string]interface{})
	assert.Equal(t, "new", lead["status"])
	assert.Equal(t, "general", lead["query_type"])
	id := lead["id"].(string)

	_, body = do(t, srv, http.MethodGet, "/api/leads", "")
	assert.Equal(t, float64(1), body["count"])

	code, body = do(t, srv, http.MethodPatch, "/api/leads/"+id, `{"status":"contacted"}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "contacted", body["data"].(map[string]interface{})["status"])

	code, body = do(t, srv, http.MethodPatch, "/api/leads/"+id, `{}`)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "contacted", body["data"].(map[string]interface{})["status"])

	code, body = do(t, srv, http.MethodPatch, "/api/leads/missing", `{"status":"converted"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Lead not found", body["error"])
}

func TestServer_NotFound(t *testing.T) {
	code, body := do(t, newTestServer(), http.MethodGet, "/api/unknown/route", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Endpoint not found", body["error"])
}

func TestServer_CORS(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/api/schools", nil)
	rec := httptest.NewRecorder()
	newTestServer().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServer_WithBackendClient(t *testing.T) {
	ts := httptest.NewServer(newTestServer())
	defer ts.Close()

	client := backend.NewClient(ts.URL+"/api", time.Second)
	ctx := context.Background()

	resp, err := client.School(ctx, "school_001")
	require.NoError(t, err)
	assert.True(t, resp.Success())

	resp, err = client.School(ctx, "school_404")
	require.NoError(t, err)
	assert.False(t, resp.Success())
	assert.Equal(t, "School not found", resp.Error())

	resp, err = client.CreateLead(ctx, backend.LeadInput{Name: "Ravi", QueryType: "parent"})
	require.NoError(t, err)
	id := resp.Data().(map[string]interface{})["id"].(string)

	resp, err = client.UpdateLeadStatus(ctx, id, "converted")
	require.NoError(t, err)
	assert.Equal(t, "converted", resp.Data().(map[string]interface{})["status"])
}
