package backend

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultTimeout bounds every backend request
const DefaultTimeout = 10 * time.Second

// Response is a decoded backend body: {success, data|error, count, ...}
type Response map[string]interface{}

// Success reports the success flag of the body
func (r Response) Success() bool {
	ok, _ := r["success"].(bool)
	return ok
}

// Error returns the error message of the body, if any
func (r Response) Error() string {
	msg, _ := r["error"].(string)
	return msg
}

// Data returns the data payload of the body
func (r Response) Data() interface{} {
	return r["data"]
}

// FAQInput is the body of a new FAQ
type FAQInput struct {
	Question string  `json:"question"`
	Answer   string  `json:"answer"`
	Category string  `json:"category"`
	SchoolID *string `json:"school_id,omitempty"`
}

// LeadInput is the body of a new lead
type LeadInput struct {
	Name             string `json:"name"`
	Email            string `json:"email"`
	Phone            string `json:"phone"`
	SchoolInterested string `json:"school_interested"`
	QueryType        string `json:"query_type"`
	QueryText        string `json:"query_text"`
}

// Client calls the school backend REST API
type Client struct {
	http    *resty.Client
	baseURL string
}

// NewClient creates a Client. baseURL includes the /api prefix.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
		baseURL: baseURL,
	}
}

// BaseURL returns the configured base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchSchools finds schools whose location contains location
func (c *Client) SearchSchools(ctx context.Context, location string) (Response, error) {
	return c.do(ctx, http.MethodPost, "/schools/search", map[string]interface{}{"location": location}, nil)
}

// NearbySchools finds schools within radiusKM of a point
func (c *Client) NearbySchools(ctx context.Context, latitude, longitude, radiusKM float64) (Response, error) {
	body := map[string]interface{}{
		"latitude":  latitude,
		"longitude": longitude,
	}
	if radiusKM > 0 {
		body["radius_km"] = radiusKM
	}
	return c.do(ctx, http.MethodPost, "/schools/nearby", body, nil)
}

// Schools lists every school
func (c *Client) Schools(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/schools", nil, nil)
}

// School fetches one school
func (c *Client) School(ctx context.Context, schoolID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/schools/"+schoolID, nil, nil)
}

// CompareSchools fetches several schools side by side
func (c *Client) CompareSchools(ctx context.Context, schoolIDs []string) (Response, error) {
	return c.do(ctx, http.MethodPost, "/schools/compare", map[string]interface{}{"school_ids": schoolIDs}, nil)
}

// Admission fetches the admission record of a school
func (c *Client) Admission(ctx context.Context, schoolID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/admissions/"+schoolID, nil, nil)
}

// RequiredDocuments fetches the admission documents of a school
func (c *Client) RequiredDocuments(ctx context.Context, schoolID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/admissions/documents/"+schoolID, nil, nil)
}

// ExamPattern fetches the entrance exam of a school
func (c *Client) ExamPattern(ctx context.Context, schoolID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/admissions/exam-pattern/"+schoolID, nil, nil)
}

// Eligibility fetches the eligibility criteria of a school
func (c *Client) Eligibility(ctx context.Context, schoolID string) (Response, error) {
	return c.do(ctx, http.MethodGet, "/admissions/eligibility/"+schoolID, nil, nil)
}

// FAQs lists FAQs, filtered by category when it is not empty
func (c *Client) FAQs(ctx context.Context, category string) (Response, error) {
	var query map[string]string
	if category != "" {
		query = map[string]string{"category": category}
	}
	return c.do(ctx, http.MethodGet, "/faqs", nil, query)
}

// AddFAQ creates an FAQ
func (c *Client) AddFAQ(ctx context.Context, in FAQInput) (Response, error) {
	return c.do(ctx, http.MethodPost, "/faqs", in, nil)
}

// CreateLead records a lead
func (c *Client) CreateLead(ctx context.Context, in LeadInput) (Response, error) {
	return c.do(ctx, http.MethodPost, "/leads", in, nil)
}

// Leads lists every lead
func (c *Client) Leads(ctx context.Context) (Response, error) {
	return c.do(ctx, http.MethodGet, "/leads", nil, nil)
}

// UpdateLeadStatus changes the status of a lead
func (c *Client) UpdateLeadStatus(ctx context.Context, leadID, status string) (Response, error) {
	return c.do(ctx, http.MethodPatch, "/leads/"+leadID, map[string]interface{}{"status": status}, nil)
}

// do sends one request and decodes the JSON body.
// HTTP error statuses are not errors when the body is JSON; the body carries success=false.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, query map[string]string) (Response, error) {
	req := c.http.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("backend request %s %s failed: %w", method, path, err)
	}

	var out Response
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("backend returned non-JSON body (status=%d): %w", resp.StatusCode(), err)
	}
	if out == nil {
		return nil, fmt.Errorf("backend returned empty body (status=%d)", resp.StatusCode())
	}
	return out, nil
}
