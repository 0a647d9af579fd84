package tools

import (
	"context"
	"fmt"

	"github.com/Nyukimin/schooloo/internal/domain/tool"
	"github.com/Nyukimin/schooloo/internal/infrastructure/backend"
)

// Backend is the set of backend operations the tools call
type Backend interface {
	SearchSchools(ctx context.Context, location string) (backend.Response, error)
	NearbySchools(ctx context.Context, latitude, longitude, radiusKM float64) (backend.Response, error)
	School(ctx context.Context, schoolID string) (backend.Response, error)
	CompareSchools(ctx context.Context, schoolIDs []string) (backend.Response, error)
	Admission(ctx context.Context, schoolID string) (backend.Response, error)
	RequiredDocuments(ctx context.Context, schoolID string) (backend.Response, error)
	ExamPattern(ctx context.Context, schoolID string) (backend.Response, error)
	Eligibility(ctx context.Context, schoolID string) (backend.Response, error)
	FAQs(ctx context.Context, category string) (backend.Response, error)
	AddFAQ(ctx context.Context, in backend.FAQInput) (backend.Response, error)
	CreateLead(ctx context.Context, in backend.LeadInput) (backend.Response, error)
	Leads(ctx context.Context) (backend.Response, error)
	UpdateLeadStatus(ctx context.Context, leadID, status string) (backend.Response, error)
}

func str(name string, required bool) tool.Param {
	return tool.Param{Name: name, Type: tool.TypeString, Required: required}
}

func num(name string, required bool) tool.Param {
	return tool.Param{Name: name, Type: tool.TypeNumber, Required: required}
}

// NewRegistry builds the tool registry over a backend
func NewRegistry(b Backend) (*tool.Registry, error) {
	return tool.NewRegistry(Descriptors(b)...)
}

// Descriptors returns the school tools bound to b, in catalog order
func Descriptors(b Backend) []tool.Descriptor {
	return []tool.Descriptor{
		{
			Name:        "search_schools",
			Description: "Search schools by location",
			Params:      []tool.Param{str("location", true), num("radius_km", false)},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p searchParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return b.SearchSchools(ctx, p.Location)
			},
		},
		{
			Name:        "get_nearby_schools",
			Description: "Find schools near a latitude/longitude",
			Params:      []tool.Param{num("latitude", true), num("longitude", true), num("radius_km", false)},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p nearbyParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return b.NearbySchools(ctx, p.Latitude, p.Longitude, p.RadiusKM)
			},
		},
		{
			Name:        "get_school_details",
			Description: "Get the full record of a school",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: schoolCall(func(ctx context.Context, id string) (backend.Response, error) {
				return b.School(ctx, id)
			}),
		},
		{
			Name:        "get_fee_structure",
			Description: "Get the fee structure of a school",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p schoolParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return feeStructure(ctx, b, p.SchoolID)
			},
		},
		{
			Name:        "compare_schools",
			Description: "Compare several schools",
			Params:      []tool.Param{{Name: "school_ids", Type: tool.TypeStringArray, Required: true}},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p compareParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				ids := trimAll(p.SchoolIDs)
				if len(ids) == 0 {
					return nil, fmt.Errorf("school_ids must not be empty")
				}
				return b.CompareSchools(ctx, ids)
			},
		},
		{
			Name:        "get_admission_info",
			Description: "Get the admission record of a school",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: schoolCall(func(ctx context.Context, id string) (backend.Response, error) {
				return b.Admission(ctx, id)
			}),
		},
		{
			Name:        "get_required_documents",
			Description: "List the documents required for admission",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: schoolCall(func(ctx context.Context, id string) (backend.Response, error) {
				return b.RequiredDocuments(ctx, id)
			}),
		},
		{
			Name:        "get_exam_pattern",
			Description: "Get the entrance exam of a school",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: schoolCall(func(ctx context.Context, id string) (backend.Response, error) {
				return b.ExamPattern(ctx, id)
			}),
		},
		{
			Name:        "get_eligibility_criteria",
			Description: "Get the eligibility criteria of a school",
			Params:      []tool.Param{str("school_id", true)},
			Invoke: schoolCall(func(ctx context.Context, id string) (backend.Response, error) {
				return b.Eligibility(ctx, id)
			}),
		},
		{
			Name:        "get_faqs",
			Description: "List FAQs, optionally by category",
			Params:      []tool.Param{str("category", false)},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p faqQueryParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return b.FAQs(ctx, p.Category)
			},
		},
		{
			Name:        "add_faq",
			Description: "Add an FAQ",
			Params: []tool.Param{
				str("question", true), str("answer", true), str("category", true), str("school_id", false),
			},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p addFAQParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				in := backend.FAQInput{Question: p.Question, Answer: p.Answer, Category: p.Category}
				if p.SchoolID != "" {
					in.SchoolID = &p.SchoolID
				}
				return b.AddFAQ(ctx, in)
			},
		},
		{
			Name:        "capture_lead",
			Description: "Record an enquiry as a lead",
			Params: []tool.Param{
				str("name", true), str("email", true), str("phone", true),
				str("school_interested", true), str("query_type", true), str("query_text", true),
			},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p leadParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return b.CreateLead(ctx, backend.LeadInput{
					Name:             p.Name,
					Email:            p.Email,
					Phone:            p.Phone,
					SchoolInterested: p.SchoolInterested,
					QueryType:        p.QueryType,
					QueryText:        p.QueryText,
				})
			},
		},
		{
			Name:        "get_all_leads",
			Description: "List every lead",
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				return b.Leads(ctx)
			},
		},
		{
			Name:        "update_lead_status",
			Description: "Change the status of a lead",
			Params:      []tool.Param{str("lead_id", true), str("status", true)},
			Invoke: func(ctx context.Context, args tool.Args) (interface{}, error) {
				var p leadStatusParams
				if err := decode(args, &p); err != nil {
					return nil, err
				}
				return b.UpdateLeadStatus(ctx, p.LeadID, p.Status)
			},
		},
	}
}

// schoolCall adapts a per-school backend call to a tool function
func schoolCall(call func(ctx context.Context, id string) (backend.Response, error)) tool.Func {
	return func(ctx context.Context, args tool.Args) (interface{}, error) {
		var p schoolParams
		if err := decode(args, &p); err != nil {
			return nil, err
		}
		return call(ctx, p.SchoolID)
	}
}

// feeStructure reduces a school record to {success, school_name, fees}
func feeStructure(ctx context.Context, b Backend, schoolID string) (backend.Response, error) {
	resp, err := b.School(ctx, schoolID)
	if err != nil {
		return nil, err
	}
	if !resp.Success() {
		return resp, nil
	}

	school, ok := resp.Data().(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("malformed school record for %s", schoolID)
	}
	name, _ := school["name"].(string)
	fees, ok := school["fee_structure"].(map[string]interface{})
	if name == "" || !ok {
		return nil, fmt.Errorf("school %s has no fee structure", schoolID)
	}

	return backend.Response{
		"success":     true,
		"school_name": name,
		"fees":        fees,
	}, nil
}
