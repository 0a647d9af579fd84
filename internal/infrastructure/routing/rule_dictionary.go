package routing

import (
	"strings"

	"github.com/Nyukimin/schooloo/internal/domain/routing"
)

// rule maps keywords to a tool.
// A rule matches when any keyword is present and every required word is present.
// A rule with branches acts as a guard: the first matching branch decides the tool.
type rule struct {
	keywords []string
	requires []string
	tool     string
	branches []rule
}

func (r rule) match(text string) (string, bool) {
	if len(r.keywords) > 0 && !containsAny(text, r.keywords) {
		return "", false
	}
	for _, w := range r.requires {
		if !strings.Contains(text, w) {
			return "", false
		}
	}
	if len(r.branches) == 0 {
		return r.tool, true
	}
	for _, b := range r.branches {
		if tool, ok := b.match(text); ok {
			return tool, true
		}
	}
	return "", false
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

// table is the ordered rule set of one role
type table struct {
	rules    []rule
	fallback string
}

// RuleDictionary is the keyword classifier for every role
type RuleDictionary struct {
	tables map[routing.Role]table
}

// NewRuleDictionary creates the RuleDictionary with the built-in tables
func NewRuleDictionary() *RuleDictionary {
	return &RuleDictionary{
		tables: map[routing.Role]table{
			routing.RoleParent: {
				rules: []rule{
					{keywords: []string{"best schools", "top schools"}, tool: "search_schools"},
					{keywords: []string{"fee", "cost"}, tool: "get_fee_structure"},
					{keywords: []string{"admission"}, tool: "get_admission_info"},
					{keywords: []string{"compare"}, tool: "compare_schools"},
					{keywords: []string{"nearby", "near me"}, tool: "get_nearby_schools"},
					{keywords: []string{"facilities", "hostel", "transport"}, tool: "get_school_details"},
				},
				fallback: "get_faqs",
			},
			routing.RoleStudent: {
				rules: []rule{
					{keywords: []string{"document", "requirement"}, tool: "get_required_documents"},
					{keywords: []string{"exam", "entrance"}, tool: "get_exam_pattern"},
					{keywords: []string{"eligible", "eligibility"}, tool: "get_eligibility_criteria"},
					{keywords: []string{"dress", "transport", "hostel", "location"}, tool: "get_faqs"},
					{requires: []string{"school", "details"}, tool: "get_school_details"},
				},
				fallback: "get_faqs",
			},
			routing.RoleAdmin: {
				rules: []rule{
					{
						keywords: []string{"lead"},
						branches: []rule{
							{keywords: []string{"new", "capture"}, tool: "capture_lead"},
							{keywords: []string{"all", "view", "get"}, tool: "get_all_leads"},
							{keywords: []string{"update", "status"}, tool: "update_lead_status"},
						},
					},
					{
						keywords: []string{"faq"},
						branches: []rule{
							{keywords: []string{"add", "new"}, tool: "add_faq"},
							{keywords: []string{"view", "get"}, tool: "get_faqs"},
						},
					},
				},
				fallback: "get_all_leads",
			},
		},
	}
}

// Classify returns the candidate tools for text, in rule order.
// Every matching rule contributes, so a tool may appear more than once.
// An unknown role is classified with the parent table.
func (d *RuleDictionary) Classify(text string, role routing.Role) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, routing.ErrEmptyQuery
	}

	t, ok := d.tables[role]
	if !ok {
		t = d.tables[routing.RoleParent]
	}

	lower := strings.ToLower(text)
	tools := make([]string, 0, 2)
	for _, r := range t.rules {
		if tool, ok := r.match(lower); ok {
			tools = append(tools, tool)
		}
	}

	if len(tools) == 0 {
		tools = append(tools, t.fallback)
	}
	return tools, nil
}

// Fallback returns the default tool of a role
func (d *RuleDictionary) Fallback(role routing.Role) string {
	t, ok := d.tables[role]
	if !ok {
		t = d.tables[routing.RoleParent]
	}
	return t.fallback
}

// Tools returns every tool name any table can produce
func (d *RuleDictionary) Tools() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var walk func(rules []rule)
	walk = func(rules []rule) {
		for _, r := range rules {
			add(r.tool)
			walk(r.branches)
		}
	}
	for _, role := range routing.Roles() {
		t := d.tables[role]
		walk(t.rules)
		add(t.fallback)
	}
	return out
}
