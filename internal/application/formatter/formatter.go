// Package formatter renders tool results as role-specific text.
package formatter

import (
	"fmt"
	"strings"

	"github.com/Nyukimin/schooloo/internal/domain/routing"
	"github.com/Nyukimin/schooloo/internal/domain/tool"
)

// listLimit is how many records list-type results show
const listLimit = 3

// render lays out a successful result. ok=false falls back to raw JSON.
type render func(data interface{}) (string, bool)

type key struct {
	role routing.Role
	tool string
}

// Formatter maps (role, tool) pairs to renderers
type Formatter struct {
	rules map[key]render
}

// New creates a Formatter with the built-in rules
func New() *Formatter {
	f := &Formatter{rules: make(map[key]render)}

	f.add(routing.RoleParent, "search_schools", schoolList)
	f.add(routing.RoleParent, "get_nearby_schools", schoolList)
	f.add(routing.RoleParent, "get_fee_structure", feeStructure)
	f.add(routing.RoleParent, "compare_schools", comparison)
	f.add(routing.RoleParent, "get_school_details", schoolDetails)
	f.add(routing.RoleParent, "get_admission_info", admissionInfo)
	f.add(routing.RoleParent, "get_faqs", faqList)

	f.add(routing.RoleStudent, "get_required_documents", documents)
	f.add(routing.RoleStudent, "get_exam_pattern", examPattern)
	f.add(routing.RoleStudent, "get_eligibility_criteria", eligibility)
	f.add(routing.RoleStudent, "get_school_details", schoolDetails)
	f.add(routing.RoleStudent, "get_faqs", faqList)

	f.add(routing.RoleAdmin, "get_all_leads", leadSummary)
	f.add(routing.RoleAdmin, "capture_lead", capturedLead)
	f.add(routing.RoleAdmin, "update_lead_status", updatedLead)
	f.add(routing.RoleAdmin, "add_faq", addedFAQ)
	f.add(routing.RoleAdmin, "get_faqs", faqList)

	return f
}

func (f *Formatter) add(role routing.Role, toolName string, r render) {
	f.rules[key{role: role, tool: toolName}] = r
}

// Format renders result for role. It never fails: failed results, unexpected
// shapes and unmapped pairs come back as the JSON form of the result.
func (f *Formatter) Format(role routing.Role, toolName string, result tool.Result) (out string) {
	if !result.Success {
		return result.JSON()
	}
	r, ok := f.rules[key{role: role, tool: toolName}]
	if !ok {
		return result.JSON()
	}

	defer func() {
		if recover() != nil {
			out = result.JSON()
		}
	}()

	text, ok := r(result.Data)
	if !ok {
		return result.JSON()
	}
	return text
}

// Has reports whether a rule exists for the pair
func (f *Formatter) Has(role routing.Role, toolName string) bool {
	_, ok := f.rules[key{role: role, tool: toolName}]
	return ok
}

func schoolList(data interface{}) (string, bool) {
	schools, ok := records(data)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d schools:\n\n", len(schools))
	for i, s := range schools {
		if i == listLimit {
			break
		}
		name, ok1 := str(s, "name")
		location, ok2 := str(s, "location")
		phone, ok3 := str(s, "contact_phone")
		if !ok1 || !ok2 || !ok3 {
			return "", false
		}
		fmt.Fprintf(&b, "📍 %s\n", name)
		fmt.Fprintf(&b, "   Location: %s\n", location)
		fmt.Fprintf(&b, "   Contact: %s\n", phone)
		if d, ok := s["distance_km"].(float64); ok {
			fmt.Fprintf(&b, "   Distance: %.2f km\n", d)
		}
		b.WriteString("\n")
	}
	return b.String(), true
}

func feeStructure(data interface{}) (string, bool) {
	m, ok := data.(object)
	if !ok {
		return "", false
	}
	name, ok := str(m, "school_name")
	if !ok {
		return "", false
	}
	fees, ok := sortedPairs(m["fees"])
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Fee Structure for %s:\n\n", name)
	for _, p := range fees {
		fmt.Fprintf(&b, "  • %s: %s\n", p.key, p.value)
	}
	return b.String(), true
}

func comparison(data interface{}) (string, bool) {
	schools, ok := records(data)
	if !ok {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Comparison of %d Schools:\n\n", len(schools))
	for _, s := range schools {
		name, ok := str(s, "name")
		if !ok {
			return "", false
		}
		fees, ok := sortedPairs(s["fee_structure"])
		if !ok {
			return "", false
		}
		facilities, ok := stringList(s["facilities"])
		if !ok {
			return "", false
		}
		values := make([]string, 0, len(fees))
		for _, p := range fees {
			values = append(values, p.value)
		}
		fmt.Fprintf(&b, "🏫 %s\n", name)
		fmt.Fprintf(&b, "   Fees: %s\n", strings.Join(values, ", "))
		fmt.Fprintf(&b, "   Facilities: %s\n\n", strings.Join(firstN(facilities, 3), ", "))
	}
	return b.String(), true
}

func schoolDetails(data interface{}) (string, bool) {
	s, ok := payload(data)
	if !ok {
		return "", false
	}
	name, ok1 := str(s, "name")
	location, ok2 := str(s, "location")
	if !ok1 || !ok2 {
		return "", false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🏫 %s\n", name)
	fmt.Fprintf(&b, "Location: %s\n", location)
	if year, ok := s["established_year"].(float64); ok && year > 0 {
		fmt.Fprintf(&b, "Established: %d\n", int(year))
	}
	if classes, ok := stringList(s["classes_offered"]); ok && len(classes) > 0 {
		fmt.Fprintf(&b, "Classes: %s\n", strings.Join(classes, ", "))
	}
	if facilities, ok := stringList(s["facilities"]); ok && len(facilities) > 0 {
		fmt.Fprintf(&b, "Facilities: %s\n", strings.Join(facilities, ", "))
	}
	if phone, ok := str(s, "contact_phone"); ok && phone != "" {
		fmt.Fprintf(&b, "Phone: %s\n", phone)
	}
	if email, ok := str(s, "contact_email"); ok && email != "" {
		fmt.Fprintf(&b, "Email: %s\n", email)
	}
	if site, ok := str(s, "website"); ok && site != "" {
		fmt.Fprintf(&b, "Website: %s\n", site)
	}
	return b.String(), true
}

func admissionInfo(data interface{}) (string, bool) {
	a, ok := payload(data)
	if !ok {
		return "", false
	}
	if _, ok := a["school_id"].(string); !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Admission Information:\n\n")
	if deadline, ok := str(a, "admission_deadline"); ok && deadline != "" {
		fmt.Fprintf(&b, "Deadline: %s\n", deadline)
	}
	if required, ok := a["entrance_exam_required"].(bool); ok {
		if required {
			exam, _ := str(a, "exam_name")
			fmt.Fprintf(&b, "Entrance Exam: %s\n", exam)
		} else {
			b.WriteString("Entrance Exam: not required\n")
		}
	}
	if docs, ok := stringList(a["required_documents"]); ok && len(docs) > 0 {
		fmt.Fprintf(&b, "Documents: %s\n", strings.Join(docs, ", "))
	}
	return b.String(), true
}

func faqList(data interface{}) (string, bool) {
	faqs, ok := records(data)
	if !ok {
		return "", false
	}
	if len(faqs) == 0 {
		return "No FAQs found.", true
	}

	var b strings.Builder
	b.WriteString("Frequently Asked Questions:\n\n")
	for _, f := range faqs {
		q, ok1 := str(f, "question")
		a, ok2 := str(f, "answer")
		if !ok1 || !ok2 {
			return "", false
		}
		fmt.Fprintf(&b, "Q: %s\nA: %s\n\n", q, a)
	}
	return b.String(), true
}

func documents(data interface{}) (string, bool) {
	m, ok := data.(object)
	if !ok {
		return "", false
	}
	docs, ok := stringList(m["documents"])
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Required Documents for Admission:\n\n")
	for i, d := range docs {
		fmt.Fprintf(&b, "%d. %s\n", i+1, d)
	}
	return b.String(), true
}

func examPattern(data interface{}) (string, bool) {
	m, ok := data.(object)
	if !ok {
		return "", false
	}
	required, ok := m["exam_required"].(bool)
	if !ok {
		return "", false
	}
	if !required {
		return "No entrance exam is required for this school.", true
	}
	name, ok1 := str(m, "exam_name")
	pattern, ok2 := str(m, "exam_pattern")
	if !ok1 || !ok2 {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Entrance Exam Details:\n\n")
	fmt.Fprintf(&b, "Exam Name: %s\n", name)
	fmt.Fprintf(&b, "Pattern: %s\n", pattern)
	return b.String(), true
}

func eligibility(data interface{}) (string, bool) {
	m, ok := data.(object)
	if !ok {
		return "", false
	}
	criteria, ok := sortedPairs(m["eligibility"])
	if !ok {
		return "", false
	}

	var b strings.Builder
	b.WriteString("Eligibility Criteria:\n\n")
	for _, p := range criteria {
		fmt.Fprintf(&b, "• %s: %s\n", titleKey(p.key), p.value)
	}
	return b.String(), true
}

func leadSummary(data interface{}) (string, bool) {
	leads, ok := records(data)
	if !ok {
		return "", false
	}

	var order []string
	counts := make(map[string]int)
	for _, l := range leads {
		status, ok := str(l, "status")
		if !ok || status == "" {
			status = "unknown"
		}
		if _, seen := counts[status]; !seen {
			order = append(order, status)
		}
		counts[status]++
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Total Leads: %d\n\n", len(leads))
	for _, status := range order {
		fmt.Fprintf(&b, "%s: %d\n", strings.ToUpper(status), counts[status])
	}
	return b.String(), true
}

func capturedLead(data interface{}) (string, bool) {
	l, ok := payload(data)
	if !ok {
		return "", false
	}
	name, ok := str(l, "name")
	if !ok {
		return "", false
	}
	email, _ := str(l, "email")
	phone, _ := str(l, "phone")
	school, _ := str(l, "school_interested")

	var b strings.Builder
	b.WriteString("✅ Lead Captured Successfully!\n\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	fmt.Fprintf(&b, "Email: %s\n", email)
	fmt.Fprintf(&b, "Phone: %s\n", phone)
	fmt.Fprintf(&b, "School: %s\n", school)
	return b.String(), true
}

func updatedLead(data interface{}) (string, bool) {
	l, ok := payload(data)
	if !ok {
		return "", false
	}
	id, ok1 := str(l, "id")
	status, ok2 := str(l, "status")
	if !ok1 || !ok2 {
		return "", false
	}
	name, _ := str(l, "name")
	return fmt.Sprintf("✅ Lead %s (%s) is now %s.\n", id, name, strings.ToUpper(status)), true
}

func addedFAQ(data interface{}) (string, bool) {
	f, ok := payload(data)
	if !ok {
		return "", false
	}
	q, ok1 := str(f, "question")
	category, ok2 := str(f, "category")
	if !ok1 || !ok2 {
		return "", false
	}
	return fmt.Sprintf("✅ FAQ added to %s:\nQ: %s\n", category, q), true
}
