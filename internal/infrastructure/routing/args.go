package routing

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	locationPattern = regexp.MustCompile(`\b(?:in|near|at)\s+([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*)`)
	schoolIDPattern = regexp.MustCompile(`(?i)\bschool_\d+\b`)
	leadIDPattern   = regexp.MustCompile(`(?i)\b[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}\b`)
	statusPattern   = regexp.MustCompile(`(?i)\b(new|contacted|converted)\b`)
	coordPattern    = regexp.MustCompile(`(-?\d{1,2}\.\d+)\s*,\s*(-?\d{1,3}\.\d+)`)
	radiusPattern   = regexp.MustCompile(`(?i)\bwithin\s+(\d+(?:\.\d+)?)\s*km\b`)
)

// ExtractArgs pulls tool arguments out of free text.
// Only keys that were found are set.
func ExtractArgs(text string) map[string]interface{} {
	args := make(map[string]interface{})

	if m := locationPattern.FindStringSubmatch(text); m != nil {
		args["location"] = m[1]
	}

	if ids := schoolIDPattern.FindAllString(text, -1); len(ids) > 0 {
		unique := make([]string, 0, len(ids))
		seen := make(map[string]bool, len(ids))
		for _, id := range ids {
			id = strings.ToLower(id)
			if !seen[id] {
				seen[id] = true
				unique = append(unique, id)
			}
		}
		args["school_id"] = unique[0]
		args["school_ids"] = unique
	}

	if id := leadIDPattern.FindString(text); id != "" {
		args["lead_id"] = strings.ToLower(id)
	}

	// the last status word wins: "from new to contacted"
	if all := statusPattern.FindAllString(text, -1); len(all) > 0 {
		args["status"] = strings.ToLower(all[len(all)-1])
	}

	if m := coordPattern.FindStringSubmatch(text); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lon, err2 := strconv.ParseFloat(m[2], 64)
		if err1 == nil && err2 == nil {
			args["latitude"] = lat
			args["longitude"] = lon
		}
	}

	if m := radiusPattern.FindStringSubmatch(text); m != nil {
		if r, err := strconv.ParseFloat(m[1], 64); err == nil {
			args["radius_km"] = r
		}
	}

	return args
}
