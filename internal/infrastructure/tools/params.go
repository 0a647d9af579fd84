package tools

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/Nyukimin/schooloo/internal/domain/tool"
)

type searchParams struct {
	Location string  `mapstructure:"location"`
	RadiusKM float64 `mapstructure:"radius_km"`
}

type nearbyParams struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
	RadiusKM  float64 `mapstructure:"radius_km"`
}

type schoolParams struct {
	SchoolID string `mapstructure:"school_id"`
}

type compareParams struct {
	SchoolIDs []string `mapstructure:"school_ids"`
}

type faqQueryParams struct {
	Category string `mapstructure:"category"`
}

type addFAQParams struct {
	Question string `mapstructure:"question"`
	Answer   string `mapstructure:"answer"`
	Category string `mapstructure:"category"`
	SchoolID string `mapstructure:"school_id"`
}

type leadParams struct {
	Name             string `mapstructure:"name"`
	Email            string `mapstructure:"email"`
	Phone            string `mapstructure:"phone"`
	SchoolInterested string `mapstructure:"school_interested"`
	QueryType        string `mapstructure:"query_type"`
	QueryText        string `mapstructure:"query_text"`
}

type leadStatusParams struct {
	LeadID string `mapstructure:"lead_id"`
	Status string `mapstructure:"status"`
}

// decode copies an argument bag into a parameter struct.
// Numbers given as strings are converted and a comma-separated string fills a slice.
func decode(args tool.Args, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToSliceHookFunc(","),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(map[string]interface{}(args)); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}
	return nil
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
