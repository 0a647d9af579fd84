package tool

import (
	"context"
	"fmt"
)

// ParamType is the JSON type of a tool parameter
type ParamType string

const (
	TypeString      ParamType = "string"
	TypeNumber      ParamType = "number"
	TypeStringArray ParamType = "array"
)

// Param is one entry of a tool's parameter schema
type Param struct {
	Name     string
	Type     ParamType
	Required bool
}

// Args is the structured argument bag passed to a tool
type Args map[string]interface{}

// Func invokes a backend operation. The returned value is the decoded JSON payload.
type Func func(ctx context.Context, args Args) (interface{}, error)

// Descriptor binds a tool name and its parameter schema to an operation
type Descriptor struct {
	Name        string
	Description string
	Params      []Param
	Invoke      Func
}

// MissingParam returns the first required parameter absent from args
func (d Descriptor) MissingParam(args Args) (string, bool) {
	for _, p := range d.Params {
		if !p.Required {
			continue
		}
		v, ok := args[p.Name]
		if !ok || v == nil {
			return p.Name, true
		}
		if s, isString := v.(string); isString && s == "" {
			return p.Name, true
		}
	}
	return "", false
}

// validate checks the descriptor shape at registration time
func (d Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("tool name is required")
	}
	if d.Invoke == nil {
		return fmt.Errorf("tool %s: invoke function is required", d.Name)
	}
	seen := make(map[string]bool, len(d.Params))
	for _, p := range d.Params {
		if p.Name == "" {
			return fmt.Errorf("tool %s: parameter name is required", d.Name)
		}
		if seen[p.Name] {
			return fmt.Errorf("tool %s: duplicate parameter %s", d.Name, p.Name)
		}
		seen[p.Name] = true
	}
	return nil
}
