package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Outcome is the result of validating a tool call. Reason is set only when
// the call was rejected.
type Outcome struct {
	OK     bool
	Reason string
}

// Validate checks a raw (tool name, argument map) pair against the catalog.
// It is a pure function: no I/O, no side effects, and deterministic for a
// given input. Checks run in order and short-circuit on the first failure:
//
//  1. the name must be in the whitelist (the rejection lists every valid
//     identifier so the model can self-correct),
//  2. no-argument tools must be called with an empty argument map,
//  3. argument-taking tools must satisfy their schema field by field.
func Validate(name string, args map[string]any) Outcome {
	tool, ok := ParseToolName(name)
	if !ok {
		return Outcome{Reason: fmt.Sprintf("Tool '%s' not in whitelist. Available: [%s]",
			name, strings.Join(AllToolNameStrings(), ", "))}
	}

	if !tool.TakesArguments() {
		if len(args) > 0 {
			return Outcome{Reason: fmt.Sprintf("Tool '%s' does not accept arguments", name)}
		}
		return Outcome{OK: true}
	}

	spec, ok := argSpecs[tool]
	if !ok {
		// Unreachable while ParseToolName and argSpecs stay in sync; kept as
		// an explicit guard rather than a panic.
		return Outcome{Reason: fmt.Sprintf("No schema defined for tool '%s'", name)}
	}

	for _, field := range spec.fields {
		if err := validateField(field, args); err != nil {
			return Outcome{Reason: fmt.Sprintf("Invalid arguments for '%s': %v", name, err)}
		}
	}
	return Outcome{OK: true}
}

func validateField(f fieldSpec, args map[string]any) error {
	raw, present := args[f.name]
	if !present {
		if f.required {
			return fmt.Errorf("missing required field '%s'", f.name)
		}
		return nil
	}

	switch f.kind {
	case kindString:
		v, ok := raw.(string)
		if !ok {
			return fmt.Errorf("field '%s' must be a string", f.name)
		}
		return validateString(f, v)
	case kindInt:
		v, err := asInt(raw)
		if err != nil {
			return fmt.Errorf("field '%s' %v", f.name, err)
		}
		if v < f.min || v > f.max {
			return fmt.Errorf("field '%s' must be between %d and %d", f.name, f.min, f.max)
		}
		return nil
	default:
		return fmt.Errorf("field '%s' has an unsupported kind", f.name)
	}
}

func validateString(f fieldSpec, v string) error {
	if len(v) < f.minLen {
		if f.minLen <= 1 {
			return fmt.Errorf("field '%s' must not be empty", f.name)
		}
		return fmt.Errorf("field '%s' must be at least %d characters", f.name, f.minLen)
	}
	if len(v) > f.maxLen {
		return fmt.Errorf("field '%s' must be at most %d characters", f.name, f.maxLen)
	}

	switch f.rule {
	case ruleNoURLs:
		if strings.Contains(v, "://") || strings.HasPrefix(v, "http") {
			return fmt.Errorf("field '%s' cannot contain URLs", f.name)
		}
	case rulePlaceName:
		if !placeNamePattern.MatchString(v) {
			return fmt.Errorf("field '%s' contains invalid characters", f.name)
		}
	}
	return nil
}

// asInt normalizes the integer encodings seen in decoded JSON argument maps.
// Fractional numbers are rejected rather than truncated.
func asInt(raw any) (int, error) {
	switch v := raw.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("must be an integer")
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("must be an integer")
	}
}
