package tools

// Declaration is the description of one tool as sent to the language model.
// The declarations are generated from the same tables the validator uses, so
// the model can never be led to request a tool the gateway would not accept.
type Declaration struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Parameters  JSONSchema `json:"parameters"`
}

// JSONSchema is a structured representation of the JSON Schema subset used
// for tool parameters. Using a struct instead of map[string]interface{}
// keeps declarations type-safe and impossible to misspell.
type JSONSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*JSONSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Minimum     *int                   `json:"minimum,omitempty"`
	Maximum     *int                   `json:"maximum,omitempty"`
	MaxLength   *int                   `json:"maxLength,omitempty"`
}

// Declarations returns the declaration of every whitelisted tool in stable
// catalog order.
func Declarations() []Declaration {
	decls := make([]Declaration, 0, len(allToolNames))
	for _, name := range allToolNames {
		decls = append(decls, declarationFor(name))
	}
	return decls
}

func declarationFor(name ToolName) Declaration {
	if !name.TakesArguments() {
		return Declaration{
			Name:        string(name),
			Description: noArgDescriptions[name],
			Parameters:  JSONSchema{Type: "object", Properties: map[string]*JSONSchema{}},
		}
	}

	spec := argSpecs[name]
	params := JSONSchema{
		Type:       "object",
		Properties: make(map[string]*JSONSchema, len(spec.fields)),
	}
	for _, f := range spec.fields {
		params.Properties[f.name] = propertyFor(f)
		if f.required {
			params.Required = append(params.Required, f.name)
		}
	}
	return Declaration{
		Name:        string(name),
		Description: spec.description,
		Parameters:  params,
	}
}

func propertyFor(f fieldSpec) *JSONSchema {
	switch f.kind {
	case kindInt:
		minimum, maximum := f.min, f.max
		return &JSONSchema{
			Type:        "integer",
			Description: f.description,
			Minimum:     &minimum,
			Maximum:     &maximum,
		}
	default:
		maxLen := f.maxLen
		return &JSONSchema{
			Type:        "string",
			Description: f.description,
			MaxLength:   &maxLen,
		}
	}
}
