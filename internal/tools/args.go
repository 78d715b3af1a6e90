package tools

// Accessors for argument maps that have already passed Validate. Tool
// implementations use these instead of repeating type assertions; a failed
// assertion yields the zero value, which validation makes unreachable.

// StringArg returns the named string argument from a validated map.
func StringArg(args map[string]any, name string) string {
	v, _ := args[name].(string)
	return v
}

// IntArg returns the named integer argument from a validated map, or def
// when the field is absent.
func IntArg(args map[string]any, name string, def int) int {
	raw, ok := args[name]
	if !ok {
		return def
	}
	v, err := asInt(raw)
	if err != nil {
		return def
	}
	return v
}
