package domain

// Record is a process variable associated with a device.
type Record struct {
	Name string `json:"name" mapstructure:"name"`
	Kind string `json:"kind" mapstructure:"kind"`
}

// Entity is one inventory item, keyed by its identifier (the happi item name).
// Raw keeps the complete metadata object for templates.
type Entity struct {
	Name        string         `json:"name" mapstructure:"name"`
	DeviceClass string         `json:"device_class" mapstructure:"device_class"`
	Args        []any          `json:"args,omitempty" mapstructure:"args"`
	Kwargs      map[string]any `json:"kwargs,omitempty" mapstructure:"kwargs"`
	Records     []Record       `json:"-" mapstructure:"-"`
	Raw         map[string]any `json:"-" mapstructure:"-"`
}

// ParameterKind mirrors how a class constructor accepts an argument.
type ParameterKind string

const (
	// ParamPositional accepts the argument by position or by keyword.
	ParamPositional ParameterKind = "positional"
	// ParamKeywordOnly accepts the argument by keyword only.
	ParamKeywordOnly ParameterKind = "keyword"
	// ParamVarPositional collects extra positional arguments.
	ParamVarPositional ParameterKind = "var_positional"
	// ParamVarKeyword collects extra keyword arguments.
	ParamVarKeyword ParameterKind = "var_keyword"
)

// Parameter describes one constructor parameter of a device class.
type Parameter struct {
	Name       string        `json:"name"`
	Kind       ParameterKind `json:"kind,omitempty"`
	Default    any           `json:"default,omitempty"`
	HasDefault bool          `json:"has_default,omitempty"`
}

// ClassInfo is the structured view of a device class returned by a class provider.
type ClassInfo struct {
	Path       string      `json:"path"`
	Name       string      `json:"name"`
	Doc        string      `json:"doc"`
	Parameters []Parameter `json:"parameters,omitempty"`
}
