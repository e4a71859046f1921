package dto

// HappiItem is the part of a happi inventory entry the generator reads.
// It uses "mapstructure" tags to match the keys of the whatrecord happi plugin output.
// Everything else in the entry stays available to templates through the raw map.
type HappiItem struct {
	Name        string         `json:"name" mapstructure:"name"`
	DeviceClass string         `json:"device_class" mapstructure:"device_class"`
	Args        []any          `json:"args" mapstructure:"args"`
	Kwargs      map[string]any `json:"kwargs" mapstructure:"kwargs"`
}

// RecordRef is one entry selected from "_whatrecord.records".
type RecordRef struct {
	Name string `json:"name" mapstructure:"name"`
	Kind string `json:"kind" mapstructure:"kind"`
}
