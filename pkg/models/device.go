package models

import (
	"fmt"
	"sort"
	"strings"
)

// KindTag identifies which variant a Kind holds
type KindTag int

const (
	KindNone KindTag = iota
	KindPump
	KindLight
	KindSensor
)

// Wire values for the two actuator types; every other value is a sensor subtype
const (
	PumpValue  = "pump"
	LightValue = "light"
)

// DefaultStatus is sent with every new device
const DefaultStatus = "able"

// Kind is the device type chosen on the add-device form.
// The zero value means no type has been selected.
type Kind struct {
	tag     KindTag
	subtype string
}

// Pump returns the pump kind
func Pump() Kind { return Kind{tag: KindPump} }

// Light returns the light kind
func Light() Kind { return Kind{tag: KindLight} }

// Sensor returns a sensor kind for the given subtype (e.g. "Light Sensor")
func Sensor(subtype string) Kind { return Kind{tag: KindSensor, subtype: subtype} }

// ParseKind resolves a form value into a Kind. "pump" and "light" map to
// their actuators, anything else non-empty is treated as a sensor subtype.
// An empty value yields the zero Kind (nothing selected).
func ParseKind(value string) Kind {
	switch value {
	case "":
		return Kind{}
	case PumpValue:
		return Pump()
	case LightValue:
		return Light()
	default:
		return Sensor(value)
	}
}

// Tag returns the variant tag
func (k Kind) Tag() KindTag { return k.tag }

// Subtype returns the sensor subtype, empty for non-sensor kinds
func (k Kind) Subtype() string { return k.subtype }

// IsZero reports whether no kind has been selected
func (k Kind) IsZero() bool { return k.tag == KindNone }

// Value returns the form value this kind was parsed from
func (k Kind) Value() string {
	switch k.tag {
	case KindPump:
		return PumpValue
	case KindLight:
		return LightValue
	case KindSensor:
		return k.subtype
	default:
		return ""
	}
}

// String implements fmt.Stringer
func (k Kind) String() string {
	if k.IsZero() {
		return "none"
	}
	return k.Value()
}

// Endpoint returns the relative API endpoint that creates devices of this kind
func (k Kind) Endpoint() string {
	switch k.tag {
	case KindPump:
		return "pump"
	case KindLight:
		return "light"
	case KindSensor:
		return "sensor"
	default:
		return ""
	}
}

// sensorThresholds holds the default alert threshold per sensor subtype
var sensorThresholds = map[string]float64{
	"Light Sensor":         10,
	"Temperature Sensor":   30.5,
	"Soil Moisture Sensor": 70,
	"Humidity Sensor":      70,
}

// SensorThreshold returns the default alert threshold for a sensor subtype.
// ok is false for subtypes without a default.
func SensorThreshold(subtype string) (threshold float64, ok bool) {
	threshold, ok = sensorThresholds[subtype]
	return threshold, ok
}

// SensorSubtypes returns the known sensor subtypes in sorted order
func SensorSubtypes() []string {
	subtypes := make([]string, 0, len(sensorThresholds))
	for s := range sensorThresholds {
		subtypes = append(subtypes, s)
	}
	sort.Strings(subtypes)
	return subtypes
}

// Draft is a device being created, before the API call resolves
type Draft struct {
	Name string
	Kind Kind
}

// Validate checks that a kind is selected and the trimmed name is non-empty
func (d Draft) Validate() error {
	if d.Kind.IsZero() {
		return fmt.Errorf("device type is required")
	}
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("device name is required")
	}
	return nil
}

// KindOption is an entry of the device type picker
type KindOption struct {
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// KindOptions lists the selectable device types in display order
var KindOptions = []KindOption{
	{Label: "Máy bơm", Value: PumpValue},
	{Label: "Đèn", Value: LightValue},
	{Label: "Cảm biến ánh sáng", Value: "Light Sensor"},
	{Label: "Cảm biến nhiệt độ", Value: "Temperature Sensor"},
	{Label: "Cảm biến độ ẩm đất", Value: "Soil Moisture Sensor"},
	{Label: "Cảm biến độ ẩm không khí", Value: "Humidity Sensor"},
}
