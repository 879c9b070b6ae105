// Package models defines the typed records shared across the orchestrator,
// the chain engine, the compatibility evaluator, and the chain analyzer.
// Every boundary in this system passes these structs, never free-form maps.
package models

// FitLogic selects how a device's compatibility is judged.
type FitLogic string

const (
	FitLogicMath   FitLogic = "math"
	FitLogicCompat FitLogic = "compat"
)

// ConicalCategory is a level label encoding nesting position: L0 (outermost)
// through L5 (innermost), or LW for a guidewire.
type ConicalCategory string

const (
	LevelL0 ConicalCategory = "L0"
	LevelL1 ConicalCategory = "L1"
	LevelL2 ConicalCategory = "L2"
	LevelL3 ConicalCategory = "L3"
	LevelL4 ConicalCategory = "L4"
	LevelL5 ConicalCategory = "L5"
	LevelLW ConicalCategory = "LW"
)

// Rank returns the numeric nesting depth used to enforce the chain invariant
// level[i] >= level[i+1] (higher numbers nest inside lower numbers). LW
// (guidewire) is treated as the innermost-possible level.
func (c ConicalCategory) Rank() int {
	switch c {
	case LevelL0:
		return 0
	case LevelL1:
		return 1
	case LevelL2:
		return 2
	case LevelL3:
		return 3
	case LevelL4:
		return 4
	case LevelL5:
		return 5
	case LevelLW:
		return 6
	default:
		return -1
	}
}

// DiameterUnit is one of the three units a diameter field is recorded in.
type DiameterUnit string

const (
	UnitInches DiameterUnit = "in"
	UnitMM     DiameterUnit = "mm"
	UnitFrench DiameterUnit = "fr"
)

// Measurement carries the same physical value recorded in every unit the
// evaluator needs. A nil pointer means the catalog did not populate that
// field for this device; the evaluator treats it as NA, never as zero.
type Measurement struct {
	Inches *float64 `json:"inches,omitempty"`
	MM     *float64 `json:"mm,omitempty"`
	French *float64 `json:"french,omitempty"`
}

// Value returns the recorded value in the given unit, or nil if unset.
func (m Measurement) Value(unit DiameterUnit) *float64 {
	switch unit {
	case UnitInches:
		return m.Inches
	case UnitMM:
		return m.MM
	case UnitFrench:
		return m.French
	default:
		return nil
	}
}

// CompatRange supports the "=" comparison operator's range form (e.g. a
// catheter-required-ID rule of "0.017-0.021").
type CompatRange struct {
	Low  float64
	High float64
}

// CompatField is one manufacturer-declared compatibility field, recorded in
// all three diameter units. Range is only meaningful when the comparison
// operator for that field is "=" with a low-high range.
type CompatField struct {
	Measurement
	Range *CompatRange
}

// Dimensions carries every redundantly-recorded measurement for a device.
type Dimensions struct {
	InnerDiameter       Measurement
	OuterDiameterDistal Measurement
	OuterDiameterProx   Measurement
	LengthCM            *float64

	// Compatibility-table fields (manufacturer-declared), each in all three
	// diameter units (or a range for the "=" operator).
	MaxCompatibleWireOD    *CompatField
	MaxCompatibleCatheterOD *CompatField
	RequiredCatheterID     *CompatField
	MinGuideCatheterSheathID *CompatField
}

// Device is an immutable catalog record.
type Device struct {
	ID              string
	ProductName     string
	DeviceName      string
	Manufacturer    string
	Aliases         []string
	CategoryType    string
	ConicalCategory ConicalCategory
	LogicCategory   []string // space-separated category tags, split
	FitLogic        FitLogic
	Dimensions      Dimensions
}

// HasCategory reports whether tag is one of the device's logic-category tags.
func (d *Device) HasCategory(tag string) bool {
	for _, c := range d.LogicCategory {
		if c == tag {
			return true
		}
	}
	return false
}

// DeviceGroup maps one product name to its physical size variants, which
// share a conical category.
type DeviceGroup struct {
	ProductName     string
	VariantIDs      []string
	ConicalCategory ConicalCategory
}
