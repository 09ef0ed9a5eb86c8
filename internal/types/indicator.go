package types

type IndicatorType string

const (
	IndicatorTypeEMA        IndicatorType = "ema"
	IndicatorTypeSMA        IndicatorType = "sma"
	IndicatorTypeMACD       IndicatorType = "macd"
	IndicatorTypeRSI        IndicatorType = "rsi"
	IndicatorTypeForceIndex IndicatorType = "force_index"
	IndicatorTypePivots     IndicatorType = "support_resistance"
)

// PivotKind tells whether a pivot is a local high or a local low.
type PivotKind string

const (
	PivotKindSupport    PivotKind = "support"
	PivotKindResistance PivotKind = "resistance"
)

// Pivot is a local extremum found by the support/resistance scan.
type Pivot struct {
	// Price is the extreme open or close at the pivot bar
	Price float64 `json:"price"`
	// Index is the bar index, newest first
	Index int `json:"index"`
	// Kind is support or resistance
	Kind PivotKind `json:"kind"`
}
