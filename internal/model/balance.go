package model

// DefaultMassTolerance is the default relative tolerance of a mass balance, in percent.
const DefaultMassTolerance = 1.0

// ComponentBalance is the conservation check for one material across a unit.
type ComponentBalance struct {
	Input      float64 `json:"input"`
	Output     float64 `json:"output"`
	Difference float64 `json:"difference"`
	Conversion float64 `json:"conversion"` // percent of input consumed
	Yield      float64 `json:"yield"`      // output as percent of input
}

// MassResult is the calculated_data payload of a MaterialBalance.
type MassResult struct {
	TotalInput        float64                     `json:"total_input"`
	TotalOutput       float64                     `json:"total_output"`
	Components        map[string]ComponentBalance `json:"components"`
	TotalDifference   float64                     `json:"total_difference"`
	DifferencePercent float64                     `json:"difference_percent"`
	IsBalanced        bool                        `json:"is_balanced"`
}

// MaterialBalance is the computed mass conservation record of one unit.
type MaterialBalance struct {
	UnitID        string      `json:"unit_id"`
	InputStreams  []string    `json:"input_streams"`
	OutputStreams []string    `json:"output_streams"`
	Status        Status      `json:"balance_status"`
	Tolerance     float64     `json:"tolerance"`
	Result        *MassResult `json:"calculated_data,omitempty"`
}

// NewMaterialBalance returns a pending record with the default tolerance.
func NewMaterialBalance(unitID string) MaterialBalance {
	return MaterialBalance{
		UnitID:        unitID,
		InputStreams:  []string{},
		OutputStreams: []string{},
		Status:        StatusPending,
		Tolerance:     DefaultMassTolerance,
	}
}

// References reports whether the stored result mentions materialID.
func (b MaterialBalance) References(materialID string) bool {
	if b.Result == nil {
		return false
	}
	_, ok := b.Result.Components[materialID]
	return ok
}

// HeatResult is the calculated_data payload of a HeatBalance.
type HeatResult struct {
	TotalInput  float64  `json:"total_input"`
	TotalOutput float64  `json:"total_output"`
	Difference  float64  `json:"difference"`
	Efficiency  *float64 `json:"efficiency"`
	IsBalanced  bool     `json:"is_balanced"`
}

// HeatBalance is the computed enthalpy record of one unit. Heat maps are
// keyed by contribution label ("stream_<id>", "reaction", "heat_loss") and
// hold kW.
type HeatBalance struct {
	UnitID              string             `json:"unit_id"`
	InputHeat           map[string]float64 `json:"input_heat"`
	OutputHeat          map[string]float64 `json:"output_heat"`
	HeatLoss            float64            `json:"heat_loss"`
	Efficiency          *float64           `json:"efficiency"`
	UtilityRequirements map[string]float64 `json:"utility_requirements"`
	Status              Status             `json:"balance_status"`
	Result              *HeatResult        `json:"calculated_data,omitempty"`
}

// WaterBalance is the computed water accounting record of one unit, in kg/h.
type WaterBalance struct {
	UnitID           string  `json:"unit_id"`
	FreshWaterIn     float64 `json:"fresh_water_in"`
	RecycledWaterIn  float64 `json:"recycled_water_in"`
	WaterConsumption float64 `json:"water_consumption"`
	WastewaterOut    float64 `json:"wastewater_out"`
	ReuseNote        string  `json:"reuse_possibilities"`
}
