// internal/models/results.go
package models

type ResultType string

const (
	ResultFlights     ResultType = "flights"
	ResultHotels      ResultType = "hotels"
	ResultRestaurants ResultType = "restaurants"
	ResultActivities  ResultType = "activities"
	ResultNature      ResultType = "nature"
	ResultSelfie      ResultType = "selfie"
	ResultArithmetic  ResultType = "arithmetic"
	ResultTips        ResultType = "tips"
)

// Result is the structured payload of a turn. Every implementation serializes
// its ResultType under "type".
type Result interface {
	ResultType() ResultType
}

type FlightResults struct {
	Type    ResultType     `json:"type"`
	Summary string         `json:"summary,omitempty"`
	Options []FlightOption `json:"options"`
}

func (FlightResults) ResultType() ResultType { return ResultFlights }

func NewFlightResults(summary string, options []FlightOption) *FlightResults {
	return &FlightResults{Type: ResultFlights, Summary: summary, Options: options}
}

type HotelResults struct {
	Type    ResultType `json:"type"`
	Summary string     `json:"summary,omitempty"`
	Options []Hotel    `json:"options"`
}

func (HotelResults) ResultType() ResultType { return ResultHotels }

type RestaurantResults struct {
	Type    ResultType   `json:"type"`
	Summary string       `json:"summary,omitempty"`
	Options []Restaurant `json:"options"`
}

func (RestaurantResults) ResultType() ResultType { return ResultRestaurants }

type ActivityResults struct {
	Type    ResultType `json:"type"`
	Summary string     `json:"summary,omitempty"`
	Options []Activity `json:"options"`
}

func (ActivityResults) ResultType() ResultType { return ResultActivities }

type NatureResults struct {
	Type    ResultType   `json:"type"`
	Summary string       `json:"summary,omitempty"`
	Options []NatureSpot `json:"options"`
}

func (NatureResults) ResultType() ResultType { return ResultNature }

type SelfieResults struct {
	Type    ResultType   `json:"type"`
	Summary string       `json:"summary,omitempty"`
	Options []SelfieSpot `json:"options"`
}

func (SelfieResults) ResultType() ResultType { return ResultSelfie }

type ArithmeticResults struct {
	Type    ResultType         `json:"type"`
	Summary string             `json:"summary,omitempty"`
	Options []ArithmeticResult `json:"options"`
}

func (ArithmeticResults) ResultType() ResultType { return ResultArithmetic }

func NewArithmeticResults(summary string, options []ArithmeticResult) *ArithmeticResults {
	return &ArithmeticResults{Type: ResultArithmetic, Summary: summary, Options: options}
}

type TipsResult struct {
	Type ResultType `json:"type"`
	Tips Tips       `json:"tips"`
}

func (TipsResult) ResultType() ResultType { return ResultTips }

func NewTipsResult(tips Tips) *TipsResult {
	return &TipsResult{Type: ResultTips, Tips: tips}
}
