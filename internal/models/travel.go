// internal/models/travel.go
package models

type FlightSegment struct {
	Carrier          string `json:"carrier"`
	FlightNumber     string `json:"flightNumber"`
	DepartureAirport string `json:"departureAirport"`
	DepartureTime    string `json:"departureTime"`
	ArrivalAirport   string `json:"arrivalAirport"`
	ArrivalTime      string `json:"arrivalTime"`
	Duration         string `json:"duration,omitempty"`
}

// FlightLeg is one direction of travel (outbound or return).
type FlightLeg struct {
	Duration string          `json:"duration,omitempty"`
	Segments []FlightSegment `json:"segments"`
}

type FlightOption struct {
	ID       string      `json:"id"`
	Price    string      `json:"price"`
	Currency string      `json:"currency"`
	Airlines []string    `json:"airlines,omitempty"`
	Legs     []FlightLeg `json:"legs"`
}

type ArithmeticResult struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
	Result    float64 `json:"result"`
}

// Tips holds the three destination tips. Nil fields are unfilled.
type Tips struct {
	ID             string  `json:"id"`
	Destination    string  `json:"destination"`
	Transportation *string `json:"transportation"`
	Safety         *string `json:"safety"`
	WhenToVisit    *string `json:"whenToVisit"`
}

// Complete reports whether every tip is present and non-empty.
func (t Tips) Complete() bool {
	return deref(t.Transportation) != "" && deref(t.Safety) != "" && deref(t.WhenToVisit) != ""
}
