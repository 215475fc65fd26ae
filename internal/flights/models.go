package flights

// Status is the closed set of flight states. Values read from storage pass
// through unchanged; StatusUnknown is synthesized for flights with no record.
type Status string

const (
	StatusActive    Status = "Active"
	StatusCancelled Status = "Cancelled"
	StatusDelayed   Status = "Delayed"
	StatusUnknown   Status = "Unknown"
)

// StatusView is the result of a flight status lookup. For an unknown flight
// the identifier is echoed back and every other field is null.
type StatusView struct {
	Flight      string  `json:"flight"`
	Status      Status  `json:"status"`
	Origin      *string `json:"origin"`
	Destination *string `json:"destination"`
	Date        *string `json:"date"`
	Time        *int    `json:"time"`
}

// FlightOption is one flight matching a route query, together with the first
// available seat on it. Seat is null when the flight is full.
type FlightOption struct {
	Flight string `json:"flight"`
	Time   int    `json:"time"`
	Status Status `json:"status"`
	Seat   *int   `json:"seat"`
}

// OptionsView is the result of a route options query
type OptionsView struct {
	Origin      string         `json:"origin"`
	Destination string         `json:"destination"`
	Date        string         `json:"date"`
	Options     []FlightOption `json:"options"`
}

// ReservationView confirms a successful reserve or cancel operation
type ReservationView struct {
	Flight    string `json:"flight"`
	Seat      int    `json:"seat"`
	Passenger string `json:"passenger"`
	Status    string `json:"status"` // "Reserved" or "Cancelled"
}

// VerificationView reports whether a passenger holds a seat on a flight
type VerificationView struct {
	Flight    string `json:"flight"`
	Passenger string `json:"passenger"`
	Reserved  bool   `json:"reserved"`
	Seat      *int   `json:"seat"`
}
