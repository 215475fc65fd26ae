package sqlite

// FlightRecord is a row of the estado_vuelos table
type FlightRecord struct {
	ID          string `json:"flight"`
	Status      string `json:"status"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Date        string `json:"date"` // ISO calendar date, matched exactly
	Time        int    `json:"time"` // opaque departure time encoding, passed through
}

// ReservationRecord is a row of the reservas table
type ReservationRecord struct {
	Flight    string `json:"flight"`
	Seat      int    `json:"seat"`
	Passenger string `json:"passenger"`
}
