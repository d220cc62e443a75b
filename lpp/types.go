package lpp

import "github.com/lpp-tools/lpp-recorder/routename"

// StationCode is the public station identifier (the API's ref_id), used in
// subsequent requests. It is opaque: only compared and hashed, never
// interpreted.
type StationCode string

// RouteID identifies all directions of one route. Opaque.
type RouteID string

// TripID identifies a single direction of one route. Opaque.
type TripID string

// VehicleID is the vendor's internal vehicle identifier. Opaque.
type VehicleID string

// GeographicLocation is a position in the geographical coordinate system.
type GeographicLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Station describes one bus station from the station-details endpoint.
//
// The API also exposes an internal integer ID (int_id) next to the public
// code (ref_id); only the code is usable in other requests.
type Station struct {
	Code       StationCode        `json:"station_code"`
	InternalID int                `json:"internal_id"`
	Name       string             `json:"name"`
	Location   GeographicLocation `json:"location"`
}

// TripOnStation describes one trip stopping at a specific station, keyed to
// that station by the call that produced it.
type TripOnStation struct {
	RouteID      RouteID             `json:"route_id"`
	TripID       TripID              `json:"trip_id"`
	Route        routename.RouteName `json:"route"`
	ShortName    *string             `json:"short_trip_name"`
	FullName     string              `json:"trip_name"`
	EndsInGarage bool                `json:"ends_in_garage"`
}

// TimetableEntry is one scheduled arrival. Hour runs 1 through 24, matching
// the vendor's timetable convention.
type TimetableEntry struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// StationOnTimetable is one stop along a trip as listed in a timetable
// response.
type StationOnTimetable struct {
	Code       StationCode `json:"station_code"`
	Name       string      `json:"name"`
	StopNumber int         `json:"stop_number"`
}

// TripTimetable is the timetable of one trip at one station, together with
// the trip's full stop list.
type TripTimetable struct {
	Route         routename.RouteName  `json:"route"`
	TripName      string               `json:"trip_name"`
	ShortTripName string               `json:"short_trip_name"`
	EndsInGarage  bool                 `json:"ends_in_garage"`
	Entries       []TimetableEntry     `json:"entries"`
	Stations      []StationOnTimetable `json:"stations"`
}

// RouteGroupTimetable groups the trip timetables of one route family at one
// station.
type RouteGroupTimetable struct {
	BaseRoute      routename.BaseRouteName `json:"base_route"`
	TripTimetables []TripTimetable         `json:"trip_timetables"`
}

// RouteShape is the GeoJSON LineString geometry of one trip's path.
type RouteShape struct {
	// Coordinates are (longitude, latitude) pairs along the path.
	Coordinates [][2]float64 `json:"coordinates"`

	// BoundingBox is (min longitude, min latitude, max longitude, max
	// latitude).
	BoundingBox [4]float64 `json:"bounding_box"`
}

// RouteDetails describes one trip of one route from the route list.
type RouteDetails struct {
	RouteID        RouteID             `json:"route_id"`
	TripID         TripID              `json:"trip_id"`
	InternalTripID int                 `json:"internal_trip_id"`
	Route          routename.RouteName `json:"route"`
	Name           string              `json:"name"`
	ShortName      string              `json:"short_name"`
	Shape          *RouteShape         `json:"shape,omitempty"`
}

// StationOnRoute is one stop along a trip, in stop order.
type StationOnRoute struct {
	Code       StationCode        `json:"station_code"`
	InternalID int                `json:"internal_id"`
	Name       string             `json:"name"`
	Location   GeographicLocation `json:"location"`
	StopNumber int                `json:"stop_number"`
}

// ArrivalKind tags how an ETA was produced.
type ArrivalKind int

const (
	// ArrivalPredicted is a live GPS estimation.
	ArrivalPredicted ArrivalKind = 0
	// ArrivalScheduled comes straight from the timetable.
	ArrivalScheduled ArrivalKind = 1
	// ArrivalApproaching means the vehicle is arriving at the station.
	ArrivalApproaching ArrivalKind = 2
	// ArrivalDetour means the vehicle will skip the station.
	ArrivalDetour ArrivalKind = 3
)

// Arrival is one live arrival estimation for a station.
type Arrival struct {
	RouteID      RouteID     `json:"route_id"`
	VehicleID    VehicleID   `json:"vehicle_id"`
	Kind         ArrivalKind `json:"kind"`
	ETAMinutes   int         `json:"eta_minutes"`
	RouteName    string      `json:"route_name"`
	TripName     string      `json:"trip_name"`
	EndsInGarage bool        `json:"ends_in_garage"`
}

// StationArrivals is one station along a trip with its live arrivals,
// ordered by ascending ETA.
type StationArrivals struct {
	Station  StationOnRoute `json:"station"`
	Arrivals []Arrival      `json:"arrivals"`
}
