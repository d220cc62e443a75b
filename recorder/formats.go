package recorder

import (
	"time"

	"github.com/lpp-tools/lpp-recorder/lpp"
)

// StationWithTimetables is one station with everything captured for it
// during the per-station pass.
type StationWithTimetables struct {
	Station    lpp.Station               `json:"station"`
	Trips      []lpp.TripOnStation       `json:"trips_on_station"`
	Timetables []lpp.RouteGroupTimetable `json:"route_group_timetables"`
}

// StationsSnapshot is the persisted station-details aggregate of one cycle.
type StationsSnapshot struct {
	CapturedAt time.Time               `json:"captured_at"`
	Stations   []StationWithTimetables `json:"stations"`
}

// StationWithTimetable pairs one station along a route with that trip's
// timetable at that station.
type StationWithTimetable struct {
	Station   lpp.StationOnRoute `json:"station"`
	Timetable lpp.TripTimetable  `json:"timetable"`
}

// RouteWithTimetables is one route with its matched station/timetable
// pairs.
type RouteWithTimetables struct {
	Route    lpp.RouteDetails       `json:"route"`
	Stations []StationWithTimetable `json:"stations_with_timetables"`
}

// RoutesSnapshot is the persisted route-details aggregate of one cycle. It
// carries the same CapturedAt as the StationsSnapshot of the same cycle.
type RoutesSnapshot struct {
	CapturedAt time.Time             `json:"captured_at"`
	Routes     []RouteWithTimetables `json:"routes"`
}

// RouteArrivalsSnapshot is the persisted live-arrival state of one route.
type RouteArrivalsSnapshot struct {
	CapturedAt time.Time             `json:"captured_at"`
	Route      lpp.RouteDetails      `json:"route"`
	Stations   []lpp.StationArrivals `json:"stations"`
}
