package recorder

import (
	"context"

	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/routename"
)

// API is the slice of the LPP client the recorder consumes. *lpp.Client
// implements it; tests substitute fakes.
type API interface {
	StationDetails(ctx context.Context) ([]lpp.Station, error)
	RoutesOnStation(ctx context.Context, station lpp.StationCode) ([]lpp.TripOnStation, error)
	Timetable(ctx context.Context, station lpp.StationCode, groups []routename.BaseRouteName, window lpp.TimetableWindow) ([]lpp.RouteGroupTimetable, error)
	Routes(ctx context.Context) ([]lpp.RouteDetails, error)
	RouteWithShape(ctx context.Context, route lpp.RouteID) ([]lpp.RouteDetails, error)
	StationsOnRoute(ctx context.Context, trip lpp.TripID) ([]lpp.StationOnRoute, error)
	ArrivalsOnRoute(ctx context.Context, trip lpp.TripID) ([]lpp.StationArrivals, error)
}

var _ API = (*lpp.Client)(nil)
