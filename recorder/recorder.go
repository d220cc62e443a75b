package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lpp-tools/lpp-recorder/config"
	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/retry"
	"github.com/lpp-tools/lpp-recorder/routename"
	"github.com/lpp-tools/lpp-recorder/storage"
)

// timetableIndex is the transient per-cycle cross-reference: route
// identifier to station code to that trip's timetable at that station. It
// is exclusively owned by one in-flight cycle and discarded afterwards.
type timetableIndex map[routename.RouteName]map[lpp.StationCode]lpp.TripTimetable

func (idx timetableIndex) insert(route routename.RouteName, station lpp.StationCode, timetable lpp.TripTimetable, log *slog.Logger) {
	perStation := idx[route]
	if perStation == nil {
		perStation = make(map[lpp.StationCode]lpp.TripTimetable)
		idx[route] = perStation
	}
	if _, exists := perStation[station]; exists {
		// The vendor occasionally returns more than one timetable for a
		// single route+station; keep the last one. See the project design
		// notes for why this is not treated as authoritative behavior.
		log.Warn("multiple timetables for one route and station, keeping the last",
			"route", route,
			"station_code", station,
		)
	}
	perStation[station] = timetable
}

// Recorder captures station/route snapshot pairs.
type Recorder struct {
	api         API
	stationsDir *storage.Dir
	routesDir   *storage.Dir

	clientErrorsPermanent bool
	captureShapes         bool

	// Overridable in tests.
	policy *retry.Policy
	now    func() time.Time
}

// New builds a Recorder writing under root.
func New(api API, cfg *config.Config, root *storage.Root) (*Recorder, error) {
	stationsDir, err := root.Stations()
	if err != nil {
		return nil, err
	}
	routesDir, err := root.Routes()
	if err != nil {
		return nil, err
	}

	return &Recorder{
		api:                   api,
		stationsDir:           stationsDir,
		routesDir:             routesDir,
		clientErrorsPermanent: cfg.LPP.API.TreatClientErrorsAsPermanent,
		captureShapes:         cfg.LPP.API.CaptureRouteShapes,
		now:                   time.Now,
	}, nil
}

// Snapshot runs one full reconciliation cycle and persists both aggregates.
// Any retry exhaustion or permanent fetch error aborts the cycle; nothing
// is written in that case.
func (r *Recorder) Snapshot(ctx context.Context) error {
	log := slog.With("cycle_id", uuid.NewString())

	stationsSnapshot, routesSnapshot, err := r.collect(ctx, log)
	if err != nil {
		return err
	}

	stationsPath, err := r.stationsDir.WriteJSON(stationsSnapshot.CapturedAt, stationsSnapshot)
	if err != nil {
		return err
	}
	log.Info("saved station details snapshot", "file_path", stationsPath)

	routesPath, err := r.routesDir.WriteJSON(routesSnapshot.CapturedAt, routesSnapshot)
	if err != nil {
		return err
	}
	log.Info("saved route details snapshot", "file_path", routesPath)

	return nil
}

// collect fetches and reconciles one cycle's data without persisting it.
func (r *Recorder) collect(ctx context.Context, log *slog.Logger) (*StationsSnapshot, *RoutesSnapshot, error) {
	index := make(timetableIndex)

	stationsWithTrips, err := r.stationPass(ctx, log, index)
	if err != nil {
		return nil, nil, err
	}

	routesWithTimetables, err := r.routePass(ctx, log, index)
	if err != nil {
		return nil, nil, err
	}

	// One shared capture instant for both aggregates, assigned only after
	// all fetching is done.
	capturedAt := r.now().UTC()

	return &StationsSnapshot{CapturedAt: capturedAt, Stations: stationsWithTrips},
		&RoutesSnapshot{CapturedAt: capturedAt, Routes: routesWithTimetables},
		nil
}

// stationPass is phase 1: every station, its trips, and one combined
// full-day timetable per station, populating the reconciliation index.
func (r *Recorder) stationPass(ctx context.Context, log *slog.Logger, index timetableIndex) ([]StationWithTimetables, error) {
	stations, err := fetchWithRetry(ctx, "station details", r.clientErrorsPermanent, r.policy,
		r.api.StationDetails)
	if err != nil {
		return nil, err
	}

	total := len(stations)
	result := make([]StationWithTimetables, 0, total)

	for i, station := range stations {
		stationLog := log.With(
			"current_station", i+1,
			"total_stations", total,
			"station_code", station.Code,
			"station_name", station.Name,
		)

		stationLog.Debug("requesting trips on station")
		trips, err := fetchWithRetry(ctx, "trips on station", r.clientErrorsPermanent, r.policy,
			func(ctx context.Context) ([]lpp.TripOnStation, error) {
				return r.api.RoutesOnStation(ctx, station.Code)
			})
		if err != nil {
			return nil, err
		}

		groups := distinctBaseRoutes(trips)
		if len(groups) == 0 {
			// No route groups means no timetable to request; not an error.
			stationLog.Debug("station has no route groups, skipping timetable request")
			continue
		}

		stationLog.Debug("requesting full-day timetable for station", "route_groups", len(groups))
		window := lpp.FullDayWindow(r.now())
		timetables, err := fetchWithRetry(ctx, "timetables on station", r.clientErrorsPermanent, r.policy,
			func(ctx context.Context) ([]lpp.RouteGroupTimetable, error) {
				return r.api.Timetable(ctx, station.Code, groups, window)
			})
		if err != nil {
			return nil, err
		}

		for _, group := range timetables {
			for _, tripTimetable := range group.TripTimetables {
				index.insert(tripTimetable.Route, station.Code, tripTimetable, stationLog)
			}
		}

		result = append(result, StationWithTimetables{
			Station:    station,
			Trips:      trips,
			Timetables: timetables,
		})
	}

	return result, nil
}

// routePass is phase 2: the full route list joined against the index built
// in phase 1.
func (r *Recorder) routePass(ctx context.Context, log *slog.Logger, index timetableIndex) ([]RouteWithTimetables, error) {
	log.Debug("requesting all routes")
	routes, err := fetchWithRetry(ctx, "all routes", r.clientErrorsPermanent, r.policy,
		r.api.Routes)
	if err != nil {
		return nil, err
	}

	total := len(routes)
	result := make([]RouteWithTimetables, 0, total)

	for i, route := range routes {
		routeLog := log.With(
			"current_route", i+1,
			"total_routes", total,
			"route", route.Route,
		)

		perStation, ok := index[route.Route]
		if !ok {
			// A route variant never seen during the station pass carries
			// no timetable evidence at all; drop it from the output.
			routeLog.Warn("no timetables collected for this route, skipping it")
			continue
		}

		routeLog.Debug("requesting stations on route")
		stationsOnRoute, err := fetchWithRetry(ctx, "stations on route", r.clientErrorsPermanent, r.policy,
			func(ctx context.Context) ([]lpp.StationOnRoute, error) {
				return r.api.StationsOnRoute(ctx, route.TripID)
			})
		if err != nil {
			return nil, err
		}
		if len(stationsOnRoute) == 0 {
			routeLog.Warn("route did not contain any stations, skipping it", "route_id", route.RouteID)
			continue
		}

		if r.captureShapes && route.Shape == nil {
			if err := r.attachShape(ctx, routeLog, &route); err != nil {
				return nil, err
			}
		}

		pairs := make([]StationWithTimetable, 0, len(stationsOnRoute))
		for _, stationOnRoute := range stationsOnRoute {
			timetable, ok := perStation[stationOnRoute.Code]
			if !ok {
				// Partial coverage of a route is acceptable; drop only
				// this station and keep the rest of the route.
				routeLog.Warn("no timetable for station on route, skipping the station",
					"station_code", stationOnRoute.Code,
				)
				continue
			}
			pairs = append(pairs, StationWithTimetable{
				Station:   stationOnRoute,
				Timetable: timetable,
			})
		}

		result = append(result, RouteWithTimetables{
			Route:    route,
			Stations: pairs,
		})
	}

	return result, nil
}

// attachShape fetches the route's GeoJSON path and copies it onto the trip
// being recorded. A shape response missing this trip is a logged skip.
func (r *Recorder) attachShape(ctx context.Context, log *slog.Logger, route *lpp.RouteDetails) error {
	withShape, err := fetchWithRetry(ctx, "route shape", r.clientErrorsPermanent, r.policy,
		func(ctx context.Context) ([]lpp.RouteDetails, error) {
			return r.api.RouteWithShape(ctx, route.RouteID)
		})
	if err != nil {
		return err
	}

	for _, candidate := range withShape {
		if candidate.TripID == route.TripID && candidate.Shape != nil {
			route.Shape = candidate.Shape
			return nil
		}
	}
	log.Warn("shape response did not include this trip", "trip_id", route.TripID)
	return nil
}

func distinctBaseRoutes(trips []lpp.TripOnStation) []routename.BaseRouteName {
	seen := make(map[routename.BaseRouteName]struct{}, len(trips))
	groups := make([]routename.BaseRouteName, 0, len(trips))
	for _, trip := range trips {
		base := trip.Route.Base()
		if _, ok := seen[base]; ok {
			continue
		}
		seen[base] = struct{}{}
		groups = append(groups, base)
	}
	return groups
}
