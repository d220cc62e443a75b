package recorder

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/lpp-tools/lpp-recorder/config"
	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/retry"
	"github.com/lpp-tools/lpp-recorder/storage"
)

// ArrivalsRecorder captures live arrival snapshots, one file per route per
// cycle, grouped in per-route directories.
type ArrivalsRecorder struct {
	api  API
	root *storage.Root

	clientErrorsPermanent bool

	policy *retry.Policy
	now    func() time.Time
}

// NewArrivals builds an ArrivalsRecorder writing under root.
func NewArrivals(api API, cfg *config.Config, root *storage.Root) *ArrivalsRecorder {
	return &ArrivalsRecorder{
		api:                   api,
		root:                  root,
		clientErrorsPermanent: cfg.LPP.API.TreatClientErrorsAsPermanent,
		now:                   time.Now,
	}
}

// Snapshot fetches the current arrival state of every route and persists
// one file per route. All files of the cycle share one capture timestamp.
func (r *ArrivalsRecorder) Snapshot(ctx context.Context) error {
	log := slog.With("cycle_id", uuid.NewString())

	routes, err := fetchWithRetry(ctx, "all routes", r.clientErrorsPermanent, r.policy,
		r.api.Routes)
	if err != nil {
		return err
	}

	type routeArrivals struct {
		route    lpp.RouteDetails
		stations []lpp.StationArrivals
	}

	total := len(routes)
	collected := make([]routeArrivals, 0, total)

	for i, route := range routes {
		routeLog := log.With(
			"current_route", i+1,
			"total_routes", total,
			"route", route.Route,
		)

		routeLog.Debug("requesting arrivals on route")
		stations, err := fetchWithRetry(ctx, "arrivals on route", r.clientErrorsPermanent, r.policy,
			func(ctx context.Context) ([]lpp.StationArrivals, error) {
				return r.api.ArrivalsOnRoute(ctx, route.TripID)
			})
		if err != nil {
			return err
		}
		if len(stations) == 0 {
			routeLog.Debug("no arrivals reported for route, skipping it")
			continue
		}

		collected = append(collected, routeArrivals{route: route, stations: stations})
	}

	capturedAt := r.now().UTC()

	for _, entry := range collected {
		dir, err := r.root.Arrivals(entry.route.Route.String())
		if err != nil {
			return err
		}
		path, err := dir.WriteJSON(capturedAt, &RouteArrivalsSnapshot{
			CapturedAt: capturedAt,
			Route:      entry.route,
			Stations:   entry.stations,
		})
		if err != nil {
			return err
		}
		log.Debug("saved arrival snapshot", "route", entry.route.Route, "file_path", path)
	}

	log.Info("saved arrival snapshots", "routes", len(collected))
	return nil
}
