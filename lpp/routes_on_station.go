package lpp

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/lpp-tools/lpp-recorder/routename"
)

const routesOnStationEndpoint = "station/routes-on-station"

type rawRoutesOnStationResponse struct {
	Success bool                 `json:"success"`
	Data    []rawRouteOnStation  `json:"data" validate:"dive"`
}

type rawRouteOnStation struct {
	RouteID     string  `json:"route_id" validate:"required"`
	TripID      string  `json:"trip_id" validate:"required"`
	RouteNumber string  `json:"route_number" validate:"required"`
	RouteName   *string `json:"route_name"`

	// Despite the name, this is the full trip name (start - destination).
	RouteGroupName string `json:"route_group_name"`
	IsGarage       bool   `json:"is_garage"`
}

// RoutesOnStation fetches all trips stopping at the station. A trip whose
// route label does not parse is logged and skipped rather than failing the
// whole call; one garbled label in the vendor feed is expected, tolerable
// data loss.
func (c *Client) RoutesOnStation(ctx context.Context, station StationCode) ([]TripOnStation, error) {
	query := url.Values{}
	query.Set("station-code", string(station))

	var response rawRoutesOnStationResponse
	if err := c.getJSON(ctx, routesOnStationEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: routesOnStationEndpoint}
	}

	trips := make([]TripOnStation, 0, len(response.Data))
	for _, raw := range response.Data {
		route, err := routename.Parse(raw.RouteNumber)
		if err != nil {
			slog.Warn("skipping trip with unparseable route label",
				"station_code", station,
				"route_number", raw.RouteNumber,
				"trip_id", raw.TripID,
			)
			continue
		}

		trips = append(trips, TripOnStation{
			RouteID:      RouteID(raw.RouteID),
			TripID:       TripID(raw.TripID),
			Route:        route,
			ShortName:    raw.RouteName,
			FullName:     raw.RouteGroupName,
			EndsInGarage: raw.IsGarage,
		})
	}
	return trips, nil
}
