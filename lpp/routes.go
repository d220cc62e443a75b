package lpp

import (
	"context"
	"log/slog"
	"net/url"
	"strings"

	"github.com/lpp-tools/lpp-recorder/routename"
)

const routesEndpoint = "route/routes"

type rawRoutesResponse struct {
	Success bool              `json:"success"`
	Data    []rawRouteDetails `json:"data" validate:"dive"`
}

type rawRouteDetails struct {
	RouteID        string `json:"route_id" validate:"required"`
	TripID         string `json:"trip_id" validate:"required"`
	TripInternalID int    `json:"trip_int_id"`

	// Route group number with optional prefix/suffix, e.g. "3G".
	RouteNumber string `json:"route_number" validate:"required"`

	// Full trip name, e.g. "Adamičev spomenik - GROSUPLJE - BEŽIGRAD".
	RouteName string `json:"route_name"`

	// Destination part of the trip name, e.g. "BEŽIGRAD".
	ShortRouteName string `json:"short_route_name"`

	// Only present when shape=1 was requested.
	GeoJSONShape *rawGeoJSONShape `json:"geojson_shape,omitempty"`
}

type rawGeoJSONShape struct {
	Type        string       `json:"type" validate:"required"`
	Coordinates [][2]float64 `json:"coordinates"`
	BBox        [4]float64   `json:"bbox"`
}

// Routes fetches per-trip details for every route in the network. Trips
// with unparseable route labels are logged and skipped.
func (c *Client) Routes(ctx context.Context) ([]RouteDetails, error) {
	var response rawRoutesResponse
	if err := c.getJSON(ctx, routesEndpoint, url.Values{}, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: routesEndpoint}
	}
	return parseRouteDetails(response.Data)
}

// RouteWithShape fetches the trips of a single route including their
// GeoJSON path geometry.
func (c *Client) RouteWithShape(ctx context.Context, route RouteID) ([]RouteDetails, error) {
	query := url.Values{}
	query.Set("route-id", string(route))
	query.Set("shape", "1")

	var response rawRoutesResponse
	if err := c.getJSON(ctx, routesEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: routesEndpoint}
	}
	return parseRouteDetails(response.Data)
}

func parseRouteDetails(raws []rawRouteDetails) ([]RouteDetails, error) {
	routes := make([]RouteDetails, 0, len(raws))
	for _, raw := range raws {
		route, err := routename.Parse(raw.RouteNumber)
		if err != nil {
			slog.Warn("skipping route with unparseable route label",
				"route_number", raw.RouteNumber,
				"route_id", raw.RouteID,
			)
			continue
		}

		details := RouteDetails{
			RouteID:        RouteID(raw.RouteID),
			TripID:         TripID(raw.TripID),
			InternalTripID: raw.TripInternalID,
			Route:          route,
			Name:           raw.RouteName,
			ShortName:      raw.ShortRouteName,
		}

		if raw.GeoJSONShape != nil {
			shape, err := parseShape(raw.GeoJSONShape)
			if err != nil {
				return nil, err
			}
			details.Shape = shape
		}

		routes = append(routes, details)
	}
	return routes, nil
}

func parseShape(raw *rawGeoJSONShape) (*RouteShape, error) {
	if !strings.EqualFold(raw.Type, "LineString") {
		return nil, &SchemaError{
			Endpoint: routesEndpoint,
			Reason:   "expected a GeoJSON LineString shape, got " + raw.Type,
		}
	}
	return &RouteShape{
		Coordinates: raw.Coordinates,
		BoundingBox: raw.BBox,
	}, nil
}
