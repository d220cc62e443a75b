package lpp

import (
	"context"
	"net/url"
)

const arrivalsOnRouteEndpoint = "route/arrivals-on-route"

type rawArrivalsOnRouteResponse struct {
	Success bool                        `json:"success"`
	Data    []rawStationArrivalDetails  `json:"data" validate:"dive"`
}

type rawStationArrivalDetails struct {
	InternalID int     `json:"station_int_id"`
	Code       string  `json:"station_code" validate:"required"`
	Name       string  `json:"name"`
	StopNumber int     `json:"order_no"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`

	// Ordered by ascending ETA.
	Arrivals []rawArrival `json:"arrivals" validate:"dive"`
}

type rawArrival struct {
	RouteID   string `json:"route_id" validate:"required"`
	VehicleID string `json:"vehicle_id"`

	// 0 predicted, 1 scheduled, 2 approaching, 3 detour.
	Type       int    `json:"type" validate:"gte=0,lte=3"`
	ETAMinutes int    `json:"eta_min"`
	RouteName  string `json:"route_name"`
	TripName   string `json:"trip_name"`
	Depot      int    `json:"depot"`
}

// ArrivalsOnRoute fetches live arrival estimations for every station along
// one trip.
func (c *Client) ArrivalsOnRoute(ctx context.Context, trip TripID) ([]StationArrivals, error) {
	query := url.Values{}
	query.Set("trip-id", string(trip))

	var response rawArrivalsOnRouteResponse
	if err := c.getJSON(ctx, arrivalsOnRouteEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: arrivalsOnRouteEndpoint}
	}

	stations := make([]StationArrivals, 0, len(response.Data))
	for _, raw := range response.Data {
		arrivals := make([]Arrival, 0, len(raw.Arrivals))
		for _, rawArr := range raw.Arrivals {
			arrivals = append(arrivals, Arrival{
				RouteID:      RouteID(rawArr.RouteID),
				VehicleID:    VehicleID(rawArr.VehicleID),
				Kind:         ArrivalKind(rawArr.Type),
				ETAMinutes:   rawArr.ETAMinutes,
				RouteName:    rawArr.RouteName,
				TripName:     rawArr.TripName,
				EndsInGarage: rawArr.Depot == 1,
			})
		}

		stations = append(stations, StationArrivals{
			Station: StationOnRoute{
				Code:       StationCode(raw.Code),
				InternalID: raw.InternalID,
				Name:       raw.Name,
				StopNumber: raw.StopNumber,
				Location: GeographicLocation{
					Latitude:  raw.Latitude,
					Longitude: raw.Longitude,
				},
			},
			Arrivals: arrivals,
		})
	}
	return stations, nil
}
