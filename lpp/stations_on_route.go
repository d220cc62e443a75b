package lpp

import (
	"context"
	"net/url"
)

const stationsOnRouteEndpoint = "route/stations-on-route"

type rawStationsOnRouteResponse struct {
	Success bool                `json:"success"`
	Data    []rawStationOnRoute `json:"data" validate:"dive"`
}

type rawStationOnRoute struct {
	InternalID int     `json:"station_int_id"`
	Code       string  `json:"station_code" validate:"required"`
	Name       string  `json:"name"`
	StopNumber int     `json:"order_no"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`
}

// StationsOnRoute fetches the ordered stations along one trip. The endpoint
// legitimately returns an empty list for some trips; callers treat that as
// a skippable route, not an error.
func (c *Client) StationsOnRoute(ctx context.Context, trip TripID) ([]StationOnRoute, error) {
	query := url.Values{}
	query.Set("trip-id", string(trip))

	var response rawStationsOnRouteResponse
	if err := c.getJSON(ctx, stationsOnRouteEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: stationsOnRouteEndpoint}
	}

	stations := make([]StationOnRoute, 0, len(response.Data))
	for _, raw := range response.Data {
		stations = append(stations, StationOnRoute{
			Code:       StationCode(raw.Code),
			InternalID: raw.InternalID,
			Name:       raw.Name,
			StopNumber: raw.StopNumber,
			Location: GeographicLocation{
				Latitude:  raw.Latitude,
				Longitude: raw.Longitude,
			},
		})
	}
	return stations, nil
}
