package lpp

import (
	"context"
	"net/url"
)

// The station-details endpoint returns every station in the network. With
// show-subroutes=1 the route groups on each station are split into
// sub-routes (3G, 19B, ...), which is what the recorder always wants.
const stationDetailsEndpoint = "station-details"

type rawStationDetailsResponse struct {
	Success bool                `json:"success"`
	Data    []rawStationDetails `json:"data" validate:"dive"`
}

type rawStationDetails struct {
	InternalID int     `json:"int_id"`
	Code       string  `json:"ref_id" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	Latitude   float64 `json:"latitude" validate:"latitude"`
	Longitude  float64 `json:"longitude" validate:"longitude"`

	// Present with show-subroutes=1; superseded by the routes-on-station
	// endpoint, which also carries trip identifiers.
	RouteGroups []string `json:"route_groups_on_station"`
}

// StationDetails fetches all stations in the network.
func (c *Client) StationDetails(ctx context.Context) ([]Station, error) {
	query := url.Values{}
	query.Set("show-subroutes", "1")

	var response rawStationDetailsResponse
	if err := c.getJSON(ctx, stationDetailsEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: stationDetailsEndpoint}
	}

	stations := make([]Station, 0, len(response.Data))
	for _, raw := range response.Data {
		stations = append(stations, Station{
			Code:       StationCode(raw.Code),
			InternalID: raw.InternalID,
			Name:       raw.Name,
			Location: GeographicLocation{
				Latitude:  raw.Latitude,
				Longitude: raw.Longitude,
			},
		})
	}
	return stations, nil
}
