package lpp

import (
	"context"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/lpp-tools/lpp-recorder/routename"
)

const timetableEndpoint = "station/timetable"

// TimetableWindow selects how many hours of timetable data to request
// around the current moment.
type TimetableWindow struct {
	NextHours     int
	PreviousHours int
}

// FullDayWindow computes the window that covers a full calendar day, local
// midnight to midnight: everything since midnight is "previous", the rest
// of the day is "next".
func FullDayWindow(now time.Time) TimetableWindow {
	hour := now.Local().Hour()
	return TimetableWindow{
		PreviousHours: hour,
		NextHours:     24 - hour,
	}
}

type rawTimetableResponse struct {
	Success bool             `json:"success"`
	Data    rawTimetableData `json:"data"`
}

type rawTimetableData struct {
	Station     rawTimetableStation      `json:"station"`
	RouteGroups []rawTimetableRouteGroup `json:"route_groups" validate:"dive"`
}

type rawTimetableStation struct {
	Code string `json:"ref_id"`
	Name string `json:"name"`
}

type rawTimetableRouteGroup struct {
	// Route group number, always non-suffixed (e.g. "6", never "6B").
	RouteGroupNumber string              `json:"route_group_number" validate:"required"`
	Routes           []rawTimetableRoute `json:"routes" validate:"dive"`
}

type rawTimetableRoute struct {
	Timetable []rawTimetableEntry        `json:"timetable"`
	Stations  []rawTimetableStationEntry `json:"stations"`

	// Trip direction (ending station), e.g. "RUDNIK".
	Name string `json:"name"`

	// Full trip name, e.g. "LITOSTROJ - Bavarski dvor - RUDNIK".
	ParentName string `json:"parent_name"`

	// Route group number again, non-suffixed.
	GroupName string `json:"group_name" validate:"required"`

	// Empty strings mean no prefix/suffix.
	RouteNumberPrefix string `json:"route_number_prefix"`
	RouteNumberSuffix string `json:"route_number_suffix"`

	IsGarage bool `json:"is_garage"`
}

type rawTimetableEntry struct {
	Hour    int   `json:"hour"`
	Minutes []int `json:"minutes"`
}

type rawTimetableStationEntry struct {
	Code       string `json:"ref_id" validate:"required"`
	Name       string `json:"name"`
	StopNumber int    `json:"order_no"`
}

// Timetable fetches one combined timetable for the given route groups at
// the station. One call covers every requested route family at once; the
// response is grouped per family, then per trip.
//
// Entries with an hour outside 1..24 or a minute outside 0..59 are logged
// and dropped, as are route groups whose group number does not parse; both
// are item-level vendor data defects, not contract mismatches.
func (c *Client) Timetable(
	ctx context.Context,
	station StationCode,
	groups []routename.BaseRouteName,
	window TimetableWindow,
) ([]RouteGroupTimetable, error) {
	query := url.Values{}
	query.Set("station-code", string(station))
	query.Set("next-hours", strconv.Itoa(window.NextHours))
	query.Set("previous-hours", strconv.Itoa(window.PreviousHours))

	// Deterministic request ordering keeps logs and recorded URLs stable.
	sorted := append([]routename.BaseRouteName(nil), groups...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	for _, group := range sorted {
		query.Add("route-group-number", group.String())
	}

	var response rawTimetableResponse
	if err := c.getJSON(ctx, timetableEndpoint, query, &response); err != nil {
		return nil, err
	}
	if !response.Success {
		return nil, &ResponseError{Endpoint: timetableEndpoint}
	}

	timetables := make([]RouteGroupTimetable, 0, len(response.Data.RouteGroups))
	for _, rawGroup := range response.Data.RouteGroups {
		base, err := routename.ParseBase(rawGroup.RouteGroupNumber)
		if err != nil {
			slog.Warn("skipping timetable group with unparseable group number",
				"station_code", station,
				"route_group_number", rawGroup.RouteGroupNumber,
			)
			continue
		}

		group := RouteGroupTimetable{
			BaseRoute:      base,
			TripTimetables: make([]TripTimetable, 0, len(rawGroup.Routes)),
		}
		for _, rawRoute := range rawGroup.Routes {
			group.TripTimetables = append(group.TripTimetables, parsedTripTimetable(station, base, rawRoute))
		}
		timetables = append(timetables, group)
	}
	return timetables, nil
}

func parsedTripTimetable(station StationCode, base routename.BaseRouteName, raw rawTimetableRoute) TripTimetable {
	route := routename.RouteName{
		Prefix: raw.RouteNumberPrefix,
		Number: uint32(base),
		Suffix: raw.RouteNumberSuffix,
	}

	entries := make([]TimetableEntry, 0, len(raw.Timetable))
	for _, rawEntry := range raw.Timetable {
		if rawEntry.Hour < 1 || rawEntry.Hour > 24 {
			slog.Warn("dropping timetable entry with out-of-range hour",
				"station_code", station,
				"route", route,
				"hour", rawEntry.Hour,
			)
			continue
		}
		for _, minute := range rawEntry.Minutes {
			if minute < 0 || minute > 59 {
				slog.Warn("dropping timetable entry with out-of-range minute",
					"station_code", station,
					"route", route,
					"hour", rawEntry.Hour,
					"minute", minute,
				)
				continue
			}
			entries = append(entries, TimetableEntry{Hour: rawEntry.Hour, Minute: minute})
		}
	}

	stations := make([]StationOnTimetable, 0, len(raw.Stations))
	for _, rawStation := range raw.Stations {
		stations = append(stations, StationOnTimetable{
			Code:       StationCode(rawStation.Code),
			Name:       rawStation.Name,
			StopNumber: rawStation.StopNumber,
		})
	}

	return TripTimetable{
		Route:         route,
		TripName:      raw.ParentName,
		ShortTripName: raw.Name,
		EndsInGarage:  raw.IsGarage,
		Entries:       entries,
		Stations:      stations,
	}
}
