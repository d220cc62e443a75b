package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpp-tools/lpp-recorder/config"
	"github.com/lpp-tools/lpp-recorder/lpp"
	"github.com/lpp-tools/lpp-recorder/retry"
	"github.com/lpp-tools/lpp-recorder/routename"
	"github.com/lpp-tools/lpp-recorder/storage"
)

// fakeAPI serves canned data and records which calls were made.
type fakeAPI struct {
	stations        []lpp.Station
	tripsByStation  map[lpp.StationCode][]lpp.TripOnStation
	timetables      map[lpp.StationCode][]lpp.RouteGroupTimetable
	routes          []lpp.RouteDetails
	stationsByTrip  map[lpp.TripID][]lpp.StationOnRoute
	arrivalsByTrip  map[lpp.TripID][]lpp.StationArrivals
	shapesByRoute   map[lpp.RouteID][]lpp.RouteDetails
	stationsErr     error
	timetableCalls  []lpp.StationCode
	timetableGroups map[lpp.StationCode][]routename.BaseRouteName
}

func (f *fakeAPI) StationDetails(ctx context.Context) ([]lpp.Station, error) {
	if f.stationsErr != nil {
		return nil, f.stationsErr
	}
	return f.stations, nil
}

func (f *fakeAPI) RoutesOnStation(ctx context.Context, station lpp.StationCode) ([]lpp.TripOnStation, error) {
	return f.tripsByStation[station], nil
}

func (f *fakeAPI) Timetable(ctx context.Context, station lpp.StationCode, groups []routename.BaseRouteName, window lpp.TimetableWindow) ([]lpp.RouteGroupTimetable, error) {
	f.timetableCalls = append(f.timetableCalls, station)
	if f.timetableGroups == nil {
		f.timetableGroups = make(map[lpp.StationCode][]routename.BaseRouteName)
	}
	f.timetableGroups[station] = groups
	return f.timetables[station], nil
}

func (f *fakeAPI) Routes(ctx context.Context) ([]lpp.RouteDetails, error) {
	return f.routes, nil
}

func (f *fakeAPI) RouteWithShape(ctx context.Context, route lpp.RouteID) ([]lpp.RouteDetails, error) {
	return f.shapesByRoute[route], nil
}

func (f *fakeAPI) StationsOnRoute(ctx context.Context, trip lpp.TripID) ([]lpp.StationOnRoute, error) {
	return f.stationsByTrip[trip], nil
}

func (f *fakeAPI) ArrivalsOnRoute(ctx context.Context, trip lpp.TripID) ([]lpp.StationArrivals, error) {
	return f.arrivalsByTrip[trip], nil
}

func timetableFor(label string) lpp.TripTimetable {
	return lpp.TripTimetable{
		Route:    routename.MustParse(label),
		TripName: "somewhere",
		Entries:  []lpp.TimetableEntry{{Hour: 9, Minute: 15}},
	}
}

// twoStationFixture covers route 3G over stations 600011 and 600012, where
// only 600011 carries a timetable for it.
func twoStationFixture() *fakeAPI {
	trip3G := lpp.TripOnStation{
		RouteID: "route-3", TripID: "trip-3g",
		Route: routename.MustParse("3G"), FullName: "3G GARAŽA",
	}

	return &fakeAPI{
		stations: []lpp.Station{
			{Code: "600011", Name: "Bavarski dvor", Location: lpp.GeographicLocation{Latitude: 46.056, Longitude: 14.505}},
			{Code: "600012", Name: "Bavarski dvor", Location: lpp.GeographicLocation{Latitude: 46.057, Longitude: 14.506}},
		},
		tripsByStation: map[lpp.StationCode][]lpp.TripOnStation{
			"600011": {trip3G},
			"600012": {trip3G},
		},
		timetables: map[lpp.StationCode][]lpp.RouteGroupTimetable{
			"600011": {{
				BaseRoute:      3,
				TripTimetables: []lpp.TripTimetable{timetableFor("3G")},
			}},
			// 600012 answers with an empty group: the route stops there
			// but the timetable endpoint has nothing for the window.
			"600012": {{BaseRoute: 3}},
		},
		routes: []lpp.RouteDetails{
			{RouteID: "route-3", TripID: "trip-3g", Route: routename.MustParse("3G"), Name: "3G GARAŽA"},
		},
		stationsByTrip: map[lpp.TripID][]lpp.StationOnRoute{
			"trip-3g": {
				{Code: "600011", Name: "Bavarski dvor", StopNumber: 1},
				{Code: "600012", Name: "Bavarski dvor", StopNumber: 2},
			},
		},
	}
}

func newTestRecorder(t *testing.T, api API) (*Recorder, *storage.Root) {
	t.Helper()

	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)

	cfg := &config.Config{}
	rec, err := New(api, cfg, root)
	require.NoError(t, err)
	rec.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 26, 53, 589_000_000, time.UTC)
	}
	return rec, root
}

func TestSnapshotWritesBothAggregates(t *testing.T) {
	api := twoStationFixture()
	rec, root := newTestRecorder(t, api)

	require.NoError(t, rec.Snapshot(context.Background()))

	stationFiles, err := filepath.Glob(filepath.Join(root.Path(), "stations", "*.json"))
	require.NoError(t, err)
	require.Len(t, stationFiles, 1)
	assert.Equal(t, "station-details_2025-03-14_09-26-53.589+UTC.json", filepath.Base(stationFiles[0]))

	routeFiles, err := filepath.Glob(filepath.Join(root.Path(), "routes", "*.json"))
	require.NoError(t, err)
	require.Len(t, routeFiles, 1)
	assert.Equal(t, "route-details_2025-03-14_09-26-53.589+UTC.json", filepath.Base(routeFiles[0]))

	var stationsSnapshot StationsSnapshot
	decodeFile(t, stationFiles[0], &stationsSnapshot)
	var routesSnapshot RoutesSnapshot
	decodeFile(t, routeFiles[0], &routesSnapshot)

	assert.Equal(t, stationsSnapshot.CapturedAt, routesSnapshot.CapturedAt)
	assert.Len(t, stationsSnapshot.Stations, 2)
	require.Len(t, routesSnapshot.Routes, 1)
}

func TestRoutePassToleratesStationsWithoutTimetable(t *testing.T) {
	api := twoStationFixture()
	rec, _ := newTestRecorder(t, api)

	_, routesSnapshot, err := rec.collect(context.Background(), testLogger())
	require.NoError(t, err)

	require.Len(t, routesSnapshot.Routes, 1)
	route := routesSnapshot.Routes[0]
	// 600012 has no timetable for 3G; only 600011 survives the join.
	require.Len(t, route.Stations, 1)
	assert.Equal(t, lpp.StationCode("600011"), route.Stations[0].Station.Code)
	assert.Equal(t, routename.MustParse("3G"), route.Stations[0].Timetable.Route)
}

func TestRouteWithoutAnyTimetableIsDropped(t *testing.T) {
	api := twoStationFixture()
	api.routes = append(api.routes, lpp.RouteDetails{
		RouteID: "route-27", TripID: "trip-27", Route: routename.MustParse("27"), Name: "27 NOVE STOŽICE",
	})
	rec, _ := newTestRecorder(t, api)

	_, routesSnapshot, err := rec.collect(context.Background(), testLogger())
	require.NoError(t, err)

	require.Len(t, routesSnapshot.Routes, 1)
	assert.Equal(t, routename.MustParse("3G"), routesSnapshot.Routes[0].Route.Route)
}

func TestStationWithoutRouteGroupsSkipsTimetableRequest(t *testing.T) {
	api := twoStationFixture()
	api.stations = append(api.stations, lpp.Station{Code: "999999", Name: "Opuščena"})
	rec, _ := newTestRecorder(t, api)

	stationsSnapshot, _, err := rec.collect(context.Background(), testLogger())
	require.NoError(t, err)

	assert.NotContains(t, api.timetableCalls, lpp.StationCode("999999"))
	// The station also does not appear in the aggregate.
	for _, s := range stationsSnapshot.Stations {
		assert.NotEqual(t, lpp.StationCode("999999"), s.Station.Code)
	}
}

func TestTimetableRequestedPerDistinctBaseRoute(t *testing.T) {
	api := twoStationFixture()
	// Two variants of route 3 plus route 27: groups must be {3, 27}.
	api.tripsByStation["600011"] = append(api.tripsByStation["600011"],
		lpp.TripOnStation{RouteID: "route-3", TripID: "trip-3", Route: routename.MustParse("3")},
		lpp.TripOnStation{RouteID: "route-27", TripID: "trip-27", Route: routename.MustParse("27")},
	)
	rec, _ := newTestRecorder(t, api)

	_, _, err := rec.collect(context.Background(), testLogger())
	require.NoError(t, err)

	assert.ElementsMatch(t,
		[]routename.BaseRouteName{3, 27},
		api.timetableGroups["600011"],
	)
}

func TestPermanentErrorAbortsWithoutWriting(t *testing.T) {
	api := twoStationFixture()
	api.stationsErr = &lpp.SchemaError{Endpoint: "station-details", Reason: "malformed body"}
	rec, root := newTestRecorder(t, api)

	err := rec.Snapshot(context.Background())
	require.Error(t, err)

	var permanent *retry.PermanentError
	assert.ErrorAs(t, err, &permanent)

	stationFiles, globErr := filepath.Glob(filepath.Join(root.Path(), "stations", "*.json"))
	require.NoError(t, globErr)
	assert.Empty(t, stationFiles)
	routeFiles, globErr := filepath.Glob(filepath.Join(root.Path(), "routes", "*.json"))
	require.NoError(t, globErr)
	assert.Empty(t, routeFiles)
}

func TestDuplicateTimetableKeepsLast(t *testing.T) {
	first := timetableFor("3G")
	second := timetableFor("3G")
	second.TripName = "elsewhere"

	index := make(timetableIndex)
	index.insert(routename.MustParse("3G"), "600011", first, testLogger())
	index.insert(routename.MustParse("3G"), "600011", second, testLogger())

	got := index[routename.MustParse("3G")]["600011"]
	assert.Equal(t, "elsewhere", got.TripName)
}

func TestShapeAttachedWhenEnabled(t *testing.T) {
	api := twoStationFixture()
	shape := &lpp.RouteShape{
		Coordinates: [][2]float64{{14.505, 46.056}, {14.506, 46.057}},
		BoundingBox: [4]float64{14.505, 46.056, 14.506, 46.057},
	}
	api.shapesByRoute = map[lpp.RouteID][]lpp.RouteDetails{
		"route-3": {{RouteID: "route-3", TripID: "trip-3g", Route: routename.MustParse("3G"), Shape: shape}},
	}
	rec, _ := newTestRecorder(t, api)
	rec.captureShapes = true

	_, routesSnapshot, err := rec.collect(context.Background(), testLogger())
	require.NoError(t, err)

	require.Len(t, routesSnapshot.Routes, 1)
	require.NotNil(t, routesSnapshot.Routes[0].Route.Shape)
	assert.Equal(t, shape.Coordinates, routesSnapshot.Routes[0].Route.Shape.Coordinates)
}

func TestArrivalsSnapshotWritesPerRouteFiles(t *testing.T) {
	api := twoStationFixture()
	api.arrivalsByTrip = map[lpp.TripID][]lpp.StationArrivals{
		"trip-3g": {{
			Station: lpp.StationOnRoute{Code: "600011", Name: "Bavarski dvor", StopNumber: 1},
			Arrivals: []lpp.Arrival{
				{RouteID: "route-3", VehicleID: "bus-42", Kind: lpp.ArrivalPredicted, ETAMinutes: 4, RouteName: "3G"},
			},
		}},
	}

	root, err := storage.NewRoot(t.TempDir())
	require.NoError(t, err)
	rec := NewArrivals(api, &config.Config{}, root)
	rec.now = func() time.Time {
		return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	}

	require.NoError(t, rec.Snapshot(context.Background()))

	files, err := filepath.Glob(filepath.Join(root.Path(), "arrival-snapshots", "3G", "*.json"))
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "arrival_2025-03-14_09-30-00.000+UTC.json", filepath.Base(files[0]))

	var snapshot RouteArrivalsSnapshot
	decodeFile(t, files[0], &snapshot)
	require.Len(t, snapshot.Stations, 1)
	assert.Equal(t, lpp.VehicleID("bus-42"), snapshot.Stations[0].Arrivals[0].VehicleID)
}

func TestRunLoopOnceReturnsCycleError(t *testing.T) {
	boom := errors.New("boom")
	err := RunLoop(context.Background(), "test", RunOnce, time.Hour, NewCancellationToken(),
		func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRunLoopPerpetualStopsOnCancellation(t *testing.T) {
	token := NewCancellationToken()
	cycles := 0
	err := RunLoop(context.Background(), "test", RunPerpetual, time.Millisecond, token,
		func(context.Context) error {
			cycles++
			if cycles == 3 {
				token.Cancel()
			}
			// A failed cycle must not stop a perpetual loop.
			return errors.New("transient cycle failure")
		})
	require.NoError(t, err)
	assert.Equal(t, 3, cycles)
}

func TestParseRunMode(t *testing.T) {
	once, err := ParseRunMode("once")
	require.NoError(t, err)
	assert.Equal(t, RunOnce, once)

	perpetual, err := ParseRunMode("perpetual")
	require.NoError(t, err)
	assert.Equal(t, RunPerpetual, perpetual)

	_, err = ParseRunMode("forever")
	assert.Error(t, err)
}

func decodeFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
