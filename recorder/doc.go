// Package recorder reconciles independently fetched LPP collections into
// self-consistent snapshot aggregates and schedules their capture.
//
// One snapshot cycle runs two phases. The per-station pass fetches every
// station, its trips, and one combined full-day timetable per station,
// building a transient cross-reference index keyed by (route identifier,
// station code). The per-route pass then fetches the route list and the
// stations along each route, joining them against the index. Structural
// absence of data for one entity (a route with no timetable evidence, a
// station missing from a route's index entry) is a logged local skip;
// network and schema failures for the feed as a whole abort the cycle.
//
// Both output aggregates from one cycle share a single capture timestamp
// assigned after all fetching completes.
package recorder
