// Package trailnav is a turn-by-turn navigation engine for trail and street
// networks.
//
// It plans routes over a road network loaded from GeoJSON, turns them into
// localized instructions, and tracks a moving agent along the active route:
// progress, off-route detection, dynamic ETA and background rerouting.
//
// The pieces are organized bottom-up:
//
//	geo/           coordinates, haversine distance, bearings, projection, polyline and orb interop
//	network/       road classification, per-vehicle graph, nearest-node lookup, GeoJSON loading
//	dijkstra/      deterministic shortest paths over network graphs
//	routing/       endpoint snapping and path assembly; Planner caches one graph per vehicle class
//	instruction/   significant-point detection, maneuver classification, instruction text
//	locale/        message catalog (English, French, German, Spanish)
//	route/         immutable Route and Instruction values
//	tracking/      per-sample progress, step advance, completion; Session adds speed and ETA
//	speed/         bounded sample history, smoothed and average speed, ETA
//	reroute/       reroute policy, single-flight controller, direct-route fallback
//	announce/      gating of spoken guidance
//	navigator/     one active navigation: start, position updates, background reroutes
//	config/        YAML configuration with validation
//	logging/       structured logging on zap
//	metrics/       Prometheus collector
//	cmd/trailnav   plan a route and replay a position trace from the command line
//
// A minimal embedding:
//
//	features, _ := network.LoadGeoJSONFile("trails.geojson")
//	planner := reroute.FallbackPlanner{Primary: routing.NewPlanner(features)}
//	nav, _ := navigator.New(planner, navigator.WithListener(myListener))
//	nav.Start(ctx, from, to, network.Walking)
//	for s := range positions {
//		update, _ := nav.UpdatePosition(s)
//		_ = update.ETA
//	}
package trailnav
