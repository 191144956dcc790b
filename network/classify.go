package network

import (
	"regexp"
	"strings"
)

// roadHighways are OSM-style highway values for ways usable by cars.
var roadHighways = map[string]bool{
	"motorway": true, "trunk": true, "primary": true, "secondary": true, "tertiary": true,
	"unclassified": true, "residential": true, "service": true, "living_street": true,
	"road": true, "access": true, "driveway": true,
}

// footHighways are dedicated pedestrian ways.
var footHighways = map[string]bool{
	"footway": true, "path": true, "pedestrian": true, "steps": true, "corridor": true,
	"boardwalk": true, "trail": true,
}

var pavedSurfaces = map[string]bool{
	"paved": true, "asphalt": true, "concrete": true, "paving_stones": true,
}

var (
	arterialName = regexp.MustCompile(`(?i)\b(road|street|avenue|drive|boulevard|rd|st|ave|route|chemin|rue|allee|allée)\b`)
	footName     = regexp.MustCompile(`(?i)\b(footpath|path|trail|walk|walkway|steps|stairs|boardwalk|promenade|sentier)\b`)
	cycleName    = regexp.MustCompile(`(?i)\b(cycle|cycleway|bike|bikeway|velo|vélo)\b`)
)

// rule is one step of the ordered classification rule set.
type rule struct {
	roadType RoadType
	match    func(tags map[string]string) bool
}

// rules is evaluated top to bottom; the first match wins.
var rules = []rule{
	{Road, func(t map[string]string) bool {
		return roadHighways[t["highway"]] || t["service"] != "" ||
			(t["highway"] == "" && pavedSurfaces[t["surface"]])
	}},
	{Footway, func(t map[string]string) bool {
		return footHighways[t["highway"]] || t["foot"] == "designated"
	}},
	// Cycle names before foot names: "Bike Path" is a cycleway.
	{Cycleway, func(t map[string]string) bool {
		return t["highway"] == "cycleway" || t["bicycle"] == "designated" || t["cycleway"] != "" ||
			cycleName.MatchString(t["name"])
	}},
	{Footway, func(t map[string]string) bool {
		return footName.MatchString(t["name"])
	}},
	{Road, func(t map[string]string) bool {
		return arterialName.MatchString(t["name"])
	}},
}

// Classify derives the RoadType of a feature from its tags.
//
// An explicit "road_type" (or "type") tag naming a RoadType wins. Otherwise
// road patterns (car highway classes, service ways, paved untyped ways), then
// footway tags, then cycle tags and names, then trail-like names, then named
// arterials are tried in order; anything left is Mixed.
func Classify(tags map[string]string) RoadType {
	norm := make(map[string]string, len(tags))
	for k, v := range tags {
		norm[strings.ToLower(strings.TrimSpace(k))] = strings.ToLower(strings.TrimSpace(v))
	}
	norm["name"] = strings.TrimSpace(tags["name"])

	for _, key := range []string{"road_type", "type"} {
		switch RoadType(norm[key]) {
		case Road, Footway, Cycleway, Mixed:
			return RoadType(norm[key])
		}
	}

	for _, r := range rules {
		if r.match(norm) {
			return r.roadType
		}
	}

	return Mixed
}
