package network

// Stats summarises one Build.
type Stats struct {
	Nodes            int
	Edges            int
	FeaturesAccepted int
	FeaturesFiltered int // dropped because the class may not use the road type
	FeaturesInvalid  int // dropped because of malformed coordinates
}

// Stats returns the summary of the Build that produced g.
// Node and edge counts reflect the current graph.
func (g *Graph) Stats() Stats {
	s := g.stats
	s.Nodes = g.NodeCount()
	s.Edges = g.EdgeCount()
	return s
}

// Build constructs the graph of features usable by class.
//
// For each feature:
//  1. Classify its road type from the tags.
//  2. Skip the whole feature when class.Accepts(roadType) is false.
//  3. Skip the whole feature when any coordinate is invalid or it has fewer than two points.
//  4. Insert one edge per consecutive coordinate pair (dedup by rounded coordinate,
//     one edge per node pair, coincident consecutive points ignored).
//
// Degrees are recomputed once all features are loaded. A class that filters
// out every feature yields an empty graph.
func Build(features []Feature, class VehicleClass) *Graph {
	g := NewGraph(class)

	for _, f := range features {
		roadType := Classify(f.Tags)
		if !class.Accepts(roadType) {
			g.stats.FeaturesFiltered++
			continue
		}
		if err := validateFeature(f); err != nil {
			g.stats.FeaturesInvalid++
			continue
		}

		name := f.Name()
		for i := 1; i < len(f.Coordinates); i++ {
			// ErrLoopNotAllowed only signals a repeated point; nothing to link.
			_, _, _ = g.AddEdge(f.Coordinates[i-1], f.Coordinates[i], roadType, name)
		}
		g.stats.FeaturesAccepted++
	}

	g.recomputeDegrees()

	return g
}

func validateFeature(f Feature) error {
	if len(f.Coordinates) < 2 {
		return ErrInvalidCoordinate
	}
	for _, c := range f.Coordinates {
		if !c.Valid() {
			return ErrInvalidCoordinate
		}
	}
	return nil
}
