package instruction

import (
	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/locale"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/route"
)

// Options configures a Generator.
//
// Translator – message source for instruction text (default English catalog).
// Thresholds – overrides ThresholdsFor(class) when non-nil.
type Options struct {
	Translator locale.Translator
	Thresholds *Thresholds
}

// Option represents a functional option for configuring a Generator.
type Option func(*Options)

// WithTranslator sets the message source. Panics on nil.
func WithTranslator(t locale.Translator) Option {
	if t == nil {
		panic("instruction: nil translator")
	}
	return func(o *Options) {
		o.Translator = t
	}
}

// WithThresholds fixes the thresholds regardless of vehicle class.
func WithThresholds(t Thresholds) Option {
	return func(o *Options) {
		o.Thresholds = &t
	}
}

// DefaultOptions returns English text and class-derived thresholds.
func DefaultOptions() Options {
	return Options{Translator: locale.New("en")}
}

// Generator produces instructions for coordinate paths. It holds no
// per-call state and is safe for concurrent use.
type Generator struct {
	opts Options
}

// NewGenerator returns a Generator configured by opts.
func NewGenerator(opts ...Option) *Generator {
	cfg := DefaultOptions()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Generator{opts: cfg}
}

// Translator returns the generator's message source.
func (g *Generator) Translator() locale.Translator { return g.opts.Translator }

// Generate returns the instructions for path.
//
// names[i], when present, is the way name of the segment path[i]→path[i+1];
// it may be nil or shorter than the path. Paths of fewer than two points
// yield a single arrival.
func (g *Generator) Generate(path []geo.Coordinate, names []string, class network.VehicleClass) []route.Instruction {
	if len(path) < 2 {
		return []route.Instruction{g.arrival(path)}
	}

	t := ThresholdsFor(class)
	if g.opts.Thresholds != nil {
		t = *g.opts.Thresholds
	}

	sig := SignificantPoints(path, t)
	var out []route.Instruction
	if len(sig) == 2 {
		out = append(out, g.head(path, names, class))
	} else {
		for k := 1; k < len(sig)-1; k++ {
			out = append(out, g.turn(path, names, sig[k], sig[k+1], class, t))
		}
	}
	out = append(out, g.arrival(path))

	for i := range out {
		out[i].StepIndex = i
	}
	return out
}

func (g *Generator) head(path []geo.Coordinate, names []string, class network.VehicleClass) route.Instruction {
	tr := g.opts.Translator
	last := len(path) - 1
	dist := geo.PathLength(path)
	name := dominantName(names, 0, last)

	dir := locale.Direction(tr, geo.Cardinal(geo.Bearing(path[0], path[1])))
	phrase := tr.Sprintf(locale.KeyHead, dir)
	if name != "" {
		phrase = tr.Sprintf(locale.KeyHeadOn, dir, name)
	}

	return route.Instruction{
		Text:            tr.Sprintf(locale.KeyThen, phrase, locale.Verb(tr, class), locale.Distance(tr, dist)),
		DistanceMeters:  dist,
		DurationSeconds: Duration(dist, class),
		Maneuver:        route.Straight,
		Point:           path[0],
		PathIndex:       0,
		Name:            name,
	}
}

// turn builds the maneuver at path[i] covering the stretch up to path[j].
func (g *Generator) turn(path []geo.Coordinate, names []string, i, j int, class network.VehicleClass, t Thresholds) route.Instruction {
	tr := g.opts.Translator
	m := Classify(geo.TurnAngle(path[i-1], path[i], path[i+1]), t)
	dist := geo.PathLength(path[i : j+1])
	name := dominantName(names, i, j)

	phrase := tr.Sprintf(phraseKey(m))
	if name != "" {
		phrase = tr.Sprintf(locale.KeyOnto, phrase, name)
	}

	return route.Instruction{
		Text:            tr.Sprintf(locale.KeyThen, phrase, locale.Verb(tr, class), locale.Distance(tr, dist)),
		DistanceMeters:  dist,
		DurationSeconds: Duration(dist, class),
		Maneuver:        m,
		Point:           path[i],
		PathIndex:       i,
		Name:            name,
	}
}

func (g *Generator) arrival(path []geo.Coordinate) route.Instruction {
	in := route.Instruction{
		Text:     g.opts.Translator.Sprintf(locale.KeyArrive),
		Maneuver: route.Arrive,
	}
	if n := len(path); n > 0 {
		in.Point = path[n-1]
		in.PathIndex = n - 1
	}
	return in
}

// Duration is the travel time in seconds over meters at the class's nominal
// speed. Unspecified classes use the walking speed.
func Duration(meters float64, class network.VehicleClass) float64 {
	v := class.NominalSpeed()
	if v <= 0 {
		v = network.Walking.NominalSpeed()
	}
	return meters / v
}

// dominantName returns the most frequent non-empty name over segments
// [from, to). Ties go to the name seen first.
func dominantName(names []string, from, to int) string {
	if to > len(names) {
		to = len(names)
	}
	counts := make(map[string]int)
	best, bestCount := "", 0
	for i := from; i < to; i++ {
		n := names[i]
		if n == "" {
			continue
		}
		counts[n]++
		if counts[n] > bestCount {
			best, bestCount = n, counts[n]
		}
	}
	return best
}

func phraseKey(m route.Maneuver) string {
	switch m {
	case route.TurnLeft:
		return locale.KeyTurnLeft
	case route.TurnRight:
		return locale.KeyTurnRight
	case route.SlightLeft:
		return locale.KeySlightLeft
	case route.SlightRight:
		return locale.KeySlightRight
	case route.SharpLeft:
		return locale.KeySharpLeft
	case route.SharpRight:
		return locale.KeySharpRight
	case route.UTurn:
		return locale.KeyUTurn
	default:
		return locale.KeyStraight
	}
}
