package navigator

import (
	"github.com/katalvlaran/trailnav/announce"
	"github.com/katalvlaran/trailnav/locale"
	"github.com/katalvlaran/trailnav/logging"
	"github.com/katalvlaran/trailnav/metrics"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/reroute"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

// Listener receives navigation notifications. Methods may be called from the
// goroutine that runs a reroute, so implementations must be safe for
// concurrent use.
type Listener interface {
	OnStepChanged(step int, in route.Instruction)
	OnOffRoute(distanceMeters float64, consecutive int)
	OnRouteCompleted()
	OnRouteReplaced(r route.Route)
	OnRerouteFailed(err error)
}

// NopListener ignores every notification. Embed it to implement a subset.
type NopListener struct{}

func (NopListener) OnStepChanged(int, route.Instruction) {}
func (NopListener) OnOffRoute(float64, int)              {}
func (NopListener) OnRouteCompleted()                    {}
func (NopListener) OnRouteReplaced(route.Route)          {}
func (NopListener) OnRerouteFailed(error)                {}

// Options configures a Navigator.
type Options struct {
	Listener   Listener
	Policy     reroute.Policy
	Tracking   []tracking.Option
	Speed      []speed.Option
	Announcer  *announce.Announcer
	Translator locale.Translator
	Logger     logging.Logger
	Metrics    *metrics.Collector
	ETAMode    network.VehicleClass
}

// Option represents a functional option for configuring a Navigator.
type Option func(*Options)

// WithListener sets the notification receiver.
func WithListener(l Listener) Option {
	return func(o *Options) { o.Listener = l }
}

// WithPolicy sets the reroute policy.
func WithPolicy(p reroute.Policy) Option {
	return func(o *Options) { o.Policy = p }
}

// WithTrackingOptions sets the options of every tracking session.
func WithTrackingOptions(opts ...tracking.Option) Option {
	return func(o *Options) { o.Tracking = opts }
}

// WithSpeedOptions sets the options of the speed estimator created by Start.
func WithSpeedOptions(opts ...speed.Option) Option {
	return func(o *Options) { o.Speed = opts }
}

// WithAnnouncer routes step, off-route, arrival and reroute notices through a.
func WithAnnouncer(a *announce.Announcer) Option {
	return func(o *Options) { o.Announcer = a }
}

// WithTranslator sets the message source for announcements.
func WithTranslator(t locale.Translator) Option {
	return func(o *Options) { o.Translator = t }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *metrics.Collector) Option {
	return func(o *Options) { o.Metrics = m }
}

// WithETAMode sets the travel mode whose nominal speed UpdatePosition uses
// for the ETA. The default, "", uses the live speed.
func WithETAMode(mode network.VehicleClass) Option {
	return func(o *Options) { o.ETAMode = mode }
}

// DefaultOptions returns the default reroute policy, English text and no-op
// listener and logger.
func DefaultOptions() Options {
	return Options{
		Listener:   NopListener{},
		Policy:     reroute.DefaultPolicy(),
		Translator: locale.New("en"),
		Logger:     logging.Noop(),
	}
}
