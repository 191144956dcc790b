// Command trailnav plans a route over a GeoJSON trail network and, given a
// position trace, replays it through the navigator, printing the route, every
// progress update and every notification as JSON lines on stdout.
//
//	trailnav -network trails.geojson -from 45.8326,6.8652 -to 45.8421,6.8790 \
//	    -mode walking -lang fr -trace walk.csv
//
// Every flag can also be set from the environment with the TRAILNAV_ prefix,
// for example TRAILNAV_METRICS_ADDR=:9090.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/peterbourgon/ff"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/trailnav/announce"
	"github.com/katalvlaran/trailnav/config"
	"github.com/katalvlaran/trailnav/logging"
	"github.com/katalvlaran/trailnav/metrics"
	"github.com/katalvlaran/trailnav/navigator"
	"github.com/katalvlaran/trailnav/network"
	"github.com/katalvlaran/trailnav/reroute"
	"github.com/katalvlaran/trailnav/route"
	"github.com/katalvlaran/trailnav/routing"
	"github.com/katalvlaran/trailnav/speed"
	"github.com/katalvlaran/trailnav/tracking"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(os.Stderr, "trailnav:", err)
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("trailnav", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath  = fs.String("config", "", "YAML configuration file")
		networkPath = fs.String("network", "", "GeoJSON trail network; without it every route is a direct line")
		fromFlag    = fs.String("from", "", "start position as lat,lng")
		toFlag      = fs.String("to", "", "destination as lat,lng")
		mode        = fs.String("mode", "", "walking, cycling or driving")
		lang        = fs.String("lang", "", "instruction language, e.g. en, fr, de, es")
		tracePath   = fs.String("trace", "", "CSV position trace (unix_seconds,lat,lng) to replay")
		metricsAddr = fs.String("metrics-addr", "", "serve /metrics and /healthz on this address")
		logLevel    = fs.String("log-level", "", "debug, info, warn or error")
	)
	if err := ff.Parse(fs, args, ff.WithEnvVarPrefix("TRAILNAV")); err != nil {
		return err
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			return err
		}
	}
	// Flags win over the file.
	if *mode != "" {
		cfg.Routing.Mode = *mode
	}
	if *lang != "" {
		cfg.Locale.Language = *lang
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	class, err := cfg.Routing.VehicleClass()
	if err != nil {
		return err
	}

	from, err := parseCoordinate(*fromFlag)
	if err != nil {
		return fmt.Errorf("-from: %w", err)
	}
	to, err := parseCoordinate(*toFlag)
	if err != nil {
		return fmt.Errorf("-to: %w", err)
	}

	logCfg := cfg.Logging.Config()
	logCfg.Output = stderr
	logger := logging.New(logCfg)

	collector, err := metrics.New(prometheus.NewRegistry())
	if err != nil {
		return err
	}
	if cfg.Metrics.Addr != "" {
		shutdown, err := serveMetrics(cfg.Metrics.Addr, collector, logger)
		if err != nil {
			return err
		}
		defer shutdown()
	}

	gen := cfg.Locale.Generator()
	planner := reroute.FallbackPlanner{Cutoff: cfg.Routing.DirectCutoffMeters, Generator: gen}
	if *networkPath != "" {
		features, err := network.LoadGeoJSONFile(*networkPath)
		if err != nil {
			return err
		}
		opts := append(cfg.Routing.PlannerOptions(),
			routing.WithGenerator(gen),
			routing.WithLogger(logger),
			routing.WithMetrics(collector),
		)
		planner.Primary = routing.NewPlanner(features, opts...)
	}

	var samples []speed.Sample
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			return fmt.Errorf("trailnav: %w", err)
		}
		samples, err = readTrace(f)
		f.Close()
		if err != nil {
			return err
		}
	}

	out := &printer{enc: json.NewEncoder(stdout)}
	clk := &traceClock{t: time.Now()}
	opts := []navigator.Option{
		navigator.WithListener(jsonListener{out}),
		navigator.WithPolicy(cfg.Reroute.Policy()),
		navigator.WithTrackingOptions(cfg.Tracking.Options()...),
		navigator.WithSpeedOptions(append(cfg.Speed.Options(), speed.WithClock(clk.Now))...),
		navigator.WithTranslator(cfg.Locale.Translator()),
		navigator.WithLogger(logger),
		navigator.WithMetrics(collector),
	}
	if cfg.Announce.Enabled {
		sink := announce.SinkFunc(func(text string, p announce.Priority) {
			out.emit("say", sayRecord{Text: text, Priority: p.String()})
		})
		opts = append(opts, navigator.WithAnnouncer(announce.NewAnnouncer(sink,
			announce.WithPolicy(cfg.Announce.Policy()),
			announce.WithClock(clk.Now),
		)))
	}
	nav, err := navigator.New(planner, opts...)
	if err != nil {
		return err
	}

	if len(samples) > 0 {
		clk.Set(samples[0].Timestamp)
	}
	r, err := nav.Start(ctx, from, to, class)
	if err != nil {
		return err
	}
	defer nav.Stop()
	out.emit("route", r)

	return replay(ctx, nav, samples, clk, out)
}

// replay feeds samples in order. Each reroute is awaited before the next
// sample so the output does not depend on goroutine scheduling.
func replay(ctx context.Context, nav *navigator.Navigator, samples []speed.Sample, clk *traceClock, out *printer) error {
	for _, s := range samples {
		if err := ctx.Err(); err != nil {
			return err
		}
		clk.Set(s.Timestamp)
		u, err := nav.UpdatePosition(s)
		if err != nil {
			return err
		}
		out.emit("progress", u)
		nav.Wait()
		if u.State == tracking.StateCompleted {
			return nil
		}
	}
	return nil
}

func newRouter(c *metrics.Collector) *mux.Router {
	router := mux.NewRouter().StrictSlash(true)
	router.Handle("/metrics", c.Handler()).Methods("GET")
	router.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok\n")
	}).Methods("GET")
	return router
}

func serveMetrics(addr string, c *metrics.Collector, logger logging.Logger) (func(), error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("trailnav: metrics listener: %w", err)
	}
	srv := &http.Server{Handler: newRouter(c), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error(context.Background(), "metrics server stopped", logging.Err(err))
		}
	}()
	logger.Info(context.Background(), "serving metrics", logging.String("addr", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}, nil
}

// traceClock reports the timestamp of the sample being replayed.
type traceClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *traceClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *traceClock) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

type record struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

type sayRecord struct {
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

type stepRecord struct {
	Index       int               `json:"index"`
	Instruction route.Instruction `json:"instruction"`
}

type offRouteRecord struct {
	DistanceMeters float64 `json:"distance_meters"`
	Consecutive    int     `json:"consecutive"`
}

// printer writes one JSON object per line. Safe for concurrent use.
type printer struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func (p *printer) emit(kind string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_ = p.enc.Encode(record{Type: kind, Data: data})
}

// jsonListener prints navigator notifications.
type jsonListener struct{ out *printer }

func (l jsonListener) OnStepChanged(step int, in route.Instruction) {
	l.out.emit("step", stepRecord{Index: step, Instruction: in})
}

func (l jsonListener) OnOffRoute(distanceMeters float64, consecutive int) {
	l.out.emit("off_route", offRouteRecord{DistanceMeters: distanceMeters, Consecutive: consecutive})
}

func (l jsonListener) OnRouteCompleted() { l.out.emit("completed", nil) }

func (l jsonListener) OnRouteReplaced(r route.Route) { l.out.emit("route_replaced", r) }

func (l jsonListener) OnRerouteFailed(err error) { l.out.emit("reroute_failed", err.Error()) }
