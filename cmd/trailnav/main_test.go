package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/trailnav/geo"
	"github.com/katalvlaran/trailnav/metrics"
)

const trailGeoJSON = `{
  "type": "FeatureCollection",
  "features": [{
    "type": "Feature",
    "properties": {"highway": "residential", "name": "Main Street"},
    "geometry": {"type": "LineString", "coordinates": [[0, 0], [0.002, 0]]}
  }]
}`

const walkTrace = `unix_seconds,lat,lng
# leaving
1782896400,0,0
1782896430,0,0.0005
1782896460,0,0.001
1782896490,0,0.0015
1782896520,0,0.00199
1782896530,0,0.002
`

func TestParseCoordinate(t *testing.T) {
	c, err := parseCoordinate("45.5, 6.25")
	require.NoError(t, err)
	assert.Equal(t, geo.Coordinate{Lat: 45.5, Lng: 6.25}, c)

	for _, bad := range []string{"", "45.5", "north,east", "91,0", "0,181"} {
		_, err := parseCoordinate(bad)
		assert.Error(t, err, bad)
	}
}

func TestReadTrace(t *testing.T) {
	samples, err := readTrace(strings.NewReader(walkTrace))
	require.NoError(t, err)
	require.Len(t, samples, 6)
	assert.Equal(t, int64(1782896400), samples[0].Timestamp.Unix())
	assert.Equal(t, 0.002, samples[5].Coordinate.Lng)

	_, err = readTrace(strings.NewReader("1,0,0\nlater,0,0\n"))
	assert.ErrorContains(t, err, "row 2")
	_, err = readTrace(strings.NewReader("1,0\n"))
	assert.Error(t, err)
	_, err = readTrace(strings.NewReader("1,95,0\n"))
	assert.ErrorIs(t, err, geo.ErrInvalidCoordinate)
}

func TestRun_ReplaysTraceToCompletion(t *testing.T) {
	dir := t.TempDir()
	netPath := filepath.Join(dir, "trails.geojson")
	tracePath := filepath.Join(dir, "walk.csv")
	require.NoError(t, os.WriteFile(netPath, []byte(trailGeoJSON), 0o600))
	require.NoError(t, os.WriteFile(tracePath, []byte(walkTrace), 0o600))

	var stdout bytes.Buffer
	err := run(context.Background(), []string{
		"-network", netPath,
		"-from", "0,0",
		"-to", "0,0.002",
		"-trace", tracePath,
		"-log-level", "error",
	}, &stdout, io.Discard)
	require.NoError(t, err)

	var kinds []string
	var planned struct {
		Method       string `json:"method"`
		Instructions []struct {
			Text string `json:"text"`
		} `json:"instructions"`
	}
	sc := bufio.NewScanner(&stdout)
	for sc.Scan() {
		var rec struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(sc.Bytes(), &rec))
		kinds = append(kinds, rec.Type)
		if rec.Type == "route" {
			require.NoError(t, json.Unmarshal(rec.Data, &planned))
		}
	}

	assert.Equal(t, "route", kinds[0])
	assert.Contains(t, kinds, "step")
	assert.Contains(t, kinds, "completed")
	assert.NotContains(t, kinds, "off_route")
	assert.Equal(t, "graph", planned.Method)
	require.NotEmpty(t, planned.Instructions)
	assert.Equal(t, "Head east on Main Street, then walk 222 m", planned.Instructions[0].Text)
}

func TestRun_RejectsBadInput(t *testing.T) {
	err := run(context.Background(), []string{"-from", "0,0"}, io.Discard, io.Discard)
	assert.ErrorIs(t, err, errBadCoordinate)

	err = run(context.Background(), []string{"-from", "0,0", "-to", "0,0.001", "-mode", "flying"}, io.Discard, io.Discard)
	assert.Error(t, err)
}

func TestRouter(t *testing.T) {
	c, err := metrics.New(prometheus.NewRegistry())
	require.NoError(t, err)
	c.SessionStarted()
	srv := httptest.NewServer(newRouter(c))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Contains(t, string(body), "trailnav_active_sessions 1")
}
