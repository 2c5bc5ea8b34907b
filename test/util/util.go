// Package util provides helper functions shared across integration tests.
//
// StationAPI serves a fixed set of NGSI station entities the way the city
// open-data portal does.
//
// StartMosquitto and StartInfluxDB launch disposable brokers and databases in
// Docker containers. Both return a cleanup function.
//
// WaitForMetric polls a Prometheus metrics endpoint until the desired metric
// appears in the output.
package util

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/docker/go-connections/nat"
	paho "github.com/eclipse/paho.mqtt.golang"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// Default timeouts for helper operations
	MosquittoReadyTimeout = 5 * time.Second
	MetricTimeout         = 5 * time.Second

	// InfluxDB bootstrap settings.
	InfluxOrg    = "velomagg"
	InfluxBucket = "analytics"
	InfluxToken  = "velomagg-test-token"

	pollInterval = 50 * time.Millisecond
)

// Stations is a small network: one empty, one balanced, one full and one
// broken station, plus one whose counts exceed its capacity.
const Stations = `[
  {"id": "001", "address": {"value": {"streetAddress": "Comedie", "addressLocality": "Montpellier"}},
   "availableBikeNumber": {"value": 0}, "freeSlotNumber": {"value": 12}, "totalSlotNumber": {"value": 12},
   "status": {"value": "working"}, "location": {"value": {"coordinates": [3.8797, 43.6085]}}},
  {"id": "002", "address": {"value": {"streetAddress": "Gare Saint-Roch", "addressLocality": "Montpellier"}},
   "availableBikeNumber": {"value": 6}, "freeSlotNumber": {"value": 6}, "totalSlotNumber": {"value": 12},
   "status": {"value": "working"}, "location": {"value": {"coordinates": [3.8805, 43.6047]}}},
  {"id": "003", "address": {"value": {"streetAddress": "Antigone", "addressLocality": "Montpellier"}},
   "availableBikeNumber": {"value": 10}, "freeSlotNumber": {"value": 0}, "totalSlotNumber": {"value": 10},
   "status": {"value": "working"}, "location": {"value": {"coordinates": [3.8900, 43.6080]}}},
  {"id": "004", "address": {"value": {"streetAddress": "Corum", "addressLocality": "Montpellier"}},
   "availableBikeNumber": {"value": 3}, "freeSlotNumber": {"value": 5}, "totalSlotNumber": {"value": 8},
   "status": {"value": "broken"}, "location": {"value": {"coordinates": [3.8820, 43.6140]}}},
  {"id": "005", "address": {"value": {"streetAddress": "Observatoire", "addressLocality": "Montpellier"}},
   "availableBikeNumber": {"value": 14}, "freeSlotNumber": {"value": 0}, "totalSlotNumber": {"value": 10},
   "status": {"value": "working"}, "location": {"value": {"coordinates": [3.8770, 43.6060]}}}
]`

// StationAPI starts an HTTP server answering the station and time series
// endpoints. Every station has the same short history.
func StationAPI() *httptest.Server {
	series := `{"index": ["2025-03-03T07:00:00", "2025-03-03T08:00:00", "2025-03-03T18:00:00"], "values": [8, 2, 5]}`
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.URL.Path == "/bikestation":
			_, _ = w.Write([]byte(Stations))
		case strings.HasPrefix(r.URL.Path, "/bikestation_timeseries/"):
			_, _ = w.Write([]byte(series))
		default:
			http.NotFound(w, r)
		}
	}))
}

// WaitForMetric polls the given metrics URL until the provided substring is
// found in the output or the context is done.
func WaitForMetric(ctx context.Context, metricsURL, substr string) error {
	for {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, metricsURL, nil)
		resp, err := http.DefaultClient.Do(req)
		if err == nil {
			body, rerr := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			if rerr != nil {
				return fmt.Errorf("read metrics body: %w", rerr)
			}
			if strings.Contains(string(body), substr) {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("metric %q not found: %w", substr, ctx.Err())
		case <-time.After(pollInterval):
		}
	}
}

// StartMosquitto launches a temporary Mosquitto broker inside a Docker
// container and returns its broker URL along with a cleanup function.
func StartMosquitto(ctx context.Context) (string, func(), error) {
	conf := `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`
	dir, err := os.MkdirTemp("", "mosq")
	if err != nil {
		return "", nil, err
	}
	path := filepath.Join(dir, "mosquitto.conf")
	if err := os.WriteFile(path, []byte(conf), 0644); err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}

	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
		Files: []tc.ContainerFile{
			{
				HostFilePath:      path,
				ContainerFilePath: "/mosquitto/config/mosquitto.conf",
				FileMode:          0644,
			},
		},
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		_ = os.RemoveAll(dir)
		return "", nil, err
	}
	cleanup := func() {
		_ = cont.Terminate(context.Background())
		_ = os.RemoveAll(dir)
	}

	broker, err := endpoint(ctx, cont, "1883", "tcp")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	waitCtx, cancel := context.WithTimeout(ctx, MosquittoReadyTimeout)
	defer cancel()
	if err := waitForMQTTReady(waitCtx, broker); err != nil {
		cleanup()
		return "", nil, err
	}
	return broker, cleanup, nil
}

// StartInfluxDB launches an InfluxDB 2 instance bootstrapped with InfluxOrg,
// InfluxBucket and InfluxToken and returns its base URL.
func StartInfluxDB(ctx context.Context) (string, func(), error) {
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "velomagg",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "velomagg-password",
			"DOCKER_INFLUXDB_INIT_ORG":         InfluxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      InfluxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": InfluxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { _ = cont.Terminate(context.Background()) }
	url, err := endpoint(ctx, cont, "8086", "http")
	if err != nil {
		cleanup()
		return "", nil, err
	}
	return url, cleanup, nil
}

func endpoint(ctx context.Context, cont tc.Container, port, scheme string) (string, error) {
	host, err := cont.Host(ctx)
	if err != nil {
		return "", err
	}
	mapped, err := cont.MappedPort(ctx, nat.Port(port))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s://%s:%s", scheme, host, mapped.Port()), nil
}

func waitForMQTTReady(ctx context.Context, broker string) error {
	opts := paho.NewClientOptions().AddBroker(broker).SetClientID("probe")
	for {
		cli := paho.NewClient(opts)
		token := cli.Connect()
		token.Wait()
		if token.Error() == nil {
			cli.Disconnect(100)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}
