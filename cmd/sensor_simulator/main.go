// Sensor simulator posts randomized readings to a running Spilldata API
// and prints the latest stored reading for the device afterwards.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/AdilzhanB/Spilldataserver/pkg/config"
	"github.com/AdilzhanB/Spilldataserver/pkg/logging"
	"go.uber.org/zap"
)

var flowDirections = []string{"in", "out"}

func main() {
	configPath := flag.String("config", "", "Path to a TOML config file")
	apiURL := flag.String("url", "", "Base URL of the API (overrides config)")
	deviceID := flag.String("device", "", "Device id to report as (overrides config)")
	count := flag.Int("count", 0, "Number of readings to send (overrides config)")
	interval := flag.Duration("interval", 0, "Delay between readings (overrides config)")
	flag.Parse()

	cfg, err := config.LoadSimulatorConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *deviceID != "" {
		cfg.DeviceID = *deviceID
	}
	if *count > 0 {
		cfg.Count = *count
	}
	delay := time.Duration(cfg.IntervalSeconds) * time.Second
	if *interval > 0 {
		delay = *interval
	}

	log, err := logging.New("info")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logging.Flush(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sim := &simulator{
		baseURL:  strings.TrimRight(cfg.APIURL, "/"),
		deviceID: cfg.DeviceID,
		http:     &http.Client{Timeout: 10 * time.Second},
		log:      log,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := sim.run(ctx, cfg.Count, delay); err != nil {
		log.Error("simulation failed", zap.Error(err))
		os.Exit(1)
	}
}

type simulator struct {
	baseURL  string
	deviceID string
	http     *http.Client
	log      *zap.Logger
	rnd      *rand.Rand
}

func (s *simulator) run(ctx context.Context, count int, delay time.Duration) error {
	for i := 0; i < count; i++ {
		if i > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := s.send(ctx, s.randomReading()); err != nil {
			// Keep going, the next reading may succeed.
			s.log.Warn("failed to send reading", zap.Int("n", i+1), zap.Error(err))
			continue
		}
		s.log.Info("reading sent", zap.Int("n", i+1), zap.String("device_id", s.deviceID))
	}

	latest, err := s.latest(ctx)
	if err != nil {
		return err
	}
	fmt.Println(string(latest))
	return nil
}

func (s *simulator) randomReading() map[string]any {
	return map[string]any{
		"device_id":      s.deviceID,
		"temperature":    14 + s.rnd.Float64()*(21-14),
		"humidity":       s.rnd.Float64() * 100,
		"flow_rate":      s.rnd.Float64() * 25,
		"flow_direction": flowDirections[s.rnd.Intn(len(flowDirections))],
		"latitude":       59.9 + s.rnd.Float64()*0.01,
		"longitude":      10.7 + s.rnd.Float64()*0.01,
	}
}

func (s *simulator) send(ctx context.Context, reading map[string]any) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/api/sensor-data", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return fmt.Errorf("post reading: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, string(b))
	}
	return nil
}

func (s *simulator) latest(ctx context.Context) ([]byte, error) {
	endpoint := s.baseURL + "/api/sensor-data/" + url.PathEscape(s.deviceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get latest reading: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}
