package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/viniciushammett/go-stream-anomaly-detector/internal/simulator"
)

type Detector struct {
	WindowSize  int     `yaml:"windowSize"`
	Sensitivity float64 `yaml:"sensitivity"`
}

type Stream struct {
	Interval string `yaml:"interval"` // ex: "100ms"
	History  int    `yaml:"history"`
}

// TickInterval parses Interval, falling back to 100ms on anything
// unparseable or non-positive.
func (s Stream) TickInterval() time.Duration {
	d, err := time.ParseDuration(s.Interval)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

type Server struct {
	Addr      string `yaml:"addr"`
	AuthToken string `yaml:"authToken"`
}

type Storage struct {
	Path string `yaml:"path"`
}

type Slack struct {
	Enabled bool   `yaml:"enabled"`
	Webhook string `yaml:"webhook"`
}

type Kafka struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type Tracing struct {
	Enabled      bool    `yaml:"enabled"`
	ServiceName  string  `yaml:"serviceName"`
	OTLPEndpoint string  `yaml:"otlpEndpoint"`
	SampleRatio  float64 `yaml:"sampleRatio"`
}

// Simulator mirrors simulator.Config with pointers where zero is a
// meaningful setting (no noise, no drift, injection off), so an explicit
// 0 in YAML is distinguishable from an absent key.
type Simulator struct {
	Seasonal      string   `yaml:"seasonal"`
	NoiseLevel    *float64 `yaml:"noiseLevel"`
	TrendRate     *float64 `yaml:"trendRate"`
	AnomalyChance *float64 `yaml:"anomalyChance"`
	Seed          int64    `yaml:"seed"`
}

// Build resolves unset fields to the simulator defaults.
func (s Simulator) Build() simulator.Config {
	c := simulator.DefaultConfig()
	if s.Seasonal != "" {
		c.Seasonal = s.Seasonal
	}
	if s.NoiseLevel != nil {
		c.NoiseLevel = *s.NoiseLevel
	}
	if s.TrendRate != nil {
		c.TrendRate = *s.TrendRate
	}
	if s.AnomalyChance != nil {
		c.AnomalyChance = *s.AnomalyChance
	}
	c.Seed = s.Seed
	return c
}

type Config struct {
	Detector  Detector  `yaml:"detector"`
	Stream    Stream    `yaml:"stream"`
	Simulator Simulator `yaml:"simulator"`
	Server    Server    `yaml:"server"`
	Storage   Storage   `yaml:"storage"`
	Slack     Slack     `yaml:"slack"`
	Kafka     Kafka     `yaml:"kafka"`
	Tracing   Tracing   `yaml:"tracing"`
}

// Load reads the YAML config and fills in defaults. A missing file is not
// an error; the defaults alone describe a runnable demo setup.
func Load(path string) (*Config, error) {
	c := &Config{}
	if b, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("unmarshal yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	if c.Detector.WindowSize == 0 {
		c.Detector.WindowSize = 50
	}
	if c.Detector.Sensitivity == 0 {
		c.Detector.Sensitivity = 1.8
	}
	if c.Stream.Interval == "" {
		c.Stream.Interval = "100ms"
	}
	if c.Stream.History == 0 {
		c.Stream.History = 500
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "data/stream-anomaly.db"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "stream.anomalies"
	}
	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "go-stream-anomaly-detector"
	}
	if c.Tracing.OTLPEndpoint == "" {
		c.Tracing.OTLPEndpoint = "localhost:4317"
	}
	if c.Tracing.SampleRatio == 0 {
		c.Tracing.SampleRatio = 1.0
	}
	return c, nil
}
