// Package config builds the Config an engine.Engine is constructed from:
// HTTP cache tunables, robots compliance tunables, detection thresholds,
// and query defaults. It never reaches into the network itself; its only
// job is to produce one consistent, validated set of numbers.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type Config struct {
	//===============
	// Fetch
	//===============
	// User agent string sent on every outbound HTTP request and declared to
	// robots.txt's can_fetch evaluation.
	userAgent string
	// Per-request timeouts, distinct from any caller-supplied query deadline.
	probeTimeout    time.Duration
	retrieveTimeout time.Duration
	robotsTimeout   time.Duration

	//===============
	// HTTP cache
	//===============
	maxContentBytes int
	probeCapacity   int
	successTTL      time.Duration
	errorTTL        time.Duration

	//===============
	// Robots compliance
	//===============
	robotsPolicyTTL      time.Duration
	robotsHostCapacity   int

	//===============
	// Politeness
	//===============
	baseDelay              time.Duration
	jitter                 time.Duration
	randomSeed             int64
	backoffInitialDuration time.Duration
	backoffMultiplier      float64
	backoffMaxDuration     time.Duration

	//===============
	// Detection orchestrator
	//===============
	confidenceThreshold     float64
	detectionsCacheTTL      time.Duration
	detectionsCacheCapacity int
	urlPatterns             []string

	//===============
	// Query defaults
	//===============
	resultsMaxDefault int
	linesMaxDefault   int
	fuzzyThreshold    float64

	//===============
	// Interface / ambient
	//===============
	displayFormat string
	logFile       string
	logLevel      string
}

type configDTO struct {
	UserAgent               string        `json:"userAgent,omitempty"`
	ProbeTimeout            time.Duration `json:"probeTimeout,omitempty"`
	RetrieveTimeout         time.Duration `json:"retrieveTimeout,omitempty"`
	RobotsTimeout           time.Duration `json:"robotsTimeout,omitempty"`
	MaxContentBytes         int           `json:"maxContentBytes,omitempty"`
	ProbeCapacity           int           `json:"probeCapacity,omitempty"`
	SuccessTTL              time.Duration `json:"successTTL,omitempty"`
	ErrorTTL                time.Duration `json:"errorTTL,omitempty"`
	RobotsPolicyTTL         time.Duration `json:"robotsPolicyTTL,omitempty"`
	RobotsHostCapacity      int           `json:"robotsHostCapacity,omitempty"`
	BaseDelay               time.Duration `json:"baseDelay,omitempty"`
	Jitter                  time.Duration `json:"jitter,omitempty"`
	RandomSeed              int64         `json:"randomSeed,omitempty"`
	BackoffInitialDuration  time.Duration `json:"backoffInitialDuration,omitempty"`
	BackoffMultiplier       float64       `json:"backoffMultiplier,omitempty"`
	BackoffMaxDuration      time.Duration `json:"backoffMaxDuration,omitempty"`
	ConfidenceThreshold     float64       `json:"confidenceThreshold,omitempty"`
	DetectionsCacheTTL      time.Duration `json:"detectionsCacheTTL,omitempty"`
	DetectionsCacheCapacity int           `json:"detectionsCacheCapacity,omitempty"`
	URLPatterns             []string      `json:"urlPatterns,omitempty"`
	ResultsMaxDefault       int           `json:"resultsMaxDefault,omitempty"`
	LinesMaxDefault         int           `json:"linesMaxDefault,omitempty"`
	FuzzyThreshold          float64       `json:"fuzzyThreshold,omitempty"`
	DisplayFormat           string        `json:"displayFormat,omitempty"`
	LogFile                 string        `json:"logFile,omitempty"`
	LogLevel                string        `json:"logLevel,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	cfg := WithDefault()

	if dto.UserAgent != "" {
		cfg = cfg.WithUserAgent(dto.UserAgent)
	}
	if dto.ProbeTimeout != 0 {
		cfg = cfg.WithProbeTimeout(dto.ProbeTimeout)
	}
	if dto.RetrieveTimeout != 0 {
		cfg = cfg.WithRetrieveTimeout(dto.RetrieveTimeout)
	}
	if dto.RobotsTimeout != 0 {
		cfg = cfg.WithRobotsTimeout(dto.RobotsTimeout)
	}
	if dto.MaxContentBytes != 0 {
		cfg = cfg.WithMaxContentBytes(dto.MaxContentBytes)
	}
	if dto.ProbeCapacity != 0 {
		cfg = cfg.WithProbeCapacity(dto.ProbeCapacity)
	}
	if dto.SuccessTTL != 0 {
		cfg = cfg.WithSuccessTTL(dto.SuccessTTL)
	}
	if dto.ErrorTTL != 0 {
		cfg = cfg.WithErrorTTL(dto.ErrorTTL)
	}
	if dto.RobotsPolicyTTL != 0 {
		cfg = cfg.WithRobotsPolicyTTL(dto.RobotsPolicyTTL)
	}
	if dto.RobotsHostCapacity != 0 {
		cfg = cfg.WithRobotsHostCapacity(dto.RobotsHostCapacity)
	}
	if dto.BaseDelay != 0 {
		cfg = cfg.WithBaseDelay(dto.BaseDelay)
	}
	if dto.Jitter != 0 {
		cfg = cfg.WithJitter(dto.Jitter)
	}
	if dto.RandomSeed != 0 {
		cfg = cfg.WithRandomSeed(dto.RandomSeed)
	}
	if dto.BackoffInitialDuration != 0 {
		cfg = cfg.WithBackoffInitialDuration(dto.BackoffInitialDuration)
	}
	if dto.BackoffMultiplier != 0 {
		cfg = cfg.WithBackoffMultiplier(dto.BackoffMultiplier)
	}
	if dto.BackoffMaxDuration != 0 {
		cfg = cfg.WithBackoffMaxDuration(dto.BackoffMaxDuration)
	}
	if dto.ConfidenceThreshold != 0 {
		cfg = cfg.WithConfidenceThreshold(dto.ConfidenceThreshold)
	}
	if dto.DetectionsCacheTTL != 0 {
		cfg = cfg.WithDetectionsCacheTTL(dto.DetectionsCacheTTL)
	}
	if dto.DetectionsCacheCapacity != 0 {
		cfg = cfg.WithDetectionsCacheCapacity(dto.DetectionsCacheCapacity)
	}
	if len(dto.URLPatterns) > 0 {
		cfg = cfg.WithURLPatterns(dto.URLPatterns)
	}
	if dto.ResultsMaxDefault != 0 {
		cfg = cfg.WithResultsMaxDefault(dto.ResultsMaxDefault)
	}
	if dto.LinesMaxDefault != 0 {
		cfg = cfg.WithLinesMaxDefault(dto.LinesMaxDefault)
	}
	if dto.FuzzyThreshold != 0 {
		cfg = cfg.WithFuzzyThreshold(dto.FuzzyThreshold)
	}
	if dto.DisplayFormat != "" {
		cfg = cfg.WithDisplayFormat(dto.DisplayFormat)
	}
	if dto.LogFile != "" {
		cfg = cfg.WithLogFile(dto.LogFile)
	}
	if dto.LogLevel != "" {
		cfg = cfg.WithLogLevel(dto.LogLevel)
	}

	return cfg.Build()
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	if err := json.Unmarshal(configContent, &cfgDTO); err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	return newConfigFromDTO(cfgDTO)
}

// WithDefault returns a *Config seeded with every documented spec default.
func WithDefault() *Config {
	return &Config{
		userAgent:       "docsintel/1.0",
		probeTimeout:    10 * time.Second,
		retrieveTimeout: 30 * time.Second,
		robotsTimeout:   5 * time.Second,

		maxContentBytes: 256 * 1024 * 1024,
		probeCapacity:   1000,
		successTTL:      300 * time.Second,
		errorTTL:        30 * time.Second,

		robotsPolicyTTL:    3600 * time.Second,
		robotsHostCapacity: 500,

		baseDelay:              0,
		jitter:                 0,
		randomSeed:             time.Now().UnixNano(),
		backoffInitialDuration: 1 * time.Second,
		backoffMultiplier:      2.0,
		backoffMaxDuration:     30 * time.Second,

		confidenceThreshold:     0.5,
		detectionsCacheTTL:      300 * time.Second,
		detectionsCacheCapacity: 500,
		urlPatterns: []string{
			"/en/latest/", "/latest/", "/en/stable/", "/stable/", "/main/", "/master/",
		},

		resultsMaxDefault: 10,
		linesMaxDefault:   40,
		fuzzyThreshold:    50.0,

		displayFormat: "markdown",
		logLevel:      "info",
	}
}

func (c *Config) WithUserAgent(agent string) *Config { c.userAgent = agent; return c }

func (c *Config) WithProbeTimeout(d time.Duration) *Config    { c.probeTimeout = d; return c }
func (c *Config) WithRetrieveTimeout(d time.Duration) *Config { c.retrieveTimeout = d; return c }
func (c *Config) WithRobotsTimeout(d time.Duration) *Config   { c.robotsTimeout = d; return c }

func (c *Config) WithMaxContentBytes(n int) *Config { c.maxContentBytes = n; return c }
func (c *Config) WithProbeCapacity(n int) *Config   { c.probeCapacity = n; return c }
func (c *Config) WithSuccessTTL(d time.Duration) *Config { c.successTTL = d; return c }
func (c *Config) WithErrorTTL(d time.Duration) *Config   { c.errorTTL = d; return c }

func (c *Config) WithRobotsPolicyTTL(d time.Duration) *Config { c.robotsPolicyTTL = d; return c }
func (c *Config) WithRobotsHostCapacity(n int) *Config        { c.robotsHostCapacity = n; return c }

func (c *Config) WithBaseDelay(d time.Duration) *Config { c.baseDelay = d; return c }
func (c *Config) WithJitter(d time.Duration) *Config    { c.jitter = d; return c }
func (c *Config) WithRandomSeed(seed int64) *Config     { c.randomSeed = seed; return c }
func (c *Config) WithBackoffInitialDuration(d time.Duration) *Config {
	c.backoffInitialDuration = d
	return c
}
func (c *Config) WithBackoffMultiplier(m float64) *Config  { c.backoffMultiplier = m; return c }
func (c *Config) WithBackoffMaxDuration(d time.Duration) *Config {
	c.backoffMaxDuration = d
	return c
}

func (c *Config) WithConfidenceThreshold(t float64) *Config { c.confidenceThreshold = t; return c }
func (c *Config) WithDetectionsCacheTTL(d time.Duration) *Config {
	c.detectionsCacheTTL = d
	return c
}
func (c *Config) WithDetectionsCacheCapacity(n int) *Config {
	c.detectionsCacheCapacity = n
	return c
}
func (c *Config) WithURLPatterns(patterns []string) *Config { c.urlPatterns = patterns; return c }

func (c *Config) WithResultsMaxDefault(n int) *Config  { c.resultsMaxDefault = n; return c }
func (c *Config) WithLinesMaxDefault(n int) *Config    { c.linesMaxDefault = n; return c }
func (c *Config) WithFuzzyThreshold(t float64) *Config { c.fuzzyThreshold = t; return c }

func (c *Config) WithDisplayFormat(format string) *Config { c.displayFormat = format; return c }
func (c *Config) WithLogFile(path string) *Config         { c.logFile = path; return c }
func (c *Config) WithLogLevel(level string) *Config       { c.logLevel = level; return c }

func (c *Config) Build() (Config, error) {
	if c.confidenceThreshold < 0 || c.confidenceThreshold > 1 {
		return Config{}, fmt.Errorf("%w: confidenceThreshold must be in [0,1], got %v", ErrInvalidConfig, c.confidenceThreshold)
	}
	if c.displayFormat != "markdown" && c.displayFormat != "json" {
		return Config{}, fmt.Errorf("%w: displayFormat must be markdown or json, got %q", ErrInvalidConfig, c.displayFormat)
	}
	return *c, nil
}

func (c Config) UserAgent() string             { return c.userAgent }
func (c Config) ProbeTimeout() time.Duration    { return c.probeTimeout }
func (c Config) RetrieveTimeout() time.Duration { return c.retrieveTimeout }
func (c Config) RobotsTimeout() time.Duration   { return c.robotsTimeout }

func (c Config) MaxContentBytes() int         { return c.maxContentBytes }
func (c Config) ProbeCapacity() int           { return c.probeCapacity }
func (c Config) SuccessTTL() time.Duration    { return c.successTTL }
func (c Config) ErrorTTL() time.Duration      { return c.errorTTL }

func (c Config) RobotsPolicyTTL() time.Duration { return c.robotsPolicyTTL }
func (c Config) RobotsHostCapacity() int        { return c.robotsHostCapacity }

func (c Config) BaseDelay() time.Duration { return c.baseDelay }
func (c Config) Jitter() time.Duration    { return c.jitter }
func (c Config) RandomSeed() int64        { return c.randomSeed }
func (c Config) BackoffInitialDuration() time.Duration { return c.backoffInitialDuration }
func (c Config) BackoffMultiplier() float64             { return c.backoffMultiplier }
func (c Config) BackoffMaxDuration() time.Duration      { return c.backoffMaxDuration }

func (c Config) ConfidenceThreshold() float64         { return c.confidenceThreshold }
func (c Config) DetectionsCacheTTL() time.Duration    { return c.detectionsCacheTTL }
func (c Config) DetectionsCacheCapacity() int         { return c.detectionsCacheCapacity }
func (c Config) URLPatterns() []string {
	patterns := make([]string, len(c.urlPatterns))
	copy(patterns, c.urlPatterns)
	return patterns
}

func (c Config) ResultsMaxDefault() int  { return c.resultsMaxDefault }
func (c Config) LinesMaxDefault() int    { return c.linesMaxDefault }
func (c Config) FuzzyThreshold() float64 { return c.fuzzyThreshold }

func (c Config) DisplayFormat() string { return c.displayFormat }
func (c Config) LogFile() string       { return c.logFile }
func (c Config) LogLevel() string      { return c.logLevel }
