package config_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohmanhakim/docsintel/internal/config"
)

func TestWithDefault_BuildsWithoutError(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)
	assert.Equal(t, "docsintel/1.0", cfg.UserAgent())
	assert.Equal(t, 0.5, cfg.ConfidenceThreshold())
	assert.Equal(t, "markdown", cfg.DisplayFormat())
	assert.Equal(t, 10, cfg.ResultsMaxDefault())
	assert.Equal(t, 40, cfg.LinesMaxDefault())
	assert.Len(t, cfg.URLPatterns(), 6)
}

func TestBuilderChain_OverridesDefaults(t *testing.T) {
	cfg, err := config.WithDefault().
		WithUserAgent("my-bot/2.0").
		WithConfidenceThreshold(0.7).
		WithResultsMaxDefault(25).
		WithLinesMaxDefault(80).
		WithDisplayFormat("json").
		Build()

	require.NoError(t, err)
	assert.Equal(t, "my-bot/2.0", cfg.UserAgent())
	assert.Equal(t, 0.7, cfg.ConfidenceThreshold())
	assert.Equal(t, 25, cfg.ResultsMaxDefault())
	assert.Equal(t, 80, cfg.LinesMaxDefault())
	assert.Equal(t, "json", cfg.DisplayFormat())
}

func TestBuild_RejectsOutOfRangeConfidenceThreshold(t *testing.T) {
	_, err := config.WithDefault().WithConfidenceThreshold(1.5).Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestBuild_RejectsUnknownDisplayFormat(t *testing.T) {
	_, err := config.WithDefault().WithDisplayFormat("yaml").Build()
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestURLPatterns_ReturnsDefensiveCopy(t *testing.T) {
	cfg, err := config.WithDefault().Build()
	require.NoError(t, err)

	patterns := cfg.URLPatterns()
	patterns[0] = "/mutated/"

	assert.NotEqual(t, "/mutated/", cfg.URLPatterns()[0])
}

func TestWithConfigFile_OverridesOnlyDeclaredFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	payload := map[string]any{
		"userAgent":           "file-bot/1.0",
		"confidenceThreshold": 0.65,
		"resultsMaxDefault":   15,
	}
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	cfg, err := config.WithConfigFile(path)
	require.NoError(t, err)

	assert.Equal(t, "file-bot/1.0", cfg.UserAgent())
	assert.Equal(t, 0.65, cfg.ConfidenceThreshold())
	assert.Equal(t, 15, cfg.ResultsMaxDefault())
	// Unspecified fields keep their spec default.
	assert.Equal(t, 40, cfg.LinesMaxDefault())
	assert.Equal(t, "markdown", cfg.DisplayFormat())
}

func TestWithConfigFile_MissingFile(t *testing.T) {
	_, err := config.WithConfigFile(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrFileDoesNotExist)
}

func TestWithConfigFile_InvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := config.WithConfigFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrConfigParsingFail)
}

func TestWithConfigFile_PropagatesBuildValidationErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	raw, err := json.Marshal(map[string]any{"displayFormat": "xml"})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, raw, 0o644))

	_, err = config.WithConfigFile(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestTimeoutsAndDurations_SurviveRoundTrip(t *testing.T) {
	cfg, err := config.WithDefault().
		WithProbeTimeout(7 * time.Second).
		WithRetrieveTimeout(45 * time.Second).
		WithRobotsTimeout(3 * time.Second).
		WithSuccessTTL(10 * time.Minute).
		WithErrorTTL(15 * time.Second).
		WithRobotsPolicyTTL(2 * time.Hour).
		WithDetectionsCacheTTL(5 * time.Minute).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 7*time.Second, cfg.ProbeTimeout())
	assert.Equal(t, 45*time.Second, cfg.RetrieveTimeout())
	assert.Equal(t, 3*time.Second, cfg.RobotsTimeout())
	assert.Equal(t, 10*time.Minute, cfg.SuccessTTL())
	assert.Equal(t, 15*time.Second, cfg.ErrorTTL())
	assert.Equal(t, 2*time.Hour, cfg.RobotsPolicyTTL())
	assert.Equal(t, 5*time.Minute, cfg.DetectionsCacheTTL())
}
