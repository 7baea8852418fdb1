package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBase         string        `yaml:"api_base"`
	WindowHours     int           `yaml:"window_hours"`
	WindowChoices   []int         `yaml:"window_choices"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	HotspotLimit    int           `yaml:"hotspot_limit"`
	AlertLimit      int           `yaml:"alert_limit"`
	RiskLimit       int           `yaml:"risk_limit"`
	Surface         string        `yaml:"surface"`
	HTTPAddr        string        `yaml:"http_addr"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	LogFile         string        `yaml:"log_file"`
}

func Default() Config {
	return Config{
		APIBase:         "http://localhost:8080",
		WindowHours:     24,
		WindowChoices:   []int{6, 12, 24, 48, 72, 168},
		RefreshInterval: 30 * time.Second,
		HotspotLimit:    15,
		AlertLimit:      20,
		RiskLimit:       20,
		Surface:         "terminal",
		HTTPAddr:        ":8090",
		LogLevel:        "info",
		LogFormat:       "console",
	}
}

// Load starts from defaults, applies the YAML file named by DASHBOARD_CONFIG
// when set, then environment overrides.
func Load() (Config, error) {
	cfg := Default()
	if path := getEnv("DASHBOARD_CONFIG", ""); path != "" {
		if err := cfg.ApplyFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) ApplyFile(path string) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(body, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) ApplyEnv() {
	c.APIBase = getEnv("DASHBOARD_API_BASE", c.APIBase)
	c.WindowHours = getEnvInt("DASHBOARD_WINDOW_HOURS", c.WindowHours)
	c.WindowChoices = getEnvInts("DASHBOARD_WINDOW_CHOICES", c.WindowChoices)
	c.RefreshInterval = getEnvSeconds("DASHBOARD_REFRESH_SECONDS", c.RefreshInterval)
	c.HTTPTimeout = getEnvSeconds("DASHBOARD_HTTP_TIMEOUT_SECONDS", c.HTTPTimeout)
	c.HotspotLimit = getEnvInt("DASHBOARD_HOTSPOT_LIMIT", c.HotspotLimit)
	c.AlertLimit = getEnvInt("DASHBOARD_ALERT_LIMIT", c.AlertLimit)
	c.RiskLimit = getEnvInt("DASHBOARD_RISK_LIMIT", c.RiskLimit)
	c.Surface = getEnv("DASHBOARD_SURFACE", c.Surface)
	c.HTTPAddr = getEnv("DASHBOARD_HTTP_ADDR", c.HTTPAddr)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("LOG_FORMAT", c.LogFormat)
	c.LogFile = getEnv("LOG_FILE", c.LogFile)
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.APIBase) == "" {
		errs = append(errs, errors.New("api_base is required"))
	}
	if c.RefreshInterval <= 0 {
		errs = append(errs, errors.New("refresh_interval must be positive"))
	}
	if c.HTTPTimeout < 0 {
		errs = append(errs, errors.New("http_timeout must not be negative"))
	}
	for name, v := range map[string]int{"hotspot_limit": c.HotspotLimit, "alert_limit": c.AlertLimit, "risk_limit": c.RiskLimit} {
		if v <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive", name))
		}
	}
	switch c.Surface {
	case "terminal", "web":
	default:
		errs = append(errs, fmt.Errorf("unknown surface %q", c.Surface))
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvSeconds(key string, fallback time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return time.Duration(parsed * float64(time.Second))
}

func getEnvInts(key string, fallback []int) []int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	values := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil || n <= 0 {
			continue
		}
		values = append(values, n)
	}
	if len(values) == 0 {
		return fallback
	}
	return values
}
