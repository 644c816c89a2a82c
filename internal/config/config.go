package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/username/daybook/pkg/dateutil"
)

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Source   SourceConfig   `mapstructure:"source"`
	Pager    PagerConfig    `mapstructure:"pager"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`
}

// CalendarConfig selects the time zone and week layout used for bucketing
type CalendarConfig struct {
	Timezone     string `mapstructure:"timezone"`      // IANA name, empty = local
	FirstWeekday string `mapstructure:"first_weekday"` // "sunday" or "monday", ...
}

// SourceConfig represents the ICS file the store is seeded from
type SourceConfig struct {
	ICSFile    string `mapstructure:"ics_file"`
	WindowDays int    `mapstructure:"window_days"` // recurrence expansion, each side of today
}

// PagerConfig represents the page window
type PagerConfig struct {
	Size int `mapstructure:"size"`
}

// DaemonConfig represents watch mode configuration
type DaemonConfig struct {
	Schedule string `mapstructure:"schedule"` // cron expression for reloads
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Load loads configuration from file. A missing default config file is not
// an error; an explicitly given one is.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.daybook")
		v.AddConfigPath("/etc/daybook")
	}

	// Read environment variables, e.g. DAYBOOK_CALENDAR_TIMEZONE
	v.SetEnvPrefix("daybook")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || configPath != "" {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.ExpandEnvVars()

	// Validate config
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// every key needs a default so AutomaticEnv can override it on Unmarshal
func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("calendar.first_weekday", "sunday")
	v.SetDefault("source.ics_file", "")
	v.SetDefault("source.window_days", 90)
	v.SetDefault("pager.size", 3)
	v.SetDefault("daemon.schedule", "*/15 * * * *")
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Context(); err != nil {
		return err
	}

	if c.Source.WindowDays < 0 {
		return fmt.Errorf("source.window_days must not be negative")
	}

	if c.Pager.Size < 3 || c.Pager.Size%2 == 0 {
		return fmt.Errorf("pager.size must be an odd number >= 3, got %d", c.Pager.Size)
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

// Context resolves the calendar section into a date context
func (c *Config) Context() (dateutil.Context, error) {
	first := time.Sunday
	if c.Calendar.FirstWeekday != "" {
		wd, ok := weekdays[strings.ToLower(c.Calendar.FirstWeekday)]
		if !ok {
			return dateutil.Context{}, &dateutil.CalendarResolutionError{
				Component: "first weekday",
				Value:     c.Calendar.FirstWeekday,
				Err:       fmt.Errorf("unknown weekday"),
			}
		}
		first = wd
	}
	tz := c.Calendar.Timezone
	if tz == "" {
		tz = "Local"
	}
	return dateutil.NewContext(tz, first)
}

// GetWindowDays returns how many days around today recurrences are expanded.
// Zero limits expansion to today; the default of 90 comes from Load.
func (c *SourceConfig) GetWindowDays() int {
	return max(c.WindowDays, 0)
}

// GetSchedule returns the reload cron expression. Default: every 15 minutes
func (c *DaemonConfig) GetSchedule() string {
	if c.Schedule == "" {
		return "*/15 * * * *"
	}
	return c.Schedule
}

// ExpandEnvVars expands environment variables in config strings
func (c *Config) ExpandEnvVars() {
	c.Source.ICSFile = os.ExpandEnv(c.Source.ICSFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
