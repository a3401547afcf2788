// FilePath: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/damachine/coolerdash/internal/errors"
)

// DefaultPath is the config file read when COOLERDASH_CONFIG is not set.
const DefaultPath = "/etc/coolerdash/config.ini"

// DaemonUser is the fixed HTTP basic-auth user of the CoolerControl daemon.
const DaemonUser = "CCAdmin"

// Config holds all configuration for the agent. It is loaded once at startup
// and frozen afterwards.
type Config struct {
	Display     DisplayConfig     `mapstructure:"display"`
	Layout      LayoutConfig      `mapstructure:"layout"`
	Font        FontConfig        `mapstructure:"font"`
	Temperature TemperatureConfig `mapstructure:"temperature"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Paths       PathsConfig       `mapstructure:"paths"`
	Daemon      DaemonConfig      `mapstructure:"daemon"`
	Status      StatusConfig      `mapstructure:"status"`
	Colors      ColorsConfig      `mapstructure:",squash"`
}

type DisplayConfig struct {
	Width               int `mapstructure:"width"`
	Height              int `mapstructure:"height"`
	RefreshIntervalSec  int `mapstructure:"refresh_interval_sec"`
	RefreshIntervalNsec int `mapstructure:"refresh_interval_nsec"`
	Brightness          int `mapstructure:"brightness"`
	Orientation         int `mapstructure:"orientation"`
}

type LayoutConfig struct {
	BoxWidth        int     `mapstructure:"box_width"`
	BoxHeight       int     `mapstructure:"box_height"`
	BoxGap          int     `mapstructure:"box_gap"`
	BarWidth        int     `mapstructure:"bar_width"`
	BarHeight       int     `mapstructure:"bar_height"`
	BarGap          int     `mapstructure:"bar_gap"`
	BorderLineWidth float64 `mapstructure:"border_line_width"`
}

type FontConfig struct {
	// Face is a path to a TTF file; when empty or unloadable the renderer
	// falls back to the embedded bold face.
	Face       string  `mapstructure:"face"`
	SizeTemp   float64 `mapstructure:"size_temp"`
	SizeLabels float64 `mapstructure:"size_labels"`
}

type TemperatureConfig struct {
	ThresholdGreen  float64 `mapstructure:"threshold_green"`
	ThresholdOrange float64 `mapstructure:"threshold_orange"`
	ThresholdRed    float64 `mapstructure:"threshold_red"`
}

type CacheConfig struct {
	GPUIntervalSec      float64 `mapstructure:"gpu_interval"`
	ChangeToleranceTemp float64 `mapstructure:"change_tolerance_temp"`
}

type PathsConfig struct {
	Hwmon         string `mapstructure:"hwmon"`
	ImageDir      string `mapstructure:"image_dir"`
	ImagePath     string `mapstructure:"image_path"`
	ShutdownImage string `mapstructure:"shutdown_image"`
}

type DaemonConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
}

type StatusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// Color is an RGB triplet with 0-255 components.
type Color struct {
	R int `mapstructure:"r"`
	G int `mapstructure:"g"`
	B int `mapstructure:"b"`
}

type ColorsConfig struct {
	Green     Color `mapstructure:"color_green"`
	Orange    Color `mapstructure:"color_orange"`
	HotOrange Color `mapstructure:"color_hot_orange"`
	Red       Color `mapstructure:"color_red"`
	Temp      Color `mapstructure:"color_temp"`
	Label     Color `mapstructure:"color_label"`
	Bg        Color `mapstructure:"color_bg"`
	Border    Color `mapstructure:"color_border"`
}

// RefreshInterval returns the tick period of the main loop.
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Display.RefreshIntervalSec)*time.Second +
		time.Duration(c.Display.RefreshIntervalNsec)*time.Nanosecond
}

// GPUCacheInterval returns the minimum time between nvidia-smi invocations.
func (c *Config) GPUCacheInterval() time.Duration {
	return time.Duration(c.Cache.GPUIntervalSec * float64(time.Second))
}

// Load initializes configuration from the INI file and environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COOLERDASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "__"))
	v.AutomaticEnv()

	// Set defaults
	setDefaults(v)

	// Load config file if exists
	path := DefaultPath
	if env := os.Getenv("COOLERDASH_CONFIG"); env != "" {
		path = env
	}
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		if !os.IsNotExist(err) {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, errors.NewConfigError(fmt.Sprintf("error reading config file %s", path), err)
			}
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.NewConfigError("error unmarshaling config", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	// Display defaults (240x240 LCD, 2.5s refresh)
	v.SetDefault("display.width", 240)
	v.SetDefault("display.height", 240)
	v.SetDefault("display.refresh_interval_sec", 2)
	v.SetDefault("display.refresh_interval_nsec", 500000000)
	v.SetDefault("display.brightness", 100)
	v.SetDefault("display.orientation", 0)

	// Layout defaults
	v.SetDefault("layout.box_width", 240)
	v.SetDefault("layout.box_height", 120)
	v.SetDefault("layout.box_gap", 10)
	v.SetDefault("layout.bar_width", 230)
	v.SetDefault("layout.bar_height", 30)
	v.SetDefault("layout.bar_gap", 6)
	v.SetDefault("layout.border_line_width", 1.5)

	// Font defaults
	v.SetDefault("font.face", "")
	v.SetDefault("font.size_temp", 90.0)
	v.SetDefault("font.size_labels", 22.0)

	// Temperature thresholds
	v.SetDefault("temperature.threshold_green", 55.0)
	v.SetDefault("temperature.threshold_orange", 65.0)
	v.SetDefault("temperature.threshold_red", 75.0)

	// Cache defaults
	v.SetDefault("cache.gpu_interval", 2.0)
	v.SetDefault("cache.change_tolerance_temp", 1.0)

	// Path defaults
	v.SetDefault("paths.hwmon", "/sys/class/hwmon")
	v.SetDefault("paths.image_dir", "/opt/coolerdash/images")
	v.SetDefault("paths.image_path", "/opt/coolerdash/images/coolerdash.png")
	v.SetDefault("paths.shutdown_image", "/opt/coolerdash/images/shutdown.png")

	// Daemon defaults
	v.SetDefault("daemon.address", "http://localhost:11987")
	v.SetDefault("daemon.password", "coolAdmin")

	// Status server defaults
	v.SetDefault("status.enabled", false)
	v.SetDefault("status.host", "127.0.0.1")
	v.SetDefault("status.port", 11988)

	// Color defaults (band colors, chrome)
	v.SetDefault("color_green.r", 0)
	v.SetDefault("color_green.g", 255)
	v.SetDefault("color_green.b", 0)
	v.SetDefault("color_orange.r", 255)
	v.SetDefault("color_orange.g", 140)
	v.SetDefault("color_orange.b", 0)
	v.SetDefault("color_hot_orange.r", 255)
	v.SetDefault("color_hot_orange.g", 70)
	v.SetDefault("color_hot_orange.b", 0)
	v.SetDefault("color_red.r", 255)
	v.SetDefault("color_red.g", 0)
	v.SetDefault("color_red.b", 0)
	v.SetDefault("color_temp.r", 255)
	v.SetDefault("color_temp.g", 255)
	v.SetDefault("color_temp.b", 255)
	v.SetDefault("color_label.r", 200)
	v.SetDefault("color_label.g", 200)
	v.SetDefault("color_label.b", 200)
	v.SetDefault("color_bg.r", 41)
	v.SetDefault("color_bg.g", 41)
	v.SetDefault("color_bg.b", 41)
	v.SetDefault("color_border.r", 20)
	v.SetDefault("color_border.g", 20)
	v.SetDefault("color_border.b", 20)
}

func validateConfig(config *Config) error {
	if config.Display.Width <= 0 || config.Display.Height <= 0 {
		return errors.NewConfigError("display dimensions must be positive", nil)
	}
	if config.Display.Brightness < 0 || config.Display.Brightness > 100 {
		return errors.NewConfigError("display brightness must be in 0..100", nil)
	}
	switch config.Display.Orientation {
	case 0, 90, 180, 270:
	default:
		return errors.NewConfigError("display orientation must be one of 0, 90, 180, 270", nil)
	}
	if config.RefreshInterval() <= 0 {
		return errors.NewConfigError("display refresh interval must be positive", nil)
	}
	if config.Layout.BarWidth <= 0 || config.Layout.BarHeight <= 0 {
		return errors.NewConfigError("bar dimensions must be positive", nil)
	}
	t := config.Temperature
	if !(t.ThresholdGreen < t.ThresholdOrange && t.ThresholdOrange < t.ThresholdRed) {
		return errors.NewConfigError("temperature thresholds must be strictly ascending (green < orange < red)", nil)
	}
	if config.Cache.ChangeToleranceTemp < 0 {
		return errors.NewConfigError("change tolerance must not be negative", nil)
	}
	if config.Daemon.Address == "" {
		return errors.NewConfigError("daemon address is required", nil)
	}
	if config.Paths.ImagePath == "" || config.Paths.ImageDir == "" {
		return errors.NewConfigError("image_dir and image_path are required", nil)
	}
	return nil
}
