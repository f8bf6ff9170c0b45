package config

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. NETSWEEP_THREADS.
const EnvPrefix = "NETSWEEP"

// Options holds all configuration for a netsweep scan. The mapstructure
// keys match the CLI flag names so one viper instance serves flags, env
// and config file alike.
type Options struct {
	// Target
	Subnet    string `mapstructure:"subnet"`
	IPRange   string `mapstructure:"ip-range"`
	PortRange string `mapstructure:"port-range"`
	PortsFile string `mapstructure:"ports-file"`
	CIDR      string `mapstructure:"cidr"`

	// Performance
	Timeout       time.Duration `mapstructure:"timeout"`
	Threads       int           `mapstructure:"threads"`
	Rate          float64       `mapstructure:"rate"` // probes/sec, 0 = unlimited
	ProgressEvery int           `mapstructure:"progress-every"`

	// Output
	OutputFile   string `mapstructure:"output"`
	OutputFormat string `mapstructure:"format"` // "text", "json", "csv", "yaml"
	SortBy       string `mapstructure:"sort"`   // "", "address", "port"
	Quiet        bool   `mapstructure:"quiet"`
	NoColor      bool   `mapstructure:"no-color"`
	Verbose      bool   `mapstructure:"verbose"`
	Tree         bool   `mapstructure:"tree"`

	// Hooks
	OnOpenCmd string `mapstructure:"on-open"`
}

// Defaults mirror the flag defaults.
func Defaults() Options {
	return Options{
		Subnet:        "192.168.1.",
		IPRange:       "1-255",
		PortRange:     "1-1024",
		Timeout:       500 * time.Millisecond,
		Threads:       50,
		ProgressEvery: 50,
		OutputFormat:  "text",
	}
}

// NewViper returns a viper instance preloaded with defaults and wired to
// NETSWEEP_* environment variables. If configFile is non-empty it is read
// as the lowest-precedence explicit source.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	d := Defaults()
	v.SetDefault("subnet", d.Subnet)
	v.SetDefault("ip-range", d.IPRange)
	v.SetDefault("port-range", d.PortRange)
	v.SetDefault("timeout", d.Timeout)
	v.SetDefault("threads", d.Threads)
	v.SetDefault("progress-every", d.ProgressEvery)
	v.SetDefault("format", d.OutputFormat)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", configFile, err)
		}
	}
	return v, nil
}

// Load decodes v into Options and validates the enumerated fields.
func Load(v *viper.Viper) (*Options, error) {
	var opts Options
	if err := v.Unmarshal(&opts, viper.DecodeHook(mapstructure.DecodeHookFuncType(timeoutHook))); err != nil {
		return nil, fmt.Errorf("decoding options: %w", err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &opts, nil
}

// Validate checks option values that are not range specs. Range specs are
// parsed later by the runner.
func (o *Options) Validate() error {
	switch o.OutputFormat {
	case "text", "json", "csv", "yaml":
	default:
		return fmt.Errorf("--format must be one of: text, json, csv, yaml")
	}
	switch o.SortBy {
	case "", "address", "port":
	default:
		return fmt.Errorf("--sort must be one of: address, port")
	}
	if o.Threads < 1 {
		return fmt.Errorf("--threads must be at least 1")
	}
	if o.Timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}
	if o.Rate < 0 {
		return fmt.Errorf("--rate must not be negative")
	}
	return nil
}

// ParseTimeout accepts a Go duration ("500ms", "2s") or a bare number of
// seconds ("0.5", "3").
func ParseTimeout(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.ParseFloat(s, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: use seconds (0.5) or a duration (500ms)", s)
	}
	return d, nil
}

func timeoutHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch from.Kind() {
	case reflect.String:
		return ParseTimeout(data.(string))
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		// time.Duration values pass through untouched; plain integers are seconds.
		if from == to {
			return data, nil
		}
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	}
	return data, nil
}
