package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "netsweep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	v, err := NewViper("")
	require.NoError(t, err)

	opts, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), *opts)
}

func TestLoadPrecedence(t *testing.T) {
	path := writeConfig(t, `
subnet: "10.0.2."
ip-range: "1-10"
threads: 10
timeout: 2s
format: json
`)
	t.Setenv("NETSWEEP_PORT_RANGE", "22,80")

	v, err := NewViper(path)
	require.NoError(t, err)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Int("threads", 50, "")
	fs.String("ip-range", "1-255", "")
	require.NoError(t, fs.Parse([]string{"--threads=20"}))
	require.NoError(t, v.BindPFlags(fs))

	opts, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, 20, opts.Threads, "explicit flag beats config file")
	assert.Equal(t, "1-10", opts.IPRange, "config file beats flag default")
	assert.Equal(t, "22,80", opts.PortRange, "env beats default")
	assert.Equal(t, "10.0.2.", opts.Subnet)
	assert.Equal(t, 2*time.Second, opts.Timeout)
	assert.Equal(t, "json", opts.OutputFormat)
}

func TestNewViperMissingFile(t *testing.T) {
	_, err := NewViper(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"bad format", func(o *Options) { o.OutputFormat = "xml" }},
		{"bad sort", func(o *Options) { o.SortBy = "status" }},
		{"zero threads", func(o *Options) { o.Threads = 0 }},
		{"zero timeout", func(o *Options) { o.Timeout = 0 }},
		{"negative rate", func(o *Options) { o.Rate = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Defaults()
			tt.mutate(&o)
			assert.Error(t, o.Validate())
		})
	}

	o := Defaults()
	assert.NoError(t, o.Validate())
}

func TestParseTimeout(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"0.5", 500 * time.Millisecond},
		{"3", 3 * time.Second},
		{"250ms", 250 * time.Millisecond},
		{" 2s ", 2 * time.Second},
	}
	for _, tt := range tests {
		got, err := ParseTimeout(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseTimeout("soon")
	assert.Error(t, err)
}

func TestLoadTimeoutInSeconds(t *testing.T) {
	t.Setenv("NETSWEEP_TIMEOUT", "0.25")
	v, err := NewViper("")
	require.NoError(t, err)

	opts, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, opts.Timeout)

	path := writeConfig(t, "timeout: 1.5\n")
	v, err = NewViper(path)
	require.NoError(t, err)
	t.Setenv("NETSWEEP_TIMEOUT", "")
	opts, err = Load(v)
	require.NoError(t, err)
	assert.Equal(t, 1500*time.Millisecond, opts.Timeout)
}
