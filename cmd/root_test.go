package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxvaer/netsweep/internal/config"
)

func TestTimeoutValue(t *testing.T) {
	v := newTimeoutValue(500 * time.Millisecond)
	assert.Equal(t, "500ms", v.String())

	require.NoError(t, v.Set("1.5"))
	assert.Equal(t, "1.5s", v.String())

	require.NoError(t, v.Set("250ms"))
	assert.Equal(t, 250*time.Millisecond, time.Duration(*v))

	assert.Error(t, v.Set("later"))
}

func TestTimeoutFlagThroughViper(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.VarP(newTimeoutValue(500*time.Millisecond), "timeout", "t", "")
	require.NoError(t, fs.Parse([]string{"-t", "0.2"}))

	v, err := config.NewViper("")
	require.NoError(t, err)
	require.NoError(t, v.BindPFlags(fs))

	opts, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, 200*time.Millisecond, opts.Timeout)
}

func TestFormatFlag(t *testing.T) {
	line := formatFlag(rootCmd.Flags().Lookup("threads"))
	assert.True(t, strings.HasPrefix(line, "   -w, --threads int"))
	assert.Contains(t, line, "(default 50)")

	line = formatFlag(rootCmd.Flags().Lookup("quiet"))
	assert.NotContains(t, line, "default")
}

func TestHelpGroupsReferenceRealFlags(t *testing.T) {
	for _, g := range helpGroups {
		for _, name := range g.flags {
			assert.NotNil(t, rootCmd.Flags().Lookup(name), "group %s lists unknown flag %q", g.title, name)
		}
	}
}
