package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name      string
		prefixDir string
		binDir    string
		envSetup  map[string]string
		validate  func(t *testing.T, p *Paths)
	}{
		{
			name: "defaults from XDG",
			envSetup: map[string]string{
				"XDG_DATA_HOME":    "/xdg/data",
				"XDG_CONFIG_HOME":  "/xdg/config",
				EnvCondaxDataDir:   "",
				EnvCondaxConfigDir: "",
			},
			validate: func(t *testing.T, p *Paths) {
				assert.Equal(t, "/xdg/data/condax/envs", p.PrefixDir())
				assert.Equal(t, "/xdg/data/condax", p.DataDir())
				assert.Equal(t, "/xdg/config/condax", p.ConfigDir())
				assert.Equal(t, "/xdg/data/condax/bins", p.CondaBinsDir())
				assert.Equal(t, "/xdg/data/condax/envs/ripgrep", p.EnvPrefix("ripgrep"))
			},
		},
		{
			name:      "explicit directories",
			prefixDir: "/opt/envs",
			binDir:    "/opt/bin",
			validate: func(t *testing.T, p *Paths) {
				assert.Equal(t, "/opt/envs", p.PrefixDir())
				assert.Equal(t, "/opt/bin", p.BinDir())
			},
		},
		{
			name:      "expand tilde",
			prefixDir: "~/envs",
			binDir:    "~/bin",
			validate: func(t *testing.T, p *Paths) {
				home, _ := os.UserHomeDir()
				assert.Equal(t, filepath.Join(home, "envs"), p.PrefixDir())
				assert.Equal(t, filepath.Join(home, "bin"), p.BinDir())
			},
		},
		{
			name: "data and config overrides",
			envSetup: map[string]string{
				EnvCondaxDataDir:   "/custom/data",
				EnvCondaxConfigDir: "/custom/config",
			},
			validate: func(t *testing.T, p *Paths) {
				assert.Equal(t, "/custom/data", p.DataDir())
				assert.Equal(t, "/custom/config", p.ConfigDir())
				assert.Equal(t, "/custom/data/envs", p.PrefixDir())
				assert.Equal(t, "/custom/config/config.yaml", DefaultConfigFile())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envSetup {
				t.Setenv(k, v)
			}
			xdg.Reload()
			t.Cleanup(xdg.Reload)

			p, err := New(tt.prefixDir, tt.binDir)
			require.NoError(t, err)
			tt.validate(t, p)
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"~", home},
		{"~/x/y", filepath.Join(home, "x", "y")},
		{"/abs/path", "/abs/path"},
		{"~other/x", "~other/x"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandHome(tt.in))
		})
	}
}
