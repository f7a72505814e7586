package output_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yamaton/condax/pkg/output"
)

func sampleListing() output.Listing {
	return output.Listing{
		Environments: []output.Environment{
			{
				Name:    "jq",
				Prefix:  "/envs/jq",
				Package: output.PackageInfo{Name: "jq", Version: "1.7.1", Build: "hd590300_0"},
				Apps:    []output.App{{Name: "jq"}},
			},
			{
				Name:    "black",
				Prefix:  "/envs/black",
				Package: output.PackageInfo{Name: "black", Version: "24.2.0", Build: "py312_0"},
				Python:  "3.12.2",
				Apps: []output.App{
					{Name: "black"},
					{Name: "blackd"},
					{Name: "isort", Package: "isort"},
				},
				Injected: []output.PackageInfo{{Name: "isort", Version: "5.13.2", Build: "pyhd8ed1ab_0"}},
			},
			{
				Name:    "empty",
				Prefix:  "/envs/empty",
				Package: output.PackageInfo{Name: "empty", Version: "0.1", Build: "0"},
			},
		},
	}
}

func render(t *testing.T, format output.Format, opts output.ListOptions) string {
	t.Helper()
	var buf bytes.Buffer
	r, err := output.NewRenderer(&buf, format)
	require.NoError(t, err)
	require.NoError(t, r.RenderList(sampleListing(), opts))
	return buf.String()
}

func TestRenderList_Text(t *testing.T) {
	want := `jq 1.7.1 hd590300_0
    - jq

black 24.2.0 py312_0, using Python 3.12.2
    - black
    - blackd
    - isort  (from isort)

empty 0.1 0
    (No apps found for empty)
`
	assert.Equal(t, want, render(t, output.FormatText, output.ListOptions{}))
}

func TestRenderList_TextIncludeInjected(t *testing.T) {
	got := render(t, output.FormatText, output.ListOptions{IncludeInjected: true})
	assert.Contains(t, got, "    - isort  (from isort)\n    Included packages:\n        isort 5.13.2 pyhd8ed1ab_0\n")
}

func TestRenderList_Short(t *testing.T) {
	tests := []struct {
		name string
		opts output.ListOptions
		want string
	}{
		{
			name: "main only",
			opts: output.ListOptions{Short: true},
			want: "jq 1.7.1\nblack 24.2.0\nempty 0.1\n",
		},
		{
			name: "with injected",
			opts: output.ListOptions{Short: true, IncludeInjected: true},
			want: "jq 1.7.1\nblack 24.2.0\n    isort 5.13.2\nempty 0.1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, render(t, output.FormatText, tt.opts))
		})
	}
}

func TestRenderList_JSON(t *testing.T) {
	got := render(t, output.FormatJSON, output.ListOptions{})

	var decoded output.Listing
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, sampleListing(), decoded)
}

func TestRenderList_AutoIsText(t *testing.T) {
	assert.Equal(t,
		render(t, output.FormatText, output.ListOptions{}),
		render(t, output.FormatAuto, output.ListOptions{}))
}

func TestRenderList_TerminalKeepsLayout(t *testing.T) {
	got := render(t, output.FormatTerminal, output.ListOptions{})
	assert.Contains(t, got, "jq")
	assert.Contains(t, got, "(from isort)")
}

func TestRenderMessage(t *testing.T) {
	var buf bytes.Buffer
	r, err := output.NewRenderer(&buf, output.FormatJSON)
	require.NoError(t, err)
	require.NoError(t, r.RenderMessage("done"))
	assert.JSONEq(t, `{"message":"done"}`, buf.String())
}

func TestStyles(t *testing.T) {
	cfg, err := output.ParseStyles([]byte(`
colors:
  primary: {light: "#000000", dark: "#FFFFFF"}
styles:
  Package: {bold: true, foreground: primary}
`))
	require.NoError(t, err)

	lr := lipgloss.NewRenderer(&bytes.Buffer{})
	lr.SetColorProfile(termenv.Ascii)
	styles := cfg.Build(lr)

	assert.Contains(t, styles, "Package")
	assert.Equal(t, "plain", styles.Render("Missing", "plain"))
	assert.Contains(t, styles.Render("Package", "jq"), "jq")

	_, err = output.ParseStyles([]byte("colors: ["))
	assert.Error(t, err)
}
