package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yamaton/condax/pkg/logging"
)

// PackageInfo identifies an installed package.
type PackageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Build   string `json:"build"`
}

// App is an exposed executable. Package is set when an injected package
// provides it.
type App struct {
	Name    string `json:"name"`
	Package string `json:"package,omitempty"`
}

// Environment is one tracked environment in a listing.
type Environment struct {
	Name     string        `json:"name"`
	Prefix   string        `json:"prefix"`
	Package  PackageInfo   `json:"package"`
	Python   string        `json:"python,omitempty"`
	Apps     []App         `json:"apps"`
	Injected []PackageInfo `json:"injected,omitempty"`
}

// Listing is the result of the list command.
type Listing struct {
	Environments []Environment `json:"environments"`
	// Conflicts maps an app name to the environments exposing it when more
	// than one does.
	Conflicts map[string][]string `json:"conflicts,omitempty"`
}

// ListOptions selects what a listing shows.
type ListOptions struct {
	Short           bool
	IncludeInjected bool
}

// Renderer writes results in one concrete format.
type Renderer struct {
	w      io.Writer
	format Format
	styles Styles
}

// NewRenderer creates a renderer. FormatAuto is treated as text; callers
// resolve it against their output first.
func NewRenderer(w io.Writer, format Format) (*Renderer, error) {
	log := logging.GetLogger("output.Renderer")

	r := &Renderer{w: w, format: format}
	if format == FormatAuto {
		r.format = FormatText
	}
	if r.format == FormatTerminal {
		cfg, err := ParseStyles(defaultStyles)
		if err != nil {
			return nil, err
		}
		lr := lipgloss.NewRenderer(w)
		log.Debug().
			Str("colorProfile", fmt.Sprintf("%v", lr.ColorProfile())).
			Msg("Lipgloss renderer created")
		r.styles = cfg.Build(lr)
	}
	return r, nil
}

// Format is the format the renderer writes.
func (r *Renderer) Format() Format { return r.format }

// RenderList writes a listing.
func (r *Renderer) RenderList(l Listing, opts ListOptions) error {
	if r.format == FormatJSON {
		return r.renderJSON(l)
	}
	var b strings.Builder
	if opts.Short {
		r.shortList(&b, l, opts)
	} else {
		r.fullList(&b, l, opts)
	}
	_, err := io.WriteString(r.w, b.String())
	return err
}

// RenderMessage writes a single line.
func (r *Renderer) RenderMessage(msg string) error {
	if r.format == FormatJSON {
		return r.renderJSON(map[string]string{"message": msg})
	}
	_, err := fmt.Fprintln(r.w, msg)
	return err
}

func (r *Renderer) renderJSON(v interface{}) error {
	enc := json.NewEncoder(r.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (r *Renderer) version(p PackageInfo, withBuild bool) string {
	s := p.Version
	if withBuild && p.Build != "" {
		s += " " + p.Build
	}
	return r.styles.Render("Version", s)
}

func (r *Renderer) shortList(b *strings.Builder, l Listing, opts ListOptions) {
	for _, env := range l.Environments {
		fmt.Fprintf(b, "%s %s\n", r.styles.Render("Package", env.Package.Name), r.version(env.Package, false))
		if !opts.IncludeInjected {
			continue
		}
		for _, p := range env.Injected {
			fmt.Fprintf(b, "    %s %s\n", p.Name, r.version(p, false))
		}
	}
}

func (r *Renderer) fullList(b *strings.Builder, l Listing, opts ListOptions) {
	for i, env := range l.Environments {
		if i > 0 {
			b.WriteString("\n")
		}
		header := r.styles.Render("Package", env.Package.Name) + " " + r.version(env.Package, true)
		if env.Python != "" {
			header += ", using Python " + env.Python
		}
		b.WriteString(header + "\n")

		if len(env.Apps) == 0 {
			b.WriteString("    " + r.styles.Render("NoContent", "(No apps found for "+env.Name+")") + "\n")
		}
		for _, app := range env.Apps {
			line := "    - " + r.styles.Render("App", app.Name)
			if app.Package != "" {
				line += "  " + r.styles.Render("Origin", "(from "+app.Package+")")
			}
			b.WriteString(line + "\n")
		}

		if opts.IncludeInjected && len(env.Injected) > 0 {
			b.WriteString("    " + r.styles.Render("Section", "Included packages:") + "\n")
			for _, p := range env.Injected {
				fmt.Fprintf(b, "        %s %s\n", p.Name, r.version(p, true))
			}
		}
	}
}
