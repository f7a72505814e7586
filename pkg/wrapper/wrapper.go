package wrapper

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/yamaton/condax/pkg/types"
)

// Platform selects the shim format.
type Platform int

const (
	POSIX Platform = iota
	Windows
)

// Marker is written into every shim condax creates.
const Marker = "Entrypoint created by condax"

// Current returns the platform condax is running on.
func Current() Platform {
	if runtime.GOOS == "windows" {
		return Windows
	}
	return POSIX
}

func (p Platform) String() string {
	if p == Windows {
		return "windows"
	}
	return "posix"
}

// Invocation is the runner call recovered from a shim.
type Invocation struct {
	Runner     string
	Prefix     string
	Executable string
	Args       string
}

// Name returns the shim file name for an executable base name.
func Name(exeName string, p Platform) string {
	if p != Windows {
		return exeName
	}
	return stem(exeName) + ".bat"
}

// BodyName maps a Windows shim name back to the executable it stands for.
func BodyName(wrapperName string) string {
	return replaceSuffix(wrapperName, ".bat", ".exe")
}

// Render produces the shim content for running exe inside the environment
// at prefix through runner.
func Render(p Platform, runner, prefix, exe string, hideExitCode bool) []byte {
	var b strings.Builder
	if p == Windows {
		fmt.Fprintf(&b, "@rem %s\r\n", Marker)
		fmt.Fprintf(&b, "@call %s run --prefix %s %s %%*\r\n", quoteWindows(runner), quoteWindows(prefix), quoteWindows(exe))
		return []byte(b.String())
	}

	b.WriteString("#!/usr/bin/env bash\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "# %s\n", Marker)
	fmt.Fprintf(&b, "%s run --prefix %s %s \"$@\"\n", quotePOSIX(runner), quotePOSIX(prefix), quotePOSIX(exe))
	if hideExitCode {
		b.WriteString("exit 0\n")
	}
	return []byte(b.String())
}

// A token is double quoted, single quoted (with '\'' standing for a quote),
// or bare.
const token = `("[^"]*"|'[^']*'(?:\\''[^']*')*|\S+)`

var invocationRe = regexp.MustCompile(
	`^(?:@call\s+)?` + token + `\s+run\s+--prefix\s+` + token + `\s+` + token + `\s*(.*)$`,
)

// Parse recovers the runner invocation from shim content. It reports false
// when no line of content looks like one.
func Parse(content []byte) (Invocation, bool) {
	scanner := bufio.NewScanner(bytes.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(strings.TrimRight(scanner.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(strings.ToLower(line), "@rem") {
			continue
		}
		m := invocationRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		return Invocation{
			Runner:     unquote(m[1]),
			Prefix:     unquote(m[2]),
			Executable: unquote(m[3]),
			Args:       strings.TrimSpace(m[4]),
		}, true
	}
	return Invocation{}, false
}

// ReadPrefix returns the environment prefix a shim file targets. It reports
// false when the file cannot be read or is not a recognized shim.
func ReadPrefix(fsys types.FS, path string) (string, bool) {
	content, err := fsys.ReadFile(path)
	if err != nil {
		return "", false
	}
	inv, ok := Parse(content)
	if !ok {
		return "", false
	}
	return inv.Prefix, true
}

// quotePOSIX single-quotes s so bash expands nothing inside it.
func quotePOSIX(s string) string {
	return `'` + strings.ReplaceAll(s, `'`, `'\''`) + `'`
}

func quoteWindows(s string) string {
	return `"` + s + `"`
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	switch {
	case s[0] == '"' && s[len(s)-1] == '"':
		return s[1 : len(s)-1]
	case s[0] == '\'' && s[len(s)-1] == '\'':
		return strings.ReplaceAll(s[1:len(s)-1], `'\''`, `'`)
	}
	return s
}

// stem drops the extension of a base name, leaving dotfiles intact.
func stem(name string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 {
		return name
	}
	return name[:i]
}

func replaceSuffix(name, from, to string) string {
	i := strings.LastIndex(name, ".")
	if i <= 0 || name[i:] != from {
		return name
	}
	return name[:i] + to
}
