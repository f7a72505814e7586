// Package output renders command results for the terminal.
//
// Three formats are supported. The text format is stable plain text meant
// to be read by people and scripts alike. The terminal format is the same
// layout styled with lipgloss using the adaptive palette in styles.yaml.
// The json format encodes the result structs directly.
//
// FormatAuto resolves to terminal or text with DetectFormat, which honors
// NO_COLOR and falls back to text when stdout is not a color-capable TTY.
package output
