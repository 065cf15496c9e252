// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

// Package ansi converts raw shell output into styled text segments. It
// recognizes SGR color/style sequences (ESC[...m) and nothing else: every
// other escape or control sequence is removed, and everything outside a
// sequence is treated as literal text. Remote output can therefore never
// smuggle cursor movement, title changes or other terminal commands into the
// transcript.
package ansi

import (
	"fmt"
	"strings"
)

// Style is the subset of SGR attributes the renderer understands. Color
// values use the terminal palette form lipgloss accepts: "0".."15" for the
// base palette, "16".."255" for the extended palette, "#rrggbb" for
// truecolor. Empty means the terminal default.
type Style struct {
	Bold       bool
	Faint      bool
	Italic     bool
	Underline  bool
	Foreground string
	Background string
}

// IsZero reports whether the style carries no attributes.
func (s Style) IsZero() bool {
	return s == Style{}
}

// Segment is a run of literal text rendered with a single style.
type Segment struct {
	Text  string
	Style Style
}

// Parse splits raw into styled segments. SGR sequences update the running
// style; unrecognized sequences are dropped; plain text is passed through
// unchanged. Newlines and tabs survive, all other control bytes are removed.
func Parse(raw string) []Segment {
	var (
		segs  []Segment
		text  strings.Builder
		style Style
	)
	flush := func() {
		if text.Len() > 0 {
			segs = append(segs, Segment{Text: text.String(), Style: style})
			text.Reset()
		}
	}

	b := []byte(raw)
	i := 0
	for i < len(b) {
		c := b[i]
		if c == 0x1b {
			if i+1 >= len(b) {
				// Dangling ESC at end of input.
				break
			}
			switch b[i+1] {
			case '[':
				body, next := scanCSI(b, i+2)
				if strings.HasSuffix(body, "m") {
					flush()
					style = applySGR(style, strings.TrimSuffix(body, "m"))
				}
				i = next
			case ']':
				i = scanUntilST(b, i+2)
			case 'P', 'X', '^', '_':
				// DCS/SOS/PM/APC are string sequences like OSC.
				i = scanUntilST(b, i+2)
			case '(', ')', '#', '%':
				// Three-byte charset designations.
				i += 3
			default:
				// Two-byte escape.
				i += 2
			}
			continue
		}
		if c < 0x20 && c != '\n' && c != '\t' {
			i++
			continue
		}
		text.WriteByte(c)
		i++
	}
	flush()
	return segs
}

// Strip returns only the literal text of raw, with every recognized or
// unrecognized sequence removed.
func Strip(raw string) string {
	var sb strings.Builder
	for _, seg := range Parse(raw) {
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// scanCSI consumes a CSI body starting at i (after "ESC[") and returns the
// collected bytes including the final byte, plus the index past it.
func scanCSI(b []byte, i int) (string, int) {
	start := i
	for i < len(b) {
		c := b[i]
		if c >= 0x40 && c <= 0x7e {
			return string(b[start : i+1]), i + 1
		}
		// Parameter and intermediate bytes only; anything else aborts the
		// sequence.
		if c < 0x20 || c > 0x3f {
			return "", i
		}
		i++
	}
	return "", i
}

// scanUntilST consumes a string sequence terminated by BEL or ESC\ and
// returns the index past the terminator.
func scanUntilST(b []byte, i int) int {
	for i < len(b) {
		if b[i] == 0x07 {
			return i + 1
		}
		if b[i] == 0x1b && i+1 < len(b) && b[i+1] == '\\' {
			return i + 2
		}
		i++
	}
	return i
}

// applySGR folds one SGR parameter list into the current style. Parameters
// outside the allow list are ignored; a list with private markers is ignored
// wholesale.
func applySGR(s Style, body string) Style {
	params := splitParams(body)
	if params == nil {
		return s
	}
	for i := 0; i < len(params); i++ {
		switch p := params[i]; {
		case p == 0:
			s = Style{}
		case p == 1:
			s.Bold = true
		case p == 2:
			s.Faint = true
		case p == 3:
			s.Italic = true
		case p == 4:
			s.Underline = true
		case p == 22:
			s.Bold, s.Faint = false, false
		case p == 23:
			s.Italic = false
		case p == 24:
			s.Underline = false
		case p >= 30 && p <= 37:
			s.Foreground = fmt.Sprint(p - 30)
		case p == 38:
			var color string
			color, i = extendedColor(params, i)
			if color != "" {
				s.Foreground = color
			}
		case p == 39:
			s.Foreground = ""
		case p >= 40 && p <= 47:
			s.Background = fmt.Sprint(p - 40)
		case p == 48:
			var color string
			color, i = extendedColor(params, i)
			if color != "" {
				s.Background = color
			}
		case p == 49:
			s.Background = ""
		case p >= 90 && p <= 97:
			s.Foreground = fmt.Sprint(p - 90 + 8)
		case p >= 100 && p <= 107:
			s.Background = fmt.Sprint(p - 100 + 8)
		}
	}
	return s
}

// extendedColor reads the 38/48 sub-parameters starting at params[i] and
// returns the color plus the index of the last consumed parameter.
func extendedColor(params []int, i int) (string, int) {
	if i+1 >= len(params) {
		return "", i
	}
	switch params[i+1] {
	case 5:
		if i+2 < len(params) && params[i+2] >= 0 && params[i+2] <= 255 {
			return fmt.Sprint(params[i+2]), i + 2
		}
		return "", i + 1
	case 2:
		if i+4 < len(params) {
			r, g, b := params[i+2], params[i+3], params[i+4]
			if r >= 0 && r <= 255 && g >= 0 && g <= 255 && b >= 0 && b <= 255 {
				return fmt.Sprintf("#%02x%02x%02x", r, g, b), i + 4
			}
		}
		return "", i + 1
	default:
		return "", i
	}
}

// splitParams parses an SGR parameter string. Both ';' and ':' separators
// occur in the wild; empty fields mean zero. A nil return means the list
// contained bytes outside plain numeric parameters and must be ignored.
func splitParams(body string) []int {
	out := make([]int, 0, 4)
	n := 0
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
			n = n*10 + int(r-'0')
		case r == ';' || r == ':':
			out = append(out, n)
			n = 0
		default:
			return nil
		}
	}
	return append(out, n)
}
