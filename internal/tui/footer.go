// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package tui

import (
	"strings"

	xansi "github.com/charmbracelet/x/ansi"
)

// AlignFooter returns a single-line string where `right` is right-aligned
// within `width` columns and `left` is at the start. Widths are measured
// after stripping escape sequences, so styled tokens align correctly. If
// width is too small a single space separates the tokens.
func AlignFooter(left, right string, width int) string {
	leftLen := xansi.StringWidth(left)
	rightLen := xansi.StringWidth(right)
	spaces := width - leftLen - rightLen
	if spaces < 1 {
		spaces = 1
	}
	return left + strings.Repeat(" ", spaces) + right
}
