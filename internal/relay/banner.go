// Copyright (c) 2026 Gangway Authors
// Gangway - interactive remote shell client and relay
// This source code is licensed under the MIT license found in the LICENSE file.

package relay

import (
	"fmt"

	"github.com/muesli/termenv"
)

// PrintBanner outputs the relay's startup banner.
func PrintBanner() {
	p := termenv.ColorProfile()
	// Teal-to-indigo gradient, top to bottom.
	lines := []struct {
		text  string
		color string
	}{
		{"  ____", "#5eead4"},
		{" / ___|  __ _  _ __    __ ___      __  __ _  _   _", "#2dd4bf"},
		{"| |  _  / _` || '_ \\  / _` |\\ \\ /\\ / / / _` || | | |", "#22d3ee"},
		{"| |_| || (_| || | | || (_| | \\ V  V / | (_| || |_| |", "#38bdf8"},
		{" \\____| \\__,_||_| |_| \\__, |  \\_/\\_/   \\__,_| \\__, |", "#60a5fa"},
		{"                      |___/                   |___/", "#818cf8"},
	}

	fmt.Println()
	for _, l := range lines {
		fmt.Println(termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Println()
}
