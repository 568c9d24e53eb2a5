/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package text

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/mazznoer/csscolorparser"

	"bennypowers.dev/ack997/ack"
)

// Theme holds CSS color strings for each status. Empty values fall back to
// DefaultTheme. An empty Muted color is derived from Accepted.
type Theme struct {
	Accepted string
	Partial  string
	Rejected string
	Muted    string
}

// DefaultTheme returns the built in colors.
func DefaultTheme() Theme {
	return Theme{
		Accepted: "#10b981",
		Partial:  "#f59e0b",
		Rejected: "#ef4444",
	}
}

// muteGray is the color the muted variant is blended toward.
var muteGray = colorful.Color{R: 0.5, G: 0.5, B: 0.5}

type palette struct {
	accepted lipgloss.Style
	partial  lipgloss.Style
	rejected lipgloss.Style
	muted    lipgloss.Style
	bold     lipgloss.Style
}

func (t Theme) palette() (palette, error) {
	def := DefaultTheme()
	pick := func(v, fallback string) string {
		if v == "" {
			return fallback
		}
		return v
	}

	accepted, err := parseColor(pick(t.Accepted, def.Accepted))
	if err != nil {
		return palette{}, err
	}
	partial, err := parseColor(pick(t.Partial, def.Partial))
	if err != nil {
		return palette{}, err
	}
	rejected, err := parseColor(pick(t.Rejected, def.Rejected))
	if err != nil {
		return palette{}, err
	}
	muted := accepted.BlendLab(muteGray, 0.75).Clamped()
	if t.Muted != "" {
		if muted, err = parseColor(t.Muted); err != nil {
			return palette{}, err
		}
	}

	fg := func(c colorful.Color) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
	}
	return palette{
		accepted: fg(accepted).Bold(true),
		partial:  fg(partial).Bold(true),
		rejected: fg(rejected).Bold(true),
		muted:    fg(muted),
		bold:     lipgloss.NewStyle().Bold(true),
	}, nil
}

func (p palette) status(s ack.Status) lipgloss.Style {
	switch s {
	case ack.Accepted:
		return p.accepted
	case ack.PartiallyAccepted:
		return p.partial
	default:
		return p.rejected
	}
}

func parseColor(s string) (colorful.Color, error) {
	c, err := csscolorparser.Parse(s)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid theme color %q: %w", s, err)
	}
	return colorful.Color{R: c.R, G: c.G, B: c.B}, nil
}
