// Package theme derives the embed widget palette from a single hex color.
package theme

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var hexColor = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

type RGB struct {
	R, G, B uint8
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c RGB) Hex() string {
	return colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
}

type Theme struct {
	Primary      RGB `json:"primary"`
	PrimaryHover RGB `json:"primary_hover"`
	PrimaryLight RGB `json:"primary_light"`
}

// DefaultTheme is Tailwind blue 600/700/100.
var DefaultTheme = Theme{
	Primary:      RGB{37, 99, 235},
	PrimaryHover: RGB{29, 78, 216},
	PrimaryLight: RGB{219, 234, 254},
}

// FromColor parses rrggbb, with or without a leading #. Anything else gives
// DefaultTheme.
func FromColor(param string) Theme {
	param = strings.TrimSpace(param)
	if !hexColor.MatchString(param) {
		return DefaultTheme
	}
	if !strings.HasPrefix(param, "#") {
		param = "#" + param
	}

	c, err := colorful.Hex(param)
	if err != nil {
		return DefaultTheme
	}
	r, g, b := c.RGB255()
	base := [3]float64{float64(r), float64(g), float64(b)}

	return Theme{
		Primary:      RGB{r, g, b},
		PrimaryHover: scale(base, func(v float64) float64 { return v * 0.8 }),
		PrimaryLight: scale(base, func(v float64) float64 { return v + (255-v)*0.9 }),
	}
}

func scale(base [3]float64, f func(float64) float64) RGB {
	ch := func(v float64) uint8 {
		return uint8(math.Round(f(v)))
	}
	return RGB{ch(base[0]), ch(base[1]), ch(base[2])}
}

// EmbedSnippet returns the iframe markup a site owner pastes to show a poll.
func EmbedSnippet(origin, pollID string, t Theme) string {
	color := strings.TrimPrefix(t.Primary.Hex(), "#")
	return fmt.Sprintf(`<iframe src="%s/embed/%s?color=%s" style="width:432px;height:350px"></iframe>`,
		strings.TrimRight(origin, "/"), pollID, url.QueryEscape(color))
}
