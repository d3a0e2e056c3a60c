package catalog

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/contre95/musevault/src/music"
)

var (
	nonDigitsRe       = regexp.MustCompile(`\D+`)
	disambiguationRe  = regexp.MustCompile(`\s*\(\d+\)\s*$`)
	whitespaceRe      = regexp.MustCompile(`\s+`)
	artistTitleMarker = " - "
)

// DurationToMs converts a free-form track duration into milliseconds.
//
// "m:ss" strings are read as minutes and seconds. Bare numbers below 100 are minutes,
// below 10000 seconds, anything larger is already milliseconds. Anything unreadable is 0.
func DurationToMs(raw string) int {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" {
		return 0
	}
	if strings.Contains(cleaned, ":") {
		parts := strings.SplitN(cleaned, ":", 3)
		minutes := digitsToInt(parts[0])
		seconds := digitsToInt(parts[1])
		return minutes*60000 + seconds*1000
	}
	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value <= 0 {
		return 0
	}
	switch {
	case value < 100:
		return int(math.Round(value * 60000))
	case value < 10000:
		return int(math.Round(value * 1000))
	default:
		return int(math.Round(value))
	}
}

func digitsToInt(s string) int {
	n, err := strconv.Atoi(nonDigitsRe.ReplaceAllString(s, ""))
	if err != nil {
		return 0
	}
	return n
}

// StripDisambiguation removes a trailing numeric index such as "Weezer (2)".
func StripDisambiguation(name string) string {
	return strings.TrimSpace(disambiguationRe.ReplaceAllString(name, ""))
}

// ParseArtists resolves display names out of an artist field. When the field is absent
// the artist is taken from an "Artist - Title" fallback title.
func ParseArtists(field music.ArtistField, fallbackTitle string) []string {
	if !field.Present {
		if left, _, ok := strings.Cut(fallbackTitle, artistTitleMarker); ok {
			if name := StripDisambiguation(left); name != "" {
				return []string{name}
			}
		}
		return nil
	}
	if field.IsList {
		names := make([]string, 0, len(field.Credits))
		for _, credit := range field.Credits {
			name := credit.Name
			if name == "" {
				name = credit.Title
			}
			if name = StripDisambiguation(name); name != "" {
				names = append(names, name)
			}
		}
		return names
	}
	text := field.Text
	if left, _, ok := strings.Cut(text, artistTitleMarker); ok {
		text = left
	}
	if name := StripDisambiguation(text); name != "" {
		return []string{name}
	}
	return nil
}

func collapseSpaces(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// DurationValue converts a duration that arrived as a JSON number or string.
func DurationValue(v music.FlexString) int {
	return DurationToMs(string(v))
}
