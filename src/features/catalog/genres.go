package catalog

import (
	"regexp"
	"unicode/utf16"
)

// Genre vocabulary used when a release carries no genre metadata. Order is significant.
var baseGenres = []string{
	"Neo-Soul",
	"Jazztronica",
	"Alt R&B",
	"Analog House",
	"Indie Electronic",
	"Future Funk",
	"Atmospheric Pop",
	"Chillwave",
}

const (
	collectorCutGenre     = "Collector Cut"
	extendedEditionGenre  = "Extended Edition"
	extendedEditionTracks = 16
)

var singleTypeRe = regexp.MustCompile(`(?i)\bsingle\b`)

// Seed folds an identity string into a small stable integer: acc = (acc*31 + code) % 997,
// starting at 7, over UTF-16 code units.
func Seed(value string) int {
	acc := 7
	for _, code := range utf16.Encode([]rune(value)) {
		acc = (acc*31 + int(code)) % 997
	}
	return acc
}

// GenreInput is the identity a genre inference is derived from.
type GenreInput struct {
	ID         string
	Name       string
	Type       string
	TrackCount int
}

func identity(id, name string) string {
	if id != "" {
		return id
	}
	return name
}

// InferGenres picks genres deterministically from the release identity.
func InferGenres(in GenreInput) []string {
	seed := Seed(identity(in.ID, in.Name))
	genres := []string{baseGenres[seed%len(baseGenres)]}
	if second := baseGenres[(seed*3)%len(baseGenres)]; second != genres[0] {
		genres = append(genres, second)
	}
	if singleTypeRe.MatchString(in.Type) {
		genres = append(genres, collectorCutGenre)
	}
	if in.TrackCount > extendedEditionTracks {
		genres = append(genres, extendedEditionGenre)
	}
	return dedupe(genres)
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
