package catalog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/contre95/musevault/src/music"
)

const (
	untitledName       = "Untitled"
	defaultAlbumType   = "Release"
	defaultPopularity  = 50
	discogsWebBase     = "https://www.discogs.com"
	trackNameFormat    = "Track %d"
	formatDescJoinWith = ", "
)

var leadingYearRe = regexp.MustCompile(`^(\d{4})`)

// Normalize turns one upstream record into a Release. It never fails on malformed
// fields; each missing piece falls back to a default or a synthetic value.
func Normalize(raw *music.RawRecord, fallbackTrackCount int) *music.Release {
	if raw == nil {
		return nil
	}
	id := raw.ID.String()
	artists := resolveArtists(raw)
	tracks := buildTracks(id, raw.Tracklist)
	name := resolveName(raw, artists)
	albumType := resolveAlbumType(raw)

	totalTracks := len(tracks)
	if totalTracks == 0 {
		if raw.TrackCount.Valid && raw.TrackCount.Value > 0 {
			totalTracks = raw.TrackCount.Value
		} else {
			totalTracks = max(fallbackTrackCount, 0)
		}
	}

	genres := resolveGenres(raw)
	if len(genres) == 0 {
		genres = InferGenres(GenreInput{ID: id, Name: name, Type: albumType, TrackCount: totalTracks})
	}

	release := &music.Release{
		ID:           id,
		Name:         name,
		RawTitle:     firstNonEmpty(raw.Title.String(), raw.Name.String()),
		Artists:      artists,
		ReleaseDate:  resolveDate(raw),
		Cover:        resolveCover(raw),
		TotalTracks:  totalTracks,
		AlbumType:    albumType,
		Label:        resolveLabel(raw),
		Popularity:   resolvePopularity(raw),
		ExternalURLs: music.ExternalURLs{Discogs: resolveExternalURL(raw.URI.String())},
		Genres:       genres,
		Tracks:       tracks,
	}
	release.ReleaseYear = resolveYear(raw, release.ReleaseDate)
	release.CommunityRating, release.ReviewCount = resolveRating(raw, id, name)
	return release
}

func resolveArtists(raw *music.RawRecord) []string {
	title := raw.Title.String()
	for _, field := range []music.ArtistField{raw.Artists, raw.ExtraArtists, raw.Artist} {
		if !field.Present {
			continue
		}
		if names := ParseArtists(field, ""); len(names) > 0 {
			return names
		}
	}
	if names := ParseArtists(music.ArtistField{}, title); len(names) > 0 {
		return names
	}
	return []string{music.UnknownArtist}
}

func buildTracks(releaseID string, raw []music.RawTrack) []music.Track {
	tracks := make([]music.Track, 0, len(raw))
	for i, t := range raw {
		position := t.Position.String()
		key := position
		if key == "" {
			key = strconv.Itoa(i)
		}
		name := t.Title.String()
		if name == "" {
			name = fmt.Sprintf(trackNameFormat, i+1)
		}
		number := digitsToInt(position)
		if number <= 0 {
			number = i + 1
		}
		tracks = append(tracks, music.Track{
			ID:          releaseID + "-" + key,
			Name:        name,
			DurationMs:  DurationValue(t.Duration),
			TrackNumber: number,
		})
	}
	return tracks
}

func resolveName(raw *music.RawRecord, artists []string) string {
	title := raw.Title.String()
	var name string
	if _, rest, ok := strings.Cut(title, artistTitleMarker); ok {
		name = stripArtistPrefix(strings.TrimSpace(rest), artists[0])
	} else {
		name = firstNonEmpty(title, raw.Name.String())
	}
	name = StripDisambiguation(name)
	name = stripVariantBrackets(name)
	name = StripDisambiguation(collapseSpaces(name))
	if name == "" {
		return untitledName
	}
	return name
}

func stripArtistPrefix(name, artist string) string {
	prefix := strings.ToLower(artist) + artistTitleMarker
	if artist != "" && strings.HasPrefix(strings.ToLower(name), prefix) {
		return strings.TrimSpace(name[len(prefix):])
	}
	return name
}

func resolveCover(raw *music.RawRecord) string {
	var candidates []string
	if len(raw.Images) > 0 {
		candidates = append(candidates, raw.Images[0].URI, raw.Images[0].ResourceURL)
	}
	candidates = append(candidates, raw.CoverImage.String(), raw.Thumb.String(), raw.ImageURL.String())
	return firstNonEmpty(candidates...)
}

func resolveDate(raw *music.RawRecord) *string {
	date := firstNonEmpty(raw.Released.String(), raw.ReleasedFormatted.String())
	if date == "" {
		return nil
	}
	return &date
}

func resolveYear(raw *music.RawRecord, date *string) *int {
	if raw.Year.Valid && raw.Year.Value > 0 {
		year := raw.Year.Value
		return &year
	}
	if date == nil {
		return nil
	}
	m := leadingYearRe.FindStringSubmatch(*date)
	if m == nil {
		return nil
	}
	year, err := strconv.Atoi(m[1])
	if err != nil || year <= 0 {
		return nil
	}
	return &year
}

func resolveAlbumType(raw *music.RawRecord) string {
	formats := raw.Formats
	if len(formats) == 0 {
		formats = raw.Format
	}
	if len(formats) > 0 {
		var parts []string
		if formats[0].Flat {
			for _, f := range formats {
				parts = append(parts, strings.TrimSpace(f.Name))
			}
		} else {
			parts = append(parts, strings.TrimSpace(formats[0].Name))
			parts = append(parts, formats[0].Descriptions...)
		}
		if joined := joinNonEmpty(parts, formatDescJoinWith); joined != "" {
			return joined
		}
	}
	return firstNonEmpty(raw.Type.String(), defaultAlbumType)
}

func resolveLabel(raw *music.RawRecord) string {
	if len(raw.Labels) > 0 {
		return raw.Labels[0]
	}
	if len(raw.Label) > 0 {
		return raw.Label[0]
	}
	return ""
}

func resolvePopularity(raw *music.RawRecord) int {
	if c := raw.Community; c != nil {
		if c.Have.Valid {
			return c.Have.Value
		}
		if c.Want.Valid {
			return c.Want.Value
		}
	}
	return defaultPopularity
}

func resolveExternalURL(uri string) string {
	switch {
	case uri == "":
		return ""
	case strings.HasPrefix(uri, "/"):
		return discogsWebBase + uri
	default:
		return uri
	}
}

func resolveGenres(raw *music.RawRecord) []string {
	var all []string
	for _, list := range []music.StringList{raw.Genres, raw.Genre, raw.Styles, raw.Style} {
		for _, g := range list {
			all = append(all, strings.TrimSpace(g))
		}
	}
	return dedupe(all)
}

func resolveRating(raw *music.RawRecord, id, name string) (float64, int) {
	var popularity *int
	if raw.Popularity.Valid {
		p := raw.Popularity.Value
		popularity = &p
	}
	snapshot := Snapshot(SnapshotInput{ID: id, Name: name, Popularity: popularity}, nil)
	rating, count := snapshot.Average, snapshot.Total
	if c := raw.Community; c != nil && c.Rating != nil {
		if avg := c.Rating.Average; avg.Valid && avg.Value > 0 {
			rating = clampRating(avg.Value)
		}
		if n := c.Rating.Count; n.Valid && n.Value >= 0 {
			count = n.Value
		}
	}
	return rating, count
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func joinNonEmpty(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}
