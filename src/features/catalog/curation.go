package catalog

import (
	"regexp"
	"strings"

	"github.com/contre95/musevault/src/music"
	"github.com/gosimple/unidecode"
)

var (
	variantMarkerRe = regexp.MustCompile(`(?i)\b(deluxe|expanded|remaster\w*|reissue\w*|anniversary|edition|version|mono|stereo|bonus|special|collector\w*|promo|test pressing)\b`)
	bracketRe       = regexp.MustCompile(`\s*[\(\[]([^\(\)\[\]]*)[\)\]]`)
	// " - 2011 Remaster", ": Super Deluxe Edition"
	separatorSuffixRe = regexp.MustCompile(`(?i)\s+[-–—:/]\s+[^-–—:/]*\b(deluxe|expanded|remaster\w*|reissue\w*|anniversary|edition|version|mono|stereo|bonus)\b[^-–—:/]*$`)
	// " Deluxe Edition", " 20th Anniversary Edition", " Special Edition"
	bareSuffixRe = regexp.MustCompile(`(?i)\s+(?:(?:super\s+)?(?:deluxe|expanded|remastered|(?:\d+\w*\s+)?anniversary)(?:\s+(?:edition|version))?|(?:special|collector'?s|limited|bonus(?:\s+track)?)\s+(?:edition|version))\s*$`)
	albumTypeRe  = regexp.MustCompile(`(?i)\b(album|lp)\b`)
	singleOrEPRe = regexp.MustCompile(`(?i)\b(single|ep)\b`)
)

var bannedTypeTerms = []string{"unofficial", "promo", "test pressing", "advance"}

// Score weights.
const (
	scoreYear       = 4
	scoreCover      = 2
	scoreReviews    = 1
	scoreAlbumType  = 2
	scoreSingleType = -2
	scoreVariant    = -3
)

// CurationStats describes what a curation pass dropped.
type CurationStats struct {
	Input      int
	Unreleased int
	Duplicates int
	Output     int
}

// IsReleasedAlbum reports whether a release has a resolvable date and an album type
// that does not mark an unofficial or pre-release pressing.
func IsReleasedAlbum(r *music.Release) bool {
	dated := r.HasYear()
	if !dated && r.ReleaseDate != nil {
		date := strings.TrimSpace(*r.ReleaseDate)
		dated = date != "" && date != "0"
	}
	if !dated {
		return false
	}
	albumType := strings.ToLower(r.AlbumType)
	for _, term := range bannedTypeTerms {
		if strings.Contains(albumType, term) {
			return false
		}
	}
	return true
}

// CanonicalName reduces a release name to the form variant listings share.
func CanonicalName(r *music.Release) string {
	name := strings.ToLower(strings.TrimSpace(r.Name))
	if artist := strings.ToLower(strings.TrimSpace(r.PrimaryArtist())); artist != "" {
		name = strings.TrimPrefix(name, artist+artistTitleMarker)
	}
	name = stripVariantBrackets(name)
	name = separatorSuffixRe.ReplaceAllString(name, "")
	name = bareSuffixRe.ReplaceAllString(name, "")
	return collapseSpaces(name)
}

func stripVariantBrackets(name string) string {
	return bracketRe.ReplaceAllStringFunc(name, func(segment string) string {
		if variantMarkerRe.MatchString(segment) {
			return ""
		}
		return segment
	})
}

// Score ranks how confidently a release is the canonical album among its variants.
func Score(r *music.Release) int {
	score := 0
	if r.HasYear() {
		score += scoreYear
	}
	if r.Cover != "" {
		score += scoreCover
	}
	if r.ReviewCount > 0 {
		score += scoreReviews
	}
	if albumTypeRe.MatchString(r.AlbumType) {
		score += scoreAlbumType
	}
	if singleOrEPRe.MatchString(r.AlbumType) {
		score += scoreSingleType
	}
	if variantMarkerRe.MatchString(firstNonEmpty(r.RawTitle, r.Name)) {
		score += scoreVariant
	}
	return score
}

func fold(s string) string {
	return strings.ToLower(unidecode.Unidecode(s))
}

func dedupKey(r *music.Release) string {
	title := CanonicalName(r)
	if title == "" {
		title = strings.ToLower(strings.TrimSpace(r.Name))
	}
	if title == "" {
		title = r.ID
	}
	return fold(strings.ToLower(strings.TrimSpace(r.PrimaryArtist()))) + "::" + fold(title)
}

// Curate drops unreleased entries and collapses variants of the same album into the
// best-scoring one. Output keeps first-seen key order.
func Curate(releases []music.Release) []music.Release {
	curated, _ := CurateWithStats(releases)
	return curated
}

// CurateWithStats is Curate that also reports what was dropped.
func CurateWithStats(releases []music.Release) ([]music.Release, CurationStats) {
	stats := CurationStats{Input: len(releases)}
	index := make(map[string]int, len(releases))
	best := make([]music.Release, 0, len(releases))
	scores := make([]int, 0, len(releases))

	for _, r := range releases {
		if !IsReleasedAlbum(&r) {
			stats.Unreleased++
			continue
		}
		key := dedupKey(&r)
		score := Score(&r)
		if i, ok := index[key]; ok {
			stats.Duplicates++
			if score > scores[i] {
				best[i] = r
				scores[i] = score
			}
			continue
		}
		index[key] = len(best)
		best = append(best, r)
		scores = append(scores, score)
	}

	stats.Output = len(best)
	return best, stats
}
