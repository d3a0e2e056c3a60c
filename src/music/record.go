package music

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// RawRecord is a release as the upstream source sends it. Search results and release
// lookups share this shape; any subset of the fields may be present and several of them
// arrive in more than one JSON form, so the field types below decode leniently.
type RawRecord struct {
	ID                FlexString  `json:"id"`
	Title             FlexString  `json:"title"`
	Name              FlexString  `json:"name"`
	Artist            ArtistField `json:"artist"`
	Artists           ArtistField `json:"artists"`
	ExtraArtists      ArtistField `json:"extraartists"`
	Year              FlexInt     `json:"year"`
	Released          FlexString  `json:"released"`
	ReleasedFormatted FlexString  `json:"released_formatted"`
	Images            []Image     `json:"images"`
	CoverImage        FlexString  `json:"cover_image"`
	Thumb             FlexString  `json:"thumb"`
	ImageURL          FlexString  `json:"image_url"`
	Formats           FormatList  `json:"formats"`
	Format            FormatList  `json:"format"`
	Type              FlexString  `json:"type"`
	Labels            LabelList   `json:"labels"`
	Label             LabelList   `json:"label"`
	Community         *Community  `json:"community"`
	Tracklist         []RawTrack  `json:"tracklist"`
	TrackCount        FlexInt     `json:"trackcount"`
	URI               FlexString  `json:"uri"`
	Genre             StringList  `json:"genre"`
	Genres            StringList  `json:"genres"`
	Style             StringList  `json:"style"`
	Styles            StringList  `json:"styles"`
	Popularity        FlexInt     `json:"popularity"`
}

// RawTrack is one tracklist entry of a release lookup.
type RawTrack struct {
	Title    FlexString `json:"title"`
	Position FlexString `json:"position"`
	Duration FlexString `json:"duration"`
	Type     FlexString `json:"type_"`
}

// Image is an artwork reference.
type Image struct {
	Type        string `json:"type"`
	URI         string `json:"uri"`
	ResourceURL string `json:"resource_url"`
	URI150      string `json:"uri150"`
}

// Community holds the upstream engagement counters.
type Community struct {
	Have   FlexInt      `json:"have"`
	Want   FlexInt      `json:"want"`
	Rating *RatingStats `json:"rating"`
}

// RatingStats is the upstream aggregate rating.
type RatingStats struct {
	Average FlexFloat `json:"average"`
	Count   FlexInt   `json:"count"`
}

// UnmarshalJSON decodes an object record. Images, community and tracklist fall back to
// empty when they arrive in an unexpected shape, so one odd field never loses the record.
func (r *RawRecord) UnmarshalJSON(b []byte) error {
	type plain RawRecord
	var aux struct {
		plain
		Images    json.RawMessage `json:"images"`
		Community json.RawMessage `json:"community"`
		Tracklist json.RawMessage `json:"tracklist"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	*r = RawRecord(aux.plain)
	r.Images = decodeImages(aux.Images)
	r.Community = decodeCommunity(aux.Community)
	r.Tracklist = decodeTracklist(aux.Tracklist)
	return nil
}

func decodeImages(b json.RawMessage) []Image {
	var items []json.RawMessage
	if json.Unmarshal(b, &items) != nil {
		return nil
	}
	var images []Image
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var img struct {
			Type        FlexString `json:"type"`
			URI         FlexString `json:"uri"`
			ResourceURL FlexString `json:"resource_url"`
			URI150      FlexString `json:"uri150"`
		}
		if json.Unmarshal(item, &img) != nil {
			continue
		}
		images = append(images, Image{
			Type:        img.Type.String(),
			URI:         img.URI.String(),
			ResourceURL: img.ResourceURL.String(),
			URI150:      img.URI150.String(),
		})
	}
	return images
}

func isObject(b json.RawMessage) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '{'
}

func decodeCommunity(b json.RawMessage) *Community {
	if !isObject(b) {
		return nil
	}
	var aux struct {
		Have   FlexInt         `json:"have"`
		Want   FlexInt         `json:"want"`
		Rating json.RawMessage `json:"rating"`
	}
	if json.Unmarshal(b, &aux) != nil {
		return nil
	}
	c := &Community{Have: aux.Have, Want: aux.Want}
	if isObject(aux.Rating) {
		var stats RatingStats
		if json.Unmarshal(aux.Rating, &stats) == nil {
			c.Rating = &stats
		}
	}
	return c
}

func decodeTracklist(b json.RawMessage) []RawTrack {
	var items []json.RawMessage
	if json.Unmarshal(b, &items) != nil {
		return nil
	}
	var tracks []RawTrack
	for _, item := range items {
		if !isObject(item) {
			continue
		}
		var track RawTrack
		if json.Unmarshal(item, &track) != nil {
			continue
		}
		tracks = append(tracks, track)
	}
	return tracks
}

// FlexString decodes a JSON string or number into a string. Other JSON kinds decode to "".
type FlexString string

func (s *FlexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*s = ""
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = FlexString(v)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		*s = FlexString(b)
	}
	return nil
}

// String returns the trimmed value.
func (s FlexString) String() string { return strings.TrimSpace(string(s)) }

// FlexInt decodes a JSON number or numeric string. Valid is false when the value was
// absent or could not be read as a number.
type FlexInt struct {
	Value int
	Valid bool
}

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	*n = FlexInt{}
	var raw FlexString
	if err := raw.UnmarshalJSON(b); err != nil {
		return nil
	}
	v := raw.String()
	if v == "" {
		return nil
	}
	if i, err := strconv.Atoi(v); err == nil {
		*n = FlexInt{Value: i, Valid: true}
		return nil
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		*n = FlexInt{Value: int(f), Valid: true}
	}
	return nil
}

// Int returns a FlexInt holding v.
func Int(v int) FlexInt { return FlexInt{Value: v, Valid: true} }

// FlexFloat is FlexInt for fractional values.
type FlexFloat struct {
	Value float64
	Valid bool
}

func (n *FlexFloat) UnmarshalJSON(b []byte) error {
	*n = FlexFloat{}
	var raw FlexString
	if err := raw.UnmarshalJSON(b); err != nil {
		return nil
	}
	if f, err := strconv.ParseFloat(raw.String(), 64); err == nil {
		*n = FlexFloat{Value: f, Valid: true}
	}
	return nil
}

// Float returns a FlexFloat holding v.
func Float(v float64) FlexFloat { return FlexFloat{Value: v, Valid: true} }

// ArtistCredit is one entry of an artist list.
type ArtistCredit struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

// ArtistField is an artist credit that arrives either as a plain string or as a list
// of credits (objects or strings).
type ArtistField struct {
	Present bool
	IsList  bool
	Text    string
	Credits []ArtistCredit
}

// ArtistText builds a string-valued ArtistField.
func ArtistText(s string) ArtistField { return ArtistField{Present: true, Text: s} }

// ArtistList builds a list-valued ArtistField from display names.
func ArtistList(names ...string) ArtistField {
	f := ArtistField{Present: true, IsList: true}
	for _, n := range names {
		f.Credits = append(f.Credits, ArtistCredit{Name: n})
	}
	return f
}

func (a *ArtistField) UnmarshalJSON(b []byte) error {
	*a = ArtistField{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*a = ArtistField{Present: s != "", Text: s}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(b, &items); err != nil {
			return err
		}
		a.Present = true
		a.IsList = true
		for _, item := range items {
			if credit, ok := decodeCredit(item); ok {
				a.Credits = append(a.Credits, credit)
			}
		}
	case '{':
		if credit, ok := decodeCredit(b); ok {
			*a = ArtistField{Present: true, IsList: true, Credits: []ArtistCredit{credit}}
		}
	}
	return nil
}

func decodeCredit(b json.RawMessage) (ArtistCredit, bool) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ArtistCredit{}, false
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return ArtistCredit{}, false
		}
		return ArtistCredit{Name: s}, true
	case '{':
		var c ArtistCredit
		if err := json.Unmarshal(b, &c); err != nil {
			return ArtistCredit{}, false
		}
		return c, true
	}
	return ArtistCredit{}, false
}

// Format is a physical/digital format descriptor. Flat marks formats that arrived as
// bare strings (search results) rather than objects (release lookups).
type Format struct {
	Name         string   `json:"name"`
	Qty          string   `json:"qty"`
	Descriptions []string `json:"descriptions"`
	Flat         bool     `json:"-"`
}

// FormatList decodes a list of format objects or a list of format strings.
type FormatList []Format

func (f *FormatList) UnmarshalJSON(b []byte) error {
	*f = nil
	b = bytes.TrimSpace(b)
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FormatList{{Name: s, Flat: true}}
		return nil
	}
	if b[0] != '[' {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		return err
	}
	for _, item := range items {
		item = bytes.TrimSpace(item)
		if len(item) == 0 {
			continue
		}
		switch item[0] {
		case '"':
			var s string
			if json.Unmarshal(item, &s) == nil {
				*f = append(*f, Format{Name: s, Flat: true})
			}
		case '{':
			var obj struct {
				Name         string     `json:"name"`
				Qty          FlexString `json:"qty"`
				Descriptions []string   `json:"descriptions"`
			}
			if json.Unmarshal(item, &obj) == nil {
				*f = append(*f, Format{Name: obj.Name, Qty: obj.Qty.String(), Descriptions: obj.Descriptions})
			}
		}
	}
	return nil
}

// LabelList decodes label objects ({"name": ...}), label strings, or a single string.
type LabelList []string

func (l *LabelList) UnmarshalJSON(b []byte) error {
	*l = nil
	var field ArtistField
	if err := field.UnmarshalJSON(b); err != nil {
		return nil
	}
	if !field.IsList {
		if s := strings.TrimSpace(field.Text); s != "" {
			*l = LabelList{s}
		}
		return nil
	}
	for _, c := range field.Credits {
		if s := strings.TrimSpace(c.Name); s != "" {
			*l = append(*l, s)
		}
	}
	return nil
}

// StringList decodes a list of strings or a single string.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	*l = nil
	var labels LabelList
	if err := labels.UnmarshalJSON(b); err != nil {
		return nil
	}
	*l = StringList(labels)
	return nil
}
