package music

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestRawRecordDecodesSearchEntry(t *testing.T) {
	payload := `{
		"id": 249504,
		"title": "Radiohead - OK Computer",
		"year": "1997",
		"format": ["Vinyl", "LP", "Album"],
		"label": ["Parlophone", "EMI"],
		"genre": ["Electronic", "Rock"],
		"style": ["Alternative Rock"],
		"cover_image": "https://img.discogs.com/cover.jpg",
		"community": {"want": 1200, "have": 5400},
		"uri": "/Radiohead-OK-Computer/release/249504"
	}`

	var raw RawRecord
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if raw.ID.String() != "249504" {
		t.Errorf("expected id 249504, got %q", raw.ID)
	}
	if !raw.Year.Valid || raw.Year.Value != 1997 {
		t.Errorf("expected year 1997, got %+v", raw.Year)
	}
	if len(raw.Format) != 3 || !raw.Format[0].Flat || raw.Format[2].Name != "Album" {
		t.Errorf("unexpected formats: %+v", raw.Format)
	}
	if len(raw.Label) != 2 || raw.Label[0] != "Parlophone" {
		t.Errorf("unexpected labels: %v", raw.Label)
	}
	if raw.Community == nil || raw.Community.Have.Value != 5400 {
		t.Errorf("unexpected community: %+v", raw.Community)
	}
	if raw.Artist.Present {
		t.Errorf("expected no artist field, got %+v", raw.Artist)
	}
}

func TestRawRecordDecodesReleaseLookup(t *testing.T) {
	payload := `{
		"id": 42,
		"title": "OK Computer",
		"artists": [{"name": "Radiohead", "id": 3840}],
		"extraartists": [],
		"labels": [{"name": "Parlophone", "catno": "NODATA 02"}],
		"formats": [{"name": "CD", "qty": "1", "descriptions": ["Album"]}],
		"community": {"have": 10, "want": 3, "rating": {"average": 4.6, "count": 812}},
		"tracklist": [{"position": "1", "title": "Airbag", "duration": "4:44", "type_": "track"}],
		"images": [{"type": "primary", "uri": "https://img/primary.jpg", "resource_url": "https://img/res.jpg"}],
		"released": "1997-05-21",
		"year": 0
	}`

	var raw RawRecord
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	if !raw.Artists.IsList || len(raw.Artists.Credits) != 1 || raw.Artists.Credits[0].Name != "Radiohead" {
		t.Errorf("unexpected artists: %+v", raw.Artists)
	}
	if !raw.ExtraArtists.Present || len(raw.ExtraArtists.Credits) != 0 {
		t.Errorf("expected present but empty extra artists, got %+v", raw.ExtraArtists)
	}
	if len(raw.Formats) != 1 || raw.Formats[0].Flat || raw.Formats[0].Descriptions[0] != "Album" {
		t.Errorf("unexpected formats: %+v", raw.Formats)
	}
	if raw.Community.Rating == nil || raw.Community.Rating.Average.Value != 4.6 || raw.Community.Rating.Count.Value != 812 {
		t.Errorf("unexpected rating: %+v", raw.Community.Rating)
	}
	if raw.Tracklist[0].Duration.String() != "4:44" {
		t.Errorf("unexpected duration: %q", raw.Tracklist[0].Duration)
	}
	if !raw.Year.Valid || raw.Year.Value != 0 {
		t.Errorf("expected a valid zero year, got %+v", raw.Year)
	}
}

func TestRawRecordToleratesOddShapes(t *testing.T) {
	payload := `{
		"id": "x1",
		"artist": "Boards of Canada",
		"year": "unknown",
		"label": "Warp",
		"genres": "Electronic",
		"community": {"have": "17", "rating": {"average": "n/a"}},
		"tracklist": [{"title": "Gemini", "duration": 245, "position": 1}]
	}`

	var raw RawRecord
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if raw.Artist.IsList || raw.Artist.Text != "Boards of Canada" {
		t.Errorf("unexpected artist: %+v", raw.Artist)
	}
	if raw.Year.Valid {
		t.Errorf("expected invalid year, got %+v", raw.Year)
	}
	if len(raw.Label) != 1 || raw.Label[0] != "Warp" {
		t.Errorf("unexpected label: %v", raw.Label)
	}
	if len(raw.Genres) != 1 || raw.Genres[0] != "Electronic" {
		t.Errorf("unexpected genres: %v", raw.Genres)
	}
	if raw.Community.Have.Value != 17 || raw.Community.Rating.Average.Valid {
		t.Errorf("unexpected community: %+v", raw.Community)
	}
	if raw.Tracklist[0].Duration.String() != "245" || raw.Tracklist[0].Position.String() != "1" {
		t.Errorf("unexpected track: %+v", raw.Tracklist[0])
	}
}

func TestRawRecordDropsMalformedNestedFields(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		check   func(t *testing.T, raw RawRecord)
	}{
		{
			name:    "images as string",
			payload: `{"id": 2, "title": "Air - Moon Safari", "images": "none"}`,
			check: func(t *testing.T, raw RawRecord) {
				if raw.Images != nil || raw.Title.String() != "Air - Moon Safari" {
					t.Errorf("unexpected record %+v", raw)
				}
			},
		},
		{
			name:    "image with numeric uri and a stray entry",
			payload: `{"id": 2, "images": ["x", {"uri": 5, "resource_url": "https://img/2.jpg"}]}`,
			check: func(t *testing.T, raw RawRecord) {
				if len(raw.Images) != 1 || raw.Images[0].URI != "5" || raw.Images[0].ResourceURL != "https://img/2.jpg" {
					t.Errorf("unexpected images %+v", raw.Images)
				}
			},
		},
		{
			name:    "tracklist as object",
			payload: `{"id": 2, "tracklist": {}, "year": 1998}`,
			check: func(t *testing.T, raw RawRecord) {
				if raw.Tracklist != nil || raw.Year.Value != 1998 {
					t.Errorf("unexpected record %+v", raw)
				}
			},
		},
		{
			name:    "community as string",
			payload: `{"id": 2, "community": "n/a"}`,
			check: func(t *testing.T, raw RawRecord) {
				if raw.Community != nil {
					t.Errorf("expected no community, got %+v", raw.Community)
				}
			},
		},
		{
			name:    "community rating as string",
			payload: `{"id": 2, "community": {"want": 40, "rating": "n/a"}}`,
			check: func(t *testing.T, raw RawRecord) {
				if raw.Community == nil || raw.Community.Want.Value != 40 || raw.Community.Rating != nil {
					t.Errorf("unexpected community %+v", raw.Community)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var raw RawRecord
			if err := json.Unmarshal([]byte(tt.payload), &raw); err != nil {
				t.Fatalf("unexpected decode error: %v", err)
			}
			if raw.ID.String() != "2" {
				t.Errorf("expected id 2, got %q", raw.ID)
			}
			tt.check(t, raw)
		})
	}
}

func TestRawRecordRejectsNonObjects(t *testing.T) {
	var raw RawRecord
	if err := json.Unmarshal([]byte(`"release"`), &raw); err == nil {
		t.Error("expected an error for a string record")
	}
}

func TestUpstreamErrorMatchesSentinel(t *testing.T) {
	var err error = &UpstreamError{StatusCode: 503, Status: "Service Unavailable"}
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatal("expected UpstreamError to match ErrUpstreamUnavailable")
	}
	if UpstreamStatus(err) != 503 {
		t.Errorf("expected status 503, got %d", UpstreamStatus(err))
	}
}
