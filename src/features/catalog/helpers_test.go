package catalog

import (
	"sync"
	"time"

	"github.com/contre95/musevault/src/music"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func searchRecord(id, title string, year int, formats ...string) music.RawRecord {
	r := music.RawRecord{
		ID:    music.FlexString(id),
		Title: music.FlexString(title),
	}
	if year > 0 {
		r.Year = music.Int(year)
	}
	for _, f := range formats {
		r.Format = append(r.Format, music.Format{Name: f, Flat: true})
	}
	return r
}

func okComputerRecord() *music.RawRecord {
	return &music.RawRecord{
		ID:    "42",
		Title: "Radiohead - OK Computer (Remastered)",
		Year:  music.Int(1997),
		Tracklist: []music.RawTrack{
			{Title: "Airbag", Position: "1", Duration: "4:44"},
		},
	}
}

func releaseIDs(releases []music.Release) []string {
	ids := make([]string, len(releases))
	for i, r := range releases {
		ids[i] = r.ID
	}
	return ids
}
