package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/contre95/musevault/src/music"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorTitle = color.New(color.FgCyan, color.Bold)
)

// PrintError writes err to w highlighted in red.
func PrintError(w io.Writer, err error) {
	colorError.Fprint(w, "error: ")
	fmt.Fprintln(w, err)
}

// writeJSON encodes v as indented JSON to the command's stdout.
func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(header table.Row, rightAligned ...int) table.Writer {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(header)

	configs := make([]table.ColumnConfig, 0, len(header))
	for i := range header {
		align := text.AlignLeft
		for _, n := range rightAligned {
			if n == i+1 {
				align = text.AlignRight
			}
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw
}

func renderReleases(releases []music.Release) string {
	tw := newTable(table.Row{"ID", "Artist", "Title", "Year", "Type", "Rating"}, 4, 6)
	for _, r := range releases {
		tw.AppendRow(table.Row{r.ID, r.PrimaryArtist(), r.Name, year(r), r.AlbumType, rating(r)})
	}
	return tw.Render()
}

func renderRelease(r *music.Release) string {
	var b strings.Builder
	colorTitle.Fprintf(&b, "%s - %s", strings.Join(r.Artists, ", "), r.Name)
	b.WriteString("\n")
	details := []string{year(*r), r.AlbumType, r.Label, strings.Join(r.Genres, ", ")}
	b.WriteString(strings.Join(nonEmpty(details), " | "))
	fmt.Fprintf(&b, "\nRating %s (%d reviews)\n", rating(*r), r.ReviewCount)

	tw := newTable(table.Row{"#", "Track", "Length"}, 1, 3)
	for _, t := range r.Tracks {
		tw.AppendRow(table.Row{t.TrackNumber, t.Name, length(t.DurationMs)})
	}
	b.WriteString(tw.Render())
	return b.String()
}

func year(r music.Release) string {
	if !r.HasYear() {
		return "-"
	}
	return strconv.Itoa(*r.ReleaseYear)
}

func rating(r music.Release) string {
	return strconv.FormatFloat(r.CommunityRating, 'f', 1, 64)
}

func length(ms int) string {
	seconds := ms / 1000
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func nonEmpty(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
