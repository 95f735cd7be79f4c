// package formatter exports reconciled tracklists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"packtrack/internal/models"
	"packtrack/internal/shared"
)

// TracklistExport bundles a series with its reconciled tracklist for export.
type TracklistExport struct {
	Series *models.Series
	Items  []models.TracklistItem
}

// ExportToCSV converts a reconciled tracklist to CSV, one row per track.
func ExportToCSV(export *TracklistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Disc", "Track", "Title", "In Pack", "Status", "Song ID", "Official", "Pre-existing", "Irrelevant"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, item := range export.Items {
		record := []string{
			strconv.Itoa(item.DiscNumber),
			trackNumberString(item.TrackNumber),
			item.Title,
			strconv.FormatBool(item.InPack),
			item.Status,
			item.SongID,
			strconv.FormatBool(item.Official),
			strconv.FormatBool(item.PreExisting),
			strconv.FormatBool(item.Irrelevant),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a reconciled tracklist to Markdown, grouped by
// disc, with markers for matched and official tracks.
func ExportToMarkdown(export *TracklistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s - %s\n\n", export.Series.Artist(), export.Series.Album()))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n", len(export.Items)))
	buf.WriteString(fmt.Sprintf("**Matched**: %d\n\n", matchedCount(export.Items)))

	currentDisc := 0
	for _, item := range export.Items {
		if item.DiscNumber != currentDisc {
			currentDisc = item.DiscNumber
			buf.WriteString(fmt.Sprintf("## Disc %d\n\n", currentDisc))
		}

		buf.WriteString(fmt.Sprintf("%s. %s%s\n", trackNumberString(item.TrackNumber), item.Title, markers(item)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a reconciled tracklist to plain text.
func ExportToText(export *TracklistExport) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Series: %s - %s\n", export.Series.Artist(), export.Series.Album()))
	buf.WriteString(fmt.Sprintf("Tracks: %d (%d matched)\n\n", len(export.Items), matchedCount(export.Items)))

	for _, item := range export.Items {
		buf.WriteString(fmt.Sprintf("%d.%s %s%s\n", item.DiscNumber, trackNumberString(item.TrackNumber), item.Title, markers(item)))
	}

	return buf.Bytes(), nil
}

// ToTracklistJSON generates a JSON representation of the reconciled tracklist.
func ToTracklistJSON(export *TracklistExport, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(export.Items, pretty)
}

// trackNumberString renders an absent track number as "-".
func trackNumberString(n int) string {
	if n == 0 {
		return "-"
	}
	return strconv.Itoa(n)
}

// markers renders the per-track annotation suffix: ✓ matched, ♪ official,
// [pre-existing], [irrelevant].
func markers(item models.TracklistItem) string {
	var buf bytes.Buffer
	if item.InPack {
		buf.WriteString(" ✓")
		if item.Status != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", item.Status))
		}
	}
	if item.Official {
		buf.WriteString(" ♪")
	}
	if item.PreExisting {
		buf.WriteString(" [pre-existing]")
	}
	if item.Irrelevant {
		buf.WriteString(" [irrelevant]")
	}
	return buf.String()
}

func matchedCount(items []models.TracklistItem) int {
	count := 0
	for _, item := range items {
		if item.InPack {
			count++
		}
	}
	return count
}

// WriteCSVExport writes the tracklist to {base}_tracklist.csv.
//
// Defaults to the series ID as the base filename.
func WriteCSVExport(export *TracklistExport, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = export.Series.ID()
	}

	csvData, err := ExportToCSV(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	file := baseFilepath + "_tracklist.csv"
	if err := os.WriteFile(file, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return file, nil
}

// WriteMarkdownExport writes the tracklist to {base}_tracklist.md.
func WriteMarkdownExport(export *TracklistExport, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = export.Series.ID()
	}

	mdData, err := ExportToMarkdown(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	file := baseFilepath + "_tracklist.md"
	if err := os.WriteFile(file, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return file, nil
}

// WriteTextExport writes the tracklist to {base}_tracklist.txt.
func WriteTextExport(export *TracklistExport, baseFilepath string) (string, error) {
	if baseFilepath == "" {
		baseFilepath = export.Series.ID()
	}

	textData, err := ExportToText(export)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	file := baseFilepath + "_tracklist.txt"
	if err := os.WriteFile(file, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return file, nil
}
