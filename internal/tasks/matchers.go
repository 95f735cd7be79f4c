package tasks

import (
	"sort"
	"strings"

	"packtrack/internal/match"
	"packtrack/internal/models"
)

// matchContext holds the prebuilt lookups one reconciliation run matches
// against. Built once per run so per-track matching stays cheap.
type matchContext struct {
	overridesByID    map[string]string // external_id -> song_id
	overridesByTitle map[string]string // title_clean -> song_id
	songsByID        map[string]*models.Song

	seriesByTitle map[string]*models.Song // normalized title -> series song
	seriesTitles  []string                // sorted keys of seriesByTitle

	globalByTitle map[string]*models.Song // normalized title -> same-artist song
	globalTitles  []string

	threshold float64
}

// candidate is a tier's answer for one track.
type candidate struct {
	song *models.Song
}

// matcher is one tier of the matching ladder. Returns nil when the tier has
// no answer, letting the next tier try.
type matcher func(externalID, titleClean string, mc *matchContext) *candidate

// matchers is the tier ladder in precedence order. The first non-nil
// candidate wins.
var matchers = []matcher{
	matchOverrideByID,
	matchOverrideByTitle,
	matchSeriesExact,
	matchSeriesFuzzy,
	matchGlobalExact,
	matchGlobalFuzzy,
}

func matchOverrideByID(externalID, _ string, mc *matchContext) *candidate {
	if externalID == "" {
		return nil
	}
	songID, ok := mc.overridesByID[externalID]
	if !ok {
		return nil
	}
	// Stale overrides pointing at deleted songs fall through to later tiers.
	if song, ok := mc.songsByID[songID]; ok {
		return &candidate{song: song}
	}
	return nil
}

func matchOverrideByTitle(_, titleClean string, mc *matchContext) *candidate {
	songID, ok := mc.overridesByTitle[titleClean]
	if !ok {
		return nil
	}
	if song, ok := mc.songsByID[songID]; ok {
		return &candidate{song: song}
	}
	return nil
}

func matchSeriesExact(_, titleClean string, mc *matchContext) *candidate {
	if song, ok := mc.seriesByTitle[titleClean]; ok {
		return &candidate{song: song}
	}
	return nil
}

func matchSeriesFuzzy(_, titleClean string, mc *matchContext) *candidate {
	if song := bestFuzzy(titleClean, mc.seriesTitles, mc.seriesByTitle, mc.threshold); song != nil {
		return &candidate{song: song}
	}
	return nil
}

func matchGlobalExact(_, titleClean string, mc *matchContext) *candidate {
	if song, ok := mc.globalByTitle[titleClean]; ok {
		return &candidate{song: song}
	}
	return nil
}

func matchGlobalFuzzy(_, titleClean string, mc *matchContext) *candidate {
	if song := bestFuzzy(titleClean, mc.globalTitles, mc.globalByTitle, mc.threshold); song != nil {
		return &candidate{song: song}
	}
	return nil
}

// bestFuzzy scans candidate titles in sorted order and returns the first one
// that clears the threshold, so the lexicographically smallest passing title
// wins and repeated runs return the same song.
func bestFuzzy(titleClean string, titles []string, byTitle map[string]*models.Song, threshold float64) *models.Song {
	for _, title := range titles {
		if match.Accepts(match.Similarity(titleClean, title), threshold) {
			return byTitle[title]
		}
	}
	return nil
}

// artistContains reports whether the candidate's normalized artist contains
// the series artist, so a series by "Artist" still matches songs credited
// "Artist feat. Guest". Containment is one-directional: a song credited to a
// shorter fragment of the series artist does not qualify.
func artistContains(candidate, base string) bool {
	if candidate == "" || base == "" {
		return false
	}
	return strings.Contains(candidate, base)
}

// buildMatchContext assembles the lookup maps for one run.
//
// Title collisions keep the earliest song by sequence so repeated runs agree.
func buildMatchContext(
	seriesArtist string,
	seriesSongs, allSongs []*models.Song,
	overrides []models.OverrideLink,
	songsByID map[string]*models.Song,
	threshold float64,
) *matchContext {
	mc := &matchContext{
		overridesByID:    make(map[string]string),
		overridesByTitle: make(map[string]string),
		songsByID:        songsByID,
		seriesByTitle:    make(map[string]*models.Song),
		globalByTitle:    make(map[string]*models.Song),
		threshold:        threshold,
	}

	for _, link := range overrides {
		if link.ExternalID != "" {
			mc.overridesByID[link.ExternalID] = link.SongID
		} else {
			mc.overridesByTitle[link.TitleClean] = link.SongID
		}
	}

	for _, song := range seriesSongs {
		title := match.NormalizeTitle(song.Title())
		if title == "" {
			continue
		}
		if _, exists := mc.seriesByTitle[title]; !exists {
			mc.seriesByTitle[title] = song
		}
	}

	artistClean := match.NormalizeArtist(seriesArtist)
	for _, song := range allSongs {
		if !artistContains(match.NormalizeArtist(song.Artist()), artistClean) {
			continue
		}
		title := match.NormalizeTitle(song.Title())
		if title == "" {
			continue
		}
		if _, exists := mc.globalByTitle[title]; !exists {
			mc.globalByTitle[title] = song
		}
	}

	mc.seriesTitles = sortedKeys(mc.seriesByTitle)
	mc.globalTitles = sortedKeys(mc.globalByTitle)

	return mc
}

func sortedKeys(m map[string]*models.Song) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// matchTrack runs the tier ladder for one track and returns the winning song,
// or nil when no tier matched.
func matchTrack(externalID, titleClean string, mc *matchContext) *models.Song {
	for _, m := range matchers {
		if c := m(externalID, titleClean, mc); c != nil {
			return c.song
		}
	}
	return nil
}
