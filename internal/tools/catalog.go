// Package tools defines the closed set of actions the language model may
// request, the argument schemas those actions are validated against, and the
// registry that is the only path from a model-requested tool call to
// side-effecting code.
package tools

// ToolName is the identifier of a whitelisted tool. The set of valid values
// is fixed at compile time; anything else is rejected at the validation
// boundary before it can reach a dispatch table lookup.
type ToolName string

const (
	// Spotify playback control.
	PlaySong        ToolName = "play_song"
	PausePlayback   ToolName = "pause_playback"
	ResumePlayback  ToolName = "resume_playback"
	NextTrack       ToolName = "next_track"
	PreviousTrack   ToolName = "previous_track"
	GetCurrentTrack ToolName = "get_current_track"

	// Weather lookups.
	CheckWeather ToolName = "check_weather"
	GetForecast  ToolName = "get_forecast"

	// Wikipedia lookups.
	SearchWiki     ToolName = "search_wiki"
	GetWikiSummary ToolName = "get_wiki_summary"
)

// allToolNames fixes a stable ordering for listings and error messages.
var allToolNames = []ToolName{
	PlaySong,
	PausePlayback,
	ResumePlayback,
	NextTrack,
	PreviousTrack,
	GetCurrentTrack,
	CheckWeather,
	GetForecast,
	SearchWiki,
	GetWikiSummary,
}

// noArgTools are the whitelisted tools that take no arguments. A call naming
// one of these with a non-empty argument map is rejected outright.
var noArgTools = map[ToolName]bool{
	PausePlayback:   true,
	ResumePlayback:  true,
	NextTrack:       true,
	PreviousTrack:   true,
	GetCurrentTrack: true,
}

// ParseToolName maps a raw identifier from the model onto the whitelist.
func ParseToolName(s string) (ToolName, bool) {
	t := ToolName(s)
	if _, ok := noArgTools[t]; ok {
		return t, true
	}
	if _, ok := argSpecs[t]; ok {
		return t, true
	}
	return "", false
}

// TakesArguments reports whether the tool accepts an argument map.
func (t ToolName) TakesArguments() bool {
	return !noArgTools[t]
}

// AllToolNames returns every whitelisted identifier in stable order.
func AllToolNames() []ToolName {
	out := make([]ToolName, len(allToolNames))
	copy(out, allToolNames)
	return out
}

// AllToolNameStrings is AllToolNames as plain strings, for error messages and
// the /chat/tools listing.
func AllToolNameStrings() []string {
	out := make([]string, len(allToolNames))
	for i, t := range allToolNames {
		out[i] = string(t)
	}
	return out
}
