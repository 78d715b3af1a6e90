package tools

import "regexp"

// fieldKind is the wire type expected for an argument field.
type fieldKind int

const (
	kindString fieldKind = iota
	kindInt
)

// contentRule is a semantic constraint applied to string fields beyond type
// and length checks.
type contentRule int

const (
	// ruleNone applies no content constraint.
	ruleNone contentRule = iota
	// ruleNoURLs rejects values carrying a URL scheme delimiter or an http
	// prefix, so the model cannot smuggle a fetchable URL into a free-text
	// parameter that downstream code might dereference.
	ruleNoURLs
	// rulePlaceName restricts the value to letters, spaces, hyphens,
	// apostrophes and periods, blocking injection via exotic characters.
	rulePlaceName
)

var placeNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

// fieldSpec describes one argument field of a tool: its type, bounds, content
// rule, and the description shown to the model.
type fieldSpec struct {
	name        string
	kind        fieldKind
	required    bool
	rule        contentRule
	description string

	// String bounds.
	minLen, maxLen int

	// Integer bounds and default (optional integer fields only).
	min, max, def int
}

// argSpec is the full argument schema of one argument-taking tool. It is the
// single source of truth: the validator walks these fields and the tool
// declarations sent to the model are generated from the same table.
type argSpec struct {
	description string
	fields      []fieldSpec
}

var argSpecs = map[ToolName]argSpec{
	PlaySong: {
		description: "Play a song on Spotify",
		fields: []fieldSpec{
			{name: "song", kind: kindString, required: true, minLen: 1, maxLen: 500, rule: ruleNoURLs,
				description: "Song name and optionally artist"},
		},
	},
	CheckWeather: {
		description: "Get the current weather for a city",
		fields: []fieldSpec{
			{name: "city", kind: kindString, required: true, minLen: 1, maxLen: 100, rule: rulePlaceName,
				description: "City name, e.g. Boston or New York"},
		},
	},
	GetForecast: {
		description: "Get the weather forecast for a city",
		fields: []fieldSpec{
			{name: "city", kind: kindString, required: true, minLen: 1, maxLen: 100, rule: rulePlaceName,
				description: "City name, e.g. Boston or New York"},
			{name: "days", kind: kindInt, min: 1, max: 14, def: 5,
				description: "Number of forecast days (1-14)"},
		},
	},
	SearchWiki: {
		description: "Search Wikipedia for information about a topic",
		fields: []fieldSpec{
			{name: "query", kind: kindString, required: true, minLen: 1, maxLen: 500, rule: ruleNoURLs,
				description: "Topic to look up"},
			{name: "sentences", kind: kindInt, min: 1, max: 10, def: 3,
				description: "Number of sentences to return (1-10)"},
		},
	},
	GetWikiSummary: {
		description: "Get a summary of a Wikipedia page",
		fields: []fieldSpec{
			{name: "page_title", kind: kindString, required: true, minLen: 1, maxLen: 500, rule: ruleNoURLs,
				description: "Title of the Wikipedia page"},
		},
	},
}

// noArgDescriptions are the model-facing descriptions for tools without
// arguments.
var noArgDescriptions = map[ToolName]string{
	PausePlayback:   "Pause Spotify playback",
	ResumePlayback:  "Resume Spotify playback",
	NextTrack:       "Skip to the next track on Spotify",
	PreviousTrack:   "Go back to the previous track on Spotify",
	GetCurrentTrack: "Get the track currently playing on Spotify",
}
