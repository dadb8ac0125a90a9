package lexicon

import (
	"regexp"
	"strings"
)

var noiseExact = wordLines(`
	todo
	tbd
	wip
	n/a
	none
	yes
	no
	coming soon
	more to come
	and more
	and much more
	much more
	many more
	etc
	see below
	see above
	read more
	learn more
	documentation
	docs
	demo
	live demo
	screenshot
	screenshots
	website
	homepage
	changelog
	license
	mit
	apache 2.0
	contributing
	thanks
	thank you
	star this repo
	features
	overview
	`)

var noisePrefixes = []string{
	"please note",
	"please see",
	"please read",
	"please star",
	"please consider",
	"note that",
	"note:",
	"for example",
	"for instance",
	"e.g.",
	"i.e.",
	"see the",
	"see our",
	"check out",
	"read the",
	"refer to",
	"if you like",
	"if you find",
	"if you enjoy",
	"consider sponsoring",
	"consider supporting",
	"buy me a coffee",
	"made with",
	"built with love",
	"copyright",
	"all rights reserved",
	"licensed under",
	"released under",
	"thanks to",
	"special thanks",
	"powered by",
	"join our",
	"follow us",
	"star us",
	"give us a star",
	"give a star",
	"don't forget",
}

var noiseSubstrings = []string{
	"buy me a coffee",
	"ko-fi",
	"patreon",
	"open collective",
	"opencollective",
	"github sponsors",
	"sponsor this",
	"donate",
	"donation",
	"paypal",
	"star this repo",
	"give it a star",
	"leave a star",
	"pull requests are welcome",
	"prs welcome",
	"contributions are welcome",
	"feel free to",
	"blazingly fast",
	"lightning fast",
	"best-in-class",
	"world-class",
	"game changer",
	"game-changer",
	"you'll love",
	"you will love",
	"stay tuned",
	"work in progress",
}

var noisePatterns = compileAll(
	// bare URLs and link-only text
	`^(https?://|www\.)\S+$`,
	`^<?https?://\S+>?$`,
	// version strings
	`^v?\d+(\.\d+){1,3}([-+][0-9a-z.]+)?$`,
	`^(version|release|v)\s*\d+(\.\d+)*`,
	// dates
	`^\d{4}-\d{2}-\d{2}$`,
	// HTTP verbs and routes
	`^(get|post|put|patch|delete|head|options)(\s+/\S*)?$`,
	// pronoun-led short sentences
	`^(it|this|that|we|you|they|i|he|she)\s+(\S+\s+){0,3}\S+[.!]?$`,
	// badge and image leftovers
	`^(build|coverage|downloads?|license|npm|pypi|crates\.io|docs)\s*(passing|failing|status|badge)?$`,
	// pure numbers and symbols
	`^[\d\s.,%:/#*+\-]+$`,
)

var envVarListing = regexp.MustCompile(`^\$?[A-Z][A-Z0-9]*(_[A-Z0-9]+)+\s*([:=]|\s-\s|$)`)

// IsNoiseExact reports whether the lowercased text is a known low-signal phrase
func IsNoiseExact(lower string) bool { return noiseExact[strings.Trim(lower, " .!:")] }

// NoisePrefix returns the low-signal prefix that lower starts with, if any
func NoisePrefix(lower string) (string, bool) {
	for _, p := range noisePrefixes {
		if strings.HasPrefix(lower, p) {
			return p, true
		}
	}
	return "", false
}

// NoiseSubstring returns the low-signal phrase contained in lower, if any
func NoiseSubstring(lower string) (string, bool) {
	for _, s := range noiseSubstrings {
		if strings.Contains(lower, s) {
			return s, true
		}
	}
	return "", false
}

// MatchesNoisePattern reports whether lower matches a low-signal pattern
func MatchesNoisePattern(lower string) bool {
	return matchAny(noisePatterns, strings.TrimSpace(lower))
}

// IsEnvVarListing reports whether text (original case) lists an environment variable
func IsEnvVarListing(text string) bool {
	return envVarListing.MatchString(strings.TrimSpace(text))
}

func wordLines(s string) map[string]bool {
	m := make(map[string]bool)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			m[line] = true
		}
	}
	return m
}
