// Package lexicon holds the static rule tables used by claim extraction and
// matching. Tables are unexported and built once at init; callers only see
// read-only lookup functions.
package lexicon

import (
	"regexp"
	"strings"
	"unicode"
)

// SectionKind classifies a heading
type SectionKind int

const (
	SectionNeutral SectionKind = iota
	SectionFeature
	SectionNonFeature
)

func (k SectionKind) String() string {
	switch k {
	case SectionFeature:
		return "feature"
	case SectionNonFeature:
		return "non-feature"
	default:
		return "neutral"
	}
}

var featureSectionPatterns = compileAll(
	`\bfeatures?\b`,
	`\bcapabilit(y|ies)\b`,
	`\bhighlights?\b`,
	`^overview$`,
	`^why\b`,
	`\bwhat'?s included\b`,
	`\bwhat it does\b`,
	`\bwhat you get\b`,
	`\bfunctionality\b`,
	`\bat a glance\b`,
	`\bbenefits\b`,
	`\bwhat'?s new\b`,
	`\bsupported\b`,
)

// Checked before featureSectionPatterns; exclusion wins.
var nonFeatureSectionPatterns = compileAll(
	`\binstall(ation|ing)?\b`,
	`\bgetting started\b`,
	`\bquick ?start\b`,
	`^setup\b`,
	`\bchange ?log\b`,
	`^history$`,
	`\bteam\b`,
	`\blicen[cs]e\b`,
	`\bcontribut(e|ing|ors?|ion)\b`,
	`\bfaq\b`,
	`\bfrequently asked\b`,
	`^support$`,
	`\bgetting (help|support)\b`,
	`\bsupport (us|the project|this project)\b`,
	`\bcredits?\b`,
	`\bsponsors?\b`,
	`\bbackers\b`,
	`\bdonat(e|ion|ions)\b`,
	`\backnowledge?ments?\b`,
	`\bthanks\b`,
	`\bauthors?\b`,
	`\bmaintainers?\b`,
	`\bcontact\b`,
	`\bcommunity\b`,
	`\bcode of conduct\b`,
	`\brequirements\b`,
	`\bprerequisites\b`,
	`\bdependencies\b`,
	`\btroubleshoot(ing)?\b`,
	`\btable of contents\b`,
	`^contents$`,
	`^toc$`,
	`\bbadges?\b`,
	`\bbuild(ing)? from source\b`,
	`^development\b`,
	`\brunning (the )?tests\b`,
	`^testing$`,
	`^usage$`,
	`^examples?$`,
	`\bscreenshots?\b`,
	`^demo$`,
	`\bsee also\b`,
	`\brelated( projects)?\b`,
	`\breferences\b`,
	`\balternatives\b`,
	`\bsimilar projects\b`,
	`\bknown (issues|limitations|bugs)\b`,
	`\blimitations\b`,
	`\bnon-?goals\b`,
	`\bout of scope\b`,
	`\bnot (yet )?(supported|implemented)\b`,
	`\bunsupported\b`,
	`\bmigrat(ion|ing)\b`,
	`\bupgrad(e|ing)\b`,
	`\bbreaking changes\b`,
	`\bdeprecat(ed|ions?)\b`,
	`\bsecurity policy\b`,
	`\breporting (a )?(bug|vulnerabilit)`,
	`\bstar history\b`,
	`\bmotivation\b`,
)

var planSectionPatterns = compileAll(
	`\broad ?map\b`,
	`^todo\b`,
	`\bto-?do list\b`,
	`\bmilestones?\b`,
	`^planned\b`,
	`\bplanned (features|work)\b`,
	`\bupcoming\b`,
	`\bfuture (work|plans|features)\b`,
	`\bbacklog\b`,
	`\bnext steps\b`,
	`\bcoming soon\b`,
)

// CLI vocabulary sections; list labels under these are treated as flag hints
var cliSectionPatterns = compileAll(
	`\boptions\b`,
	`\bflags\b`,
	`^cli\b`,
	`\bcli (usage|reference)\b`,
	`\bcommand[- ]line\b`,
	`^usage$`,
	`\barguments\b`,
	`\bcommands\b`,
	`\bsubcommands\b`,
)

// Changelog sub-sections whose entries describe new capabilities
var changelogAddedPatterns = compileAll(
	`^added$`,
	`^features?$`,
	`^new( features)?$`,
	`^enhancements?$`,
	`^feat$`,
)

var changelogOtherPatterns = compileAll(
	`^(fixed|fixes|bug ?fixes)$`,
	`^(changed|changes)$`,
	`^(removed|deprecated|security)$`,
	`^(chore|chores|docs|documentation|refactor(ing)?|performance|perf|tests?|build|ci)$`,
)

// ClassifySection returns the kind of a heading title. Exclusion wins over inclusion.
func ClassifySection(title string) SectionKind {
	t := CleanTitle(title)
	if t == "" {
		return SectionNeutral
	}
	if matchAny(nonFeatureSectionPatterns, t) {
		return SectionNonFeature
	}
	if matchAny(featureSectionPatterns, t) {
		return SectionFeature
	}
	return SectionNeutral
}

// IsPlanSection reports whether a heading opens roadmap/plan context
func IsPlanSection(title string) bool {
	return matchAny(planSectionPatterns, CleanTitle(title))
}

// IsCLISection reports whether a heading introduces command-line vocabulary
func IsCLISection(title string) bool {
	return matchAny(cliSectionPatterns, CleanTitle(title))
}

// IsChangelogAddedSection reports whether a changelog sub-heading lists new capabilities
func IsChangelogAddedSection(title string) bool {
	return matchAny(changelogAddedPatterns, CleanTitle(title))
}

// IsChangelogOtherSection reports whether a changelog sub-heading lists fixes or chores
func IsChangelogOtherSection(title string) bool {
	return matchAny(changelogOtherPatterns, CleanTitle(title))
}

// CleanTitle lowercases a heading and strips decorations: emoji, numbering,
// trailing colons and markup characters.
func CleanTitle(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '\'', r == '-':
			b.WriteRune(r)
		case r == '’':
			b.WriteRune('\'')
		default:
			b.WriteRune(' ')
		}
	}
	t := strings.Join(strings.Fields(b.String()), " ")
	t = leadingNumbering.ReplaceAllString(t, "")
	return strings.Trim(t, " -'")
}

var leadingNumbering = regexp.MustCompile(`^(\d+ )+`)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	if s == "" {
		return false
	}
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}
