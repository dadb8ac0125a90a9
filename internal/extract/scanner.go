package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/driftscan/internal/lexicon"
	"github.com/ppiankov/driftscan/internal/model"
)

// frame is the section state opened by one heading
type frame struct {
	level    int
	title    string
	section  lexicon.SectionKind
	category string
	plan     *planContext
	cli      bool
	added    bool // changelog "Added"/"Features" sub-section
}

// scanner walks the logical lines of one document and collects candidates
type scanner struct {
	profile Profile
	frames  []frame

	skipLabel   bool // inside a block opened by a non-feature bold label
	leadFeature bool // list introduced by a feature lead-in paragraph
	leadGoal    bool // list introduced by a goal lead-in paragraph

	tableHeader []string
	out         []Candidate
}

func newScanner(p Profile) *scanner {
	base := frame{category: p.Category}
	if p.Kind == KindPlan {
		base.plan = &planContext{}
	}
	if p.Kind == KindFeatures {
		base.section = lexicon.SectionFeature
	}
	return &scanner{profile: p, frames: []frame{base}}
}

func (s *scanner) top() frame { return s.frames[len(s.frames)-1] }

// lineRule handles a logical line and reports whether it consumed it
type lineRule struct {
	name  string
	apply func(s *scanner, ll logicalLine) bool
}

// Candidate rules in priority order. Quote merging and paragraph
// continuation happen earlier, in assembleLines.
var lineRules = []lineRule{
	{"blank", (*scanner).blankLine},
	{"heading", (*scanner).heading},
	{"bold-label", (*scanner).boldLabel},
	{"list-item", (*scanner).listItem},
	{"inline-sentence", (*scanner).inlineSentence},
	{"table-row", (*scanner).tableRow},
}

func (s *scanner) scan(lines []logicalLine) {
	for _, ll := range lines {
		if ll.Kind != kindTable {
			s.tableHeader = nil
		}
		for _, r := range lineRules {
			if r.apply(s, ll) {
				break
			}
		}
	}
}

func (s *scanner) blankLine(ll logicalLine) bool {
	if ll.Kind != kindBlank && ll.Kind != kindRule {
		return false
	}
	s.skipLabel = false
	return true
}

// active reports whether prose in the current section may produce candidates
func (s *scanner) active() bool {
	f := s.top()
	if f.section == lexicon.SectionNonFeature {
		return false
	}
	if s.profile.Kind == KindReleaseNote && !f.added {
		return false
	}
	return true
}

func (s *scanner) featureContext() bool {
	f := s.top()
	return f.section == lexicon.SectionFeature || f.added || s.leadFeature
}

func (s *scanner) heading(ll logicalLine) bool {
	if ll.Kind != kindHeading {
		return false
	}
	title := cleanInline(ll.Text)
	s.push(title, ll.Level)
	s.skipLabel = false
	s.leadFeature, s.leadGoal = false, false

	if s.profile.Kind == KindFeatures && ll.Level > 1 && s.active() {
		s.emit(Candidate{Text: title, Line: ll.Line, Heuristic: "heading:features-doc", FeatureContext: true})
	}
	return true
}

// push opens a section at level, closing every section at the same or a deeper level
func (s *scanner) push(title string, level int) {
	for len(s.frames) > 1 && s.top().level >= level {
		s.frames = s.frames[:len(s.frames)-1]
	}
	s.frames = append(s.frames, s.deriveFrame(s.top(), title, level))
}

func (s *scanner) deriveFrame(parent frame, title string, level int) frame {
	f := parent
	f.level = level
	f.title = title

	if s.profile.Kind == KindReleaseNote {
		switch {
		case lexicon.IsChangelogAddedSection(title):
			f.added = true
		case lexicon.IsChangelogOtherSection(title):
			f.added = false
		}
	} else if kind := lexicon.ClassifySection(title); kind != lexicon.SectionNeutral {
		f.section = kind
	}

	if cat, ok := lexicon.Category(title); ok {
		f.category = cat
	}

	switch {
	case lexicon.IsPlanSection(title):
		pc := parseHeadingStatus(title)
		f.plan = &pc
		if f.section == lexicon.SectionNonFeature {
			f.section = lexicon.SectionNeutral
		}
	case parent.plan != nil:
		pc := parseHeadingStatus(title)
		if pc.phase == "" {
			pc.phase = parent.plan.phase
		}
		if pc.status == model.PlanStatusUnknown {
			pc.status = parent.plan.status
		}
		f.plan = &pc
	}

	if lexicon.IsCLISection(title) {
		f.cli = true
	}
	return f
}

func (s *scanner) boldLabel(ll logicalLine) bool {
	if ll.Kind != kindParagraph {
		return false
	}
	m := boldLabelPattern.FindStringSubmatch(ll.Text)
	if m == nil {
		return false
	}
	label := cleanInline(m[2])
	rest := strings.TrimSpace(m[4])
	if rest != "" && !labelSeparated(ll.Text, m) {
		return false
	}
	s.skipLabel = false
	s.leadFeature, s.leadGoal = false, false

	// A bold line on its own that reads like a section title acts as one
	if rest == "" && isSectionTitle(label) {
		s.push(label, pseudoHeadingLevel)
		return true
	}
	if lexicon.IsNonFeatureLabel(label) {
		s.skipLabel = true
		return true
	}
	if s.active() {
		s.emit(Candidate{Text: label, Line: ll.Line, Heuristic: "bold-label", FeatureContext: s.featureContext()})
	}
	return true
}

// Bold pseudo-headings sit below every real heading level
const pseudoHeadingLevel = 7

// labelSeparated reports whether the bold text is followed by a separator, as
// in "**Label**: text", rather than being the subject of a sentence.
func labelSeparated(text string, m []string) bool {
	if strings.HasSuffix(strings.TrimSpace(m[2]), ":") {
		return true
	}
	after := strings.TrimSpace(text[len(m[1])+len(m[2])+len(m[3]):])
	for _, sep := range []string{":", "：", "-", "–", "—"} {
		if strings.HasPrefix(after, sep) {
			return true
		}
	}
	return false
}

func isSectionTitle(label string) bool {
	return lexicon.ClassifySection(label) != lexicon.SectionNeutral ||
		lexicon.IsPlanSection(label) ||
		lexicon.IsCLISection(label)
}

var releaseFeatPattern = regexp.MustCompile(`(?i)^(feat|feature)(\([^)]*\))?!?:\s*(.+)$`)

func (s *scanner) listItem(ll logicalLine) bool {
	if ll.Kind != kindList {
		return false
	}
	item, ok := parseListItem(ll.Text)
	if !ok || s.skipLabel {
		return true
	}
	text, itemStatus := stripItemStatus(item.Text)

	heuristicPrefix := ""
	if m := releaseFeatPattern.FindStringSubmatch(text); m != nil && s.profile.Kind == KindReleaseNote {
		text = m[3]
		heuristicPrefix = "changelog:"
	} else if !s.active() {
		return true
	}

	if _, discard := discardListItem(text, s.leadGoal); discard {
		return true
	}

	f := s.top()
	label, heuristic := itemLabel(text, f.cli)
	if heuristic == "list:bold-label" && lexicon.IsNonFeatureLabel(label) {
		return true
	}

	var plan *model.PlanMetadata
	if f.plan != nil {
		plan = itemPlan(*f.plan, item.Checkbox, itemStatus)
	}

	base := Candidate{
		Line:           ll.Line,
		Checkbox:       item.Checkbox,
		Plan:           plan,
		Heuristic:      heuristicPrefix + heuristic,
		FeatureContext: s.featureContext() || heuristicPrefix != "",
	}

	clean := cleanInline(label)
	if heuristic == "list:raw" {
		if parts := splitFeatureList(clean); parts != nil {
			for _, p := range parts {
				c := base
				c.Text = p
				c.Heuristic = heuristicPrefix + "list:split"
				s.emit(c)
			}
			return true
		}
	}
	base.Text = clean
	s.emit(base)
	return true
}

func (s *scanner) inlineSentence(ll logicalLine) bool {
	if ll.Kind != kindParagraph {
		return false
	}
	s.leadFeature, s.leadGoal = classifyLeadIn(ll.Text)
	if s.skipLabel || !s.active() {
		return true
	}

	for _, sentence := range splitSentences(cleanInline(ll.Text)) {
		if object, _, ok := verbObject(sentence); ok {
			if parts := splitFeatureList(object); parts != nil {
				for _, p := range parts {
					s.emit(Candidate{Text: p, Line: ll.Line, Heuristic: "inline:verb-split", FeatureContext: true})
				}
				continue
			}
			s.emit(Candidate{Text: object, Line: ll.Line, Heuristic: "inline:verb", FeatureContext: true})
			continue
		}
		if phrase, ok := descriptivePhrase(sentence); ok {
			s.emit(Candidate{Text: phrase, Line: ll.Line, Heuristic: "inline:descriptive", FeatureContext: true})
		}
	}
	return true
}

var (
	typeColumnPattern = regexp.MustCompile(`(?i)^(type|kind|category|tag)$`)
	descColumnPattern = regexp.MustCompile(`(?i)^(description|summary|change|changes|title|details?)$`)
	featCellPattern   = regexp.MustCompile(`(?i)^(feat|feature|features|new|added)$`)
)

func (s *scanner) tableRow(ll logicalLine) bool {
	if ll.Kind != kindTable {
		return false
	}
	cells := splitRow(ll.Text)
	if ll.Header {
		s.tableHeader = cells
		return true
	}
	if len(cells) == 0 || s.skipLabel {
		return true
	}

	if s.profile.Kind == KindReleaseNote {
		typeCol, descCol := 0, 1
		for i, h := range s.tableHeader {
			switch {
			case typeColumnPattern.MatchString(h):
				typeCol = i
			case descColumnPattern.MatchString(h):
				descCol = i
			}
		}
		if typeCol < len(cells) && descCol < len(cells) && featCellPattern.MatchString(cells[typeCol]) {
			s.emit(Candidate{Text: cells[descCol], Line: ll.Line, Heuristic: "table:changelog-feat", FeatureContext: true})
		}
		return true
	}
	if !s.active() {
		return true
	}

	f := s.top()
	first := cells[0]
	switch {
	case f.category != "":
		text := first
		if _, ok := lexicon.Category(first); !ok {
			text = first + " " + f.category
		}
		s.emit(Candidate{Text: text, Line: ll.Line, Heuristic: "table:category", FeatureContext: true})
	case f.section == lexicon.SectionFeature:
		s.emit(Candidate{Text: first, Line: ll.Line, Heuristic: "table:feature", FeatureContext: true})
	}
	return true
}

func splitRow(row string) []string {
	row = strings.TrimSpace(row)
	row = strings.TrimPrefix(row, "|")
	row = strings.TrimSuffix(row, "|")
	var cells []string
	for _, c := range strings.Split(row, "|") {
		cells = append(cells, cleanInline(strings.TrimSpace(c)))
	}
	return cells
}

// Path stems that describe a directory rather than one entry in it
var indexStems = map[string]bool{
	"index": true, "readme": true, "overview": true, "introduction": true,
	"intro": true, "getting-started": true, "getting_started": true, "_index": true,
}

// pathClaim synthesizes "Bar chart" from docs/charts/bar.md
func (s *scanner) pathClaim() {
	p := s.profile
	if p.Category == "" || p.Kind != KindDoc {
		return
	}
	base := p.Path[strings.LastIndex(p.Path, "/")+1:]
	stem := strings.ToLower(base)
	if i := strings.LastIndex(stem, "."); i > 0 {
		stem = stem[:i]
	}
	if indexStems[stem] {
		return
	}
	name := strings.Join(strings.FieldsFunc(stem, func(r rune) bool {
		return r == '-' || r == '_' || r == '.'
	}), " ")
	if name == "" {
		return
	}
	if _, ok := lexicon.Category(name); ok {
		return
	}
	r, size := utf8.DecodeRuneInString(name)
	name = string(unicode.ToUpper(r)) + name[size:]
	s.emit(Candidate{Text: name + " " + p.Category, Line: 1, Heuristic: "path:synthetic", FeatureContext: true})
}

func (s *scanner) emit(c Candidate) {
	c.Text = strings.TrimSpace(c.Text)
	if c.Text == "" {
		return
	}
	if c.Section == "" {
		c.Section = s.top().title
	}
	c.Category = s.sourceCategory(c)
	s.out = append(s.out, c)
}

// sourceCategory assigns the provenance category; the first matching rule wins
func (s *scanner) sourceCategory(c Candidate) model.SourceCategory {
	switch {
	case s.profile.Kind == KindManifest:
		return model.CategoryManifestFlag
	case c.Plan != nil || s.profile.Kind == KindPlan:
		return model.CategoryPlan
	case c.Checkbox != model.CheckboxNone:
		return model.CategoryChecklist
	case s.profile.Kind == KindReleaseNote:
		return model.CategoryReleaseNote
	case s.profile.Kind == KindReadme:
		return model.CategoryReadme
	default:
		return model.CategoryDoc
	}
}
