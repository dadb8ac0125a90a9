package extract

import (
	"regexp"
	"strings"

	"github.com/ppiankov/driftscan/internal/model"
)

var (
	phasePattern = regexp.MustCompile(`(?i)\b(phase|milestone|stage|sprint|iteration|release|step)\s*[-:#]?\s*(\d+(\.\d+)*[a-z]?|[ivx]+)\b`)
	versionPhase = regexp.MustCompile(`(?i)\bv\d+(\.\d+)*\b`)
	quarterPhase = regexp.MustCompile(`(?i)\bq[1-4]\s*\d{4}\b`)

	statusInProgress = regexp.MustCompile(`(?i)\b(in[- ]progress|wip|ongoing|underway|doing|current(ly)?|started)\b|🚧|⏳|🏗`)
	statusDone       = regexp.MustCompile(`(?i)\b(done|completed?|shipped|finished|released|implemented)\b|✅|✔|☑`)
	statusPlanned    = regexp.MustCompile(`(?i)\b(planned|todo|to do|next|future|backlog|upcoming|later|proposed|ideas?)\b|🔜|📅|⬜`)

	itemStatusMarker = regexp.MustCompile(`^(✅|✔️|✔|☑️|☑|🚧|⏳|🔜|📅|⬜|❌)\s*`)
)

// planContext is the roadmap state inherited by items under a heading
type planContext struct {
	phase  string
	status model.PlanStatus
}

// parseHeadingStatus reads a phase label and declared status from a heading
func parseHeadingStatus(title string) planContext {
	var pc planContext
	switch {
	case phasePattern.MatchString(title):
		pc.phase = strings.TrimSpace(phasePattern.FindString(title))
	case quarterPhase.MatchString(title):
		pc.phase = strings.ToUpper(quarterPhase.FindString(title))
	case versionPhase.MatchString(title):
		pc.phase = versionPhase.FindString(title)
	}
	pc.status = statusFrom(title)
	return pc
}

// statusFrom checks in-progress markers before done so "done soon (in progress)" reads as in progress
func statusFrom(text string) model.PlanStatus {
	switch {
	case statusInProgress.MatchString(text):
		return model.PlanStatusInProgress
	case statusDone.MatchString(text):
		return model.PlanStatusDone
	case statusPlanned.MatchString(text):
		return model.PlanStatusPlanned
	}
	return model.PlanStatusUnknown
}

// stripItemStatus removes a leading status emoji from a list item and returns
// the status it declared.
func stripItemStatus(text string) (string, model.PlanStatus) {
	m := itemStatusMarker.FindStringSubmatch(text)
	if m == nil {
		return text, model.PlanStatusUnknown
	}
	rest := strings.TrimSpace(text[len(m[0]):])
	switch m[1] {
	case "✅", "✔️", "✔", "☑️", "☑":
		return rest, model.PlanStatusDone
	case "🚧", "⏳":
		return rest, model.PlanStatusInProgress
	case "🔜", "📅", "⬜":
		return rest, model.PlanStatusPlanned
	}
	return rest, model.PlanStatusUnknown
}

// itemPlan resolves the plan metadata of one item. A checkbox overrides the
// heading status: checked is done; unchecked is in progress only when the
// heading says so, planned otherwise.
func itemPlan(ctx planContext, checkbox model.CheckboxState, itemStatus model.PlanStatus) *model.PlanMetadata {
	pm := &model.PlanMetadata{Phase: ctx.phase, Status: ctx.status}
	if itemStatus != model.PlanStatusUnknown {
		pm.Status = itemStatus
	}
	switch checkbox {
	case model.CheckboxChecked:
		pm.Status = model.PlanStatusDone
	case model.CheckboxUnchecked:
		if ctx.status == model.PlanStatusInProgress {
			pm.Status = model.PlanStatusInProgress
		} else {
			pm.Status = model.PlanStatusPlanned
		}
	}
	return pm
}
