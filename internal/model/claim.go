package model

// FeatureClaim represents a capability statement extracted from documentation
type FeatureClaim struct {
	RawText        string   `json:"raw_text"`        // Text as it appeared after cleanup and clamping
	NormalizedText string   `json:"normalized_text"` // Lowercased, punctuation-collapsed text (dedupe key)
	Tokens         []string `json:"tokens"`          // Ordered distinct canonical roots
	Terms          []string `json:"terms,omitempty"` // Alias-expanded comparison forms

	SourceFile     string         `json:"source_file"`
	SourceLine     int            `json:"source_line"`
	SourceCategory SourceCategory `json:"source_category"`
	Section        string         `json:"section,omitempty"` // Heading the claim was found under

	Checkbox CheckboxState `json:"checkbox,omitempty"`
	Plan     *PlanMetadata `json:"plan,omitempty"` // Only for roadmap/plan claims

	ConfidenceWeight float64 `json:"confidence_weight"`
	HasNonGeneric    bool    `json:"has_non_generic"`
	NonGeneric       int     `json:"non_generic"`         // Number of roots outside the generic vocabulary
	Heuristic        string  `json:"heuristic,omitempty"` // Which extraction rule produced the claim (e.g., "list:label")
}

// IsPlan reports whether the claim belongs to a plan/roadmap context
func (c FeatureClaim) IsPlan() bool {
	return c.Plan != nil || c.SourceCategory == CategoryPlan
}

// SourceCategory classifies where a claim came from
type SourceCategory string

const (
	CategoryReadme       SourceCategory = "readme"
	CategoryDoc          SourceCategory = "doc"
	CategoryPlan         SourceCategory = "plan"
	CategoryReleaseNote  SourceCategory = "release-note"
	CategoryChecklist    SourceCategory = "checklist"
	CategoryManifestFlag SourceCategory = "build-manifest-feature-flag"
)

// Weight returns the confidence weight associated with a source category.
// Plan and roadmap claims weigh less than README claims.
func (c SourceCategory) Weight() float64 {
	switch c {
	case CategoryReadme:
		return 1.0
	case CategoryDoc:
		return 0.9
	case CategoryManifestFlag:
		return 0.8
	case CategoryReleaseNote:
		return 0.7
	case CategoryChecklist:
		return 0.6
	case CategoryPlan:
		return 0.5
	default:
		return 0.5
	}
}

// CheckboxState records the checkbox marker of a list item claim
type CheckboxState string

const (
	CheckboxNone      CheckboxState = ""
	CheckboxChecked   CheckboxState = "checked"
	CheckboxUnchecked CheckboxState = "unchecked"
)

// PlanStatus is the declared status of a roadmap item
type PlanStatus string

const (
	PlanStatusUnknown    PlanStatus = ""
	PlanStatusDone       PlanStatus = "done"
	PlanStatusInProgress PlanStatus = "in_progress"
	PlanStatusPlanned    PlanStatus = "planned"
)

// PlanMetadata is attached to claims found inside plan/roadmap sections
type PlanMetadata struct {
	Status PlanStatus `json:"status,omitempty"`
	Phase  string     `json:"phase,omitempty"`
}

// Document is a single documentation file handed to the extractor
type Document struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
