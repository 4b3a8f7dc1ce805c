package brief

// Strategy is the market narrative plus the fields derived from it.
type Strategy struct {
	Content         string          `json:"content"`
	Analysis        Analysis        `json:"analysis"`
	Themes          []Theme         `json:"themes"`
	Calendar        map[string]any  `json:"calendar"`
	Recommendations Recommendations `json:"recommendations"`
}

type Analysis struct {
	Positioning   string   `json:"positioning"`
	Strengths     []string `json:"strengths"`
	Opportunities []string `json:"opportunities"`
}

type Recommendations struct {
	VisualStyle string            `json:"visualStyle"`
	ToneOfVoice map[string]string `json:"toneOfVoice"`
	Hashtags    []string          `json:"hashtags"`
	Engagement  []string          `json:"engagement"`
}

// ThemeCount is the fixed number of editorial themes every run produces.
const ThemeCount = 12

// Theme is one editorial angle seeding a creative brief.
type Theme struct {
	Name      string   `json:"name"`
	Objective string   `json:"objective"`
	Approach  string   `json:"approach"`
	Emotions  string   `json:"emotions"`
	Formats   []string `json:"formats"`
	Networks  []string `json:"networks"`
}

// Complete reports whether all six theme fields are present.
func (t Theme) Complete() bool {
	return t.Name != "" && t.Objective != "" && t.Approach != "" &&
		t.Emotions != "" && len(t.Formats) > 0 && len(t.Networks) > 0
}

// CreativeBrief is the generated spec for one planned social post.
type CreativeBrief struct {
	VisualPrompt string       `json:"visualPrompt,omitempty"`
	Content      BriefContent `json:"content"`
	Specs        Specs        `json:"specs"`
}

type BriefContent struct {
	Main     string   `json:"main"`
	Tagline  string   `json:"tagline"`
	Hashtags []string `json:"hashtags"`
	CTA      string   `json:"cta"`
	Question string   `json:"question"`
}

type Specs struct {
	Format     string `json:"format"`
	Dimensions string `json:"dimensions"`
	AltText    string `json:"altText"`
}

// BriefList wraps the briefs array the way the result store persists it.
type BriefList struct {
	Briefs []CreativeBrief `json:"briefs"`
}

// Quality is the tier attached to a generated image.
type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

// QualityFor maps a validation score to its tier.
func QualityFor(score int) Quality {
	switch {
	case score >= 90:
		return QualityHigh
	case score >= 80:
		return QualityMedium
	default:
		return QualityLow
	}
}

type Image struct {
	URL     string  `json:"url"`
	Alt     string  `json:"alt"`
	Type    string  `json:"type"`
	Ratio   string  `json:"ratio"`
	Quality Quality `json:"quality,omitempty"`
}

// ExecutedBrief is a creative brief with its resolved image.
type ExecutedBrief struct {
	CreativeBrief
	Image Image `json:"image"`
}

// FailedBrief records a brief whose image could not be produced.
type FailedBrief struct {
	VisualPrompt string `json:"visualPrompt"`
	Error        string `json:"error"`
}

type VisualAnalysis struct {
	Identity        VisualIdentity        `json:"identity"`
	Composition     VisualComposition     `json:"composition"`
	Recommendations VisualRecommendations `json:"recommendations"`
}

type VisualIdentity struct {
	Colors      []string `json:"colors"`
	Typography  []string `json:"typography"`
	Iconography []string `json:"iconography"`
}

type VisualComposition struct {
	Layouts   []string `json:"layouts"`
	Grids     []string `json:"grids"`
	Hierarchy []string `json:"hierarchy"`
}

type VisualRecommendations struct {
	Palette  []string `json:"palette"`
	Fonts    []string `json:"fonts"`
	Elements []string `json:"elements"`
	Filters  []string `json:"filters"`
}
