package quizgen

// Question is a validated multiple-choice question. Values of this type only
// come out of ValidateQuestions.
type Question struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Answer   string   `json:"answer"`
}

// Result is the contract returned to callers. FlashFacts is nil when no
// usable fact survived filtering, which serialises as an absent field.
type Result struct {
	Quiz       []Question `json:"quiz"`
	FlashFacts []string   `json:"flashFacts,omitempty"`
}

// Empty reports whether neither collection holds anything.
func (r *Result) Empty() bool {
	return len(r.Quiz) == 0 && len(r.FlashFacts) == 0
}

// Document is an opaque source file handed to the model as-is.
type Document struct {
	Name     string
	MIMEType string
	Data     []byte
}

// Request describes one generation call. Documents take precedence over
// Topic when both are set.
type Request struct {
	Documents []Document
	Topic     string
	Count     int
}

// Report carries the diagnostics of one validation pass.
type Report struct {
	Requested        int      `json:"requested"`
	Candidates       int      `json:"candidates"`
	Kept             int      `json:"kept"`
	Dropped          int      `json:"dropped"`
	FactCandidates   int      `json:"fact_candidates"`
	FactsKept        int      `json:"facts_kept"`
	SchemaViolations []string `json:"schema_violations,omitempty"`
	UnderGenerated   bool     `json:"under_generated"`
}

// Bounds is an inclusive range for the requested item count.
type Bounds struct {
	Min int
	Max int
}

func (b Bounds) Contains(n int) bool {
	return n >= b.Min && n <= b.Max
}

// EmptyPolicy decides what happens when filtering leaves nothing usable.
type EmptyPolicy string

const (
	// PolicyFail turns a fully empty result into NoUsableContentError.
	PolicyFail EmptyPolicy = "fail"
	// PolicyEmpty returns the empty result as a success.
	PolicyEmpty EmptyPolicy = "empty"
)

// ParseEmptyPolicy maps a config string to a policy, defaulting to PolicyFail.
func ParseEmptyPolicy(s string) EmptyPolicy {
	if EmptyPolicy(s) == PolicyEmpty {
		return PolicyEmpty
	}
	return PolicyFail
}

// Options configures a Generator.
type Options struct {
	DocumentQuizBounds Bounds
	TopicQuizBounds    Bounds
	FlashFactBounds    Bounds

	// WarnRatio is the fraction of the requested count below which an
	// under-generation warning is logged.
	WarnRatio   float64
	EmptyPolicy EmptyPolicy
	DenyList    []string
	Language    string
}

// DefaultDenyList holds the placeholder phrases models emit instead of facts.
var DefaultDenyList = []string{
	"no specific flash information could be extracted",
	"no specific information could be extracted",
	"no information available",
	"aucune information flash spécifique",
	"aucune information spécifique",
	"aucune information disponible",
}

// DefaultOptions mirrors the limits the product shipped with.
func DefaultOptions() Options {
	return Options{
		DocumentQuizBounds: Bounds{Min: 5, Max: 1000},
		TopicQuizBounds:    Bounds{Min: 5, Max: 50},
		FlashFactBounds:    Bounds{Min: 1, Max: 20},
		WarnRatio:          0.5,
		EmptyPolicy:        PolicyFail,
		DenyList:           DefaultDenyList,
		Language:           "French",
	}
}
