package pipeline

// SectionStatus tracks a section through the writing phase. Transitions are
// monotonic: pending -> writing -> completed.
type SectionStatus string

const (
	StatusPending   SectionStatus = "pending"
	StatusWriting   SectionStatus = "writing"
	StatusCompleted SectionStatus = "completed"
)

// ProjectSpec is the user-supplied input to a generation run.
type ProjectSpec struct {
	Title       string   `json:"title"`
	ContentType string   `json:"contentType"`
	SourceText  string   `json:"sourceText"`
	Outline     []string `json:"outline"`
}

// SectionSpec is a refined plan for one section, produced by SectionRefiner.
type SectionSpec struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	KeyPoints       []string `json:"keyPoints"`
	EstimatedLength int      `json:"estimatedLength"`
}

// Section is a unit of generated content.
type Section struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Content string        `json:"content"`
	Status  SectionStatus `json:"status"`
}

// Document is the final output of a run: the coherence-refined content plus
// the per-section breakdown it was assembled from.
type Document struct {
	Title       string    `json:"title"`
	ContentType string    `json:"contentType"`
	Content     string    `json:"content"`
	Sections    []Section `json:"sections"`
}
