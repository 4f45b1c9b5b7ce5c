package model

import "time"

// Category classifies a question as technical or non-technical.
type Category string

const (
	CategoryTechnical    Category = "technical"
	CategoryNonTechnical Category = "non_technical"
)

// Difficulty represents question difficulty level.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// SessionStatus represents the status of an exam session.
type SessionStatus string

const (
	StatusInProgress SessionStatus = "in_progress"
	StatusCompleted  SessionStatus = "completed"
	StatusAbandoned  SessionStatus = "abandoned"
)

// Subject describes one subject's generation request: a name, a target
// question count, and the topics the questions should cover.
type Subject struct {
	Name   string   `json:"name"`
	Marks  int      `json:"marks"`
	Topics []string `json:"topics"`
}

// GenerateRequest is the body of a paper generation request.
type GenerateRequest struct {
	TechnicalSubjects    []Subject `json:"technicalSubjects"`
	NonTechnicalSubjects []Subject `json:"nonTechnicalSubjects"`
}

// Options holds the four answer choices of a question. After normalization
// all four are non-empty.
type Options struct {
	A string `json:"a"`
	B string `json:"b"`
	C string `json:"c"`
	D string `json:"d"`
}

// Question is the canonical question shape. Every provider response is
// normalized into this before anything else touches it; CorrectAnswer is
// always one of "a", "b", "c", "d".
type Question struct {
	ID             int64      `json:"id,omitempty"`
	PaperID        string     `json:"paper_id,omitempty"`
	QuestionNumber int        `json:"question_number,omitempty"`
	QuestionText   string     `json:"question_text"`
	Options        Options    `json:"options"`
	CorrectAnswer  string     `json:"correct_answer"`
	Category       Category   `json:"category"`
	Subject        string     `json:"subject"`
	Difficulty     Difficulty `json:"difficulty"`
	Marks          int        `json:"marks"`
	Explanation    string     `json:"explanation"`
}

// PaperMetadata records per-category question counts for a paper.
type PaperMetadata struct {
	TechnicalCount    int `json:"technical_count"`
	NonTechnicalCount int `json:"non_technical_count"`
}

// QuestionPaper is a generated paper. Questions are stored separately,
// keyed by paper ID and numbered 1..N.
type QuestionPaper struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	CreatedAt       time.Time     `json:"created_at"`
	TotalMarks      int           `json:"total_marks"`
	DurationMinutes int           `json:"duration_minutes"`
	Metadata        PaperMetadata `json:"metadata"`
}

// ExamSession is one sitting of a paper. Responses maps question ID to the
// chosen answer letter.
type ExamSession struct {
	ID          string            `json:"id"`
	PaperID     string            `json:"paper_id"`
	StartedAt   time.Time         `json:"started_at"`
	CompletedAt *time.Time        `json:"completed_at,omitempty"`
	Responses   map[string]string `json:"responses"`
	Score       *float64          `json:"score,omitempty"`
	Status      SessionStatus     `json:"status"`
}

// ProgressEvent is one message in the generation progress stream.
// The stream ends after an event carrying Status "complete" or a non-empty
// Error.
type ProgressEvent struct {
	Progress float64 `json:"progress"`
	Subject  string  `json:"subject,omitempty"`
	Status   string  `json:"status,omitempty"`
	Error    string  `json:"error,omitempty"`
	PaperID  string  `json:"paperId,omitempty"`
}
