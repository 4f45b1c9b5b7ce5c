package generate

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/anupamd/papergen/internal/model"
)

// EventSink receives progress events from a generation run. The orchestrator
// serializes calls, so implementations need no locking of their own.
type EventSink interface {
	Emit(ev model.ProgressEvent) error
}

// PaperSaver is the persistence collaborator. SavePaper must store the paper
// and all its questions atomically and return the new paper's ID.
type PaperSaver interface {
	SavePaper(ctx context.Context, title string, questions []model.Question, totalMarks, durationMinutes int) (string, error)
}

// OrchestratorConfig configures a paper generation run.
type OrchestratorConfig struct {
	// BatchSize bounds how many subjects generate concurrently, to stay
	// under provider rate limits.
	BatchSize int

	// Heartbeat is the interval between interpolated progress events while
	// subjects are in flight.
	Heartbeat time.Duration

	// TotalMarks and DurationMinutes are recorded on the paper as given.
	// They are deliberately not derived from the subject marks sum.
	TotalMarks      int
	DurationMinutes int

	// TitlePrefix leads the generated paper title; the current date follows.
	TitlePrefix string
}

// Orchestrator fans subject generation out across all requested subjects,
// aggregates and shuffles the results, and hands the finished question set
// to the persistence collaborator while streaming progress to the caller.
type Orchestrator struct {
	subjects *SubjectGenerator
	saver    PaperSaver
	cfg      OrchestratorConfig

	mu sync.Mutex // serializes sink writes across goroutines
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(subjects *SubjectGenerator, saver PaperSaver, cfg OrchestratorConfig) *Orchestrator {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 3
	}
	if cfg.Heartbeat <= 0 {
		cfg.Heartbeat = 500 * time.Millisecond
	}
	if cfg.TotalMarks <= 0 {
		cfg.TotalMarks = 100
	}
	if cfg.DurationMinutes <= 0 {
		cfg.DurationMinutes = 90
	}
	if cfg.TitlePrefix == "" {
		cfg.TitlePrefix = "Mock Exam"
	}
	return &Orchestrator{subjects: subjects, saver: saver, cfg: cfg}
}

// task is one subject's unit of work.
type task struct {
	subject  model.Subject
	category model.Category
}

// Run generates a complete paper for the request and streams progress into
// the sink. The stream always terminates with either a "complete" event
// carrying the saved paper's ID or a single error event; per-subject
// failures never surface here because SubjectGenerator absorbs them.
// The returned error mirrors the terminal error event, for logging.
func (o *Orchestrator) Run(ctx context.Context, req model.GenerateRequest, sink EventSink) error {
	var tasks []task
	for _, s := range req.TechnicalSubjects {
		tasks = append(tasks, task{subject: s, category: model.CategoryTechnical})
	}
	for _, s := range req.NonTechnicalSubjects {
		tasks = append(tasks, task{subject: s, category: model.CategoryNonTechnical})
	}

	total := len(tasks)
	results := make([][]model.Question, total)
	var completed atomic.Int64

	if total > 0 {
		stopHeartbeat := o.startHeartbeat(sink, &completed, total)
		defer stopHeartbeat()

		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(o.cfg.BatchSize)
		for i, t := range tasks {
			grp.Go(func() error {
				o.emit(sink, model.ProgressEvent{
					Progress: o.progress(completed.Load(), total),
					Subject:  fmt.Sprintf("Generating %s...", t.subject.Name),
				})
				results[i] = o.subjects.Generate(gctx, t.subject, t.category)
				completed.Add(1)
				return nil
			})
		}
		// Workers only ever return nil; Wait is just the join point.
		_ = grp.Wait()
		stopHeartbeat()
	}

	var questions []model.Question
	for _, batch := range results {
		questions = append(questions, batch...)
	}
	rand.Shuffle(len(questions), func(i, j int) {
		questions[i], questions[j] = questions[j], questions[i]
	})

	o.emit(sink, model.ProgressEvent{Progress: 95, Subject: "Saving...", Status: "saving"})

	title := fmt.Sprintf("%s - %s", o.cfg.TitlePrefix, time.Now().Format("02/01/2006"))
	paperID, err := o.saver.SavePaper(ctx, title, questions, o.cfg.TotalMarks, o.cfg.DurationMinutes)
	if err != nil {
		slog.Error("save paper failed", "error", err)
		o.emit(sink, model.ProgressEvent{Error: err.Error()})
		return err
	}

	slog.Info("paper generated",
		"paper_id", paperID,
		"subjects", total,
		"questions", len(questions),
	)
	o.emit(sink, model.ProgressEvent{Progress: 100, Status: "complete", PaperID: paperID})
	return nil
}

// startHeartbeat emits interpolated progress on its own timer while the
// joint await is in flight. The returned stop function is safe to call more
// than once and must run on every exit path so no event trails the end of
// the stream.
func (o *Orchestrator) startHeartbeat(sink EventSink, completed *atomic.Int64, total int) func() {
	stop := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(o.cfg.Heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				done := completed.Load()
				o.emit(sink, model.ProgressEvent{
					Progress: o.progress(done, total),
					Subject:  fmt.Sprintf("Generating subjects (%d/%d done)...", done, total),
				})
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-finished
		})
	}
}

// progress maps completed subjects onto 0-90; the last 10 points belong to
// shuffling and saving.
func (o *Orchestrator) progress(done int64, total int) float64 {
	if total == 0 {
		return 90
	}
	return float64(done) / float64(total) * 90
}

func (o *Orchestrator) emit(sink EventSink, ev model.ProgressEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := sink.Emit(ev); err != nil {
		slog.Warn("emit progress event failed", "error", err)
	}
}
