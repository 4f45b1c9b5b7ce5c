package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/anupamd/papergen/internal/model"

	_ "modernc.org/sqlite"
)

// Store is the persistence collaborator: question papers, their questions,
// and exam sessions, backed by SQLite.
type Store struct {
	db *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS question_papers (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		total_marks INTEGER NOT NULL,
		duration_minutes INTEGER NOT NULL,
		technical_count INTEGER NOT NULL DEFAULT 0,
		non_technical_count INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS questions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		paper_id TEXT NOT NULL,
		question_number INTEGER NOT NULL,
		question_text TEXT NOT NULL,
		option_a TEXT NOT NULL,
		option_b TEXT NOT NULL,
		option_c TEXT NOT NULL,
		option_d TEXT NOT NULL,
		correct_answer TEXT NOT NULL,
		category TEXT NOT NULL,
		subject TEXT NOT NULL,
		difficulty TEXT NOT NULL,
		marks INTEGER NOT NULL DEFAULT 1,
		explanation TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (paper_id) REFERENCES question_papers(id)
	);

	CREATE INDEX IF NOT EXISTS idx_questions_paper ON questions(paper_id, question_number);

	CREATE TABLE IF NOT EXISTS exam_sessions (
		id TEXT PRIMARY KEY,
		paper_id TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		responses TEXT NOT NULL DEFAULT '{}',
		score REAL,
		status TEXT NOT NULL DEFAULT 'in_progress',
		FOREIGN KEY (paper_id) REFERENCES question_papers(id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SavePaper stores a paper and all its questions in one transaction; the
// questions are numbered 1..N in the order given. Either the whole paper
// lands or nothing does.
func (s *Store) SavePaper(ctx context.Context, title string, questions []model.Question, totalMarks, durationMinutes int) (string, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	paperID := uuid.NewString()
	var technical, nonTechnical int
	for _, q := range questions {
		if q.Category == model.CategoryTechnical {
			technical++
		} else {
			nonTechnical++
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO question_papers (id, title, created_at, total_marks, duration_minutes, technical_count, non_technical_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		paperID, title, time.Now().UTC(), totalMarks, durationMinutes, technical, nonTechnical,
	)
	if err != nil {
		return "", fmt.Errorf("insert paper: %w", err)
	}

	for i, q := range questions {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO questions (paper_id, question_number, question_text, option_a, option_b, option_c, option_d,
			 correct_answer, category, subject, difficulty, marks, explanation)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			paperID, i+1, q.QuestionText, q.Options.A, q.Options.B, q.Options.C, q.Options.D,
			q.CorrectAnswer, q.Category, q.Subject, q.Difficulty, q.Marks, q.Explanation,
		)
		if err != nil {
			return "", fmt.Errorf("insert question %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return paperID, nil
}

// GetPaper returns a paper and its questions in question_number order.
func (s *Store) GetPaper(ctx context.Context, paperID string) (model.QuestionPaper, []model.Question, error) {
	var p model.QuestionPaper
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, created_at, total_marks, duration_minutes, technical_count, non_technical_count
		 FROM question_papers WHERE id = ?`, paperID,
	).Scan(&p.ID, &p.Title, &p.CreatedAt, &p.TotalMarks, &p.DurationMinutes,
		&p.Metadata.TechnicalCount, &p.Metadata.NonTechnicalCount)
	if err != nil {
		return model.QuestionPaper{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, paper_id, question_number, question_text, option_a, option_b, option_c, option_d,
		 correct_answer, category, subject, difficulty, marks, explanation
		 FROM questions WHERE paper_id = ? ORDER BY question_number`, paperID,
	)
	if err != nil {
		return model.QuestionPaper{}, nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.PaperID, &q.QuestionNumber, &q.QuestionText,
			&q.Options.A, &q.Options.B, &q.Options.C, &q.Options.D,
			&q.CorrectAnswer, &q.Category, &q.Subject, &q.Difficulty, &q.Marks, &q.Explanation); err != nil {
			return model.QuestionPaper{}, nil, err
		}
		questions = append(questions, q)
	}
	return p, questions, rows.Err()
}

// ListPapers returns all papers, newest first.
func (s *Store) ListPapers(ctx context.Context) ([]model.QuestionPaper, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, created_at, total_marks, duration_minutes, technical_count, non_technical_count
		 FROM question_papers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var papers []model.QuestionPaper
	for rows.Next() {
		var p model.QuestionPaper
		if err := rows.Scan(&p.ID, &p.Title, &p.CreatedAt, &p.TotalMarks, &p.DurationMinutes,
			&p.Metadata.TechnicalCount, &p.Metadata.NonTechnicalCount); err != nil {
			return nil, err
		}
		papers = append(papers, p)
	}
	return papers, rows.Err()
}

// DeletePaper removes a paper and its questions in one transaction.
func (s *Store) DeletePaper(ctx context.Context, paperID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM questions WHERE paper_id = ?`, paperID); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM question_papers WHERE id = ?`, paperID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return tx.Commit()
}

// CreateSession starts a new in-progress exam session for a paper.
func (s *Store) CreateSession(ctx context.Context, paperID string) (model.ExamSession, error) {
	sess := model.ExamSession{
		ID:        uuid.NewString(),
		PaperID:   paperID,
		StartedAt: time.Now().UTC(),
		Responses: map[string]string{},
		Status:    model.StatusInProgress,
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_sessions (id, paper_id, started_at, responses, status) VALUES (?, ?, ?, '{}', ?)`,
		sess.ID, sess.PaperID, sess.StartedAt, sess.Status,
	)
	if err != nil {
		return model.ExamSession{}, err
	}
	return sess, nil
}

// GetSession returns a session by ID.
func (s *Store) GetSession(ctx context.Context, sessionID string) (model.ExamSession, error) {
	var sess model.ExamSession
	var responses string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, paper_id, started_at, completed_at, responses, score, status
		 FROM exam_sessions WHERE id = ?`, sessionID,
	).Scan(&sess.ID, &sess.PaperID, &sess.StartedAt, &sess.CompletedAt, &responses, &sess.Score, &sess.Status)
	if err != nil {
		return model.ExamSession{}, err
	}
	if err := json.Unmarshal([]byte(responses), &sess.Responses); err != nil {
		return model.ExamSession{}, fmt.Errorf("decode responses: %w", err)
	}
	return sess, nil
}

// SaveResponses stores the in-progress answer map for a session.
func (s *Store) SaveResponses(ctx context.Context, sessionID string, responses map[string]string) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_sessions SET responses = ? WHERE id = ? AND status = ?`,
		string(data), sessionID, model.StatusInProgress,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CompleteSession records the final responses and score and marks the
// session completed.
func (s *Store) CompleteSession(ctx context.Context, sessionID string, responses map[string]string, score float64) error {
	data, err := json.Marshal(responses)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_sessions SET responses = ?, score = ?, status = ?, completed_at = ? WHERE id = ?`,
		string(data), score, model.StatusCompleted, time.Now().UTC(), sessionID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// PaperCount returns the number of stored papers.
func (s *Store) PaperCount(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM question_papers`).Scan(&count)
	return count, err
}
