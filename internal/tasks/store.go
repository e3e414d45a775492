package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const taskColumns = `id, title, description, status, due_date, creation_date, completed_at`

// Store is the SQL backed task repository. It also serves as the snapshot
// provider for the suggestion engine via FetchAll.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t         Task
		status    string
		completed sql.NullTime
	)
	if err := row.Scan(&t.ID, &t.Title, &t.Description, &status, &t.DueDate, &t.CreationDate, &completed); err != nil {
		return Task{}, err
	}
	t.Status = Status(status)
	t.DueDate = t.DueDate.UTC()
	t.CreationDate = t.CreationDate.UTC()
	if completed.Valid {
		c := completed.Time.UTC()
		t.CompletedAt = &c
	}
	return t, nil
}

func (s *Store) Create(ctx context.Context, in Input) (Task, error) {
	now := s.now()

	var completedAt *time.Time
	if in.Status == StatusCompleted {
		completedAt = &now
	}

	var id int
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO tasks (title, description, status, due_date, creation_date, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		in.Title, in.Description, string(in.Status), in.DueDate.UTC(), now, nullTime(completedAt),
	).Scan(&id)
	if err != nil {
		return Task{}, fmt.Errorf("insert task: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Get(ctx context.Context, id int) (Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

func (s *Store) List(ctx context.Context, skip, limit int) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		ORDER BY id ASC
		LIMIT $1 OFFSET $2
	`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return collect(rows)
}

// FetchAll returns every stored task ordered by id.
func (s *Store) FetchAll(ctx context.Context) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]Task, error) {
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return result, nil
}

// Update replaces the task fields. The previous task is returned alongside
// the updated one so callers can detect status transitions.
func (s *Store) Update(ctx context.Context, id int, in Input) (prev, updated Task, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Task{}, Task{}, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	prev, err = scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, Task{}, fmt.Errorf("load task %d: %w", id, err)
	}

	completedAt := prev.CompletedAt
	switch {
	case in.Status == StatusCompleted && !prev.Completed():
		now := s.now()
		completedAt = &now
	case in.Status != StatusCompleted:
		completedAt = nil
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE tasks
		SET title = $1, description = $2, status = $3, due_date = $4, completed_at = $5
		WHERE id = $6`,
		in.Title, in.Description, string(in.Status), in.DueDate.UTC(), nullTime(completedAt), id,
	)
	if err != nil {
		return Task{}, Task{}, fmt.Errorf("update task %d: %w", id, err)
	}

	updated, err = scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return Task{}, Task{}, fmt.Errorf("reload task %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return Task{}, Task{}, fmt.Errorf("commit: %w", err)
	}
	return prev, updated, nil
}

func (s *Store) Delete(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
