package reminder

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const reminderColumns = `id, text, due_at, created_at, done_at, priority, project, ai_suggested_text`

// Store provides SQLite-backed storage for reminders.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at dbPath and
// ensures the reminders table exists.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode so the CLI and the scheduler can share the file
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, now: time.Now}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			text              TEXT    NOT NULL,
			due_at            TEXT    NOT NULL,
			created_at        TEXT    NOT NULL,
			done_at           TEXT,
			priority          TEXT    NOT NULL DEFAULT 'medium',
			project           TEXT    NOT NULL DEFAULT '',
			ai_suggested_text TEXT    NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_reminders_due ON reminders (done_at, due_at)`); err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	return nil
}

// SetClock overrides the time source used for created_at and done_at.
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add inserts a new reminder and returns it with the assigned ID.
func (s *Store) Add(text string, dueAt time.Time, priority Priority, project, aiText string) (*Reminder, error) {
	if err := validateText(text); err != nil {
		return nil, err
	}
	if priority == "" {
		priority = PriorityMedium
	}
	if _, err := ParsePriority(string(priority)); err != nil {
		return nil, err
	}

	r := Reminder{
		Text:            text,
		DueAt:           dueAt.UTC().Truncate(time.Second),
		CreatedAt:       s.now().UTC().Truncate(time.Second),
		Priority:        priority,
		Project:         project,
		AISuggestedText: aiText,
	}

	result, err := s.db.Exec(`
		INSERT INTO reminders (text, due_at, created_at, priority, project, ai_suggested_text)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.Text, formatTime(r.DueAt), formatTime(r.CreatedAt),
		string(r.Priority), r.Project, r.AISuggestedText)
	if err != nil {
		return nil, fmt.Errorf("failed to insert reminder: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get inserted ID: %w", err)
	}
	r.ID = id

	return &r, nil
}

// Get returns a single reminder by ID.
func (s *Store) Get(id int64) (*Reminder, error) {
	row := s.db.QueryRow(`SELECT `+reminderColumns+` FROM reminders WHERE id = ?`, id)

	r, err := scanReminder(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return r, nil
}

// ListActive returns reminders that are not done, earliest due first.
func (s *Store) ListActive() ([]Reminder, error) {
	return s.query(`SELECT `+reminderColumns+`
		FROM reminders WHERE done_at IS NULL ORDER BY due_at ASC, id ASC`)
}

// ListAll returns every reminder, including done ones, earliest due first.
func (s *Store) ListAll() ([]Reminder, error) {
	return s.query(`SELECT ` + reminderColumns + ` FROM reminders ORDER BY due_at ASC, id ASC`)
}

// ListByProject returns reminders tagged with project.
func (s *Store) ListByProject(project string, includeDone bool) ([]Reminder, error) {
	if includeDone {
		return s.query(`SELECT `+reminderColumns+`
			FROM reminders WHERE project = ? ORDER BY due_at ASC, id ASC`, project)
	}
	return s.query(`SELECT `+reminderColumns+`
		FROM reminders WHERE project = ? AND done_at IS NULL ORDER BY due_at ASC, id ASC`, project)
}

// Search returns reminders whose text contains query, ignoring case.
func (s *Store) Search(query string) ([]Reminder, error) {
	pattern := "%" + escapeLike(strings.ToLower(query)) + "%"
	return s.query(`SELECT `+reminderColumns+`
		FROM reminders WHERE LOWER(text) LIKE ? ESCAPE '\' ORDER BY due_at ASC, id ASC`, pattern)
}

// DueNow returns active reminders whose due time is at or before now.
func (s *Store) DueNow(now time.Time) ([]Reminder, error) {
	return s.query(`SELECT `+reminderColumns+`
		FROM reminders WHERE done_at IS NULL AND due_at <= ? ORDER BY due_at ASC, id ASC`,
		formatTime(now.UTC()))
}

// MarkDone sets done_at on a reminder. Marking an already done reminder
// returns it unchanged.
func (s *Store) MarkDone(id int64) (*Reminder, error) {
	r, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if !r.Active() {
		return r, nil
	}

	doneAt := s.now().UTC().Truncate(time.Second)
	if doneAt.Before(r.CreatedAt) {
		doneAt = r.CreatedAt
	}

	if _, err := s.db.Exec(`UPDATE reminders SET done_at = ? WHERE id = ? AND done_at IS NULL`,
		formatTime(doneAt), id); err != nil {
		return nil, fmt.Errorf("failed to complete reminder: %w", err)
	}

	return s.Get(id)
}

// Delete removes a reminder permanently. It reports false when no
// reminder had that ID.
func (s *Store) Delete(id int64) (bool, error) {
	result, err := s.db.Exec(`DELETE FROM reminders WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to delete reminder: %w", err)
	}
	return n > 0, nil
}

// UpdateFields holds optional fields for a partial update.
type UpdateFields struct {
	Text     *string
	DueAt    *time.Time
	Priority *Priority
	Project  *string
}

// Update applies partial updates to a reminder.
func (s *Store) Update(id int64, fields UpdateFields) (*Reminder, error) {
	setClauses := []string{}
	args := []interface{}{}

	if fields.Text != nil {
		if err := validateText(*fields.Text); err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "text = ?")
		args = append(args, *fields.Text)
	}
	if fields.DueAt != nil {
		setClauses = append(setClauses, "due_at = ?")
		args = append(args, formatTime(fields.DueAt.UTC().Truncate(time.Second)))
	}
	if fields.Priority != nil {
		if _, err := ParsePriority(string(*fields.Priority)); err != nil {
			return nil, err
		}
		setClauses = append(setClauses, "priority = ?")
		args = append(args, string(*fields.Priority))
	}
	if fields.Project != nil {
		setClauses = append(setClauses, "project = ?")
		args = append(args, *fields.Project)
	}

	if len(setClauses) == 0 {
		return s.Get(id)
	}

	query := "UPDATE reminders SET " + strings.Join(setClauses, ", ") + " WHERE id = ?"
	args = append(args, id)

	result, err := s.db.Exec(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return nil, fmt.Errorf("reminder %d: %w", id, ErrNotFound)
	}

	return s.Get(id)
}

func (s *Store) query(q string, args ...interface{}) ([]Reminder, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	var reminders []Reminder
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	return reminders, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanReminder(row rowScanner) (*Reminder, error) {
	var r Reminder
	var dueAt, createdAt, priority string
	var doneAt sql.NullString

	if err := row.Scan(&r.ID, &r.Text, &dueAt, &createdAt, &doneAt,
		&priority, &r.Project, &r.AISuggestedText); err != nil {
		return nil, err
	}

	var err error
	if r.DueAt, err = parseTime(dueAt); err != nil {
		return nil, err
	}
	if r.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if doneAt.Valid {
		t, err := parseTime(doneAt.String)
		if err != nil {
			return nil, err
		}
		r.DoneAt = &t
	}
	r.Priority = PriorityOrDefault(priority, PriorityMedium)

	return &r, nil
}

// formatTime renders t in fixed-width UTC so stored values sort correctly.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime accepts RFC3339 and zone-less layouts; the latter are read as UTC.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999"} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
