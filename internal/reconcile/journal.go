package reconcile

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/ve-data-science/vedatool/internal/db"
	"github.com/ve-data-science/vedatool/internal/scan"
)

const journalSchema = `
CREATE TABLE IF NOT EXISTS sync_journal (
    path TEXT PRIMARY KEY,
    md5 TEXT NOT NULL,
    size INTEGER NOT NULL,
    last_modified TEXT NOT NULL -- RFC3339
);
`

// JournalEntry records the observation at which a path was last known to be
// in sync across both stores.
type JournalEntry struct {
	Path    string
	MD5     string
	Size    int64
	ModTime time.Time
}

// dbJournalEntry is the database shape, with time stored as TEXT.
type dbJournalEntry struct {
	Path         string `db:"path"`
	MD5          string `db:"md5"`
	Size         int64  `db:"size"`
	LastModified string `db:"last_modified"`
}

// Journal persists last-known in-sync observations in SQLite. It is what
// lets the engine tell "one side changed" apart from "both sides changed".
type Journal struct {
	db     *sqlx.DB
	dbPath string
}

func NewJournal(dbPath string) *Journal {
	return &Journal{dbPath: dbPath}
}

func (j *Journal) Open() error {
	if j.db != nil {
		return errors.New("journal already open")
	}

	database, err := db.NewSqliteDB(db.WithPath(j.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	if _, err := database.Exec(journalSchema); err != nil {
		database.Close()
		return fmt.Errorf("initialize journal schema: %w", err)
	}

	j.db = database
	return nil
}

func (j *Journal) Close() error {
	if j.db == nil {
		return errors.New("journal not open")
	}
	return j.db.Close()
}

// Get returns the entry for path, or nil when the path is unknown.
func (j *Journal) Get(path string) (*JournalEntry, error) {
	var row dbJournalEntry
	err := j.db.Get(&row, "SELECT path, md5, size, last_modified FROM sync_journal WHERE path = ?", path)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query path %s: %w", path, err)
	}
	return row.toEntry()
}

// Set inserts or replaces the entry for a path.
func (j *Journal) Set(entry *JournalEntry) error {
	if entry == nil {
		return errors.New("cannot set nil journal entry")
	}

	row := dbJournalEntry{
		Path:         entry.Path,
		MD5:          entry.MD5,
		Size:         entry.Size,
		LastModified: entry.ModTime.Format(time.RFC3339),
	}
	_, err := j.db.NamedExec(
		`INSERT OR REPLACE INTO sync_journal (path, md5, size, last_modified)
		 VALUES (:path, :md5, :size, :last_modified)`, row)
	if err != nil {
		return fmt.Errorf("set journal entry %s: %w", entry.Path, err)
	}
	return nil
}

func (j *Journal) Delete(path string) error {
	_, err := j.db.Exec("DELETE FROM sync_journal WHERE path = ?", path)
	if err != nil {
		return fmt.Errorf("delete journal entry %s: %w", path, err)
	}
	return nil
}

func (j *Journal) Count() (int, error) {
	var count int
	if err := j.db.Get(&count, "SELECT COUNT(*) FROM sync_journal"); err != nil {
		return 0, fmt.Errorf("count journal entries: %w", err)
	}
	return count, nil
}

// State returns the full journal as a map keyed by path.
func (j *Journal) State() (map[string]*JournalEntry, error) {
	var rows []dbJournalEntry
	if err := j.db.Select(&rows, "SELECT path, md5, size, last_modified FROM sync_journal"); err != nil {
		return nil, fmt.Errorf("query journal state: %w", err)
	}

	state := make(map[string]*JournalEntry, len(rows))
	for _, row := range rows {
		entry, err := row.toEntry()
		if err != nil {
			slog.Error("skipping corrupt journal row", "path", row.Path, "error", err)
			continue
		}
		state[entry.Path] = entry
	}
	return state, nil
}

// Rebuild seeds the journal from paths where local and remote already agree
// by content, so a fresh clone does not treat every later edit as a
// conflict.
func (j *Journal) Rebuild(local, remote []*scan.Entry, tol time.Duration) error {
	remoteByPath := scan.ToMap(remote)

	for _, l := range local {
		r, ok := remoteByPath[l.Path]
		if !ok || !contentEqual(l, r, tol) {
			continue
		}
		if err := j.Set(&JournalEntry{
			Path:    l.Path,
			MD5:     l.Checksum,
			Size:    l.Size,
			ModTime: l.ModTime,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (row dbJournalEntry) toEntry() (*JournalEntry, error) {
	modTime, err := time.Parse(time.RFC3339, row.LastModified)
	if err != nil {
		return nil, fmt.Errorf("parse stored timestamp for %s: %w", row.Path, err)
	}
	return &JournalEntry{
		Path:    row.Path,
		MD5:     row.MD5,
		Size:    row.Size,
		ModTime: modTime,
	}, nil
}
