/*

An SQLite session store implementation.

Sessions are stored in a single table, one row per session, so they survive restarts
of the server. Session attributes are encoded with the encoding/gob package, so types
of attribute values other than the basic types must be registered with gob.Register().
time.Time is registered by this package.

Each Load decodes a new Session value, and Save writes all attributes of it at once.
So if requests of the same client are served concurrently, the Save of the last one wins,
changes of the others are lost. The per-session lock of the Manager only covers its
timeout check, not the whole request.

Expired sessions are removed when they are loaded, or by calling PurgeExpired.
It is recommended to call PurgeExpired periodically, e.g. by registering the handler returned
by PurgeExpiredFunc to a path which is called by a cron job.

*/

package session

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

func init() {
	// Managers store the session start time as an attribute.
	gob.Register(time.Time{})
}

const sqliteSchema = `CREATE TABLE IF NOT EXISTS sessions (
	id       TEXT PRIMARY KEY,
	created  INTEGER NOT NULL,
	accessed INTEGER NOT NULL,
	timeout  INTEGER NOT NULL,
	expires  INTEGER NOT NULL,
	attrs    BLOB
);
CREATE INDEX IF NOT EXISTS sessions_expires ON sessions(expires);`

// SQLiteStore is a session Store backed by an SQLite database.
// It is safe for concurrent use.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteStoreOptions defines options that may be passed when creating a new SQLite Store.
// All fields are optional; default value will be used for any field that has the zero value.
type SQLiteStoreOptions struct {
	// Logger to use; default is slog.Default().
	Logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database at path, and returns a session Store using it.
// Pass ":memory:" to use a transient, in-memory database.
func NewSQLiteStore(path string, o *SQLiteStoreOptions) (*SQLiteStore, error) {
	if o == nil {
		o = &SQLiteStoreOptions{}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	// SQLite only supports one writer at a time; a single connection also
	// keeps an in-memory database alive for the lifetime of the store.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session table: %w", err)
	}

	s := &SQLiteStore{db: db, logger: o.Logger}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s, nil
}

// Load is to implement Store.Load().
// Important! Since sessions are decoded from the database, each call returns a new Session value
// (even though they might have the same session id), and changes made to it
// are only persisted by calling Save.
func (s *SQLiteStore) Load(id string) Session {
	var (
		created, accessed, timeout, expires int64
		data                                []byte
	)

	row := s.db.QueryRow(`SELECT created, accessed, timeout, expires, attrs FROM sessions WHERE id = ?`, id)
	if err := row.Scan(&created, &accessed, &timeout, &expires, &data); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.logger.Error("Failed to load session", "id", id, "error", err)
		}
		return nil
	}

	if time.Unix(0, expires).Before(time.Now()) {
		s.logger.Info("Session timed out", "id", id)
		s.delete(id)
		return nil
	}

	attrs, err := decodeAttrs(data)
	if err != nil {
		s.logger.Error("Failed to decode session", "id", id, "error", err)
		return nil
	}

	sess := restoreSession(id, time.Unix(0, created), time.Unix(0, accessed), time.Duration(timeout), attrs)
	sess.Access()

	if _, err := s.db.Exec(`UPDATE sessions SET accessed = ?, expires = ? WHERE id = ?`,
		sess.accessed.UnixNano(), sess.accessed.Add(sess.timeout).UnixNano(), id); err != nil {
		s.logger.Error("Failed to update session access time", "id", id, "error", err)
	}

	return sess
}

// Save is to implement Store.Save().
// An error is returned if an attribute value can't be encoded (e.g. its type is not registered with gob),
// in which case the stored session is left unchanged.
func (s *SQLiteStore) Save(sess Session) error {
	data, err := encodeAttrs(sess.Attrs())
	if err != nil {
		return fmt.Errorf("failed to encode session %s: %w", sess.ID(), err)
	}

	accessed := sess.Accessed()
	timeout := sess.Timeout()
	_, err = s.db.Exec(`INSERT INTO sessions (id, created, accessed, timeout, expires, attrs)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			accessed = excluded.accessed, timeout = excluded.timeout,
			expires = excluded.expires, attrs = excluded.attrs`,
		sess.ID(), sess.Created().UnixNano(), accessed.UnixNano(),
		int64(timeout), accessed.Add(timeout).UnixNano(), data)
	if err != nil {
		return fmt.Errorf("failed to save session %s: %w", sess.ID(), err)
	}
	return nil
}

// Remove is to implement Store.Remove().
func (s *SQLiteStore) Remove(sess Session) {
	s.delete(sess.ID())
	s.logger.Debug("Session removed", "id", sess.ID())
}

func (s *SQLiteStore) delete(id string) {
	if _, err := s.db.Exec(`DELETE FROM sessions WHERE id = ?`, id); err != nil {
		s.logger.Error("Failed to remove session", "id", id, "error", err)
	}
}

// Close is to implement Store.Close().
func (s *SQLiteStore) Close() {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close session database", "error", err)
	}
}

// PurgeExpired deletes the expired sessions from the database,
// and returns the number of deleted sessions.
func (s *SQLiteStore) PurgeExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires < ?`, time.Now().UnixNano())
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired sessions: %w", err)
	}
	return n, nil
}

// PurgeExpiredFunc returns a request handler function which deletes expired sessions from s.
//
// The response of the handler func is a JSON text telling the number of deleted sessions, e.g.:
//
//	{"purged":3}
func PurgeExpiredFunc(s *SQLiteStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := s.PurgeExpired(r.Context())
		if err != nil {
			s.logger.Error("Failed to purge expired sessions", "error", err)
			http.Error(w, "Failed to purge expired sessions!", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(struct {
			Purged int64 `json:"purged"`
		}{n})
	}
}

func encodeAttrs(attrs map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(attrs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeAttrs(data []byte) (map[string]interface{}, error) {
	attrs := make(map[string]interface{})
	if len(data) == 0 {
		return attrs, nil
	}
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&attrs); err != nil {
		return nil, err
	}
	return attrs, nil
}
