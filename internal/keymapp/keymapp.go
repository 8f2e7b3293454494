// Package keymapp reads layouts from the local database kept by ZSA's
// Keymapp configurator.
//
// Keymapp stores every saved revision of the active layout as a JSON blob in
// the revision table. Only the newest row is read, and the database is never
// opened for writing.
package keymapp

import (
	"context"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	_ "github.com/mattn/go-sqlite3"
	"golang.org/x/crypto/blake2b"

	"github.com/victorgalvez56/nvim-voice/internal/layout"
)

var (
	// ErrNotFound is returned when the database file does not exist.
	ErrNotFound = errors.New("keymapp database not found")
	// ErrNoRevision is returned when the revision table is empty.
	ErrNoRevision = errors.New("no keymapp revision")
	// ErrEmptyRevision is returned when the newest revision holds no data.
	ErrEmptyRevision = errors.New("empty keymapp revision")
)

const latestRevisionQuery = `SELECT data FROM revision ORDER BY rowid DESC LIMIT 1`

// Source reads the newest revision blob from a Keymapp database.
type Source struct {
	path string
}

// NewSource returns a Source for the database at path. An empty path means
// DefaultDatabasePath.
func NewSource(path string) *Source {
	if path == "" {
		path = DefaultDatabasePath()
	}
	return &Source{path: path}
}

// Path returns the database file location.
func (s *Source) Path() string {
	return s.path
}

// Load returns the raw JSON of the newest revision.
func (s *Source) Load(ctx context.Context) ([]byte, error) {
	if err := checkReadable(s.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("access keymapp database: %w", err)
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(s.path))
	if err != nil {
		return nil, fmt.Errorf("open keymapp database: %w", err)
	}
	defer db.Close()

	var data sql.NullString
	err = db.QueryRowContext(ctx, latestRevisionQuery).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRevision
		}
		return nil, fmt.Errorf("query keymapp revision: %w", err)
	}
	if !data.Valid || data.String == "" {
		return nil, ErrEmptyRevision
	}
	return []byte(data.String), nil
}

// LoadLayout loads the newest revision and decodes it. See DecodeRevision
// for how prev is used.
func (s *Source) LoadLayout(ctx context.Context, prev string) (*layout.KeyboardLayout, string, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	return DecodeRevision(data, prev)
}

// DecodeRevision fingerprints a revision blob and decodes it. When the
// fingerprint equals prev the blob is not decoded and the returned layout is
// nil. Decode failures wrap layout.ErrNoLayout.
func DecodeRevision(data []byte, prev string) (*layout.KeyboardLayout, string, error) {
	fp := Fingerprint(data)
	if fp == prev {
		return nil, fp, nil
	}
	l, err := layout.Decode(data)
	if err != nil {
		return nil, "", err
	}
	return l, fp, nil
}

// Fingerprint identifies a revision blob. Equal blobs have equal
// fingerprints.
func Fingerprint(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

var uriEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

// readOnlyDSN builds an SQLite URI that refuses writes at both the VFS and
// the connection level.
func readOnlyDSN(path string) string {
	p := filepath.ToSlash(path)
	if filepath.VolumeName(path) != "" {
		p = "/" + p
	}
	return "file:" + uriEscaper.Replace(p) + "?mode=ro&_query_only=true"
}

// DefaultDatabasePath returns where Keymapp keeps its database on this
// platform.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Containers", "io.zsa.keymapp", "Data",
			"Library", "Application Support", ".keymapp", "keymapp.sqlite3")
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, ".keymapp", "keymapp.sqlite3")
		}
		return filepath.Join(home, "AppData", "Roaming", ".keymapp", "keymapp.sqlite3")
	default:
		return filepath.Join(home, ".config", ".keymapp", "keymapp.sqlite3")
	}
}

// WatchPaths lists the files whose changes signal a new revision: the
// database itself and the journal files SQLite writes beside it.
func WatchPaths(dbPath string) []string {
	return []string{dbPath, dbPath + "-wal", dbPath + "-journal"}
}
