package emote

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

//go:embed sheet/emotes.json
var sheetFS embed.FS

// Source yields raw sheet rows for the catalog.
type Source interface {
	Name() string
	Rows(ctx context.Context) ([]Row, error)
}

type sheetEntry struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Command    string `json:"command"`
	Icon       uint32 `json:"icon"`
	UnlockLink uint32 `json:"unlockLink"`
}

type jsonSheet struct {
	name string
	read func() ([]byte, error)
}

// EmbeddedSheet returns the emote sheet compiled into the binary.
func EmbeddedSheet() Source {
	return jsonSheet{
		name: "embedded sheet",
		read: func() ([]byte, error) { return sheetFS.ReadFile("sheet/emotes.json") },
	}
}

// JSONFile returns a sheet read from a JSON array on disk.
func JSONFile(path string) Source {
	return jsonSheet{
		name: filepath.Base(path),
		read: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

func (s jsonSheet) Name() string { return s.name }

func (s jsonSheet) Rows(ctx context.Context) ([]Row, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.read()
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode sheet: %w", err)
	}

	rows := make([]Row, 0, len(raw))
	for i, msg := range raw {
		var e sheetEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			rows = append(rows, Row{Index: i, Err: err})
			continue
		}
		rows = append(rows, Row{
			Index:      i,
			ID:         e.ID,
			Name:       e.Name,
			Command:    e.Command,
			IconID:     e.Icon,
			UnlockLink: e.UnlockLink,
		})
	}
	return rows, nil
}

type sqliteSheet struct {
	path string
}

// SQLiteSheet returns a sheet read from the emote table of a SQLite file.
func SQLiteSheet(path string) Source {
	return sqliteSheet{path: path}
}

func (s sqliteSheet) Name() string { return filepath.Base(s.path) }

func (s sqliteSheet) Rows(ctx context.Context) ([]Row, error) {
	if strings.TrimSpace(s.path) == "" {
		return nil, fmt.Errorf("sheet path is required")
	}
	if _, err := os.Stat(s.path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", filepath.Clean(s.path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite sheet: %w", err)
	}
	defer db.Close()

	res, err := db.QueryContext(ctx, `SELECT id, name, command, icon, unlock_link FROM emote ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query emotes: %w", err)
	}
	defer res.Close()

	var rows []Row
	for i := 0; res.Next(); i++ {
		var (
			id      int64
			name    sql.NullString
			command sql.NullString
			icon    sql.NullInt64
			unlock  sql.NullInt64
		)
		if err := res.Scan(&id, &name, &command, &icon, &unlock); err != nil {
			rows = append(rows, Row{Index: i, Err: err})
			continue
		}
		rows = append(rows, Row{
			Index:      i,
			ID:         id,
			Name:       name.String,
			Command:    command.String,
			IconID:     uint32(icon.Int64),
			UnlockLink: uint32(unlock.Int64),
		})
	}
	if err := res.Err(); err != nil {
		return rows, fmt.Errorf("read emotes: %w", err)
	}
	return rows, nil
}

// SourceFor picks a sheet by file extension. An empty path selects the
// embedded sheet.
func SourceFor(path string) Source {
	switch strings.ToLower(filepath.Ext(path)) {
	case "":
		if path == "" {
			return EmbeddedSheet()
		}
		return JSONFile(path)
	case ".db", ".sqlite", ".sqlite3":
		return SQLiteSheet(path)
	default:
		return JSONFile(path)
	}
}
