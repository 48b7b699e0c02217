// Package backup creates local snapshots of the SQLite database. When a
// passphrase is configured the snapshot is encrypted at rest.
package backup

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	plainExt     = ".db"
	encryptedExt = ".db.enc"
)

// Config holds backup configuration.
type Config struct {
	Dir        string
	Passphrase string // empty = unencrypted snapshots
	Keep       int    // how many snapshots Prune retains
}

// Info describes one snapshot on disk.
type Info struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Encrypted bool      `json:"encrypted"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager creates and lists database snapshots.
type Manager struct {
	cfg    Config
	db     *sql.DB
	logger *slog.Logger
}

func NewManager(cfg Config, db *sql.DB, logger *slog.Logger) *Manager {
	if cfg.Keep <= 0 {
		cfg.Keep = 7
	}
	return &Manager{cfg: cfg, db: db, logger: logger}
}

// Create takes a consistent snapshot via VACUUM INTO, optionally encrypts
// it, and writes it to the backup directory with a timestamped name.
func (m *Manager) Create() (*Info, error) {
	if err := os.MkdirAll(m.cfg.Dir, 0700); err != nil {
		return nil, fmt.Errorf("create backup dir: %w", err)
	}

	tmp := filepath.Join(m.cfg.Dir, fmt.Sprintf(".snapshot-%d.tmp", time.Now().UnixNano()))
	defer os.Remove(tmp)

	if _, err := m.db.Exec(`VACUUM INTO ?`, tmp); err != nil {
		return nil, fmt.Errorf("vacuum into snapshot: %w", err)
	}

	data, err := os.ReadFile(tmp)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	name := "spajz-" + time.Now().Format("20060102-150405")
	encrypted := m.cfg.Passphrase != ""
	if encrypted {
		name += encryptedExt
		data, err = Encrypt(data, m.cfg.Passphrase)
		if err != nil {
			return nil, fmt.Errorf("encrypt snapshot: %w", err)
		}
	} else {
		name += plainExt
	}

	dst := filepath.Join(m.cfg.Dir, name)
	if err := os.WriteFile(dst, data, 0600); err != nil {
		return nil, fmt.Errorf("write backup: %w", err)
	}

	m.logger.Info("backup created", "name", name, "size", len(data), "encrypted", encrypted)

	if err := m.Prune(); err != nil {
		m.logger.Warn("prune backups", "error", err)
	}

	return &Info{
		Name:      name,
		Size:      int64(len(data)),
		Encrypted: encrypted,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// List returns snapshots newest first.
func (m *Manager) List() ([]Info, error) {
	entries, err := os.ReadDir(m.cfg.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup dir: %w", err)
	}

	var infos []Info
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "spajz-") {
			continue
		}
		fi, err := e.Info()
		if err != nil {
			continue
		}
		infos = append(infos, Info{
			Name:      e.Name(),
			Size:      fi.Size(),
			Encrypted: strings.HasSuffix(e.Name(), encryptedExt),
			CreatedAt: fi.ModTime().UTC(),
		})
	}

	sort.Slice(infos, func(i, j int) bool { return infos[i].Name > infos[j].Name })
	return infos, nil
}

// Prune deletes the oldest snapshots beyond the configured keep count.
func (m *Manager) Prune() error {
	infos, err := m.List()
	if err != nil {
		return err
	}
	for _, info := range infos[min(m.cfg.Keep, len(infos)):] {
		if err := os.Remove(filepath.Join(m.cfg.Dir, info.Name)); err != nil {
			return fmt.Errorf("remove old backup %s: %w", info.Name, err)
		}
		m.logger.Info("pruned old backup", "name", info.Name)
	}
	return nil
}
