package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shenikar/incident_report_system/internal/models"
)

//go:generate mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks

const (
	tokenFile = "token"
	userFile  = "user.json"
)

// Store определяет контракт для хранения последней известной сессии.
// Хранилище не проверяет подлинность токена - это забота сервера.
type Store interface {
	Load() models.Session
	Save(sess models.Session) error
	Clear() error
}

// FileStore хранит сессию в двух файлах каталога состояния:
// token с токеном и user.json с идентичностью пользователя.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Load читает сохранённую сессию. Любая проблема - нет каталога, нет одного
// из файлов, битый JSON - даёт разлогиненную сессию, ошибка не возвращается.
func (s *FileStore) Load() models.Session {
	raw, err := os.ReadFile(filepath.Join(s.dir, tokenFile))
	if err != nil {
		return models.Session{}
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return models.Session{}
	}

	raw, err = os.ReadFile(filepath.Join(s.dir, userFile))
	if err != nil {
		return models.Session{}
	}
	var user models.AuthUser
	if err := json.Unmarshal(raw, &user); err != nil {
		return models.Session{}
	}

	return models.Session{Token: token, User: &user}
}

// Save записывает токен и пользователя. При частичной записи файлы
// подчищаются, чтобы Load не увидел токен одной сессии с пользователем другой.
func (s *FileStore) Save(sess models.Session) error {
	if !sess.Valid() {
		return fmt.Errorf("session: refusing to save a session without token or user")
	}

	payload, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("session: failed to marshal user: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return fmt.Errorf("session: failed to create state dir: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, userFile), payload, 0600); err != nil {
		s.removeAll()
		return fmt.Errorf("session: failed to write user file: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.dir, tokenFile), []byte(sess.Token), 0600); err != nil {
		s.removeAll()
		return fmt.Errorf("session: failed to write token file: %w", err)
	}
	return nil
}

// Clear удаляет оба файла сессии. Повторный вызов безопасен.
func (s *FileStore) Clear() error {
	var errs []error
	for _, name := range []string{tokenFile, userFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, fmt.Errorf("session: failed to remove %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func (s *FileStore) removeAll() {
	os.Remove(filepath.Join(s.dir, tokenFile))
	os.Remove(filepath.Join(s.dir, userFile))
}
