package storage

import (
	"fmt"
	"os"
	"path/filepath"
)

// FileStorage хранит каждое значение в отдельном файле внутри каталога
// состояния. Чтение повреждённого или отсутствующего файла трактуется
// как отсутствие значения.
type FileStorage struct {
	dir string
}

// NewFileStorage создаёт файловое хранилище в указанном каталоге,
// создавая каталог при необходимости.
func NewFileStorage(dir string) (*FileStorage, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &FileStorage{dir: dir}, nil
}

// Get возвращает сохранённое значение по ключу.
func (s *FileStorage) Get(key string) (string, bool) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Set сохраняет значение по ключу, перезаписывая прежнее.
func (s *FileStorage) Set(key, value string) error {
	if err := os.WriteFile(s.path(key), []byte(value), 0o600); err != nil {
		return fmt.Errorf("write state %q: %w", key, err)
	}
	return nil
}

// Remove удаляет значение по ключу.
func (s *FileStorage) Remove(key string) {
	_ = os.Remove(s.path(key))
}

func (s *FileStorage) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}
