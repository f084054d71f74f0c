package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nurpe/ride-profit/internal/codec"
	"github.com/nurpe/ride-profit/internal/model"
)

const (
	LogFileName  = "kursy.txt"
	GoalFileName = "cele.txt"
)

// FileStore keeps each user's data under <root>/<user id>/.
type FileStore struct {
	root string
}

var _ Store = (*FileStore)(nil)

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) ReadLog(_ context.Context, userID string) ([]string, error) {
	path, err := s.path(userID, LogFileName)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return codec.SplitLines(string(content)), nil
}

func (s *FileStore) AppendLog(_ context.Context, userID string, lines []string) error {
	path, err := s.path(userID, LogFileName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	if _, err := f.WriteString(codec.JoinLines(lines)); err != nil {
		f.Close()
		return fmt.Errorf("append log: %w", err)
	}
	return f.Close()
}

func (s *FileStore) RewriteLog(_ context.Context, userID string, lines []string) error {
	path, err := s.path(userID, LogFileName)
	if err != nil {
		return err
	}
	return replaceFile(path, codec.JoinLines(lines))
}

func (s *FileStore) ReadGoal(_ context.Context, userID string) ([]model.Field, bool, error) {
	path, err := s.path(userID, GoalFileName)
	if err != nil {
		return nil, false, err
	}
	content, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read goals: %w", err)
	}

	var values []model.Field
	for _, line := range codec.SplitLines(string(content)) {
		key, value, ok := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		values = append(values, model.Field{Key: key, Value: strings.TrimSpace(value)})
	}
	return values, true, nil
}

func (s *FileStore) WriteGoal(_ context.Context, userID string, values []model.Field) error {
	path, err := s.path(userID, GoalFileName)
	if err != nil {
		return err
	}
	return replaceFile(path, encodeGoal(values))
}

func (s *FileStore) InitUser(ctx context.Context, userID string, defaults []model.Field) error {
	logPath, err := s.path(userID, LogFileName)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if _, found, err := s.ReadGoal(ctx, userID); err != nil || found {
		return err
	}
	return s.WriteGoal(ctx, userID, defaults)
}

func (s *FileStore) path(userID, name string) (string, error) {
	if err := ValidateUserID(userID); err != nil {
		return "", err
	}
	return filepath.Join(s.root, userID, name), nil
}

func encodeGoal(values []model.Field) string {
	var b strings.Builder
	for _, v := range values {
		b.WriteString(strings.TrimSpace(v.Key))
		b.WriteByte(':')
		b.WriteString(strings.TrimSpace(strings.ReplaceAll(v.Value, "\n", " ")))
		b.WriteByte('\n')
	}
	return b.String()
}

// replaceFile writes content next to path and renames it into place.
func replaceFile(path, content string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create user dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", filepath.Base(path), err)
	}
	return nil
}
