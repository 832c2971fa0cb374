package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// ErrFileTooLarge возвращается при превышении лимита размера загрузки.
var ErrFileTooLarge = errors.New("file exceeds upload size limit")

// ErrFileNotFound возвращается, когда файла нет в хранилище.
var ErrFileNotFound = errors.New("file not found in storage")

// AvatarStorage отвечает за файловое хранилище аватаров.
// Файлы лежат по пути <root>/<userID>/<avatarID>, без расширения:
// тип содержимого определяется по магическим байтам при отдаче.
type AvatarStorage struct {
	rootPath       string
	maxUploadBytes int64
}

// NewAvatarStorage создаёт файловое хранилище.
func NewAvatarStorage(rootPath string, maxUploadMB int64) (*AvatarStorage, error) {
	if err := os.MkdirAll(rootPath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", rootPath, err)
	}

	return &AvatarStorage{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save сохраняет аватар и возвращает его идентификатор.
func (s *AvatarStorage) Save(ctx context.Context, userID uuid.UUID, r io.Reader) (uuid.UUID, int64, error) {
	if err := ctx.Err(); err != nil {
		return uuid.Nil, 0, err
	}

	avatarID := uuid.New()

	userDir := filepath.Join(s.rootPath, userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return uuid.Nil, 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(userDir, avatarID.String())
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return uuid.Nil, 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return uuid.Nil, 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return uuid.Nil, 0, ErrFileTooLarge
	}

	if err := f.Close(); err != nil {
		return uuid.Nil, 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, targetPath); err != nil {
		return uuid.Nil, 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return avatarID, written, nil
}

// Open открывает сохранённый аватар на чтение.
func (s *AvatarStorage) Open(ctx context.Context, userID, avatarID uuid.UUID) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(filepath.Join(s.rootPath, userID.String(), avatarID.String()))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("storage: не удалось открыть файл: %w", err)
	}
	return f, nil
}

// Delete удаляет аватар из хранилища.
func (s *AvatarStorage) Delete(ctx context.Context, userID, avatarID uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := filepath.Join(s.rootPath, userID.String(), avatarID.String())
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}
