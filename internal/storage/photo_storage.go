package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// ListingsBucket бакет фотографий объявлений.
const ListingsBucket = "listings"

// ErrTooLarge файл превышает лимит хранилища.
var ErrTooLarge = errors.New("storage: file exceeds size limit")

// ErrInvalidPath путь объекта выходит за пределы бакета.
var ErrInvalidPath = errors.New("storage: invalid object path")

// Object файл в бакете.
type Object struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// PhotoStorage отвечает за файловое хранилище изображений.
// Файлы лежат в <root>/<bucket>/<путь объекта> и раздаются по <publicBaseURL>/media/<bucket>/<путь объекта>.
type PhotoStorage struct {
	rootPath       string
	bucket         string
	publicBaseURL  string
	maxUploadBytes int64
	urlPattern     *regexp.Regexp
}

// NewPhotoStorage создаёт файловое хранилище.
func NewPhotoStorage(rootPath, bucket, publicBaseURL string, maxUploadMB int64) (*PhotoStorage, error) {
	bucketDir := filepath.Join(rootPath, bucket)
	if err := os.MkdirAll(bucketDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", bucketDir, err)
	}

	return &PhotoStorage{
		rootPath:       rootPath,
		bucket:         bucket,
		publicBaseURL:  strings.TrimRight(publicBaseURL, "/"),
		maxUploadBytes: maxUploadMB * 1024 * 1024,
		urlPattern:     regexp.MustCompile(regexp.QuoteMeta(bucket) + `/(.+)$`),
	}, nil
}

// Save сохраняет объект по относительному пути и возвращает размер.
func (s *PhotoStorage) Save(ctx context.Context, objectPath string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	target, err := s.resolve(objectPath)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("storage: не удалось создать каталог объекта: %w", err)
	}

	tempPath := target + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limitedReader := io.LimitedReader{R: r, N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limitedReader)
	if err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}

	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return 0, ErrTooLarge
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}

	if err := os.Rename(tempPath, target); err != nil {
		_ = os.Remove(tempPath)
		return 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}

	return written, nil
}

// Delete удаляет объект. Отсутствующий объект не считается ошибкой.
func (s *PhotoStorage) Delete(ctx context.Context, objectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target, err := s.resolve(objectPath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	// Каталог объявления остаётся: в него может писать параллельная загрузка.
	// Пустые каталоги удалённых объявлений убирает RemoveEmptyPrefix.
	return nil
}

// ListPrefixes каталоги верхнего уровня бакета (по одному на объявление).
func (s *PhotoStorage) ListPrefixes(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(filepath.Join(s.rootPath, s.bucket))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: не удалось прочитать бакет: %w", err)
	}

	prefixes := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			prefixes = append(prefixes, e.Name())
		}
	}
	return prefixes, nil
}

// RemoveEmptyPrefix удаляет каталог объявления, если в нём ничего нет.
func (s *PhotoStorage) RemoveEmptyPrefix(ctx context.Context, prefix string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	dir, err := s.resolve(prefix)
	if err != nil {
		return false, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("storage: не удалось прочитать каталог: %w", err)
	}
	if len(entries) > 0 {
		return false, nil
	}

	if err := os.Remove(dir); err != nil && !os.IsNotExist(err) {
		return false, fmt.Errorf("storage: не удалось удалить каталог: %w", err)
	}
	return true, nil
}

// PublicURL публичный адрес объекта.
func (s *PhotoStorage) PublicURL(objectPath string) string {
	return s.publicBaseURL + "/media/" + s.bucket + "/" + strings.TrimLeft(objectPath, "/")
}

// ObjectPathFromURL извлекает путь объекта из публичного адреса (всё после "<bucket>/").
func (s *PhotoStorage) ObjectPathFromURL(url string) (string, bool) {
	m := s.urlPattern.FindStringSubmatch(url)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ListObjects обходит бакет и возвращает все файлы кроме временных.
func (s *PhotoStorage) ListObjects(ctx context.Context) ([]Object, error) {
	bucketDir := filepath.Join(s.rootPath, s.bucket)
	var objects []Object

	err := filepath.WalkDir(bucketDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || strings.HasSuffix(d.Name(), ".tmp") {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(bucketDir, p)
		if err != nil {
			return err
		}
		objects = append(objects, Object{
			Path:    filepath.ToSlash(rel),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storage: не удалось обойти бакет: %w", err)
	}

	return objects, nil
}

// resolve превращает путь объекта в путь на диске, не выпуская его за пределы бакета.
func (s *PhotoStorage) resolve(objectPath string) (string, error) {
	clean := path.Clean("/" + filepath.ToSlash(objectPath))
	if clean == "/" || strings.Contains(objectPath, "..") {
		return "", ErrInvalidPath
	}
	return filepath.Join(s.rootPath, s.bucket, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}
