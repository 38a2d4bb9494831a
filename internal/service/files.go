// files.go — сервис папок (files).
// CRUD папок, создание папки с привязкой существующего фолио в одной транзакции.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/repository"
)

// mutationsTotal — количество успешных изменений записей.
var mutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "qf_record_mutations_total",
	Help: "Количество созданных, изменённых и удалённых записей.",
}, []string{"entity", "op"})

// TxManager выполняет fn в транзакции с репозиториями, привязанными к ней.
// Реализуется repository.TxRunner.
type TxManager interface {
	InTx(ctx context.Context, fn func(repos repository.Repos) error) error
}

// CreateFileInput — данные для создания папки.
type CreateFileInput struct {
	Name        string
	Description *string
	CreatedBy   string
	// FolioNumber — номер (item) существующего фолио, которое нужно положить в папку
	FolioNumber *string
}

// FileService — сервис папок.
type FileService struct {
	files  repository.FileRepository
	folios repository.FolioRepository
	tx     TxManager
	cache  *RecordCache
	logger *slog.Logger
}

// NewFileService создаёт сервис папок.
func NewFileService(
	files repository.FileRepository,
	folios repository.FolioRepository,
	tx TxManager,
	cache *RecordCache,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		files:  files,
		folios: folios,
		tx:     tx,
		cache:  cache,
		logger: logger.With(slog.String("component", "file_service")),
	}
}

// List возвращает папки (новые первыми) с их фолио.
// folioID != nil — только папка, содержащая указанное фолио.
func (s *FileService) List(ctx context.Context, folioID *string) ([]*model.File, error) {
	files, err := s.files.List(ctx, folioID)
	if err != nil {
		return nil, fmt.Errorf("получение списка папок: %w", err)
	}
	return files, nil
}

// Get возвращает папку по ID вместе с фолио.
func (s *FileService) Get(ctx context.Context, id string) (*model.File, error) {
	if f, ok := s.cache.GetFile(id); ok {
		return f, nil
	}

	gen := s.cache.Generation()
	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение папки: %w", err)
	}

	s.cache.SetFile(gen, f)
	return f, nil
}

// Create создаёт папку. Если указан FolioNumber, фолио с таким номером
// привязывается к новой папке в той же транзакции.
func (s *FileService) Create(ctx context.Context, in CreateFileInput) (*model.File, error) {
	f := &model.File{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		CreatedBy:   in.CreatedBy,
	}

	var folioID string
	if in.FolioNumber != nil {
		fo, err := s.folios.GetByItem(ctx, *in.FolioNumber)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, fmt.Errorf("%w: номер %q", ErrFolioNotFound, *in.FolioNumber)
			}
			return nil, fmt.Errorf("поиск фолио по номеру: %w", err)
		}
		folioID = fo.ID
	}

	var created *model.File
	err := s.tx.InTx(ctx, func(repos repository.Repos) error {
		if err := repos.Files.Create(ctx, f); err != nil {
			return err
		}
		if folioID != "" {
			if err := repos.Folios.AttachToFile(ctx, folioID, f.ID); err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return ErrFolioNotFound
				}
				return err
			}
		}
		var err error
		created, err = repos.Files.GetByID(ctx, f.ID)
		return err
	})
	if err != nil {
		if errors.Is(err, ErrFolioNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("создание папки: %w", err)
	}

	s.cache.Invalidate()
	mutationsTotal.WithLabelValues("file", "create").Inc()
	s.logger.Info("Папка создана",
		slog.String("file_id", created.ID),
		slog.String("name", created.Name),
		slog.Int("folios", len(created.Folios)),
	)
	return created, nil
}

// Update применяет частичное обновление папки. Меняются только переданные поля.
func (s *FileService) Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error) {
	if _, err := s.files.Update(ctx, id, upd); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("обновление папки: %w", err)
	}
	s.cache.Invalidate()

	f, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение обновлённой папки: %w", err)
	}

	mutationsTotal.WithLabelValues("file", "update").Inc()
	s.logger.Info("Папка обновлена", slog.String("file_id", id))
	return f, nil
}

// Delete удаляет папку. Фолио папки остаются без владельца.
func (s *FileService) Delete(ctx context.Context, id string) error {
	if err := s.files.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление папки: %w", err)
	}

	s.cache.Invalidate()
	mutationsTotal.WithLabelValues("file", "delete").Inc()
	s.logger.Info("Папка удалена", slog.String("file_id", id))
	return nil
}
