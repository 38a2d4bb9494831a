// folios.go — сервис фолио.
// CRUD фолио с проверкой существования папки-владельца.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/repository"
)

// CreateFolioInput — данные для создания фолио.
type CreateFolioInput struct {
	Item        string
	RunningNo   string
	Description *string
	DraftedBy   string
	LetterDate  time.Time
	FileID      *string
}

// FolioService — сервис фолио.
type FolioService struct {
	folios repository.FolioRepository
	files  repository.FileRepository
	cache  *RecordCache
	logger *slog.Logger
}

// NewFolioService создаёт сервис фолио.
func NewFolioService(
	folios repository.FolioRepository,
	files repository.FileRepository,
	cache *RecordCache,
	logger *slog.Logger,
) *FolioService {
	return &FolioService{
		folios: folios,
		files:  files,
		cache:  cache,
		logger: logger.With(slog.String("component", "folio_service")),
	}
}

// List возвращает фолио (новые первыми) с папками-владельцами.
// fileID != nil — только фолио указанной папки.
func (s *FolioService) List(ctx context.Context, fileID *string) ([]*model.Folio, error) {
	folios, err := s.folios.List(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("получение списка фолио: %w", err)
	}
	return folios, nil
}

// Get возвращает фолио по ID вместе с папкой.
func (s *FolioService) Get(ctx context.Context, id string) (*model.Folio, error) {
	if fo, ok := s.cache.GetFolio(id); ok {
		return fo, nil
	}

	gen := s.cache.Generation()
	fo, err := s.folios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение фолио: %w", err)
	}

	s.cache.SetFolio(gen, fo)
	return fo, nil
}

// Create создаёт фолио. Указанная папка должна существовать.
func (s *FolioService) Create(ctx context.Context, in CreateFolioInput) (*model.Folio, error) {
	if in.FileID != nil {
		if err := s.checkFile(ctx, *in.FileID); err != nil {
			return nil, err
		}
	}

	fo := &model.Folio{
		ID:          uuid.NewString(),
		Item:        in.Item,
		RunningNo:   in.RunningNo,
		Description: in.Description,
		DraftedBy:   in.DraftedBy,
		LetterDate:  in.LetterDate,
		FileID:      in.FileID,
	}
	if err := s.folios.Create(ctx, fo); err != nil {
		if errors.Is(err, repository.ErrForeignKey) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("создание фолио: %w", err)
	}
	s.cache.Invalidate()

	created, err := s.folios.GetByID(ctx, fo.ID)
	if err != nil {
		return nil, fmt.Errorf("получение созданного фолио: %w", err)
	}

	mutationsTotal.WithLabelValues("folio", "create").Inc()
	s.logger.Info("Фолио создано",
		slog.String("folio_id", created.ID),
		slog.String("item", created.Item),
	)
	return created, nil
}

// Update применяет частичное обновление фолио.
func (s *FolioService) Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
	if upd.FileID != nil && !upd.ClearFileID {
		if err := s.checkFile(ctx, *upd.FileID); err != nil {
			return nil, err
		}
	}

	if _, err := s.folios.Update(ctx, id, upd); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrForeignKey):
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("обновление фолио: %w", err)
	}
	s.cache.Invalidate()

	fo, err := s.folios.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение обновлённого фолио: %w", err)
	}

	mutationsTotal.WithLabelValues("folio", "update").Inc()
	s.logger.Info("Фолио обновлено", slog.String("folio_id", id))
	return fo, nil
}

// Delete удаляет фолио.
func (s *FolioService) Delete(ctx context.Context, id string) error {
	if err := s.folios.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("удаление фолио: %w", err)
	}

	s.cache.Invalidate()
	mutationsTotal.WithLabelValues("folio", "delete").Inc()
	s.logger.Info("Фолио удалено", slog.String("folio_id", id))
	return nil
}

// checkFile проверяет существование папки.
func (s *FolioService) checkFile(ctx context.Context, fileID string) error {
	ok, err := s.files.Exists(ctx, fileID)
	if err != nil {
		return fmt.Errorf("проверка папки: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
	}
	return nil
}
