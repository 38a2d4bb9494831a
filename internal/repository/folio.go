package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/quickfolio/internal/domain/model"
)

// FolioRepository — интерфейс CRUD для таблицы folios.
type FolioRepository interface {
	// Create создаёт новое фолио.
	Create(ctx context.Context, fo *model.Folio) error
	// GetByID возвращает фолио по UUID вместе с папкой-владельцем.
	GetByID(ctx context.Context, id string) (*model.Folio, error)
	// GetByItem возвращает самое новое фолио с указанным номером (item).
	GetByItem(ctx context.Context, item string) (*model.Folio, error)
	// List возвращает фолио (created_at DESC) с папками-владельцами.
	// fileID != nil — только фолио указанной папки.
	List(ctx context.Context, fileID *string) ([]*model.Folio, error)
	// Update применяет частичное обновление и возвращает обновлённое фолио (без папки).
	Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error)
	// AttachToFile привязывает фолио к папке.
	AttachToFile(ctx context.Context, folioID, fileID string) error
	// Delete удаляет фолио.
	Delete(ctx context.Context, id string) error
}

// folioRepo — реализация FolioRepository.
type folioRepo struct {
	db DBTX
}

// NewFolioRepository создаёт репозиторий фолио.
func NewFolioRepository(db DBTX) FolioRepository {
	return &folioRepo{db: db}
}

const folioColumns = `id, item, running_no, description, drafted_by, letter_date, file_id, created_at, updated_at`

func scanFolio(row pgx.Row) (*model.Folio, error) {
	fo := &model.Folio{}
	err := row.Scan(
		&fo.ID, &fo.Item, &fo.RunningNo, &fo.Description, &fo.DraftedBy,
		&fo.LetterDate, &fo.FileID, &fo.CreatedAt, &fo.UpdatedAt,
	)
	return fo, err
}

func (r *folioRepo) Create(ctx context.Context, fo *model.Folio) error {
	query := `
		INSERT INTO folios (id, item, running_no, description, drafted_by, letter_date, file_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		fo.ID, fo.Item, fo.RunningNo, fo.Description, fo.DraftedBy, fo.LetterDate, fo.FileID,
	).Scan(&fo.CreatedAt, &fo.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: фолио с id %s уже существует", ErrConflict, fo.ID)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: папка не найдена", ErrForeignKey)
		}
		return fmt.Errorf("ошибка создания фолио: %w", err)
	}
	return nil
}

func (r *folioRepo) GetByID(ctx context.Context, id string) (*model.Folio, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	fo, err := scanFolio(r.db.QueryRow(ctx, `SELECT `+folioColumns+` FROM folios WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения фолио: %w", err)
	}

	if err := r.loadFiles(ctx, []*model.Folio{fo}); err != nil {
		return nil, err
	}
	return fo, nil
}

func (r *folioRepo) GetByItem(ctx context.Context, item string) (*model.Folio, error) {
	fo, err := scanFolio(r.db.QueryRow(ctx,
		`SELECT `+folioColumns+` FROM folios WHERE item = $1 ORDER BY created_at DESC, id LIMIT 1`, item))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка поиска фолио по номеру: %w", err)
	}
	return fo, nil
}

func (r *folioRepo) List(ctx context.Context, fileID *string) ([]*model.Folio, error) {
	query := `SELECT ` + folioColumns + ` FROM folios`
	var args []any

	if fileID != nil {
		if !validID(*fileID) {
			return []*model.Folio{}, nil
		}
		query += ` WHERE file_id = $1`
		args = append(args, *fileID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка фолио: %w", err)
	}
	defer rows.Close()

	result := []*model.Folio{}
	for rows.Next() {
		fo, err := scanFolio(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования фолио: %w", err)
		}
		result = append(result, fo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка фолио: %w", err)
	}

	if err := r.loadFiles(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadFiles заполняет File (без вложенных фолио) у переданных фолио одним запросом.
func (r *folioRepo) loadFiles(ctx context.Context, folios []*model.Folio) error {
	var ids []string
	seen := make(map[string]bool)
	for _, fo := range folios {
		if fo.FileID != nil && !seen[*fo.FileID] {
			seen[*fo.FileID] = true
			ids = append(ids, *fo.FileID)
		}
	}
	if len(ids) == 0 {
		return nil
	}

	rows, err := r.db.Query(ctx, `SELECT `+fileColumns+` FROM files WHERE id = ANY($1::uuid[])`, ids)
	if err != nil {
		return fmt.Errorf("ошибка получения папок фолио: %w", err)
	}
	defer rows.Close()

	byID := make(map[string]*model.File, len(ids))
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return fmt.Errorf("ошибка сканирования папки: %w", err)
		}
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ошибка чтения папок фолио: %w", err)
	}

	for _, fo := range folios {
		if fo.FileID != nil {
			fo.File = byID[*fo.FileID]
		}
	}
	return nil
}

func (r *folioRepo) Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	sets := []string{"updated_at = GREATEST(now(), updated_at + interval '1 microsecond')"}
	args := []any{id}
	add := func(column string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Item != nil {
		add("item", *upd.Item)
	}
	if upd.RunningNo != nil {
		add("running_no", *upd.RunningNo)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.DraftedBy != nil {
		add("drafted_by", *upd.DraftedBy)
	}
	if upd.LetterDate != nil {
		add("letter_date", *upd.LetterDate)
	}
	switch {
	case upd.ClearFileID:
		sets = append(sets, "file_id = NULL")
	case upd.FileID != nil:
		add("file_id", *upd.FileID)
	}

	query := fmt.Sprintf(`UPDATE folios SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), folioColumns)

	fo, err := scanFolio(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if isForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: папка не найдена", ErrForeignKey)
		}
		return nil, fmt.Errorf("ошибка обновления фолио: %w", err)
	}
	return fo, nil
}

func (r *folioRepo) AttachToFile(ctx context.Context, folioID, fileID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE folios
		SET file_id = $2, updated_at = GREATEST(now(), updated_at + interval '1 microsecond')
		WHERE id = $1`, folioID, fileID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("%w: папка не найдена", ErrForeignKey)
		}
		return fmt.Errorf("ошибка привязки фолио к папке: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *folioRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM folios WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления фолио: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
