package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/bigkaa/quickfolio/internal/domain/model"
)

// FileRepository — интерфейс CRUD для таблицы files.
type FileRepository interface {
	// Create создаёт новую папку.
	Create(ctx context.Context, f *model.File) error
	// GetByID возвращает папку по UUID вместе с её фолио.
	GetByID(ctx context.Context, id string) (*model.File, error)
	// List возвращает папки (created_at DESC) с их фолио.
	// folioID != nil — только папка, которой принадлежит указанное фолио.
	List(ctx context.Context, folioID *string) ([]*model.File, error)
	// Update применяет частичное обновление и возвращает обновлённую папку (без фолио).
	Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error)
	// Delete удаляет папку. Фолио папки остаются без владельца.
	Delete(ctx context.Context, id string) error
	// Exists проверяет существование папки.
	Exists(ctx context.Context, id string) (bool, error)
}

// fileRepo — реализация FileRepository.
type fileRepo struct {
	db DBTX
}

// NewFileRepository создаёт репозиторий папок.
func NewFileRepository(db DBTX) FileRepository {
	return &fileRepo{db: db}
}

const fileColumns = `id, name, description, created_by, created_at, updated_at`

func scanFile(row pgx.Row) (*model.File, error) {
	f := &model.File{}
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedBy, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *fileRepo) Create(ctx context.Context, f *model.File) error {
	query := `
		INSERT INTO files (id, name, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query, f.ID, f.Name, f.Description, f.CreatedBy).
		Scan(&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: папка с id %s уже существует", ErrConflict, f.ID)
		}
		return fmt.Errorf("ошибка создания папки: %w", err)
	}
	return nil
}

func (r *fileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	f, err := scanFile(r.db.QueryRow(ctx, `SELECT `+fileColumns+` FROM files WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка получения папки: %w", err)
	}

	if err := r.loadFolios(ctx, []*model.File{f}); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *fileRepo) List(ctx context.Context, folioID *string) ([]*model.File, error) {
	query := `SELECT ` + fileColumns + ` FROM files`
	var args []any

	if folioID != nil {
		if !validID(*folioID) {
			return []*model.File{}, nil
		}
		query += ` WHERE id = (SELECT file_id FROM folios WHERE id = $1)`
		args = append(args, *folioID)
	}
	query += ` ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка папок: %w", err)
	}
	defer rows.Close()

	result := []*model.File{}
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования папки: %w", err)
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения списка папок: %w", err)
	}

	if err := r.loadFolios(ctx, result); err != nil {
		return nil, err
	}
	return result, nil
}

// loadFolios заполняет Folios у переданных папок одним запросом.
func (r *fileRepo) loadFolios(ctx context.Context, files []*model.File) error {
	if len(files) == 0 {
		return nil
	}

	byID := make(map[string]*model.File, len(files))
	ids := make([]string, 0, len(files))
	for _, f := range files {
		f.Folios = []*model.Folio{}
		byID[f.ID] = f
		ids = append(ids, f.ID)
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+folioColumns+` FROM folios WHERE file_id = ANY($1::uuid[]) ORDER BY created_at DESC, id`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("ошибка получения фолио папок: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		fo, err := scanFolio(rows)
		if err != nil {
			return fmt.Errorf("ошибка сканирования фолио: %w", err)
		}
		if fo.FileID == nil {
			continue
		}
		if owner, ok := byID[*fo.FileID]; ok {
			owner.Folios = append(owner.Folios, fo)
		}
	}
	return rows.Err()
}

func (r *fileRepo) Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}

	// Динамическое построение SET: меняются только переданные поля
	sets := []string{"updated_at = GREATEST(now(), updated_at + interval '1 microsecond')"}
	args := []any{id}
	add := func(column string, val any) {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if upd.Name != nil {
		add("name", *upd.Name)
	}
	if upd.Description != nil {
		add("description", *upd.Description)
	}
	if upd.CreatedBy != nil {
		add("created_by", *upd.CreatedBy)
	}

	query := fmt.Sprintf(`UPDATE files SET %s WHERE id = $1 RETURNING %s`,
		strings.Join(sets, ", "), fileColumns)

	f, err := scanFile(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка обновления папки: %w", err)
	}
	return f, nil
}

func (r *fileRepo) Delete(ctx context.Context, id string) error {
	if !validID(id) {
		return ErrNotFound
	}
	tag, err := r.db.Exec(ctx, `DELETE FROM files WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления папки: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *fileRepo) Exists(ctx context.Context, id string) (bool, error) {
	if !validID(id) {
		return false, nil
	}
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM files WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("ошибка проверки папки: %w", err)
	}
	return exists, nil
}
