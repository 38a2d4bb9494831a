package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/repository"
)

// --- Моки репозиториев ---

// mockFileRepo — мок FileRepository для unit-тестов.
type mockFileRepo struct {
	createFn  func(ctx context.Context, f *model.File) error
	getByIDFn func(ctx context.Context, id string) (*model.File, error)
	listFn    func(ctx context.Context, folioID *string) ([]*model.File, error)
	updateFn  func(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error)
	deleteFn  func(ctx context.Context, id string) error
	existsFn  func(ctx context.Context, id string) (bool, error)

	getByIDCalls int
}

func (m *mockFileRepo) Create(ctx context.Context, f *model.File) error {
	if m.createFn != nil {
		return m.createFn(ctx, f)
	}
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	return nil
}

func (m *mockFileRepo) GetByID(ctx context.Context, id string) (*model.File, error) {
	m.getByIDCalls++
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) List(ctx context.Context, folioID *string) ([]*model.File, error) {
	if m.listFn != nil {
		return m.listFn(ctx, folioID)
	}
	return []*model.File{}, nil
}

func (m *mockFileRepo) Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFileRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return repository.ErrNotFound
}

func (m *mockFileRepo) Exists(ctx context.Context, id string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

// mockFolioRepo — мок FolioRepository для unit-тестов.
type mockFolioRepo struct {
	createFn    func(ctx context.Context, fo *model.Folio) error
	getByIDFn   func(ctx context.Context, id string) (*model.Folio, error)
	getByItemFn func(ctx context.Context, item string) (*model.Folio, error)
	listFn      func(ctx context.Context, fileID *string) ([]*model.Folio, error)
	updateFn    func(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error)
	attachFn    func(ctx context.Context, folioID, fileID string) error
	deleteFn    func(ctx context.Context, id string) error
}

func (m *mockFolioRepo) Create(ctx context.Context, fo *model.Folio) error {
	if m.createFn != nil {
		return m.createFn(ctx, fo)
	}
	return nil
}

func (m *mockFolioRepo) GetByID(ctx context.Context, id string) (*model.Folio, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFolioRepo) GetByItem(ctx context.Context, item string) (*model.Folio, error) {
	if m.getByItemFn != nil {
		return m.getByItemFn(ctx, item)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFolioRepo) List(ctx context.Context, fileID *string) ([]*model.Folio, error) {
	if m.listFn != nil {
		return m.listFn(ctx, fileID)
	}
	return []*model.Folio{}, nil
}

func (m *mockFolioRepo) Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return nil, repository.ErrNotFound
}

func (m *mockFolioRepo) AttachToFile(ctx context.Context, folioID, fileID string) error {
	if m.attachFn != nil {
		return m.attachFn(ctx, folioID, fileID)
	}
	return nil
}

func (m *mockFolioRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return repository.ErrNotFound
}

// mockTx выполняет fn без транзакции поверх переданных моков.
type mockTx struct {
	repos repository.Repos
	calls int
}

func (m *mockTx) InTx(_ context.Context, fn func(repos repository.Repos) error) error {
	m.calls++
	return fn(m.repos)
}

func strPtr(s string) *string { return &s }

// --- FileService ---

func newFileService(files *mockFileRepo, folios *mockFolioRepo, cache *RecordCache) (*FileService, *mockTx) {
	tx := &mockTx{repos: repository.Repos{Files: files, Folios: folios}}
	return NewFileService(files, folios, tx, cache, slog.Default()), tx
}

func TestFileService_CreateWithFolioNumber(t *testing.T) {
	var attached struct{ folioID, fileID string }
	stored := map[string]*model.File{}

	files := &mockFileRepo{
		createFn: func(_ context.Context, f *model.File) error {
			stored[f.ID] = f
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*model.File, error) {
			f, ok := stored[id]
			if !ok {
				return nil, repository.ErrNotFound
			}
			f.Folios = []*model.Folio{{ID: attached.folioID, Item: "A/1"}}
			return f, nil
		},
	}
	folios := &mockFolioRepo{
		getByItemFn: func(_ context.Context, item string) (*model.Folio, error) {
			if item != "A/1" {
				t.Errorf("item = %q, ожидается A/1", item)
			}
			return &model.Folio{ID: "folio-1", Item: item}, nil
		},
		attachFn: func(_ context.Context, folioID, fileID string) error {
			attached.folioID, attached.fileID = folioID, fileID
			return nil
		},
	}
	svc, tx := newFileService(files, folios, nil)

	got, err := svc.Create(context.Background(), CreateFileInput{
		Name: "Letters", CreatedBy: "Admin", FolioNumber: strPtr("A/1"),
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if tx.calls != 1 {
		t.Errorf("InTx вызван %d раз, ожидается 1", tx.calls)
	}
	if attached.folioID != "folio-1" || attached.fileID != got.ID {
		t.Errorf("привязка = %+v, ожидается folio-1 -> %s", attached, got.ID)
	}
	if len(got.Folios) != 1 {
		t.Errorf("Folios = %d, ожидается 1", len(got.Folios))
	}
}

func TestFileService_CreateUnknownFolioNumber(t *testing.T) {
	files := &mockFileRepo{
		createFn: func(context.Context, *model.File) error {
			t.Error("папка не должна создаваться при неизвестном номере фолио")
			return nil
		},
	}
	svc, tx := newFileService(files, &mockFolioRepo{}, nil)

	_, err := svc.Create(context.Background(), CreateFileInput{
		Name: "Letters", CreatedBy: "Admin", FolioNumber: strPtr("missing"),
	})
	if !errors.Is(err, ErrFolioNotFound) {
		t.Fatalf("Create() = %v, ожидается ErrFolioNotFound", err)
	}
	if tx.calls != 0 {
		t.Error("транзакция не должна открываться")
	}
}

func TestFileService_GetUsesCache(t *testing.T) {
	files := &mockFileRepo{
		getByIDFn: func(_ context.Context, id string) (*model.File, error) {
			return &model.File{ID: id, Name: "cached"}, nil
		},
	}
	cache := NewRecordCache(10, time.Minute)
	svc, _ := newFileService(files, &mockFolioRepo{}, cache)
	ctx := context.Background()

	for range 3 {
		if _, err := svc.Get(ctx, "f-1"); err != nil {
			t.Fatalf("Get() ошибка: %v", err)
		}
	}
	if files.getByIDCalls != 1 {
		t.Errorf("GetByID вызван %d раз, ожидается 1 (кэш)", files.getByIDCalls)
	}

	// Любое изменение сбрасывает кэш
	files.deleteFn = func(context.Context, string) error { return nil }
	if err := svc.Delete(ctx, "f-2"); err != nil {
		t.Fatal(err)
	}
	if cache.Len() != 0 {
		t.Errorf("кэш не сброшен после Delete: %d записей", cache.Len())
	}
}

func TestFileService_NotFound(t *testing.T) {
	svc, _ := newFileService(&mockFileRepo{}, &mockFolioRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() = %v, ожидается ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, "x", model.FileUpdate{Name: strPtr("n")}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() = %v, ожидается ErrNotFound", err)
	}
	if err := svc.Delete(ctx, "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() = %v, ожидается ErrNotFound", err)
	}
}

func TestFileService_UpdatePassesOnlySuppliedFields(t *testing.T) {
	files := &mockFileRepo{
		updateFn: func(_ context.Context, id string, upd model.FileUpdate) (*model.File, error) {
			if upd.Name == nil || *upd.Name != "Renamed" {
				t.Errorf("Name = %v", upd.Name)
			}
			if upd.Description != nil || upd.CreatedBy != nil {
				t.Error("переданы лишние поля")
			}
			return &model.File{ID: id}, nil
		},
		getByIDFn: func(_ context.Context, id string) (*model.File, error) {
			return &model.File{ID: id, Name: "Renamed", Folios: []*model.Folio{}}, nil
		},
	}
	svc, _ := newFileService(files, &mockFolioRepo{}, nil)

	got, err := svc.Update(context.Background(), "f-1", model.FileUpdate{Name: strPtr("Renamed")})
	if err != nil {
		t.Fatalf("Update() ошибка: %v", err)
	}
	if got.Name != "Renamed" || got.Folios == nil {
		t.Errorf("Update() = %+v", got)
	}
}

// --- FolioService ---

func TestFolioService_CreateUnknownFile(t *testing.T) {
	folios := &mockFolioRepo{
		createFn: func(context.Context, *model.Folio) error {
			t.Error("фолио не должно создаваться при неизвестной папке")
			return nil
		},
	}
	svc := NewFolioService(folios, &mockFileRepo{}, nil, slog.Default())

	_, err := svc.Create(context.Background(), CreateFolioInput{
		Item: "A/1", RunningNo: "1", DraftedBy: "Bob", FileID: strPtr("missing"),
	})
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Create() = %v, ожидается ErrFileNotFound", err)
	}
}

func TestFolioService_Create(t *testing.T) {
	var created *model.Folio
	folios := &mockFolioRepo{
		createFn: func(_ context.Context, fo *model.Folio) error {
			created = fo
			return nil
		},
		getByIDFn: func(_ context.Context, id string) (*model.Folio, error) {
			if created == nil || created.ID != id {
				return nil, repository.ErrNotFound
			}
			cp := *created
			cp.File = &model.File{ID: *created.FileID, Name: "Letters"}
			return &cp, nil
		},
	}
	files := &mockFileRepo{
		existsFn: func(context.Context, string) (bool, error) { return true, nil },
	}
	svc := NewFolioService(folios, files, nil, slog.Default())

	letter := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	got, err := svc.Create(context.Background(), CreateFolioInput{
		Item: "A/1", RunningNo: "1", DraftedBy: "Bob", LetterDate: letter, FileID: strPtr("file-1"),
	})
	if err != nil {
		t.Fatalf("Create() ошибка: %v", err)
	}
	if got.ID == "" || got.File == nil || got.File.Name != "Letters" {
		t.Errorf("Create() = %+v", got)
	}
	if !got.LetterDate.Equal(letter) {
		t.Errorf("LetterDate = %v, ожидается %v", got.LetterDate, letter)
	}
}

func TestFolioService_Update(t *testing.T) {
	tests := []struct {
		name    string
		upd     model.FolioUpdate
		exists  bool
		repoErr error
		wantErr error
	}{
		{"несуществующее фолио", model.FolioUpdate{DraftedBy: strPtr("x")}, true, repository.ErrNotFound, ErrNotFound},
		{"неизвестная папка", model.FolioUpdate{FileID: strPtr("nope")}, false, nil, ErrFileNotFound},
		{"гонка с удалением папки", model.FolioUpdate{FileID: strPtr("gone")}, true, repository.ErrForeignKey, ErrFileNotFound},
		{"отвязка от папки", model.FolioUpdate{ClearFileID: true}, false, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			folios := &mockFolioRepo{
				updateFn: func(_ context.Context, id string, _ model.FolioUpdate) (*model.Folio, error) {
					if tt.repoErr != nil {
						return nil, tt.repoErr
					}
					return &model.Folio{ID: id}, nil
				},
				getByIDFn: func(_ context.Context, id string) (*model.Folio, error) {
					return &model.Folio{ID: id}, nil
				},
			}
			files := &mockFileRepo{
				existsFn: func(context.Context, string) (bool, error) { return tt.exists, nil },
			}
			svc := NewFolioService(folios, files, nil, slog.Default())

			_, err := svc.Update(context.Background(), "fo-1", tt.upd)
			if tt.wantErr == nil && err != nil {
				t.Fatalf("Update() ошибка: %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Fatalf("Update() = %v, ожидается %v", err, tt.wantErr)
			}
		})
	}
}

// --- RecordCache ---

func TestRecordCache_DisabledIsNoop(t *testing.T) {
	cache := NewRecordCache(0, time.Minute)
	if cache != nil {
		t.Fatal("NewRecordCache(0) должен вернуть nil")
	}
	cache.SetFile(cache.Generation(), &model.File{ID: "f"})
	if _, ok := cache.GetFile("f"); ok {
		t.Error("отключённый кэш вернул запись")
	}
	cache.Invalidate()
	if cache.Len() != 0 {
		t.Error("Len() отключённого кэша != 0")
	}
}

func TestRecordCache_TTLExpiration(t *testing.T) {
	cache := NewRecordCache(10, 50*time.Millisecond)
	cache.SetFolio(cache.Generation(), &model.Folio{ID: "fo"})

	if _, ok := cache.GetFolio("fo"); !ok {
		t.Fatal("ожидался cache hit сразу после Set")
	}
	time.Sleep(150 * time.Millisecond)
	if _, ok := cache.GetFolio("fo"); ok {
		t.Error("ожидался cache miss после истечения TTL")
	}
}

func TestRecordCache_StaleGenerationDropped(t *testing.T) {
	cache := NewRecordCache(10, time.Minute)

	gen := cache.Generation()
	cache.Invalidate()
	cache.SetFolio(gen, &model.Folio{ID: "fo"})
	cache.SetFile(gen, &model.File{ID: "f"})

	if cache.Len() != 0 {
		t.Errorf("записи устаревшего поколения попали в кэш: %d", cache.Len())
	}
	cache.SetFolio(cache.Generation(), &model.Folio{ID: "fo"})
	if _, ok := cache.GetFolio("fo"); !ok {
		t.Error("запись текущего поколения должна кэшироваться")
	}
}

// folioStore — общее хранилище фолио для нескольких сервисов.
type folioStore struct {
	rows map[string]model.Folio
}

func (st *folioStore) repo() *mockFolioRepo {
	return &mockFolioRepo{
		getByIDFn: func(_ context.Context, id string) (*model.Folio, error) {
			fo, ok := st.rows[id]
			if !ok {
				return nil, repository.ErrNotFound
			}
			return &fo, nil
		},
		updateFn: func(_ context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
			fo, ok := st.rows[id]
			if !ok {
				return nil, repository.ErrNotFound
			}
			if upd.Description != nil {
				d := *upd.Description
				fo.Description = &d
			}
			st.rows[id] = fo
			return &fo, nil
		},
		deleteFn: func(_ context.Context, id string) error {
			if _, ok := st.rows[id]; !ok {
				return repository.ErrNotFound
			}
			delete(st.rows, id)
			return nil
		},
	}
}

func TestFolioService_UpdateDuringReadNotCached(t *testing.T) {
	store := &folioStore{rows: map[string]model.Folio{
		"fo-1": {ID: "fo-1", Item: "A/1", Description: strPtr("old")},
	}}
	folios := store.repo()
	cache := NewRecordCache(10, time.Minute)
	svc := NewFolioService(folios, &mockFileRepo{}, cache, slog.Default())
	ctx := context.Background()

	// Первое чтение получает снимок, затем до возврата проходит Update.
	readStore := folios.getByIDFn
	interleaved := false
	folios.getByIDFn = func(ctx context.Context, id string) (*model.Folio, error) {
		snapshot, err := readStore(ctx, id)
		if !interleaved {
			interleaved = true
			if _, uerr := svc.Update(ctx, id, model.FolioUpdate{Description: strPtr("new")}); uerr != nil {
				t.Fatalf("Update() ошибка: %v", uerr)
			}
		}
		return snapshot, err
	}

	first, err := svc.Get(ctx, "fo-1")
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if first.Description == nil || *first.Description != "old" {
		t.Fatalf("первое чтение = %v, ожидается снимок old", first.Description)
	}

	got, err := svc.Get(ctx, "fo-1")
	if err != nil {
		t.Fatalf("Get() ошибка: %v", err)
	}
	if got.Description == nil || *got.Description != "new" {
		t.Errorf("Description = %v, ожидается new: устаревший снимок остался в кэше", got.Description)
	}
}

func TestFolioService_DeleteVisibleToOtherInstance(t *testing.T) {
	store := &folioStore{rows: map[string]model.Folio{
		"fo-1": {ID: "fo-1", Item: "A/1"},
	}}
	ctx := context.Background()

	// Каждый экземпляр со своим кэшем в конфигурации по умолчанию (QF_CACHE_SIZE=0).
	a := NewFolioService(store.repo(), &mockFileRepo{}, NewRecordCache(0, time.Minute), slog.Default())
	b := NewFolioService(store.repo(), &mockFileRepo{}, NewRecordCache(0, time.Minute), slog.Default())

	if _, err := a.Get(ctx, "fo-1"); err != nil {
		t.Fatalf("A.Get() ошибка: %v", err)
	}
	if err := b.Delete(ctx, "fo-1"); err != nil {
		t.Fatalf("B.Delete() ошибка: %v", err)
	}
	if _, err := a.Get(ctx, "fo-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("A.Get() после удаления в B = %v, ожидается ErrNotFound", err)
	}
}
