package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/service"
)

// --- Моки сервисов ---

type mockFileService struct {
	listFn   func(ctx context.Context, folioID *string) ([]*model.File, error)
	getFn    func(ctx context.Context, id string) (*model.File, error)
	createFn func(ctx context.Context, in service.CreateFileInput) (*model.File, error)
	updateFn func(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockFileService) List(ctx context.Context, folioID *string) ([]*model.File, error) {
	if m.listFn != nil {
		return m.listFn(ctx, folioID)
	}
	return []*model.File{}, nil
}

func (m *mockFileService) Get(ctx context.Context, id string) (*model.File, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockFileService) Create(ctx context.Context, in service.CreateFileInput) (*model.File, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.File{ID: "new-file", Name: in.Name, CreatedBy: in.CreatedBy}, nil
}

func (m *mockFileService) Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return nil, service.ErrNotFound
}

func (m *mockFileService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return service.ErrNotFound
}

type mockFolioService struct {
	listFn   func(ctx context.Context, fileID *string) ([]*model.Folio, error)
	getFn    func(ctx context.Context, id string) (*model.Folio, error)
	createFn func(ctx context.Context, in service.CreateFolioInput) (*model.Folio, error)
	updateFn func(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockFolioService) List(ctx context.Context, fileID *string) ([]*model.Folio, error) {
	if m.listFn != nil {
		return m.listFn(ctx, fileID)
	}
	return []*model.Folio{}, nil
}

func (m *mockFolioService) Get(ctx context.Context, id string) (*model.Folio, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, service.ErrNotFound
}

func (m *mockFolioService) Create(ctx context.Context, in service.CreateFolioInput) (*model.Folio, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Folio{ID: "new-folio", Item: in.Item, LetterDate: in.LetterDate}, nil
}

func (m *mockFolioService) Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, upd)
	}
	return nil, service.ErrNotFound
}

func (m *mockFolioService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return service.ErrNotFound
}

// --- Вспомогательные функции ---

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestHandler(files *mockFileService, folios *mockFolioService) *APIHandler {
	if files == nil {
		files = &mockFileService{}
	}
	if folios == nil {
		folios = &mockFolioService{}
	}
	return NewAPIHandler(files, folios, testLogger())
}

func do(t *testing.T, h http.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

type errorBody struct {
	Error   string `json:"error"`
	Details []struct {
		Field   string `json:"field"`
		Rule    string `json:"rule"`
		Message string `json:"message"`
	} `json:"details"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("тело ответа не JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func strPtr(s string) *string { return &s }

// --- /api/files ---

func TestFiles_CreateMissingName(t *testing.T) {
	called := false
	h := newTestHandler(&mockFileService{
		createFn: func(context.Context, service.CreateFileInput) (*model.File, error) {
			called = true
			return nil, nil
		},
	}, nil)

	rec := do(t, h.Files, http.MethodPost, "/api/files", `{"createdBy":"Admin"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "Validation failed" {
		t.Errorf("error = %q", body.Error)
	}
	found := false
	for _, d := range body.Details {
		if d.Field == "name" {
			found = true
		}
	}
	if !found {
		t.Errorf("details не упоминают name: %+v", body.Details)
	}
	if called {
		t.Error("сервис не должен вызываться при ошибке валидации")
	}
}

func TestFiles_CreateInvalidJSON(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Files, http.MethodPost, "/api/files", `{"name":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
	body := decodeError(t, rec)
	if body.Error != "Validation failed" || len(body.Details) != 1 || body.Details[0].Field != "body" {
		t.Errorf("тело = %+v", body)
	}
}

func TestFiles_CreateWithFolioNumber(t *testing.T) {
	h := newTestHandler(&mockFileService{
		createFn: func(_ context.Context, in service.CreateFileInput) (*model.File, error) {
			if in.FolioNumber == nil || *in.FolioNumber != "A/1" {
				t.Errorf("FolioNumber = %v", in.FolioNumber)
			}
			return &model.File{
				ID: "f-1", Name: in.Name, CreatedBy: in.CreatedBy,
				Folios: []*model.Folio{{ID: "fo-1", Item: "A/1"}},
			}, nil
		},
	}, nil)

	rec := do(t, h.Files, http.MethodPost, "/api/files",
		`{"name":"Letters","createdBy":"Admin","folioNumber":"A/1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, ожидается 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			ID     string `json:"id"`
			Folios []struct {
				Item string `json:"item"`
			} `json:"folios"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.ID != "f-1" || len(resp.Data.Folios) != 1 || resp.Data.Folios[0].Item != "A/1" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestFiles_CreateUnknownFolioNumber(t *testing.T) {
	h := newTestHandler(&mockFileService{
		createFn: func(context.Context, service.CreateFileInput) (*model.File, error) {
			return nil, service.ErrFolioNotFound
		},
	}, nil)

	rec := do(t, h.Files, http.MethodPost, "/api/files",
		`{"name":"Letters","createdBy":"Admin","folioNumber":"missing"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидается 404", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Folio not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestFiles_ListEmptyIsArray(t *testing.T) {
	h := newTestHandler(&mockFileService{
		listFn: func(context.Context, *string) ([]*model.File, error) { return nil, nil },
	}, nil)

	rec := do(t, h.Files, http.MethodGet, "/api/files", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"data":[]}` {
		t.Errorf("тело = %s, ожидается {\"data\":[]}", got)
	}
}

func TestFiles_ListByFolioID(t *testing.T) {
	var gotFilter *string
	h := newTestHandler(&mockFileService{
		listFn: func(_ context.Context, folioID *string) ([]*model.File, error) {
			gotFilter = folioID
			return []*model.File{{ID: "f-1", Name: "x"}}, nil
		},
	}, nil)

	rec := do(t, h.Files, http.MethodGet, "/api/files?folioId=fo-9", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	if gotFilter == nil || *gotFilter != "fo-9" {
		t.Errorf("folioId = %v, ожидается fo-9", gotFilter)
	}
	if !strings.Contains(rec.Body.String(), `"folios":[]`) {
		t.Errorf("папка без фолио должна содержать пустой массив: %s", rec.Body.String())
	}
}

func TestFiles_GetNotFound(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Files, http.MethodGet, "/api/files?id=missing", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидается 404", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "File not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestFiles_IDRequired(t *testing.T) {
	h := newTestHandler(nil, nil)
	for _, method := range []string{http.MethodPut, http.MethodDelete} {
		rec := do(t, h.Files, method, "/api/files", `{"name":"x"}`)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: статус = %d, ожидается 400", method, rec.Code)
			continue
		}
		if body := decodeError(t, rec); body.Error != "File ID is required" {
			t.Errorf("%s: error = %q", method, body.Error)
		}
	}
}

func TestFiles_UpdatePartial(t *testing.T) {
	h := newTestHandler(&mockFileService{
		updateFn: func(_ context.Context, id string, upd model.FileUpdate) (*model.File, error) {
			if upd.Name == nil || *upd.Name != "Renamed" || upd.CreatedBy != nil || upd.Description != nil {
				t.Errorf("upd = %+v", upd)
			}
			return &model.File{ID: id, Name: *upd.Name}, nil
		},
	}, nil)

	rec := do(t, h.Files, http.MethodPut, "/api/files?id=f-1", `{"name":"Renamed"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200 (%s)", rec.Code, rec.Body.String())
	}

	// Переданное пустое поле нарушает правила создания
	rec = do(t, h.Files, http.MethodPut, "/api/files?id=f-1", `{"name":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("пустое name: статус = %d, ожидается 400", rec.Code)
	}
}

func TestFiles_Delete(t *testing.T) {
	h := newTestHandler(&mockFileService{
		deleteFn: func(context.Context, string) error { return nil },
	}, nil)

	rec := do(t, h.Files, http.MethodDelete, "/api/files?id=f-1", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("статус = %d, ожидается 204", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("тело ответа 204 не пустое: %q", rec.Body.String())
	}
}

func TestFiles_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Files, http.MethodPatch, "/api/files", "")

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("статус = %d, ожидается 405", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Method not allowed" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestFiles_InternalErrorHidesDetails(t *testing.T) {
	h := newTestHandler(&mockFileService{
		listFn: func(context.Context, *string) ([]*model.File, error) {
			return nil, errors.New("pq: connection refused to db-secret-host")
		},
	}, nil)

	rec := do(t, h.Files, http.MethodGet, "/api/files", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("статус = %d, ожидается 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "db-secret-host") {
		t.Error("внутренняя ошибка раскрыта клиенту")
	}
	if body := decodeError(t, rec); body.Error != "Internal server error" {
		t.Errorf("error = %q", body.Error)
	}
}

// --- /api/folios ---

func TestFolios_UpdateNonexistent(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Folios, http.MethodPut, "/api/folios?id=00000000-0000-0000-0000-000000000000",
		`{"draftedBy":"Alice"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидается 404", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"error":"Folio not found"}` {
		t.Errorf("тело = %s", got)
	}
}

func TestFolios_Create(t *testing.T) {
	h := newTestHandler(nil, &mockFolioService{
		createFn: func(_ context.Context, in service.CreateFolioInput) (*model.Folio, error) {
			want := time.Date(2024, 1, 10, 8, 30, 0, 0, time.UTC)
			if !in.LetterDate.Equal(want) {
				t.Errorf("LetterDate = %v, ожидается %v", in.LetterDate, want)
			}
			return &model.Folio{
				ID: "fo-1", Item: in.Item, RunningNo: in.RunningNo, DraftedBy: in.DraftedBy,
				LetterDate: in.LetterDate, FileID: in.FileID,
				File: &model.File{ID: *in.FileID, Name: "Letters"},
			}, nil
		},
	})

	rec := do(t, h.Folios, http.MethodPost, "/api/folios",
		`{"item":"A/1","runningNo":"1","draftedBy":"Bob","letterDate":"2024-01-10T08:30:00.000Z","fileId":"f-1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("статус = %d, ожидается 201 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data struct {
			Item string `json:"item"`
			File *struct {
				Name string `json:"name"`
			} `json:"file"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Data.Item != "A/1" || resp.Data.File == nil || resp.Data.File.Name != "Letters" {
		t.Errorf("data = %+v", resp.Data)
	}
}

func TestFolios_CreateValidation(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Folios, http.MethodPost, "/api/folios",
		`{"item":"","runningNo":"1","draftedBy":"Bob","letterDate":"10/01/2024"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
	fields := map[string]string{}
	for _, d := range decodeError(t, rec).Details {
		fields[d.Field] = d.Rule
	}
	if fields["item"] != "required" {
		t.Errorf("item: правило = %q", fields["item"])
	}
	if fields["letterDate"] != "datetime" {
		t.Errorf("letterDate: правило = %q", fields["letterDate"])
	}
}

func TestFolios_CreateUnknownFile(t *testing.T) {
	h := newTestHandler(nil, &mockFolioService{
		createFn: func(context.Context, service.CreateFolioInput) (*model.Folio, error) {
			return nil, service.ErrFileNotFound
		},
	})

	rec := do(t, h.Folios, http.MethodPost, "/api/folios",
		`{"item":"A/1","runningNo":"1","draftedBy":"Bob","letterDate":"2024-01-10T00:00:00Z","fileId":"nope"}`)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("статус = %d, ожидается 404", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "File not found" {
		t.Errorf("error = %q", body.Error)
	}
}

func TestFolios_UpdateFileID(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantClear bool
		wantID    *string
	}{
		{"поле отсутствует", `{"draftedBy":"Alice"}`, false, nil},
		{"null отвязывает", `{"fileId":null}`, true, nil},
		{"новая папка", `{"fileId":"f-2"}`, false, strPtr("f-2")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(nil, &mockFolioService{
				updateFn: func(_ context.Context, id string, upd model.FolioUpdate) (*model.Folio, error) {
					if upd.ClearFileID != tt.wantClear {
						t.Errorf("ClearFileID = %v, ожидается %v", upd.ClearFileID, tt.wantClear)
					}
					if (upd.FileID == nil) != (tt.wantID == nil) ||
						(upd.FileID != nil && *upd.FileID != *tt.wantID) {
						t.Errorf("FileID = %v, ожидается %v", upd.FileID, tt.wantID)
					}
					return &model.Folio{ID: id}, nil
				},
			})
			rec := do(t, h.Folios, http.MethodPut, "/api/folios?id=fo-1", tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("статус = %d (%s)", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestFolios_GetIncludesFile(t *testing.T) {
	h := newTestHandler(nil, &mockFolioService{
		getFn: func(_ context.Context, id string) (*model.Folio, error) {
			return &model.Folio{ID: id, Item: "B/2"}, nil
		},
	})

	rec := do(t, h.Folios, http.MethodGet, "/api/folios?id=fo-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"file":null`) {
		t.Errorf("фолио без папки должно содержать file: null: %s", rec.Body.String())
	}
}

func TestFolios_IDRequired(t *testing.T) {
	h := newTestHandler(nil, nil)
	rec := do(t, h.Folios, http.MethodDelete, "/api/folios", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("статус = %d, ожидается 400", rec.Code)
	}
	if body := decodeError(t, rec); body.Error != "Folio ID is required" {
		t.Errorf("error = %q", body.Error)
	}
}

// --- health ---

type stubChecker struct{ status string }

func (s stubChecker) CheckReady() (string, string) { return s.status, "" }

func TestHealthReady(t *testing.T) {
	tests := []struct {
		checker ReadinessChecker
		want    int
	}{
		{stubChecker{"ok"}, http.StatusOK},
		{stubChecker{"degraded"}, http.StatusOK},
		{stubChecker{"fail"}, http.StatusServiceUnavailable},
		{nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		h := NewHealthHandler(tt.checker)
		rec := do(t, h.HealthReady, http.MethodGet, "/health/ready", "")
		if rec.Code != tt.want {
			t.Errorf("checker %v: статус = %d, ожидается %d", tt.checker, rec.Code, tt.want)
		}
	}
}

func TestHealthLive(t *testing.T) {
	rec := do(t, NewHealthHandler(nil).HealthLive, http.MethodGet, "/health/live", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Errorf("live = %d %s", rec.Code, rec.Body.String())
	}
}

type stubDeps map[string]bool

func (s stubDeps) Health() map[string]bool { return s }

func TestHealthReady_Dependencies(t *testing.T) {
	h := NewHealthHandler(stubChecker{"ok"})
	h.SetDependencies(stubDeps{"postgresql": true, "jwks": false})

	rec := do(t, h.HealthReady, http.MethodGet, "/health/ready", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("статус = %d, ожидается 200", rec.Code)
	}

	var body struct {
		Status string `json:"status"`
		Checks map[string]struct {
			Status string `json:"status"`
		} `json:"checks"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("тело не JSON: %v", err)
	}
	if body.Status != "degraded" {
		t.Errorf("status = %q, ожидается degraded", body.Status)
	}
	if body.Checks["jwks"].Status != "degraded" || body.Checks["postgresql"].Status != "ok" {
		t.Errorf("checks = %+v", body.Checks)
	}
}
