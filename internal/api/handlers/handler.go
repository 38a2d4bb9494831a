// handler.go — основной обработчик API записей.
// Один endpoint на сущность (/api/files, /api/folios), диспетчеризация по HTTP-методу.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/bigkaa/quickfolio/internal/api/errors"
	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/service"
	"github.com/bigkaa/quickfolio/internal/validation"
)

// Сообщения об ошибках, видимые клиенту.
const (
	msgFileNotFound    = "File not found"
	msgFolioNotFound   = "Folio not found"
	msgFileIDRequired  = "File ID is required"
	msgFolioIDRequired = "Folio ID is required"
)

// FileService — операции над папками, нужные обработчикам.
type FileService interface {
	List(ctx context.Context, folioID *string) ([]*model.File, error)
	Get(ctx context.Context, id string) (*model.File, error)
	Create(ctx context.Context, in service.CreateFileInput) (*model.File, error)
	Update(ctx context.Context, id string, upd model.FileUpdate) (*model.File, error)
	Delete(ctx context.Context, id string) error
}

// FolioService — операции над фолио, нужные обработчикам.
type FolioService interface {
	List(ctx context.Context, fileID *string) ([]*model.Folio, error)
	Get(ctx context.Context, id string) (*model.Folio, error)
	Create(ctx context.Context, in service.CreateFolioInput) (*model.Folio, error)
	Update(ctx context.Context, id string, upd model.FolioUpdate) (*model.Folio, error)
	Delete(ctx context.Context, id string) error
}

// APIHandler — обработчик /api/files и /api/folios.
type APIHandler struct {
	files     FileService
	folios    FolioService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAPIHandler создаёт обработчик API записей.
func NewAPIHandler(files FileService, folios FolioService, logger *slog.Logger) *APIHandler {
	return &APIHandler{
		files:     files,
		folios:    folios,
		validator: validation.New(),
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// decodeAndValidate разбирает JSON-тело в dst и проверяет его.
// При ошибке пишет 400 и возвращает false.
func (h *APIHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationFailed(w, validation.Body(err))
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			apierrors.ValidationFailed(w, verrs)
			return false
		}
		h.logger.Error("Ошибка валидатора", slog.String("error", err.Error()))
		apierrors.InternalError(w)
		return false
	}
	return true
}

// writeServiceError отображает ошибку сервиса в HTTP-ответ.
// notFound — сообщение для service.ErrNotFound текущей сущности.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, notFound)
	case errors.Is(err, service.ErrFileNotFound):
		apierrors.NotFound(w, msgFileNotFound)
	case errors.Is(err, service.ErrFolioNotFound):
		apierrors.NotFound(w, msgFolioNotFound)
	default:
		h.logger.Error("Ошибка обработки запроса",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		apierrors.InternalError(w)
	}
}

// queryParam возвращает непустой query-параметр или nil.
func queryParam(r *http.Request, name string) *string {
	v := r.URL.Query().Get(name)
	if v == "" {
		return nil
	}
	return &v
}
