// files.go — обработчик /api/files.
// GET — список или одна папка, POST — создание, PUT — частичное обновление, DELETE — удаление.
package handlers

import (
	"net/http"

	"github.com/bigkaa/quickfolio/internal/api/dto"
	apierrors "github.com/bigkaa/quickfolio/internal/api/errors"
	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/service"
)

// Files — единая точка входа /api/files.
func (h *APIHandler) Files(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := queryParam(r, "id"); id != nil {
			h.getFile(w, r, *id)
			return
		}
		h.listFiles(w, r)
	case http.MethodPost:
		h.createFile(w, r)
	case http.MethodPut:
		h.updateFile(w, r)
	case http.MethodDelete:
		h.deleteFile(w, r)
	default:
		apierrors.MethodNotAllowed(w)
	}
}

// listFiles — GET /api/files[?folioId=].
func (h *APIHandler) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := h.files.List(r.Context(), queryParam(r, "folioId"))
	if err != nil {
		h.writeServiceError(w, r, err, msgFileNotFound)
		return
	}

	items := make([]dto.File, 0, len(files))
	for _, f := range files {
		items = append(items, dto.FromFile(f))
	}
	writeJSON(w, http.StatusOK, dto.Envelope[[]dto.File]{Data: items})
}

// getFile — GET /api/files?id=.
func (h *APIHandler) getFile(w http.ResponseWriter, r *http.Request, id string) {
	f, err := h.files.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, msgFileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.Envelope[dto.File]{Data: dto.FromFile(f)})
}

// createFile — POST /api/files.
func (h *APIHandler) createFile(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	f, err := h.files.Create(r.Context(), service.CreateFileInput{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
		FolioNumber: req.FolioNumber,
	})
	if err != nil {
		h.writeServiceError(w, r, err, msgFileNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Envelope[dto.File]{Data: dto.FromFile(f)})
}

// updateFile — PUT /api/files?id=.
func (h *APIHandler) updateFile(w http.ResponseWriter, r *http.Request) {
	id := queryParam(r, "id")
	if id == nil {
		apierrors.BadRequest(w, msgFileIDRequired)
		return
	}

	var req dto.UpdateFileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	f, err := h.files.Update(r.Context(), *id, model.FileUpdate{
		Name:        req.Name,
		Description: req.Description,
		CreatedBy:   req.CreatedBy,
	})
	if err != nil {
		h.writeServiceError(w, r, err, msgFileNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.Envelope[dto.File]{Data: dto.FromFile(f)})
}

// deleteFile — DELETE /api/files?id=.
func (h *APIHandler) deleteFile(w http.ResponseWriter, r *http.Request) {
	id := queryParam(r, "id")
	if id == nil {
		apierrors.BadRequest(w, msgFileIDRequired)
		return
	}

	if err := h.files.Delete(r.Context(), *id); err != nil {
		h.writeServiceError(w, r, err, msgFileNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
