// folios.go — обработчик /api/folios.
// GET — список или одно фолио, POST — создание, PUT — частичное обновление, DELETE — удаление.
package handlers

import (
	"net/http"
	"time"

	"github.com/bigkaa/quickfolio/internal/api/dto"
	apierrors "github.com/bigkaa/quickfolio/internal/api/errors"
	"github.com/bigkaa/quickfolio/internal/domain/model"
	"github.com/bigkaa/quickfolio/internal/service"
)

// Folios — единая точка входа /api/folios.
func (h *APIHandler) Folios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if id := queryParam(r, "id"); id != nil {
			h.getFolio(w, r, *id)
			return
		}
		h.listFolios(w, r)
	case http.MethodPost:
		h.createFolio(w, r)
	case http.MethodPut:
		h.updateFolio(w, r)
	case http.MethodDelete:
		h.deleteFolio(w, r)
	default:
		apierrors.MethodNotAllowed(w)
	}
}

// listFolios — GET /api/folios[?fileId=].
func (h *APIHandler) listFolios(w http.ResponseWriter, r *http.Request) {
	folios, err := h.folios.List(r.Context(), queryParam(r, "fileId"))
	if err != nil {
		h.writeServiceError(w, r, err, msgFolioNotFound)
		return
	}

	items := make([]dto.Folio, 0, len(folios))
	for _, fo := range folios {
		items = append(items, dto.FromFolio(fo))
	}
	writeJSON(w, http.StatusOK, dto.Envelope[[]dto.Folio]{Data: items})
}

// getFolio — GET /api/folios?id=.
func (h *APIHandler) getFolio(w http.ResponseWriter, r *http.Request, id string) {
	fo, err := h.folios.Get(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err, msgFolioNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.Envelope[dto.Folio]{Data: dto.FromFolio(fo)})
}

// createFolio — POST /api/folios.
func (h *APIHandler) createFolio(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateFolioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	// Формат уже проверен валидатором
	letterDate, _ := time.Parse(dto.DateTimeLayout, req.LetterDate)

	fo, err := h.folios.Create(r.Context(), service.CreateFolioInput{
		Item:        req.Item,
		RunningNo:   req.RunningNo,
		Description: req.Description,
		DraftedBy:   req.DraftedBy,
		LetterDate:  letterDate,
		FileID:      req.FileID,
	})
	if err != nil {
		h.writeServiceError(w, r, err, msgFolioNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, dto.Envelope[dto.Folio]{Data: dto.FromFolio(fo)})
}

// updateFolio — PUT /api/folios?id=.
func (h *APIHandler) updateFolio(w http.ResponseWriter, r *http.Request) {
	id := queryParam(r, "id")
	if id == nil {
		apierrors.BadRequest(w, msgFolioIDRequired)
		return
	}

	var req dto.UpdateFolioRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	upd := model.FolioUpdate{
		Item:        req.Item,
		RunningNo:   req.RunningNo,
		Description: req.Description,
		DraftedBy:   req.DraftedBy,
	}
	if req.LetterDate != nil {
		t, _ := time.Parse(dto.DateTimeLayout, *req.LetterDate)
		upd.LetterDate = &t
	}
	if req.FileID.Set {
		if req.FileID.Value == nil {
			upd.ClearFileID = true
		} else {
			upd.FileID = req.FileID.Value
		}
	}

	fo, err := h.folios.Update(r.Context(), *id, upd)
	if err != nil {
		h.writeServiceError(w, r, err, msgFolioNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.Envelope[dto.Folio]{Data: dto.FromFolio(fo)})
}

// deleteFolio — DELETE /api/folios?id=.
func (h *APIHandler) deleteFolio(w http.ResponseWriter, r *http.Request) {
	id := queryParam(r, "id")
	if id == nil {
		apierrors.BadRequest(w, msgFolioIDRequired)
		return
	}

	if err := h.folios.Delete(r.Context(), *id); err != nil {
		h.writeServiceError(w, r, err, msgFolioNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
