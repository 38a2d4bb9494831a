// Пакет dto — JSON-представления запросов и ответов QuickFolio API.
// Используется обработчиками и HTTP-клиентом.
package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/bigkaa/quickfolio/internal/domain/model"
)

// DateTimeLayout — формат letterDate во входящих запросах (ISO-8601 / RFC 3339).
const DateTimeLayout = time.RFC3339

// --- Конверт ответа ---

// Envelope — успешный ответ {"data": ...}.
type Envelope[T any] struct {
	Data T `json:"data"`
}

// ErrorResponse — ответ с ошибкой {"error": "...", "details": ...}.
type ErrorResponse struct {
	Error   string          `json:"error"`
	Details json.RawMessage `json:"details,omitempty"`
}

// --- Ответы ---

// FileSummary — папка без вложенных фолио.
type FileSummary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// File — папка с фолио.
type File struct {
	FileSummary
	Folios []FolioSummary `json:"folios"`
}

// FolioSummary — фолио без вложенной папки.
type FolioSummary struct {
	ID          string    `json:"id"`
	Item        string    `json:"item"`
	RunningNo   string    `json:"runningNo"`
	Description *string   `json:"description"`
	DraftedBy   string    `json:"draftedBy"`
	LetterDate  time.Time `json:"letterDate"`
	FileID      *string   `json:"fileId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Folio — фолио с папкой-владельцем (null, если папки нет).
type Folio struct {
	FolioSummary
	File *FileSummary `json:"file"`
}

// --- Запросы ---

// CreateFileRequest — тело POST /api/files.
type CreateFileRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description *string `json:"description,omitempty"`
	CreatedBy   string  `json:"createdBy" validate:"required"`
	// FolioNumber — item существующего фолио, которое кладётся в новую папку
	FolioNumber *string `json:"folioNumber,omitempty" validate:"omitnil,min=1"`
}

// UpdateFileRequest — тело PUT /api/files?id=. Все поля опциональны.
type UpdateFileRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitnil,min=1"`
	Description *string `json:"description,omitempty"`
	CreatedBy   *string `json:"createdBy,omitempty" validate:"omitnil,min=1"`
}

// CreateFolioRequest — тело POST /api/folios.
type CreateFolioRequest struct {
	Item        string  `json:"item" validate:"required"`
	RunningNo   string  `json:"runningNo" validate:"required"`
	Description *string `json:"description,omitempty"`
	DraftedBy   string  `json:"draftedBy" validate:"required"`
	LetterDate  string  `json:"letterDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
	FileID      *string `json:"fileId,omitempty"`
}

// UpdateFolioRequest — тело PUT /api/folios?id=. Все поля опциональны.
// fileId: null отвязывает фолио от папки.
type UpdateFolioRequest struct {
	Item        *string        `json:"item,omitempty" validate:"omitnil,min=1"`
	RunningNo   *string        `json:"runningNo,omitempty" validate:"omitnil,min=1"`
	Description *string        `json:"description,omitempty"`
	DraftedBy   *string        `json:"draftedBy,omitempty" validate:"omitnil,min=1"`
	LetterDate  *string        `json:"letterDate,omitempty" validate:"omitnil,datetime=2006-01-02T15:04:05Z07:00"`
	FileID      NullableString `json:"fileId,omitzero"`
}

// NullableString различает отсутствующее поле, null и строку.
type NullableString struct {
	// Set — поле присутствовало в JSON
	Set bool
	// Value — значение (nil при null)
	Value *string
}

// Null возвращает NullableString, сериализуемую как null.
func Null() NullableString { return NullableString{Set: true} }

// Some возвращает NullableString со значением.
func Some(s string) NullableString { return NullableString{Set: true, Value: &s} }

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Set = true
	if bytes.Equal(data, []byte("null")) {
		n.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	n.Value = &s
	return nil
}

func (n NullableString) MarshalJSON() ([]byte, error) {
	if n.Value == nil {
		return []byte("null"), nil
	}
	return json.Marshal(*n.Value)
}

// IsZero сообщает, что поле не задано (для omitzero).
func (n NullableString) IsZero() bool { return !n.Set }

// --- Преобразования доменных моделей ---

// FromFileSummary преобразует папку без фолио.
func FromFileSummary(f *model.File) FileSummary {
	return FileSummary{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// FromFile преобразует папку вместе с фолио. Folios никогда не nil.
func FromFile(f *model.File) File {
	out := File{FileSummary: FromFileSummary(f), Folios: make([]FolioSummary, 0, len(f.Folios))}
	for _, fo := range f.Folios {
		out.Folios = append(out.Folios, FromFolioSummary(fo))
	}
	return out
}

// FromFolioSummary преобразует фолио без папки.
func FromFolioSummary(fo *model.Folio) FolioSummary {
	return FolioSummary{
		ID:          fo.ID,
		Item:        fo.Item,
		RunningNo:   fo.RunningNo,
		Description: fo.Description,
		DraftedBy:   fo.DraftedBy,
		LetterDate:  fo.LetterDate,
		FileID:      fo.FileID,
		CreatedAt:   fo.CreatedAt,
		UpdatedAt:   fo.UpdatedAt,
	}
}

// FromFolio преобразует фолио вместе с папкой.
func FromFolio(fo *model.Folio) Folio {
	out := Folio{FolioSummary: FromFolioSummary(fo)}
	if fo.File != nil {
		s := FromFileSummary(fo.File)
		out.File = &s
	}
	return out
}

// Model восстанавливает доменную модель папки (вместе с фолио).
func (f File) Model() *model.File {
	m := f.FileSummary.Model()
	m.Folios = make([]*model.Folio, 0, len(f.Folios))
	for _, fo := range f.Folios {
		m.Folios = append(m.Folios, fo.Model())
	}
	return m
}

// Model восстанавливает доменную модель папки без фолио.
func (f FileSummary) Model() *model.File {
	return &model.File{
		ID:          f.ID,
		Name:        f.Name,
		Description: f.Description,
		CreatedBy:   f.CreatedBy,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}

// Model восстанавливает доменную модель фолио (вместе с папкой).
func (fo Folio) Model() *model.Folio {
	m := fo.FolioSummary.Model()
	if fo.File != nil {
		m.File = fo.File.Model()
	}
	return m
}

// Model восстанавливает доменную модель фолио без папки.
func (fo FolioSummary) Model() *model.Folio {
	return &model.Folio{
		ID:          fo.ID,
		Item:        fo.Item,
		RunningNo:   fo.RunningNo,
		Description: fo.Description,
		DraftedBy:   fo.DraftedBy,
		LetterDate:  fo.LetterDate,
		FileID:      fo.FileID,
		CreatedAt:   fo.CreatedAt,
		UpdatedAt:   fo.UpdatedAt,
	}
}
