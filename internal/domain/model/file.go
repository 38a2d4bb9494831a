// Пакет model — доменные модели QuickFolio.
package model

import "time"

// File — папка, объединяющая фолио.
// Хранится в таблице files.
type File struct {
	// ID — UUID записи (генерируется при создании)
	ID string
	// Name — название папки
	Name string
	// Description — описание (опционально)
	Description *string
	// CreatedBy — имя создателя
	CreatedBy string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time

	// Folios — фолио, принадлежащие папке (заполняется при чтении)
	Folios []*Folio
}

// FolioItems возвращает номера (item) всех фолио папки в исходном порядке.
func (f *File) FolioItems() []string {
	items := make([]string, 0, len(f.Folios))
	for _, fo := range f.Folios {
		items = append(items, fo.Item)
	}
	return items
}

// FileUpdate — частичное обновление папки.
// nil-поле означает «не изменять».
type FileUpdate struct {
	Name        *string
	Description *string
	CreatedBy   *string
}
