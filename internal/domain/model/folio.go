package model

import "time"

// Folio — запись о письме/документе.
// Хранится в таблице folios, file_id ссылается на files.id (ON DELETE SET NULL).
type Folio struct {
	// ID — UUID записи
	ID string
	// Item — номер фолио, например "AGENCY/DEPT/VOL/0673"
	Item string
	// RunningNo — порядковый номер в серии
	RunningNo string
	// Description — описание (опционально)
	Description *string
	// DraftedBy — составитель письма
	DraftedBy string
	// LetterDate — дата, указанная на письме (не совпадает с CreatedAt)
	LetterDate time.Time
	// FileID — UUID папки-владельца (nil — фолио без папки)
	FileID *string
	// CreatedAt — время создания записи
	CreatedAt time.Time
	// UpdatedAt — время последнего обновления
	UpdatedAt time.Time

	// File — папка-владелец (заполняется при чтении одной записи)
	File *File
}

// FolioUpdate — частичное обновление фолио.
type FolioUpdate struct {
	Item        *string
	RunningNo   *string
	Description *string
	DraftedBy   *string
	LetterDate  *time.Time
	FileID      *string
	// ClearFileID — отвязать фолио от папки (fileId: null)
	ClearFileID bool
}
