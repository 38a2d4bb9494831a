// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — запрашиваемая запись не найдена.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrFileNotFound — указанная папка (fileId) не существует.
	ErrFileNotFound = errors.New("папка не найдена")
	// ErrFolioNotFound — фолио с указанным номером (folioNumber) не существует.
	ErrFolioNotFound = errors.New("фолио не найдено")
)
