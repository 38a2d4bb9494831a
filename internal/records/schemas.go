// schemas.go — схемы сущностей QuickFolio.
package records

import (
	"strings"
	"time"

	"github.com/bigkaa/quickfolio/internal/domain/model"
)

// FolioSchema — схема фолио.
func FolioSchema() Schema[*model.Folio] {
	item := func(f *model.Folio) []string { return []string{f.Item} }
	runningNo := func(f *model.Folio) []string { return []string{f.RunningNo} }
	description := func(f *model.Folio) []string { return optional(f.Description) }
	draftedBy := func(f *model.Folio) []string { return []string{f.DraftedBy} }

	return Schema[*model.Folio]{
		Entity: "folios",
		ID:     func(f *model.Folio) string { return f.ID },
		Search: []TextAccessor[*model.Folio]{item, runningNo, description, draftedBy},
		Fields: map[string]TextAccessor[*model.Folio]{
			"folioNumber": item,
			"runningNo":   runningNo,
			"description": description,
			"draftedBy":   draftedBy,
		},
		Dates: map[string]DateAccessor[*model.Folio]{
			"letterDate": func(f *model.Folio) (time.Time, bool) { return present(f.LetterDate) },
			"createdAt":  func(f *model.Folio) (time.Time, bool) { return present(f.CreatedAt) },
		},
		Columns: []Column[*model.Folio]{
			{Key: "item", Label: "Folio Number", Kind: KindString,
				Value: func(f *model.Folio) Cell { return StringCell(f.Item) }},
			{Key: "runningNo", Label: "Running No", Kind: KindString,
				Value: func(f *model.Folio) Cell { return StringCell(f.RunningNo) }},
			{Key: "description", Label: "Description", Kind: KindString,
				Value: func(f *model.Folio) Cell { return OptionalStringCell(f.Description) }},
			{Key: "draftedBy", Label: "Drafted By", Kind: KindString,
				Value: func(f *model.Folio) Cell { return StringCell(f.DraftedBy) }},
			{Key: "letterDate", Label: "Letter Date", Kind: KindDate,
				Value: func(f *model.Folio) Cell { return DateCell(f.LetterDate) }},
			{Key: "createdAt", Label: "Created", Kind: KindDate,
				Value: func(f *model.Folio) Cell { return DateCell(f.CreatedAt) }},
		},
	}
}

// FileSchema — схема папки. Поле folioNumber и колонка Folio строятся по номерам фолио папки.
func FileSchema() Schema[*model.File] {
	name := func(f *model.File) []string { return []string{f.Name} }
	description := func(f *model.File) []string { return optional(f.Description) }
	items := func(f *model.File) []string { return f.FolioItems() }

	return Schema[*model.File]{
		Entity: "files",
		ID:     func(f *model.File) string { return f.ID },
		Search: []TextAccessor[*model.File]{name, description, items},
		Fields: map[string]TextAccessor[*model.File]{
			"name":        name,
			"description": description,
			"folioNumber": items,
		},
		Dates: map[string]DateAccessor[*model.File]{
			"createdAt": func(f *model.File) (time.Time, bool) { return present(f.CreatedAt) },
		},
		Columns: []Column[*model.File]{
			{Key: "name", Label: "File Name", Kind: KindString,
				Value: func(f *model.File) Cell { return StringCell(f.Name) }},
			{Key: "description", Label: "Description", Kind: KindString,
				Value: func(f *model.File) Cell { return OptionalStringCell(f.Description) }},
			{Key: "folio", Label: "Folio", Kind: KindString,
				Value: func(f *model.File) Cell {
					if len(f.Folios) == 0 {
						return NullCell()
					}
					return StringCell(strings.Join(f.FolioItems(), "; "))
				}},
			{Key: "folioCount", Label: "Folios", Kind: KindNumber,
				Value:    func(f *model.File) Cell { return NumberCell(float64(len(f.Folios))) },
				SortOnly: true},
			{Key: "createdAt", Label: "Created", Kind: KindDate,
				Value: func(f *model.File) Cell { return DateCell(f.CreatedAt) }},
		},
	}
}

func optional(s *string) []string {
	if s == nil {
		return nil
	}
	return []string{*s}
}

func present(t time.Time) (time.Time, bool) {
	return t, !t.IsZero()
}
