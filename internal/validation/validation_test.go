package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Name       string  `json:"name" validate:"required"`
	Note       *string `json:"note" validate:"omitnil,min=1"`
	LetterDate string  `json:"letterDate" validate:"required,datetime=2006-01-02T15:04:05Z07:00"`
}

func ptr(s string) *string { return &s }

func TestStruct_Valid(t *testing.T) {
	v := New()
	err := v.Struct(sample{Name: "A", LetterDate: "2024-01-10T00:00:00.000Z"})
	if err != nil {
		t.Fatalf("Struct() = %v, ожидается nil", err)
	}
}

func TestStruct_FieldErrors(t *testing.T) {
	v := New()
	err := v.Struct(sample{Note: ptr(""), LetterDate: "10/01/2024"})

	var verrs Errors
	if !errors.As(err, &verrs) {
		t.Fatalf("Struct() = %T, ожидается Errors", err)
	}

	byField := map[string]FieldError{}
	for _, fe := range verrs {
		byField[fe.Field] = fe
	}

	if fe, ok := byField["name"]; !ok || fe.Rule != "required" {
		t.Errorf("ошибка name = %+v", fe)
	}
	if fe, ok := byField["note"]; !ok || fe.Rule != "min" {
		t.Errorf("ошибка note = %+v (пустая строка должна отклоняться)", fe)
	}
	if fe, ok := byField["letterDate"]; !ok || fe.Rule != "datetime" {
		t.Errorf("ошибка letterDate = %+v", fe)
	}
	if !strings.Contains(err.Error(), "name is required") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestStruct_OmitNilSkipsAbsent(t *testing.T) {
	v := New()
	if err := v.Struct(sample{Name: "A", LetterDate: "2024-01-10T00:00:00Z"}); err != nil {
		t.Errorf("отсутствующее опциональное поле не должно проверяться: %v", err)
	}
}

func TestBody(t *testing.T) {
	errs := Body(errors.New("unexpected EOF"))
	if len(errs) != 1 || errs[0].Field != "body" || errs[0].Rule != "json" {
		t.Errorf("Body() = %+v", errs)
	}
}
