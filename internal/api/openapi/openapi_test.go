package openapi

import (
	"context"
	"slices"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() ошибка: %v", err)
	}
	if doc.Info.Title != "QuickFolio API" {
		t.Errorf("Title = %q", doc.Info.Title)
	}

	ops := Operations(doc)
	for _, want := range []string{
		"GET /api/files", "POST /api/files", "PUT /api/files", "DELETE /api/files",
		"GET /api/folios", "POST /api/folios", "PUT /api/folios", "DELETE /api/folios",
		"GET /health/live", "GET /health/ready",
	} {
		if !slices.Contains(ops, want) {
			t.Errorf("операция %q не описана", want)
		}
	}
}

func TestCreateFolioRequestSchema(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	schema := doc.Components.Schemas["CreateFolioRequest"].Value
	for _, field := range []string{"item", "runningNo", "draftedBy", "letterDate"} {
		if !slices.Contains(schema.Required, field) {
			t.Errorf("поле %s должно быть обязательным", field)
		}
	}
	if err := schema.VisitJSON(map[string]any{"item": "A/1"}); err == nil {
		t.Error("неполное тело прошло проверку схемы")
	}
}
