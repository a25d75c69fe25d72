package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/quenault/pathmine/internal/pathquery"
)

func TestSave_StoresQuery(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	saved, created, err := c.Save(ctx, "gene symbols", []byte(minimalQueryXML))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if !created {
		t.Error("created = false, want true for a first save")
	}
	if saved.ID != "id-1" {
		t.Errorf("ID = %q, want %q", saved.ID, "id-1")
	}
	if saved.Name != "gene symbols" {
		t.Errorf("Name = %q, want %q", saved.Name, "gene symbols")
	}
	if len(saved.Fingerprint) != 64 {
		t.Errorf("Fingerprint = %q, want 64 hex chars", saved.Fingerprint)
	}
	if saved.Query == nil || saved.Query.From != "Gene" {
		t.Errorf("Query not populated: %+v", saved.Query)
	}
}

func TestSave_IdempotentByContent(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	first, created, err := c.Save(ctx, "original", []byte(minimalQueryXML))
	if err != nil {
		t.Fatalf("first Save() failed: %v", err)
	}
	if !created {
		t.Error("first save: created = false, want true")
	}

	// Same query, different name and whitespace: still the same row.
	again, createdAgain, err := c.Save(ctx, "renamed", []byte("<query  view=\"Gene.symbol Gene.length\"  />"))
	if err != nil {
		t.Fatalf("second Save() failed: %v", err)
	}

	if createdAgain {
		t.Error("second save: created = true, want false")
	}
	if again.ID != first.ID {
		t.Errorf("second save ID = %q, want %q", again.ID, first.ID)
	}
	if again.Name != "original" {
		t.Errorf("second save Name = %q, want the first row's name", again.Name)
	}
	if again.Fingerprint != first.Fingerprint {
		t.Errorf("fingerprints differ: %q vs %q", again.Fingerprint, first.Fingerprint)
	}

	all, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("List() returned %d rows, want 1", len(all))
	}
}

func TestSave_DistinctQueriesGetDistinctRows(t *testing.T) {
	c := testCatalog(t)
	ctx := context.Background()

	first, _, err := c.Save(ctx, "a", []byte(minimalQueryXML))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}
	second, _, err := c.Save(ctx, "b", []byte(constraintQueryXML))
	if err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("distinct queries share an ID")
	}
	if first.Fingerprint == second.Fingerprint {
		t.Error("distinct queries share a fingerprint")
	}
}

func TestSave_MalformedMarkup(t *testing.T) {
	c := testCatalog(t)

	_, _, err := c.Save(context.Background(), "broken", []byte("<query view="))
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}

	var parseErr *pathquery.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error %v is not a *pathquery.ParseError", err)
	}
	if parseErr.Code != pathquery.CodeMalformed {
		t.Errorf("Code = %q, want %q", parseErr.Code, pathquery.CodeMalformed)
	}
}

func TestSave_MissingView(t *testing.T) {
	c := testCatalog(t)

	_, _, err := c.Save(context.Background(), "empty", []byte(`<query model="genomic"/>`))
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}

	var parseErr *pathquery.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error %v is not a *pathquery.ParseError", err)
	}
	if parseErr.Code != pathquery.CodeMissingView {
		t.Errorf("Code = %q, want %q", parseErr.Code, pathquery.CodeMissingView)
	}
}
