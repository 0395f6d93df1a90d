package bulk

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"crisiswatch/internal/db"
	"crisiswatch/internal/models"
	"crisiswatch/internal/validation"
)

// fakeStore is an in-memory KeywordStore keyed by (text, categoryID).
type fakeStore struct {
	keywords map[string]*models.Keyword
}

func newFakeStore() *fakeStore {
	return &fakeStore{keywords: make(map[string]*models.Keyword)}
}

func storeKey(text string, categoryID *uuid.UUID) string {
	key := validation.NormalizeKeyword(text) + "|"
	if categoryID != nil {
		key += categoryID.String()
	}
	return key
}

func (f *fakeStore) GetKeywordByText(_ context.Context, text string, categoryID *uuid.UUID) (*models.Keyword, error) {
	if kw, ok := f.keywords[storeKey(text, categoryID)]; ok {
		return kw, nil
	}
	return nil, db.ErrKeywordNotFound
}

func (f *fakeStore) CreateKeyword(_ context.Context, kw *models.Keyword) error {
	key := storeKey(kw.Text, kw.CategoryID)
	if _, ok := f.keywords[key]; ok {
		return db.ErrDuplicateKeyword
	}
	kw.ID = uuid.New()
	kw.Text = validation.NormalizeKeyword(kw.Text)
	f.keywords[key] = kw
	return nil
}

func (f *fakeStore) UpdateKeywordSeverity(_ context.Context, id uuid.UUID, severity string, _ *string) error {
	for _, kw := range f.keywords {
		if kw.ID == id {
			kw.SeverityLevel = severity
			return nil
		}
	}
	return db.ErrKeywordNotFound
}

func testLibrary(t *testing.T) *SetLibrary {
	t.Helper()
	lib, err := NewSetLibrary("")
	if err != nil {
		t.Fatalf("NewSetLibrary() error = %v", err)
	}
	return lib
}

func TestImportSet(t *testing.T) {
	store := newFakeStore()
	im := NewImporter(store, testLibrary(t))

	result, err := im.ImportSet(context.Background(), "self-harm", nil, "medium", false, nil)
	if err != nil {
		t.Fatalf("ImportSet() error = %v", err)
	}

	if result.ImportedCount == 0 {
		t.Fatal("ImportSet() imported nothing")
	}
	if len(result.Errors) != 0 {
		t.Errorf("ImportSet() errors = %v, want none", result.Errors)
	}

	kw, err := store.GetKeywordByText(context.Background(), "kill myself", nil)
	if err != nil {
		t.Fatalf("imported keyword missing: %v", err)
	}
	if kw.SeverityLevel != models.SeverityCritical {
		t.Errorf("set severity not applied, got %q", kw.SeverityLevel)
	}
	if !kw.IsActive || kw.CaseSensitive {
		t.Errorf("imported keyword flags wrong: %+v", kw)
	}
	if kw.TriggerCount != 0 {
		t.Errorf("imported keyword triggerCount = %d, want 0", kw.TriggerCount)
	}
}

func TestImportSetUnknown(t *testing.T) {
	im := NewImporter(newFakeStore(), testLibrary(t))
	if _, err := im.ImportSet(context.Background(), "no-such-set", nil, "low", false, nil); err == nil {
		t.Error("ImportSet() with unknown set name should error")
	}
}

func TestImportSetExistingWithoutOverwrite(t *testing.T) {
	store := newFakeStore()
	existing := &models.Keyword{Text: "suicide", SeverityLevel: models.SeverityLow, IsActive: true}
	if err := store.CreateKeyword(context.Background(), existing); err != nil {
		t.Fatalf("seed keyword: %v", err)
	}

	im := NewImporter(store, testLibrary(t))
	result, err := im.ImportSet(context.Background(), "self-harm", nil, "medium", false, nil)
	if err != nil {
		t.Fatalf("ImportSet() error = %v", err)
	}

	// The existing item is a per-item error; the rest of the batch imports.
	if len(result.Errors) != 1 {
		t.Fatalf("ImportSet() errors = %v, want exactly one", result.Errors)
	}
	if result.Errors[0].Item != "suicide" {
		t.Errorf("ImportSet() error item = %q, want suicide", result.Errors[0].Item)
	}
	if result.ImportedCount == 0 {
		t.Error("other items in the batch should still import")
	}

	// The existing keyword is untouched.
	kw, _ := store.GetKeywordByText(context.Background(), "suicide", nil)
	if kw.SeverityLevel != models.SeverityLow {
		t.Errorf("existing keyword was modified: severity = %q", kw.SeverityLevel)
	}
}

func TestImportSetExistingWithOverwrite(t *testing.T) {
	store := newFakeStore()
	existing := &models.Keyword{Text: "suicide", SeverityLevel: models.SeverityLow, IsActive: true}
	if err := store.CreateKeyword(context.Background(), existing); err != nil {
		t.Fatalf("seed keyword: %v", err)
	}

	im := NewImporter(store, testLibrary(t))
	result, err := im.ImportSet(context.Background(), "self-harm", nil, "medium", true, nil)
	if err != nil {
		t.Fatalf("ImportSet() error = %v", err)
	}
	if len(result.Errors) != 0 {
		t.Errorf("ImportSet() errors = %v, want none", result.Errors)
	}
	if result.UpdatedCount != 1 {
		t.Errorf("ImportSet() updatedCount = %d, want 1", result.UpdatedCount)
	}

	// Overwrite updates severity only.
	kw, _ := store.GetKeywordByText(context.Background(), "suicide", nil)
	if kw.SeverityLevel != models.SeverityCritical {
		t.Errorf("overwrite did not update severity, got %q", kw.SeverityLevel)
	}
}

func TestImportSetScopedCategory(t *testing.T) {
	store := newFakeStore()
	catID := uuid.New()
	im := NewImporter(store, testLibrary(t))

	if _, err := im.ImportSet(context.Background(), "acute-distress", &catID, "low", false, nil); err != nil {
		t.Fatalf("ImportSet() error = %v", err)
	}

	if _, err := store.GetKeywordByText(context.Background(), "panic attack", &catID); err != nil {
		t.Errorf("category-scoped keyword missing: %v", err)
	}
	if _, err := store.GetKeywordByText(context.Background(), "panic attack", nil); err == nil {
		t.Error("keyword must not leak into the global scope")
	}
}

func TestImportSetBadSeverity(t *testing.T) {
	im := NewImporter(newFakeStore(), testLibrary(t))
	if _, err := im.ImportSet(context.Background(), "self-harm", nil, "urgent", false, nil); err == nil {
		t.Error("ImportSet() with invalid default severity should error")
	}
}

func TestImportCSV(t *testing.T) {
	store := newFakeStore()
	im := NewImporter(store, testLibrary(t))

	input := strings.Join([]string{
		"text,severity",
		"kill myself,critical",
		"Panic Attack,high",
		"stressed",
		",medium",
		"worthless,urgent",
	}, "\n")

	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), nil, "low", false, nil)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	if result.ImportedCount != 3 {
		t.Errorf("ImportCSV() importedCount = %d, want 3", result.ImportedCount)
	}
	if len(result.Errors) != 2 {
		t.Fatalf("ImportCSV() errors = %v, want 2", result.Errors)
	}

	// Severity falls back to the default when the column is absent.
	kw, err := store.GetKeywordByText(context.Background(), "stressed", nil)
	if err != nil {
		t.Fatalf("defaulted keyword missing: %v", err)
	}
	if kw.SeverityLevel != models.SeverityLow {
		t.Errorf("default severity not applied, got %q", kw.SeverityLevel)
	}

	// Text is normalized before storage.
	if _, err := store.GetKeywordByText(context.Background(), "panic attack", nil); err != nil {
		t.Errorf("normalized keyword missing: %v", err)
	}

	// Bad rows carry their line numbers.
	for _, e := range result.Errors {
		if e.Line == 0 {
			t.Errorf("per-item error missing line number: %+v", e)
		}
	}
}

func TestImportCSVDuplicateWithinBatch(t *testing.T) {
	store := newFakeStore()
	im := NewImporter(store, testLibrary(t))

	input := "crisis,high\ncrisis,low\n"
	result, err := im.ImportCSV(context.Background(), strings.NewReader(input), nil, "low", false, nil)
	if err != nil {
		t.Fatalf("ImportCSV() error = %v", err)
	}

	if result.ImportedCount != 1 {
		t.Errorf("ImportCSV() importedCount = %d, want 1", result.ImportedCount)
	}
	if len(result.Errors) != 1 {
		t.Errorf("ImportCSV() errors = %v, want 1", result.Errors)
	}
}

// brokenReader fails on every call, the way a dropped connection would.
type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestImportCSVReaderFailure(t *testing.T) {
	im := NewImporter(newFakeStore(), testLibrary(t))

	result, err := im.ImportCSV(context.Background(), brokenReader{}, nil, "low", false, nil)
	if err == nil {
		t.Fatalf("ImportCSV() = %+v, want reader error", result)
	}
	if !strings.Contains(err.Error(), "connection reset") {
		t.Errorf("ImportCSV() error = %v, want wrapped reader error", err)
	}
}
