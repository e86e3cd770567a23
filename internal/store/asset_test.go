package store

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"autopress/internal/models"
)

// testContentID creates a throwaway content row for asset/widget tests.
func testContentID(t *testing.T, s *ContentStore) uuid.UUID {
	t.Helper()
	created, err := s.Create(&models.Content{
		Topic: "Asset Host", Title: "Asset Host",
		Slug: "test-asset-host-" + uuid.NewString()[:8],
		Body: "b", Status: models.ContentStatusProcessing,
	})
	if err != nil {
		t.Fatalf("create host content: %v", err)
	}
	return created.ID
}

func TestAssetStoreCreateThenUpload(t *testing.T) {
	db := testDB(t)
	contentStore := NewContentStore(db)
	s := NewAssetStore(db)

	contentID := testContentID(t, contentStore)
	t.Cleanup(func() { contentStore.Delete(contentID) })

	created, err := s.Create(&models.Asset{
		ContentID: contentID,
		Prompt:    "a diagram of goroutines",
		Position:  1,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Uploaded() {
		t.Error("fresh asset must not report uploaded")
	}

	url := "https://cdn.example.com/img.png"
	alt := "Diagram of goroutines"
	created.URL = &url
	created.AltText = &alt
	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if !found.Uploaded() {
		t.Error("expected uploaded after URL set")
	}
	if found.AltText == nil || *found.AltText != alt {
		t.Errorf("alt text: got %v", found.AltText)
	}
}

func TestAssetStoreListByContentOrdered(t *testing.T) {
	db := testDB(t)
	contentStore := NewContentStore(db)
	s := NewAssetStore(db)

	contentID := testContentID(t, contentStore)
	t.Cleanup(func() { contentStore.Delete(contentID) })

	for _, pos := range []int{2, 1, 3} {
		if _, err := s.Create(&models.Asset{
			ContentID: contentID, Prompt: "p", Position: pos,
		}); err != nil {
			t.Fatalf("Create pos %d: %v", pos, err)
		}
	}

	items, err := s.ListByContent(contentID)
	if err != nil {
		t.Fatalf("ListByContent: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d assets, want 3", len(items))
	}
	for i, a := range items {
		if a.Position != i+1 {
			t.Errorf("position at %d: got %d, want %d", i, a.Position, i+1)
		}
	}
}

func TestInteractiveStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	contentStore := NewContentStore(db)
	s := NewInteractiveStore(db)

	contentID := testContentID(t, contentStore)
	t.Cleanup(func() { contentStore.Delete(contentID) })

	cfg := json.RawMessage(`{"questions":[{"q":"What is a goroutine?"}]}`)
	created, err := s.Create(&models.InteractiveBlock{
		ContentID: contentID,
		Kind:      models.InteractiveQuiz,
		Config:    cfg,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Kind != models.InteractiveQuiz {
		t.Errorf("kind: got %q, want quiz", created.Kind)
	}

	found, err := s.FindByContent(contentID)
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	if found == nil {
		t.Fatal("expected block, got nil")
	}

	var decoded struct {
		Questions []struct {
			Q string `json:"q"`
		} `json:"questions"`
	}
	if err := json.Unmarshal(found.Config, &decoded); err != nil {
		t.Fatalf("config round trip: %v", err)
	}
	if len(decoded.Questions) != 1 {
		t.Errorf("config content lost: %s", found.Config)
	}
}

func TestInteractiveStoreFindMissing(t *testing.T) {
	db := testDB(t)
	contentStore := NewContentStore(db)
	s := NewInteractiveStore(db)

	contentID := testContentID(t, contentStore)
	t.Cleanup(func() { contentStore.Delete(contentID) })

	found, err := s.FindByContent(contentID)
	if err != nil {
		t.Fatalf("FindByContent: %v", err)
	}
	if found != nil {
		t.Error("expected nil when content has no widget")
	}
}
