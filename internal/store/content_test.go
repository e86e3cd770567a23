package store

import (
	"testing"

	"github.com/google/uuid"

	"autopress/internal/models"
)

func TestContentStoreCreateAndFind(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	slug := "test-create-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	desc := "A meta description."
	content := &models.Content{
		Topic:           "Test Topic",
		Title:           "Test Article",
		Slug:            slug,
		Body:            "## Heading\n\nBody.",
		Keywords:        []string{"go", "testing"},
		Outline:         []models.OutlineSection{{Heading: "Heading", Subheadings: []string{"Sub"}}},
		MetaDescription: &desc,
		Status:          models.ContentStatusProcessing,
	}

	created, err := s.Create(content)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if created.ID == uuid.Nil {
		t.Error("expected non-nil UUID")
	}
	if created.Status != models.ContentStatusProcessing {
		t.Errorf("status: got %q, want processing", created.Status)
	}

	found, err := s.FindByID(created.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if found == nil {
		t.Fatal("expected content, got nil")
	}
	if len(found.Keywords) != 2 || found.Keywords[0] != "go" {
		t.Errorf("keywords round trip: got %v", found.Keywords)
	}
	if len(found.Outline) != 1 || found.Outline[0].Heading != "Heading" {
		t.Errorf("outline round trip: got %v", found.Outline)
	}
	if found.MetaDescription == nil || *found.MetaDescription != desc {
		t.Errorf("meta description round trip: got %v", found.MetaDescription)
	}
}

func TestContentStoreUpdatePublishes(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	slug := "test-publish-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	created, err := s.Create(&models.Content{
		Topic: "Topic", Title: "Original", Slug: slug,
		Body: "body", Status: models.ContentStatusReview,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	created.Title = "Updated"
	created.Status = models.ContentStatusPublished

	if err := s.Update(created); err != nil {
		t.Fatalf("Update: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found.Title != "Updated" {
		t.Errorf("title: got %q, want Updated", found.Title)
	}
	if found.PublishedAt == nil {
		t.Error("expected published_at set after publishing")
	}
}

func TestContentStoreSlugExists(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	slug := "test-exists-" + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	if _, err := s.Create(&models.Content{
		Topic: "Topic", Title: "T", Slug: slug,
		Body: "b", Status: models.ContentStatusDraft,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err := s.SlugExists(slug)
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if !exists {
		t.Error("expected slug to exist")
	}

	exists, err = s.SlugExists("no-such-slug-" + uuid.NewString()[:8])
	if err != nil {
		t.Fatalf("SlugExists: %v", err)
	}
	if exists {
		t.Error("expected slug to not exist")
	}
}

func TestContentStoreListTitles(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	slug := "test-titles-" + uuid.NewString()[:8]
	title := "Unique Title " + uuid.NewString()[:8]
	t.Cleanup(func() { cleanContent(t, db, slug) })

	if _, err := s.Create(&models.Content{
		Topic: "Topic", Title: title, Slug: slug,
		Body: "b", Status: models.ContentStatusReview,
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	titles, err := s.ListTitles()
	if err != nil {
		t.Fatalf("ListTitles: %v", err)
	}

	found := false
	for _, tt := range titles {
		if tt == title {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("expected %q in titles", title)
	}
}

func TestContentStoreDelete(t *testing.T) {
	db := testDB(t)
	s := NewContentStore(db)

	slug := "test-delete-" + uuid.NewString()[:8]

	created, err := s.Create(&models.Content{
		Topic: "Topic", Title: "Delete Me", Slug: slug,
		Body: "b", Status: models.ContentStatusDraft,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := s.Delete(created.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	found, _ := s.FindByID(created.ID)
	if found != nil {
		t.Error("expected nil after delete")
	}
}
