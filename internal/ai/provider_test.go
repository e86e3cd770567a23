package ai

import (
	"context"
	"testing"
)

// mockProvider is a test double implementing Provider.
type mockProvider struct {
	name     string
	response string
	err      error
	image    []byte
}

func (m *mockProvider) Generate(_ context.Context, _, _ string) (string, error) {
	return m.response, m.err
}

func (m *mockProvider) Name() string { return m.name }

// mockImageProvider adds image support on top of mockProvider.
type mockImageProvider struct {
	mockProvider
}

func (m *mockImageProvider) GenerateImage(_ context.Context, _ string) ([]byte, string, error) {
	return m.image, "image/png", m.err
}

func TestNewRegistrySkipsProvidersWithoutKeys(t *testing.T) {
	r := NewRegistry("openai", map[string]ProviderConfig{
		"openai": {APIKey: "sk-test", Model: "gpt-4o"},
		"gemini": {Model: "gemini-2.5-pro"},
	})

	if !r.HasProvider("openai") {
		t.Error("openai should be available")
	}
	if r.HasProvider("gemini") {
		t.Error("gemini has no API key and should be skipped")
	}
}

func TestRegistryActiveMissing(t *testing.T) {
	r := NewRegistry("gemini", nil)

	if _, err := r.Active(); err == nil {
		t.Fatal("expected error when active provider is not configured")
	}
	if _, err := r.Generate(context.Background(), "sys", "user"); err == nil {
		t.Fatal("Generate should surface the missing-provider error")
	}
}

func TestRegistrySetActive(t *testing.T) {
	r := NewRegistry("openai", nil)
	r.Register("mock", &mockProvider{name: "mock", response: "hello"})

	if err := r.SetActive("absent"); err == nil {
		t.Error("switching to an unknown provider should fail")
	}
	if err := r.SetActive("mock"); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if r.ActiveName() != "mock" {
		t.Errorf("active = %q, want mock", r.ActiveName())
	}

	out, err := r.Generate(context.Background(), "sys", "user")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "hello" {
		t.Errorf("Generate = %q, want hello", out)
	}
}

func TestGenerateImageTextOnlyProvider(t *testing.T) {
	r := NewRegistry("mock", nil)
	r.Register("mock", &mockProvider{name: "mock"})

	if r.SupportsImageGeneration() {
		t.Error("text-only provider must not report image support")
	}

	img, ct, err := r.GenerateImage(context.Background(), "a sunset")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if img != nil || ct != "" {
		t.Errorf("expected empty image result, got %d bytes (%s)", len(img), ct)
	}
}

func TestGenerateImageDelegates(t *testing.T) {
	r := NewRegistry("mock", nil)
	r.Register("mock", &mockImageProvider{mockProvider{name: "mock", image: []byte{0x89, 0x50}}})

	if !r.SupportsImageGeneration() {
		t.Fatal("provider implements ImageGenerator")
	}

	img, ct, err := r.GenerateImage(context.Background(), "a sunset")
	if err != nil {
		t.Fatalf("GenerateImage: %v", err)
	}
	if len(img) != 2 || ct != "image/png" {
		t.Errorf("got %d bytes (%s), want 2 bytes image/png", len(img), ct)
	}
}
