package analysis

import (
	"context"
	"testing"
)

func TestParseResponseJSON(t *testing.T) {
	text := `Here is my assessment:
{"title": "Sunset Over Water", "medium": "Oil on canvas", "signature_present": true, "colors": ["Orange", "Blue"]}
Hope that helps!`

	parsed := ParseResponse(text)
	if parsed.Confidence != ConfidenceFull {
		t.Errorf("Expected full confidence, got %s", parsed.Confidence)
	}
	if parsed.Fields["title"] != "Sunset Over Water" {
		t.Errorf("Expected title field, got %q", parsed.Fields["title"])
	}
	if parsed.Fields["signature_present"] != "true" {
		t.Errorf("Expected signature_present true, got %q", parsed.Fields["signature_present"])
	}
	if parsed.Fields["colors"] != "Orange, Blue" {
		t.Errorf("Expected flattened colors list, got %q", parsed.Fields["colors"])
	}
}

func TestParseResponseLineFallback(t *testing.T) {
	text := `Title: Untitled Study
Medium: watercolor
Condition: good`

	parsed := ParseResponse(text)
	if parsed.Confidence != ConfidencePartial {
		t.Errorf("Expected partial confidence, got %s", parsed.Confidence)
	}
	if parsed.Fields["title"] != "Untitled Study" {
		t.Errorf("Expected title field, got %q", parsed.Fields["title"])
	}
	if parsed.Fields["medium"] != "watercolor" {
		t.Errorf("Expected medium field, got %q", parsed.Fields["medium"])
	}
}

func TestParseResponseEmpty(t *testing.T) {
	parsed := ParseResponse("I cannot tell what this image shows.")
	if parsed.Confidence != ConfidenceEmpty {
		t.Errorf("Expected empty confidence, got %s", parsed.Confidence)
	}
	if len(parsed.Fields) != 0 {
		t.Errorf("Expected no fields, got %v", parsed.Fields)
	}
}

func TestFromFields(t *testing.T) {
	a := fromFields(map[string]string{
		"title":                "Harbor at Dawn",
		"medium":               "Oil on canvas",
		"year":                 "1987",
		"signed":               "yes",
		"colors":               "Blue, Grey, Gold",
		"authenticity_markers": "Gallery label, Certificate of authenticity",
	})

	if a.EstimatedYear != "1987" {
		t.Errorf("Expected year alias to map, got %q", a.EstimatedYear)
	}
	if !a.SignaturePresent {
		t.Error("Expected signed alias to set SignaturePresent")
	}
	if len(a.Colors) != 3 || a.Colors[2] != "Gold" {
		t.Errorf("Expected 3 colors, got %v", a.Colors)
	}
	if !a.AuthenticityVerified() {
		t.Error("Expected certificate marker to verify authenticity")
	}
}

type fixedProvider struct {
	name string
	text string
	err  error
}

func (p fixedProvider) Name() string { return p.name }
func (p fixedProvider) Describe(context.Context, string) (string, error) {
	return p.text, p.err
}

func TestServiceMergeKeepsFirstValue(t *testing.T) {
	svc := NewService(
		fixedProvider{name: "first", text: `{"title": "Original Title", "medium": ""}`},
		fixedProvider{name: "second", text: `{"title": "Other Title", "medium": "Oil on canvas"}`},
	)

	result, err := svc.Analyze(context.Background(), "test.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Analysis.Title != "Original Title" {
		t.Errorf("Expected first provider's title to win, got %q", result.Analysis.Title)
	}
	if result.Analysis.Medium != "Oil on canvas" {
		t.Errorf("Expected second provider to fill medium, got %q", result.Analysis.Medium)
	}
	if len(result.ModelsUsed) != 2 {
		t.Errorf("Expected 2 models used, got %v", result.ModelsUsed)
	}
}

func TestServiceSkipsFailedProviders(t *testing.T) {
	svc := NewService(
		fixedProvider{name: "broken", err: context.DeadlineExceeded},
		fixedProvider{name: "working", text: `{"title": "Backup Title"}`},
	)

	result, err := svc.Analyze(context.Background(), "test.jpg")
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if result.Analysis.Title != "Backup Title" {
		t.Errorf("Expected working provider's title, got %q", result.Analysis.Title)
	}
	if len(result.ModelsUsed) != 1 || result.ModelsUsed[0] != "working" {
		t.Errorf("Expected only the working model, got %v", result.ModelsUsed)
	}
}

func TestServiceAllProvidersFail(t *testing.T) {
	svc := NewService(fixedProvider{name: "broken", err: context.DeadlineExceeded})

	if _, err := svc.Analyze(context.Background(), "test.jpg"); err == nil {
		t.Error("Expected error when every provider fails")
	}
}

func TestMockProviderParses(t *testing.T) {
	text, err := MockProvider{}.Describe(context.Background(), "blue_harbor-042.jpg")
	if err != nil {
		t.Fatalf("Describe failed: %v", err)
	}

	parsed := ParseResponse(text)
	if parsed.Confidence != ConfidenceFull {
		t.Errorf("Expected mock output to parse as JSON, got %s", parsed.Confidence)
	}
	a := fromFields(parsed.Fields)
	if a.Medium == "" || a.Condition == "" {
		t.Errorf("Expected mock analysis to fill core fields, got %+v", a)
	}
}
