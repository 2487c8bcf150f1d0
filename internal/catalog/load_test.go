package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEmbedded(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Model.Version == "" {
		t.Error("model version is empty")
	}
	if len(c.Model.Questions) == 0 {
		t.Error("no questions loaded")
	}
	if len(c.Model.Solutions) == 0 {
		t.Error("no solutions loaded")
	}
	if len(c.Products.AddOns.Auto) == 0 {
		t.Error("no auto add-ons loaded")
	}
	if len(c.ArcSite.Objects) == 0 {
		t.Error("no arcsite objects loaded")
	}
}

func TestLoadOverrideHJSON(t *testing.T) {
	dir := t.TempDir()
	override := `{
  // hand-edited field copy
  version: test-override
  questions: [
    {
      id: q1
      text: Only question?
      options: [
        {
          value: yes
          label: Yes
          tags: [
            "t1"
          ]
        }
      ]
    }
  ]
  solutions: [
    {
      id: s1
      name: Only solution
      tags: [
        "t1"
      ]
    }
  ]
}`
	if err := os.WriteFile(filepath.Join(dir, "decision-tree.hjson"), []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Model.Version != "test-override" {
		t.Errorf("version = %q, want test-override", c.Model.Version)
	}
	if len(c.Model.Questions) != 1 || c.Model.Questions[0].ID != "q1" {
		t.Errorf("questions = %+v", c.Model.Questions)
	}
	// Products were not overridden, so the embedded copy still loads.
	if len(c.Products.AddOns.Auto) == 0 {
		t.Error("embedded products not loaded alongside override")
	}
}

func TestLoadOverridePrefersHJSON(t *testing.T) {
	dir := t.TempDir()
	hjsonBody := `{
  version: from-hjson
  questions: [
    {
      id: q1
      text: "?"
      options: []
    }
  ]
  solutions: [
    {
      id: s1
      name: s
    }
  ]
}`
	jsonBody := `{"version": "from-json", "questions": [{"id": "q1", "text": "?", "options": []}], "solutions": [{"id": "s1", "name": "s"}]}`
	if err := os.WriteFile(filepath.Join(dir, "decision-tree.hjson"), []byte(hjsonBody), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "decision-tree.json"), []byte(jsonBody), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.Model.Version != "from-hjson" {
		t.Errorf("version = %q, want from-hjson", c.Model.Version)
	}
}

func TestLoadOverrideInvalid(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "products.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for invalid override")
	}
}

func TestValidateRejectsEmptyModel(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "decision-tree.json"), []byte(`{"version":"v","questions":[],"solutions":[]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for model without questions")
	}
}

func TestValidateRejectsDuplicateSolutionIDs(t *testing.T) {
	dir := t.TempDir()
	body := `{"version":"v","questions":[{"id":"q1","text":"?","options":[]}],"solutions":[{"id":"s1","name":"a"},{"id":"s1","name":"b"}]}`
	if err := os.WriteFile(filepath.Join(dir, "decision-tree.json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(dir); err == nil {
		t.Fatal("expected error for duplicate solution id")
	}
}

func TestProductsAddOnLookup(t *testing.T) {
	c, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if a := c.Products.AddOn("permit_package_a"); a == nil {
		t.Error("permit_package_a add-on not found")
	} else if a.Label == "" {
		t.Error("permit_package_a add-on has no label")
	}
	if a := c.Products.AddOn("nope"); a != nil {
		t.Errorf("unexpected add-on for unknown id: %+v", a)
	}
}
