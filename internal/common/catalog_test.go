package common

import (
	"os"
	"path/filepath"
	"testing"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write catalog file: %v", err)
	}
	return path
}

func TestLoadCatalogConfig(t *testing.T) {
	path := writeCatalogFile(t, `
games:
  - id: game1
    title: Test Game
    price: "50"
achievements:
  - id: ach1
    title: Test Achievement
    rarity: common
    reward_amount: "10"
`)

	catalog, err := LoadCatalogConfig(path)
	if err != nil {
		t.Fatalf("LoadCatalogConfig failed: %v", err)
	}
	if len(catalog.Games) != 1 || len(catalog.Achievements) != 1 {
		t.Fatalf("Expected 1 game and 1 achievement, got %d and %d",
			len(catalog.Games), len(catalog.Achievements))
	}
}

func TestLoadCatalogConfig_RejectsBadPrice(t *testing.T) {
	path := writeCatalogFile(t, `
games:
  - id: game1
    title: Test Game
    price: "fifty"
`)

	if _, err := LoadCatalogConfig(path); err == nil {
		t.Fatal("Expected error for invalid price")
	}
}

func TestLoadCatalogConfig_RejectsMissingId(t *testing.T) {
	path := writeCatalogFile(t, `
achievements:
  - title: Orphaned
    reward_amount: "10"
`)

	if _, err := LoadCatalogConfig(path); err == nil {
		t.Fatal("Expected error for missing achievement id")
	}
}

func TestLoadCatalogConfig_MissingFile(t *testing.T) {
	if _, err := LoadCatalogConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("Expected error for missing file")
	}
}
