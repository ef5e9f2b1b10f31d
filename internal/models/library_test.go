package models

import (
	"os"
	"path/filepath"
	"testing"
)

const validLibrary = `poesies:
  - titre: La Fourmi
    auteur: Robert Desnos
    contenu: |-
      Une fourmi de dix-huit mètres
      Avec un chapeau sur la tête
    niveau: debutant
    theme: imagination
    duree_estimee: 2
    difficulte: facile
    mots_cles: [fourmi, imagination]
    voix_feminine: /uploads/audio/la-fourmi-femme.wav
  - titre: Le Petit Chat
    auteur: Maurice Carême
    contenu: Un petit chat gris
    niveau: debutant
    theme: animaux
    duree_estimee: 1
    difficulte: facile
`

func writeLibrary(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poesies.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write library file: %v", err)
	}
	return path
}

func TestLoadLibrary(t *testing.T) {
	library, err := LoadLibrary(writeLibrary(t, validLibrary))
	if err != nil {
		t.Fatalf("LoadLibrary: %v", err)
	}
	if len(library.Poems) != 2 {
		t.Fatalf("loaded %d poems, want 2", len(library.Poems))
	}
	if library.Poems[0].Title != "La Fourmi" || library.Poems[0].Level != LevelBeginner {
		t.Errorf("first poem = %+v", library.Poems[0])
	}
}

func TestLoadLibraryRejectsUnknownLevel(t *testing.T) {
	bad := `poesies:
  - titre: Essai
    auteur: Anonyme
    contenu: Texte
    niveau: expert
    theme: nature
    difficulte: facile
`
	if _, err := LoadLibrary(writeLibrary(t, bad)); err == nil {
		t.Error("unknown level accepted")
	}
}

func TestLoadLibraryMissingFile(t *testing.T) {
	if _, err := LoadLibrary(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestLibraryPoemModelDefaultsAges(t *testing.T) {
	lp := LibraryPoem{Title: "Essai", Author: "Anonyme", Content: "Texte", Level: LevelBeginner, Theme: "nature", Difficulty: "facile"}
	poem := lp.Model()
	if poem.AgeMin != 7 || poem.AgeMax != 15 {
		t.Errorf("default ages = %d-%d, want 7-15", poem.AgeMin, poem.AgeMax)
	}
	if !poem.Active {
		t.Error("seeded poem should be active")
	}
}

func TestNarrationForFallsBack(t *testing.T) {
	poem := Poem{NarrationFeminine: "/uploads/audio/fem.wav"}

	url, used := poem.NarrationFor(VoiceMasculine)
	if url != "/uploads/audio/fem.wav" || used != VoiceFeminine {
		t.Errorf("fallback = %q (%q), want the feminine track", url, used)
	}

	none := Poem{}
	if url, _ := none.NarrationFor(VoiceFeminine); url != "" {
		t.Errorf("poem without narration returned %q", url)
	}
}
