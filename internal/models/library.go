// library.go
package models

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LibraryPoem is one poem of the YAML seed library.
type LibraryPoem struct {
	Title              string   `yaml:"titre"`
	Author             string   `yaml:"auteur"`
	Content            string   `yaml:"contenu"`
	Level              string   `yaml:"niveau"`
	Theme              string   `yaml:"theme"`
	Difficulty         string   `yaml:"difficulte"`
	EstimatedMinutes   int      `yaml:"duree_estimee"`
	Description        string   `yaml:"description,omitempty"`
	Keywords           []string `yaml:"mots_cles,omitempty"`
	AgeMin             int      `yaml:"age_min,omitempty"`
	AgeMax             int      `yaml:"age_max,omitempty"`
	NarrationFeminine  string   `yaml:"voix_feminine,omitempty"`
	NarrationMasculine string   `yaml:"voix_masculine,omitempty"`
}

// Library holds the seed poems.
type Library struct {
	Poems []LibraryPoem `yaml:"poesies"`
}

// LoadLibrary reads and parses the poem seed file.
func LoadLibrary(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read library file: %w", err)
	}

	var library Library
	if err := yaml.Unmarshal(data, &library); err != nil {
		return nil, fmt.Errorf("failed to unmarshal library YAML: %w", err)
	}

	for i, p := range library.Poems {
		if p.Title == "" || p.Author == "" || p.Content == "" {
			return nil, fmt.Errorf("library entry %d is missing a required field", i)
		}
		if !ValidLevel(p.Level) {
			return nil, fmt.Errorf("library entry %q has unknown level %q", p.Title, p.Level)
		}
		if !ValidTheme(p.Theme) {
			return nil, fmt.Errorf("library entry %q has unknown theme %q", p.Title, p.Theme)
		}
		if !ValidDifficulty(p.Difficulty) {
			return nil, fmt.Errorf("library entry %q has unknown difficulty %q", p.Title, p.Difficulty)
		}
	}

	return &library, nil
}

// Model converts a seed entry into a Poem row.
func (lp LibraryPoem) Model() Poem {
	ageMin, ageMax := lp.AgeMin, lp.AgeMax
	if ageMin == 0 {
		ageMin = 7
	}
	if ageMax == 0 {
		ageMax = 15
	}
	return Poem{
		Title:              lp.Title,
		Author:             lp.Author,
		Content:            lp.Content,
		Level:              lp.Level,
		Theme:              lp.Theme,
		Difficulty:         lp.Difficulty,
		EstimatedMinutes:   lp.EstimatedMinutes,
		Description:        lp.Description,
		Keywords:           lp.Keywords,
		AgeMin:             ageMin,
		AgeMax:             ageMax,
		NarrationFeminine:  lp.NarrationFeminine,
		NarrationMasculine: lp.NarrationMasculine,
		Active:             true,
	}
}
