package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ewilliams-labs/notetune/internal/core/domain"
)

//go:embed moods.yaml
var defaultMoods []byte

type moodFile struct {
	Moods []domain.MoodRange `yaml:"moods"`
}

// LoadMoods reads the mood table at path, or the built-in table when path is empty.
func LoadMoods(path string) (domain.MoodTable, error) {
	data := defaultMoods
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return domain.MoodTable{}, fmt.Errorf("config: read mood table: %w", err)
		}
	}
	return ParseMoods(data)
}

// ParseMoods decodes a YAML mood table, keeping declaration order.
func ParseMoods(data []byte) (domain.MoodTable, error) {
	var f moodFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.MoodTable{}, fmt.Errorf("config: parse mood table: %w", err)
	}
	table, err := domain.NewMoodTable(f.Moods)
	if err != nil {
		return domain.MoodTable{}, fmt.Errorf("config: %w", err)
	}
	return table, nil
}
