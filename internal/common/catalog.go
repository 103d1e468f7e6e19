package common

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

type GameConfig struct {
	Id          string `yaml:"id"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	Price       string `yaml:"price"`
	Category    string `yaml:"category"`
	Developer   string `yaml:"developer"`
}

type AchievementConfig struct {
	Id           string `yaml:"id"`
	Title        string `yaml:"title"`
	Description  string `yaml:"description"`
	Icon         string `yaml:"icon"`
	Rarity       string `yaml:"rarity"`
	RewardAmount string `yaml:"reward_amount"`
}

type CatalogConfig struct {
	Games        []GameConfig        `yaml:"games"`
	Achievements []AchievementConfig `yaml:"achievements"`
}

// LoadCatalogConfig reads and validates the seed catalog file.
func LoadCatalogConfig(catalogFile string) (*CatalogConfig, error) {
	var catalogPath string
	if filepath.IsAbs(catalogFile) {
		catalogPath = catalogFile
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		catalogPath = filepath.Join(wd, catalogFile)
	}

	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read %s: %w", catalogFile, err)
	}

	var config CatalogConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("unable to parse %s: %w", catalogFile, err)
	}

	for i, game := range config.Games {
		if game.Id == "" {
			return nil, fmt.Errorf("game at index %d missing id", i)
		}
		if game.Title == "" {
			return nil, fmt.Errorf("game at index %d missing title", i)
		}
		if _, err := decimal.NewFromString(game.Price); err != nil {
			return nil, fmt.Errorf("game %s has invalid price %q: %w", game.Id, game.Price, err)
		}
	}

	for i, achievement := range config.Achievements {
		if achievement.Id == "" {
			return nil, fmt.Errorf("achievement at index %d missing id", i)
		}
		if achievement.Title == "" {
			return nil, fmt.Errorf("achievement at index %d missing title", i)
		}
		if _, err := decimal.NewFromString(achievement.RewardAmount); err != nil {
			return nil, fmt.Errorf("achievement %s has invalid reward amount %q: %w",
				achievement.Id, achievement.RewardAmount, err)
		}
	}

	return &config, nil
}
