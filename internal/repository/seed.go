package repository

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"sitechat/internal/model"
)

//go:embed seed.yaml
var seedYAML []byte

type seedData struct {
	Users    []model.User    `yaml:"users"`
	Projects []model.Project `yaml:"projects"`
}

func loadSeed(raw []byte) (*seedData, error) {
	var seed seedData
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, fmt.Errorf("failed to decode seed data: %w", err)
	}
	return &seed, nil
}
