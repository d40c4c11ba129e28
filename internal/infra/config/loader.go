package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/aalvaropc/dfkit/internal/domain"
)

// Load reads a dfkit.yaml file and applies it on top of domain.DefaultConfig.
func Load(path string) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	return Parse(path, b)
}

// Parse decodes dfkit.yaml content. path is only used in errors.
func Parse(path string, b []byte) (domain.Config, error) {
	cfg := domain.DefaultConfig()

	var dto YAMLFile
	if err := yaml.Unmarshal(b, &dto); err != nil {
		return cfg, &domain.OpError{
			Op:   "config.load",
			Kind: domain.KindInvalidConfig,
			Path: path,
			Err:  err,
		}
	}

	return MapConfig(path, cfg, dto.DFKit)
}
