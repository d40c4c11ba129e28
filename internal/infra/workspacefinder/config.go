package workspacefinder

import (
	"path/filepath"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/infra/config"
)

// ConfigFile is the name of the file that marks a workspace root.
const ConfigFile = "dfkit.yaml"

// LoadConfig loads dfkit.yaml from the workspace root and applies defaults.
func LoadConfig(root string) (domain.Config, error) {
	return config.Load(filepath.Join(root, ConfigFile))
}
