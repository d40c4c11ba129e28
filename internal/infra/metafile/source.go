package metafile

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/aalvaropc/dfkit/internal/domain"
	"github.com/aalvaropc/dfkit/internal/ports"
)

// companionExts are tried in order; DataFed users produce both spellings.
var companionExts = []string{".JSON", ".json"}

// Source reads JSON metadata files from the local filesystem.
type Source struct{}

func NewSource() *Source { return &Source{} }

var _ ports.MetadataSource = (*Source)(nil)

// Companion looks for <name>.JSON or <name>.json next to dataPath,
// where name is the data file's base name without its extension.
func (s *Source) Companion(dataPath string) (string, error) {
	dir := filepath.Dir(dataPath)
	title := domain.TitleFromFile(filepath.Base(dataPath))

	for _, ext := range companionExts {
		p := filepath.Join(dir, title+ext)
		info, err := os.Stat(p)
		if err == nil && !info.IsDir() {
			return p, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return "", &domain.OpError{
				Op:   "metafile.companion",
				Kind: domain.KindExecution,
				Path: p,
				Err:  err,
			}
		}
	}
	return "", nil
}

func (s *Source) Check(path string) error {
	_, err := s.Load(path)
	return err
}

func (s *Source) Load(path string) (map[string]any, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &domain.OpError{
			Op:   "metafile.load",
			Kind: domain.KindNotFound,
			Path: path,
			Err:  err,
		}
	}

	var doc map[string]any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, &domain.OpError{
			Op:   "metafile.load",
			Kind: domain.KindInvalidArgument,
			Path: path,
			Err:  err,
		}
	}
	if doc == nil {
		doc = map[string]any{}
	}
	return doc, nil
}
