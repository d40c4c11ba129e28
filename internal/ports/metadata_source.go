package ports

// MetadataSource finds and reads JSON metadata that accompanies data files.
type MetadataSource interface {
	// Companion returns the metadata file next to dataPath, or "" if none exists.
	Companion(dataPath string) (string, error)
	// Check fails if path is not a readable JSON document.
	Check(path string) error
	Load(path string) (map[string]any, error)
}
