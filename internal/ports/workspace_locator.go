package ports

// WorkspaceLocator returns the directory holding dfkit.yaml for dir or one
// of its parents. A DFKIT_WORKSPACE override may take precedence.
type WorkspaceLocator interface {
	FindRoot(dir string) (string, error)
}
