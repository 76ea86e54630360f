package ports

// ConfigLocator finds the directory holding appserve.yaml starting from an arbitrary directory.
type ConfigLocator interface {
	FindRoot(startDir string) (string, error)
}
