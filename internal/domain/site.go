package domain

// SiteSpec describes a site to scaffold with `appserve init`.
type SiteSpec struct {
	Root string
	// RootDir is the static directory name created under Root.
	RootDir string
	// Prefix is the URL prefix written to the scaffolded config.
	Prefix string
}
