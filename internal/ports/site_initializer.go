package ports

import "github.com/aalvaropc/appserve/internal/domain"

type SiteInitializer interface {
	Init(spec domain.SiteSpec, force bool) error
}
