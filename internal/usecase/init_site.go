package usecase

import (
	"github.com/aalvaropc/appserve/internal/domain"
	"github.com/aalvaropc/appserve/internal/ports"
)

type InitSite struct {
	initializer ports.SiteInitializer
}

func NewInitSite(initializer ports.SiteInitializer) *InitSite {
	return &InitSite{initializer: initializer}
}

func (uc *InitSite) Execute(root string, force bool) error {
	return uc.initializer.Init(domain.SiteSpec{Root: root, RootDir: domain.DefaultRoot, Prefix: domain.DefaultPrefix}, force)
}
