package main

import (
	"context"
	"fmt"

	"github.com/HerbHall/cinelens/internal/config"
	"github.com/HerbHall/cinelens/internal/version"
	pkgcatalog "github.com/HerbHall/cinelens/pkg/catalog"
)

// catalogSource returns the configured catalog source.
func catalogSource(s *config.Settings) (pkgcatalog.Source, error) {
	switch s.Catalog.Source {
	case "", "embedded":
		return pkgcatalog.EmbeddedSource{}, nil
	case "file":
		return pkgcatalog.FileSource{Path: s.Catalog.File}, nil
	case "remote":
		src := pkgcatalog.NewRemoteSource(s.Catalog.Remote.BaseURL, s.Catalog.Remote.Timeout)
		src.UserAgent = version.UserAgent()
		return src, nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", s.Catalog.Source)
	}
}

// loadCatalog loads the configured source once for one-shot commands.
func loadCatalog(ctx context.Context, s *config.Settings) (*pkgcatalog.Catalog, error) {
	src, err := catalogSource(s)
	if err != nil {
		return nil, err
	}
	snap, _, err := src.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s catalog: %w", src.Name(), err)
	}
	return pkgcatalog.NewCatalogFrom(snap), nil
}
