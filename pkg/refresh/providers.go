package refresh

import (
	"github.com/pkg/errors"
	"github.com/shishobooks/shoka/pkg/config"
	"github.com/shishobooks/shoka/pkg/metadata"
	"github.com/shishobooks/shoka/pkg/models"
	"github.com/shishobooks/shoka/pkg/plugins"
	"github.com/shishobooks/shoka/pkg/sidecar"
)

// Providers builds the providers named by cfg.MetadataProviders in the
// configured order.
func Providers(cfg *config.Config, pluginManager *plugins.Manager) ([]metadata.Provider, error) {
	providers := make([]metadata.Provider, 0, len(cfg.MetadataProviders))
	for _, name := range cfg.MetadataProviders {
		switch name {
		case models.DataSourceFilename:
			providers = append(providers, metadata.NewFilenameProvider())
		case models.DataSourceSidecar:
			providers = append(providers, sidecar.NewProvider())
		case models.DataSourcePlugins:
			providers = append(providers, pluginManager)
		default:
			return nil, errors.Errorf("unknown metadata provider %q", name)
		}
	}
	return providers, nil
}
