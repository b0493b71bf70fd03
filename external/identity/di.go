package identity

import (
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/foxseedlab/shussekin/internal/identity"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (identity.SessionKeySource, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewAdminKeyGenerator(cfg.IdentityPartnerID, cfg.IdentityAdminSecret), nil
	})
	do.Provide(injector, func(i do.Injector) (identity.Directory, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewHTTPDirectory(cfg.IdentityAPIBaseURL), nil
	})
}
