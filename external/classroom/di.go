package classroom

import (
	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (classroom.TokenSource, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewLTITokenSource(cfg.ClassroomAPIBaseURL, cfg.ClassroomLTIKey, cfg.ClassroomLTISecret), nil
	})
	do.Provide(injector, func(i do.Injector) (classroom.Client, error) {
		cfg := do.MustInvoke[*config.Config](i)
		tokens := do.MustInvoke[classroom.TokenSource](i)
		return NewHTTPClient(cfg.ClassroomAPIBaseURL, tokens), nil
	})
}
