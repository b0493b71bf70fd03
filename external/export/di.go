package export

import (
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/foxseedlab/shussekin/internal/report"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (report.Emitter, error) {
		cfg := do.MustInvoke[*config.Config](i)
		return NewCSVEmitter(cfg.ReportOutputDir, cfg.ReportFromDate, cfg.ReportToDate), nil
	})
}
