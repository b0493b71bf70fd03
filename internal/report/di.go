package report

import (
	"github.com/foxseedlab/shussekin/internal/classroom"
	"github.com/foxseedlab/shussekin/internal/config"
	"github.com/foxseedlab/shussekin/internal/identity"
	"github.com/foxseedlab/shussekin/internal/runlog"
	"github.com/foxseedlab/shussekin/internal/webhook"
	"github.com/samber/do/v2"
)

func RegisterDI(injector do.Injector) {
	// Alternate policies (RequireEmailDomain, RequirePartnerOptIn,
	// ExcludeCountry, composed with AllOf) are wired here when an event
	// needs them.
	do.Provide(injector, func(i do.Injector) (InclusionPolicy, error) {
		return IncludeAll, nil
	})
	do.Provide(injector, func(i do.Injector) (*Collector, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[classroom.Client](i)
		directory := do.MustInvoke[identity.Directory](i)
		policy := do.MustInvoke[InclusionPolicy](i)
		return NewCollector(client, directory, policy, cfg.Location(), cfg.RoomConcurrency), nil
	})
	do.Provide(injector, func(i do.Injector) (*Orchestrator, error) {
		cfg := do.MustInvoke[*config.Config](i)
		client := do.MustInvoke[classroom.Client](i)
		tokens := do.MustInvoke[classroom.TokenSource](i)
		keys := do.MustInvoke[identity.SessionKeySource](i)
		collector := do.MustInvoke[*Collector](i)
		emitter := do.MustInvoke[Emitter](i)
		ledger := do.MustInvoke[runlog.Ledger](i)
		notifier := do.MustInvoke[webhook.Sender](i)
		return NewOrchestrator(cfg, client, tokens, keys, collector, emitter, ledger, notifier), nil
	})
}
