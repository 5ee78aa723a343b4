// Package bootstrap runs a modkit application.
//
// An App owns a kernel, loads its root modules, starts the components
// those modules registered and shuts everything down in reverse:
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    return err
//	}
//	app.UseModules(&api.Module{}, &worker.Module{})
//	return app.Run(ctx)
//
// Startup: load root modules → start components → OnStart hooks →
// configure callbacks → ready check → OnReady hooks → summary.
// Shutdown: OnStop hooks → stop components → unload modules → close the
// container.
package bootstrap
