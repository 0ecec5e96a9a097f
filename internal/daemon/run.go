// Package daemon wires the log monitor, encounter detector, recorder and web
// GUI into one process.
package daemon

import (
	"context"
	"errors"
	"regexp"

	"golang.org/x/sync/errgroup"

	"github.com/livp123/raidrec/internal/api"
	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/encounter"
	"github.com/livp123/raidrec/internal/history"
	"github.com/livp123/raidrec/internal/obs"
	"github.com/livp123/raidrec/internal/recorder"
	"github.com/livp123/raidrec/internal/recordings"
	"github.com/livp123/raidrec/internal/utils/logger"
	"github.com/livp123/raidrec/internal/watcher"
	rrerrors "github.com/livp123/raidrec/pkg/errors"
)

// Run starts every component and blocks until ctx ends or the web server
// fails. On exit a pending stop is issued, finished recordings are
// post-processed, and OBS and the history store are closed.
// Run 启动所有组件并阻塞直到 ctx 结束或 Web 服务失败。
func Run(ctx context.Context, opts *Options) error {
	log := logger.Get(ctx)
	if opts == nil || opts.Config == nil {
		return errors.New("daemon: configuration is required")
	}
	cfgs := opts.Config
	cfg := cfgs.Get()
	if err := cfg.Validate(); err != nil {
		log.Warnf("[DAEMON] ⚠️  Configuration problems, fix them in the web GUI: %v", err)
	}

	store := openHistory(ctx, cfg.History.Path)
	defer func() { _ = store.Close() }()

	client := obs.New(obs.Options{
		Host:     cfg.OBS.Host,
		Port:     cfg.OBS.Port,
		Password: cfg.OBS.Password,
		Timeout:  cfg.OBSTimeout(),
	})
	defer func() { _ = client.Close() }()
	files := recordings.NewManager(cfgs, client)

	apiOpts := api.Options{Config: cfgs, Recordings: files, OBS: client}
	if store != nil {
		apiOpts.History = store
	}

	var (
		srv        *api.Server
		controller *recorder.Controller
	)
	// A failure in any worker cancels the others.
	g, gctx := errgroup.WithContext(ctx)

	if opts.NoRecorder {
		log.Infof("[DAEMON] Recorder disabled, serving the web GUI only")
		srv = api.NewServer(apiOpts)
	} else {
		if err := client.Connect(ctx); err != nil {
			log.Warnf("[OBS] ⚠️  Could not connect to OBS: %v (retrying on the next recording)", err)
		} else if v, err := client.Version(ctx); err == nil {
			log.Infof("[OBS] OBS %s, obs-websocket %s", v.OBSVersion, v.OBSWebSocketVersion)
		}

		ctrlOpts := []recorder.Option{
			recorder.WithOnUpdated(func() { srv.NotifyRecordingsUpdated() }),
		}
		if store != nil {
			ctrlOpts = append(ctrlOpts, recorder.WithHistory(store))
		}
		controller = recorder.NewController(cfgs, client, files, ctrlOpts...)

		pattern, err := cfg.LogPatternRegexp()
		if err != nil {
			pattern = regexp.MustCompile(config.DefaultLogPattern)
		}
		monitor := watcher.NewMonitor(cfg.General.LogDir, pattern)
		detector := encounter.NewDetector(cfgs, controller,
			encounter.WithListener(func(e encounter.Event) { srv.Publish(e) }),
		)

		apiOpts.Detector = detector
		apiOpts.Monitor = monitor
		apiOpts.Recorder = controller
		srv = api.NewServer(apiOpts)

		g.Go(func() error {
			return ignoreCanceled(monitor.Run(gctx))
		})
		g.Go(func() error {
			return ignoreCanceled(detector.Run(gctx, monitor.Lines()))
		})
		log.Infof("[DAEMON] 🎬 Recorder running, watching %s", cfg.General.LogDir)
	}

	g.Go(func() error {
		var err error
		if opts.Listener != nil {
			err = srv.Serve(gctx, opts.Listener)
		} else {
			err = srv.ListenAndServe(gctx, opts.addr())
		}
		if err != nil {
			log.Errorf("[WEB] ❌ Web server error: %v", err)
		}
		return err
	})
	runErr := g.Wait()

	if controller != nil {
		timeout := opts.ShutdownTimeout
		if timeout <= 0 {
			timeout = DefaultShutdownTimeout
		}
		shutdownCtx, stop := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer stop()
		if err := controller.Shutdown(shutdownCtx); err != nil {
			log.Warnf("[DAEMON] Recordings still being processed at exit: %v", err)
		}
	}
	log.Infof("[DAEMON] 👋 Stopped")
	return runErr
}

// ignoreCanceled drops the error a worker returns because the group ended.
func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// openHistory returns nil when history is disabled or cannot be opened.
func openHistory(ctx context.Context, path string) *history.Store {
	log := logger.Get(ctx)
	store, err := history.Open(path)
	if errors.Is(err, rrerrors.ErrHistoryDisabled) {
		log.Infof("[HISTORY] Session history disabled")
		return nil
	}
	if err != nil {
		log.Warnf("[HISTORY] ⚠️  Could not open %s: %v", path, err)
		return nil
	}
	log.Debugf("[HISTORY] Storing sessions in %s", path)
	return store
}
