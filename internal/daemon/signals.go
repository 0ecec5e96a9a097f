package daemon

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/livp123/raidrec/internal/config"
	"github.com/livp123/raidrec/internal/utils/logger"
)

// WithSignals returns a context canceled on SIGINT or SIGTERM. SIGHUP
// reloads the configuration file into cfg; settings read per session apply
// from the next encounter.
// WithSignals 在收到 SIGINT/SIGTERM 时取消 ctx，SIGHUP 重新加载配置。
func WithSignals(ctx context.Context, cfg *config.Manager) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	sig := make(chan os.Signal, 4)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		defer signal.Stop(sig)
		log := logger.Get(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case s := <-sig:
				if s == syscall.SIGHUP {
					reload(ctx, cfg)
					continue
				}
				log.Infof("[DAEMON] Received %s, shutting down...", s)
				cancel()
				return
			}
		}
	}()
	return ctx, cancel
}

func reload(ctx context.Context, cfg *config.Manager) {
	log := logger.Get(ctx)
	if cfg == nil {
		return
	}
	log.Infof("[DAEMON] 🔄 Received SIGHUP, reloading %s", cfg.Path())
	if _, err := cfg.Load(); err != nil {
		log.Errorf("[DAEMON] ❌ Failed to reload config: %v", err)
		return
	}
	if err := cfg.Get().Validate(); err != nil {
		log.Warnf("[DAEMON] ⚠️  Reloaded configuration has problems: %v", err)
		return
	}
	log.Infof("[DAEMON] ✅ Configuration reloaded")
}
