package daemon

import (
	"net"
	"strconv"
	"time"

	"github.com/livp123/raidrec/internal/config"
)

// DefaultShutdownTimeout bounds waiting for recordings to be post-processed
// on exit.
const DefaultShutdownTimeout = 30 * time.Second

// Options configures the daemon.
type Options struct {
	// Config is the loaded configuration. Required.
	Config *config.Manager

	// Host and Port are the web GUI listen address.
	Host string
	Port int

	// NoRecorder serves the web GUI without watching logs or driving OBS.
	NoRecorder bool

	// Listener replaces Host and Port when set.
	Listener net.Listener

	ShutdownTimeout time.Duration
}

func (o *Options) addr() string {
	host := o.Host
	if host == "" {
		host = config.DefaultWebHost
	}
	port := o.Port
	if port <= 0 {
		port = config.DefaultWebPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}
