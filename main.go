package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/golang/glog"

	"github.com/varesa/BGtraP/config"
	"github.com/varesa/BGtraP/packet"
	"github.com/varesa/BGtraP/speaker"
)

var (
	configFile = flag.String("config", "", "TOML configuration file")
	listenAddr = flag.String("listen", "", "Address to accept BGP sessions on (overrides listen_addr)")
	routerID   = flag.String("router-id", "", "BGP identifier (overrides router_id)")
	decodeFile = flag.String("decode", "", "Decode a file holding a raw BGP byte stream and exit")
)

func main() {
	flag.Parse()
	defer glog.Flush()

	if *decodeFile != "" {
		if err := dumpFile(*decodeFile, os.Stdout); err != nil {
			glog.Exitf("Unable to decode %s: %v", *decodeFile, err)
		}
		return
	}

	cfg, err := loadConfig()
	if err != nil {
		glog.Exitf("Unable to load configuration: %v", err)
	}

	srv, err := speaker.New(cfg, nil)
	if err != nil {
		glog.Exitf("Unable to create speaker: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx); err != nil {
		glog.Exitf("Speaker failed: %v", err)
	}

	for _, r := range srv.RouteTable().Routes() {
		glog.Infof("Route %s via %v from %s", r.Prefix, r.NextHop, r.Peer)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Read(*configFile)
		if err != nil {
			return nil, err
		}
	}

	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *routerID != "" {
		cfg.RouterID = *routerID
	}

	return cfg, cfg.Validate()
}

// dumpFile dumps every message of the capture at path to w. Malformed
// messages are reported and skipped.
func dumpFile(path string, w io.Writer) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := packet.NewReader(f)
	for i := 1; ; i++ {
		msg, err := r.ReadMessage()
		if err == io.EOF {
			return nil
		}

		var ferr *packet.FrameError
		if errors.As(err, &ferr) {
			glog.Warningf("Message %d: %v", i, err)
			continue
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "Message %d\n", i)
		msg.Dump(w)
	}
}
