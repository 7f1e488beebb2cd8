// Command httpmux-get fetches one or more HTTPS URLs through the
// httpmux transport, exercising connection reuse when several URLs
// share a destination.
//
//	httpmux-get [-config httpmux.yaml] [-insecure] URL [URL...]
package main

import (
	"crypto/tls"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"dqx0.com/go/transports/httpmux"
	"dqx0.com/go/transports/internal/obs"
)

func main() {
	configPath := flag.String("config", "", "optional YAML config file")
	insecure := flag.Bool("insecure", false, "skip TLS certificate verification")
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: httpmux-get [-config file] [-insecure] URL [URL...]")
		os.Exit(2)
	}

	cfg := httpmux.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = httpmux.LoadConfig(*configPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	zl, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	loop := httpmux.NewEventLoop()

	var tlsCfg *tls.Config
	if *insecure {
		tlsCfg = &tls.Config{InsecureSkipVerify: true}
	}

	queue := newFifoQueue()
	t := &httpmux.Transport{
		Backend: &httpmux.NetBackend{
			DialTimeout: cfg.DialTimeout(),
			TLSConfig:   tlsCfg,
			Loop:        loop,
		},
		Queue:          queue,
		IdleTimeout:    cfg.IdleTimeout(),
		MaxBufferBytes: cfg.MaxBufferBytes,
		Logger:         obs.ZapLogger{S: zl.Sugar(), Min: logLevel(cfg.Logging.Level)},
	}
	queue.t = t

	var wg sync.WaitGroup
	exit := 0
	var exitMu sync.Mutex

	for _, raw := range flag.Args() {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme != "https" || u.Hostname() == "" {
			fmt.Fprintf(os.Stderr, "skipping %q: need an https URL\n", raw)
			continue
		}
		host := u.Hostname()
		port := 443
		if p := u.Port(); p != "" {
			port, _ = strconv.Atoi(p)
		}
		path := u.RequestURI()
		if path == "" {
			path = "/"
		}
		header := fmt.Sprintf("GET %s HTTP/1.1\r\nHost: %s\r\nUser-Agent: httpmux-get\r\nConnection: keep-alive\r\n", path, u.Host)

		wg.Add(1)
		loop.Do(func() {
			c := t.GetOrCreate(host, port)
			queue.enqueue(c, header, nil, func(resp *httpmux.Response, err error) {
				defer wg.Done()
				if err != nil {
					fmt.Fprintf(os.Stderr, "%s: %v\n", raw, err)
					exitMu.Lock()
					exit = 1
					exitMu.Unlock()
					return
				}
				fmt.Printf("%s: %d %s (%d bytes)\n", raw, resp.StatusCode, resp.Reason, len(resp.Body))
			})
			// A reused live connection gets no connect event, so kick
			// the queue directly.
			if c.Connected() {
				queue.Next(c)
			}
		})
	}

	wg.Wait()
	done := make(chan struct{})
	loop.Do(func() {
		_ = t.Shutdown()
		close(done)
	})
	<-done
	loop.Close()
	_ = zl.Sync()
	os.Exit(exit)
}

func logLevel(s string) obs.Level {
	switch s {
	case "debug":
		return obs.Debug
	case "warn":
		return obs.Warn
	case "error":
		return obs.Error
	default:
		return obs.Info
	}
}
