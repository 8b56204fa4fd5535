package main

import (
	"context"
	"encoding/json"
	"log"
	"net"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/junsooki/AirOverlay/internal/config"
	"github.com/junsooki/AirOverlay/internal/decoder"
	"github.com/junsooki/AirOverlay/internal/display"
	"github.com/junsooki/AirOverlay/internal/ingest"
	"github.com/junsooki/AirOverlay/internal/peer"
	"github.com/junsooki/AirOverlay/internal/relay"
	"github.com/junsooki/AirOverlay/internal/signaling"
)

func main() {
	cfg := config.ParseFlags()

	log.Printf("AirOverlay starting")
	log.Printf("  Listen:       %s", cfg.Addr)
	log.Printf("  Min payload:  %d bytes", cfg.MinPayload)
	log.Printf("  Relay cap:    %d", cfg.RelayCap)
	log.Printf("  WebRTC:       %v", cfg.WebRTC)
	log.Printf("  Bad frames:   %s", cfg.OnBadFrame)

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		log.Fatalf("listen on %s: %v", cfg.Addr, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	frames := relay.New(cfg.RelayCap)
	hub := ingest.NewHub(frames, cfg.MinPayload)
	srv := ingest.NewServer(hub)
	if cfg.WebRTC {
		srv.Handle("/rtc", signaling.NewHandler(func(send func(json.RawMessage)) (signaling.Session, error) {
			p, err := peer.NewIngest(hub, send)
			if err != nil {
				return nil, err
			}
			return p, nil
		}))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return srv.Serve(gctx, ln) })

	// The window opens with the first frame. Ebitengine RunGame must be on
	// the main goroutine (macOS requirement).
	disp := display.NewEbitenOverlay(gctx, frames, decoder.NewImageDecoder(), cfg)
	if first, err := frames.Recv(gctx); err == nil {
		if err := disp.Show(first); err != nil {
			log.Fatalf("display: %v", err)
		}
		if err := disp.Run(); err != nil {
			log.Fatalf("display: %v", err)
		}
		log.Println("Overlay closed; still echoing until interrupted")
	}
	frames.Close()

	if err := g.Wait(); err != nil {
		log.Fatalf("network: %v", err)
	}
	st := frames.Stats()
	log.Printf("Shut down (frames sent=%d shown=%d dropped=%d)", st.Sent, st.Received, st.Dropped)
}
