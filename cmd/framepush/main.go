package main

import (
	"context"
	"image"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/junsooki/AirOverlay/internal/capture"
	"github.com/junsooki/AirOverlay/internal/config"
	"github.com/junsooki/AirOverlay/internal/encoder"
	"github.com/junsooki/AirOverlay/internal/permissions"
	"github.com/junsooki/AirOverlay/internal/pusher"
)

func main() {
	cfg := config.ParsePushFlags()

	log.Printf("framepush starting")
	log.Printf("  Overlay: %s", cfg.URL)
	log.Printf("  FPS:     %d", cfg.FPS)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src pusher.Source
	if cfg.Screen {
		if !permissions.HasScreenRecording() {
			log.Println("Screen Recording permission not granted. Requesting...")
			permissions.RequestScreenRecording()
			log.Fatal("Please grant Screen Recording permission in System Settings and restart.")
		}
		var region image.Rectangle
		if cfg.Region != "" {
			r, err := config.ParseRegion(cfg.Region)
			if err != nil {
				log.Fatalf("region: %v", err)
			}
			region = image.Rect(r[0], r[1], r[0]+r[2], r[1]+r[3])
		}
		cap, err := capture.NewScreenCapturer(cfg.Display, region, cfg.FPS)
		if err != nil {
			log.Fatalf("capture init: %v", err)
		}
		enc, err := encoder.New(cfg.Format, cfg.Quality)
		if err != nil {
			log.Fatalf("encoder: %v", err)
		}
		if err := cap.Start(); err != nil {
			log.Fatalf("capture start: %v", err)
		}
		defer cap.Stop()
		src = pusher.NewCaptureSource(cap.Frames(), enc)
		log.Printf("  Source:  display %d (%s)", cfg.Display, cfg.Format)
	} else {
		src = pusher.NewFileSource(cfg.Files)
		log.Printf("  Source:  %d file(s)", len(cfg.Files))
	}

	c := pusher.NewClient(cfg.URL)
	if err := c.Connect(); err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer c.Close()

	if err := pusher.Run(ctx, c, src, cfg.Interval); err != nil {
		log.Printf("push: %v", err)
	}
	log.Println("Shutting down...")
}
