package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"roomchat/client"
	"roomchat/domain/event"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gookit/color"
)

// Exit codes for the tester.
const (
	exitOK      = 0
	exitRuntime = 1
)

type report struct {
	sent     atomic.Int64
	received atomic.Int64
	failures atomic.Int64
}

func main() {
	code, err := run()
	if err != nil {
		color.Red.Printf("Tester error: %v\n", err)
	}
	os.Exit(code)
}

// run opens N connections to one room, each sending M messages, and counts
// the chat-message frames delivered back.
func run() (int, error) {
	url := flag.String("url", "ws://localhost:3001/ws", "Websocket endpoint")
	clients := flag.Int("clients", 10, "Number of connections")
	messages := flag.Int("messages", 20, "Messages per connection")
	room := flag.String("room", "global", "Room to join")
	interval := flag.Duration("interval", 50*time.Millisecond, "Delay between two messages of one connection")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	color.Cyan.Printf(">>> %d clients x %d messages on %s (room %s)\n", *clients, *messages, *url, *room)
	start := time.Now()
	var r report
	var wg sync.WaitGroup
	for i := 0; i < *clients; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := simulate(ctx, *url, fmt.Sprintf("tester-%d", i), *room, *messages, *interval, &r); err != nil {
				r.failures.Add(1)
				color.Yellow.Printf("client %d: %v\n", i, err)
			}
		}(i)
	}
	wg.Wait()

	expected := int64(*clients) * r.sent.Load()
	color.Green.Printf("Sent %d, received %d of %d expected in %s\n",
		r.sent.Load(), r.received.Load(), expected, time.Since(start).Round(time.Millisecond))
	if r.failures.Load() > 0 {
		return exitRuntime, fmt.Errorf("%d clients failed", r.failures.Load())
	}
	return exitOK, nil
}

func simulate(ctx context.Context, url, name, room string, messages int, interval time.Duration, r *report) error {
	c, err := client.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()

	if room == "global" {
		err = c.Join(name)
	} else {
		err = c.JoinRoom(room, name)
	}
	if err != nil {
		return err
	}

	go func() {
		for frame := range c.Frames() {
			if frame.Event == event.ChatMessage {
				r.received.Add(1)
			}
		}
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for i := 0; i < messages; i++ {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if err := c.SendMessage(room, name, fmt.Sprintf("message %d from %s", i, name)); err != nil {
			return err
		}
		r.sent.Add(1)
	}
	// Let the last broadcasts arrive
	time.Sleep(time.Second)
	return nil
}
