package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/venturehub/community-chat/client"
	"github.com/venturehub/community-chat/internal"
	"github.com/venturehub/community-chat/projection"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Configuration from environment.
	_ = godotenv.Load()
	var config Config
	if err := envconfig.Process("chat", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := internal.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Live feed connection plus one-shot history fetch.
	conn, err := client.Dial(ctx, liveFeedURL(config.ServerURL), config.BufferSize, log)
	if err != nil {
		return exitRuntime, err
	}
	defer conn.Close()

	history := client.NewHistoryClient(config.ServerURL)
	session := client.NewSession(log, config.UserID, history, conn.Feed)
	session.OnApply = render

	sessionDone := make(chan error, 1)
	go func() { sessionDone <- session.Run(ctx) }()

	// 3. Server-side submission failures, reported to this connection only.
	go func() {
		for msg := range conn.Errors {
			color.Red.Printf("rejected: %s\n", msg)
		}
	}()

	// 4. Stdin lines become submissions.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			body := strings.TrimSpace(scanner.Text())
			if body == "" {
				continue
			}
			if err := conn.Submit(config.SenderID, body); err != nil {
				color.Red.Printf("send failed: %v\n", err)
				return
			}
		}
	}()

	color.Green.Println("Connected. Type a message and press enter.")

	select {
	case <-ctx.Done():
		return exitOK, nil
	case err := <-sessionDone:
		if err != nil && ctx.Err() == nil {
			return exitRuntime, err
		}
		return exitOK, nil
	}
}

func render(entry projection.Entry) {
	ts := entry.CreatedAt.Local().Format("15:04:05")
	name := entry.Sender.Name
	if name == "" {
		name = entry.SenderID
	}
	if entry.IsSender {
		color.Cyan.Printf("%s %s: ", ts, name)
	} else {
		color.Yellow.Printf("%s %s: ", ts, name)
	}
	fmt.Println(entry.Body)
}

// liveFeedURL derives the WebSocket endpoint from the HTTP base URL.
func liveFeedURL(base string) string {
	url := strings.Replace(base, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return url + "/ws"
}
