package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/quarrylabs/deskdriver/agent"
	"github.com/quarrylabs/deskdriver/desktop"
	"github.com/quarrylabs/deskdriver/internal/config"
	"github.com/quarrylabs/deskdriver/memory"
	"github.com/quarrylabs/deskdriver/responses"
	"github.com/quarrylabs/deskdriver/tools"
)

func main() {
	configPath := flag.String("config", "deskdriver.yaml", "path to YAML config (optional)")
	keep := flag.Bool("keep", false, "leave the desktop container running on exit")
	flag.Parse()

	// Basic env check; the client reads the key itself.
	if os.Getenv("OPENAI_API_KEY") == "" {
		fmt.Println("Missing OPENAI_API_KEY; export it before running.")
		os.Exit(1)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load prior transcript if exists
	persistPath := "transcript.json"
	transcript, err := memory.LoadTranscript(persistPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to load persisted transcript: %v\n", err)
	}

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	desk := desktop.New(desktop.Options{
		Name:           cfg.Desktop.Name,
		Image:          cfg.Desktop.Image,
		VNCPort:        cfg.Desktop.VNCPort,
		APIPort:        cfg.Desktop.APIPort,
		MarionettePort: cfg.Desktop.MarionettePort,
		SocatPort:      cfg.Desktop.SocatPort,
		Logger:         logger,
	})
	if err := desk.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if !*keep {
		// Stop with a fresh context: ctx is already canceled on Ctrl-C.
		defer func() {
			if err := desk.Stop(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "warning: %v\n", err)
			}
		}()
	}

	client := responses.NewClient(responses.ClientOptions{Logger: logger})
	ag := agent.New(client, desk, agent.Config{
		Model:         cfg.Model,
		DisplayWidth:  cfg.DisplayWidth,
		DisplayHeight: cfg.DisplayHeight,
		Environment:   cfg.Environment,
		MaxTurns:      cfg.MaxTurns,
		Tools:         tools.Registry(desk),
		SnapshotDir:   cfg.SnapshotDir,
	}, logger)

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Desktop agent ready (Ctrl-C to quit). Watch live via VNC on port %d or snapshots in %s.\n",
		desk.VNCPort(), cfg.SnapshotDir)

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	go func() {
		for scanner.Scan() {
			inputCh <- scanner.Text()
		}
		close(inputCh)
	}()

	readLine := func() (string, bool) {
		select {
		case <-ctx.Done():
			return "", false
		case line, ok := <-inputCh:
			return strings.TrimSpace(line), ok
		}
	}

	isQuit := func(s string) bool {
		low := strings.ToLower(s)
		return low == "exit" || low == "quit"
	}

outer:
	for {
		fmt.Print("\u001b[94mYou\u001b[0m: ")
		command, ok := readLine()
		if !ok {
			break
		}
		if command == "" {
			continue
		}
		if isQuit(command) {
			break
		}

		transcript = append(transcript, memory.Entry{Role: "user", Text: command})
		res := ag.Action(ctx, command, false)

	inner:
		for {
			switch res.Status {
			case agent.StatusNeedsInput:
				for _, msg := range res.Messages {
					if t := msg.Text(); t != "" {
						fmt.Printf("\u001b[93mAgent asks\u001b[0m: %s\n", t)
						transcript = append(transcript, memory.Entry{Role: "assistant", Text: t})
					}
				}
				fmt.Print("Enter your response (or 'exit'/'quit'): ")
				reply, ok := readLine()
				if !ok || isQuit(reply) {
					break inner
				}
				transcript = append(transcript, memory.Entry{Role: "user", Text: reply})
				res = ag.Action(ctx, reply, false)

			case agent.StatusNeedsSafetyCheck:
				for _, check := range res.SafetyChecks {
					fmt.Printf("Pending safety check: %s\n", check.Message)
				}
				fmt.Print("Type 'ack' to confirm, or 'exit'/'quit': ")
				answer, ok := readLine()
				if !ok || isQuit(answer) {
					break inner
				}
				if strings.EqualFold(answer, "ack") {
					fmt.Println("Acknowledged. Proceeding with the computer call...")
					res = ag.Action(ctx, "", true)
				}

			case agent.StatusError:
				fmt.Fprintf(os.Stderr, "error: %v\n", res.Err)
				break inner

			default: // StatusComplete
				if text := res.Response.Text(); text != "" {
					fmt.Printf("\u001b[93mAgent\u001b[0m: %s\n", text)
					transcript = append(transcript, memory.Entry{Role: "assistant", Text: text})
				}
				break inner
			}
		}

		if err := memory.SaveTranscript(persistPath, transcript); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save transcript: %v\n", err)
		}

		select {
		case <-ctx.Done():
			break outer
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: stdin read error: %v\n", err)
	}
}
