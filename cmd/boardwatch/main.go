// Copyright 2026 The Taskboard Authors
// SPDX-License-Identifier: Apache-2.0

// boardwatch is a terminal client for the shared task board. It
// connects a live session to a board backend, mirrors the project
// list (and, with --room, one project's tasks), and reprints the
// board whenever any participant changes it.
//
// Configuration is read from the yaml file named by the
// TASKBOARD_CONFIG environment variable or the --config flag; flags
// override file values field by field.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/taskboard-dev/taskboard/board"
	"github.com/taskboard-dev/taskboard/lib/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "boardwatch: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var serverURL string
	var username string
	var room string
	var logLevel string

	flagSet := pflag.NewFlagSet("boardwatch", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to yaml config file (default: $TASKBOARD_CONFIG)")
	flagSet.StringVar(&serverURL, "server", "", "base URL of the board backend (e.g., http://localhost:5000)")
	flagSet.StringVar(&username, "username", "", "display name announced to other room members")
	flagSet.StringVar(&room, "room", "", "project to join on startup, by ID or name")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, or error")
	flagSet.BoolP("help", "h", false, "show help")

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if username != "" {
		cfg.Username = username
	}
	if room != "" {
		cfg.Room = room
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return watch(ctx, cfg, logger)
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

// watch runs a session until the context is cancelled, printing the
// full board state after every change.
func watch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	client, err := board.NewClient(board.ClientConfig{
		ServerURL: cfg.ServerURL,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	channel, err := board.NewChannel(board.ChannelConfig{
		ServerURL: cfg.ServerURL,
		HubPath:   cfg.HubPath,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// Changes can arrive faster than the terminal can paint, so the
	// change hook only pokes a channel and the render loop coalesces
	// bursts into one repaint.
	changed := make(chan struct{}, 1)
	session, err := board.NewSession(board.SessionConfig{
		Client:   client,
		Channel:  channel,
		Username: cfg.Username,
		Logger:   logger,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})
	if err != nil {
		return err
	}

	if err := session.Connect(ctx); err != nil {
		return err
	}
	defer session.Close()

	if cfg.Room != "" {
		if err := joinByNameOrID(ctx, session, cfg.Room); err != nil {
			return err
		}
	}

	render(session)
	for {
		select {
		case <-ctx.Done():
			fmt.Println()
			logger.Info("shutting down")
			return nil
		case <-changed:
			render(session)
		}
	}
}

// joinByNameOrID resolves the --room value against the project mirror
// and joins the matching room. Names match case-insensitively because
// the board stores project names upper-cased.
func joinByNameOrID(ctx context.Context, session *board.Session, room string) error {
	for _, project := range session.Projects() {
		if project.ID.String() == room || strings.EqualFold(project.Name, room) {
			return session.JoinRoom(ctx, project)
		}
	}
	return fmt.Errorf("no project matching %q", room)
}

func render(session *board.Session) {
	projects := session.Projects()
	tasks := session.Tasks()
	room := session.CurrentRoom()

	fmt.Printf("--- board (%s, %d projects) ---\n", session.State(), len(projects))
	for _, project := range projects {
		marker := " "
		if project.ID == room.ID {
			marker = "*"
		}
		fmt.Printf("%s %-8s %s\n", marker, project.ID, project.Name)
	}
	if room.ID.IsZero() {
		return
	}

	fmt.Printf("--- %s (%d tasks) ---\n", room.Label, len(tasks))
	for _, task := range tasks {
		state := "[ ]"
		if task.Completed {
			state = "[x]"
		}
		line := fmt.Sprintf("%s %s", state, task.Text)
		if task.Tag != "" {
			line += " (" + task.Tag + ")"
		}
		if task.Username != "" {
			line += " @" + task.Username
		}
		fmt.Println(line)
	}
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `boardwatch watches a shared task board.

It connects to the board backend, mirrors the project list in real
time, and with --room also mirrors one project's task list. The board
is reprinted whenever any participant changes it.

Usage:
  boardwatch [flags]

Examples:
  # Watch the project list
  boardwatch --server http://localhost:5000 --username alice

  # Watch one project's tasks
  boardwatch --server http://localhost:5000 --username alice --room GROCERIES

Flags:
`)
	flagSet.SetOutput(os.Stderr)
	flagSet.PrintDefaults()
}
