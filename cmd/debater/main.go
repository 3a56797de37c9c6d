package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"

	appconfig "github.com/MayuCoding/DebateAgent/config"
	"github.com/MayuCoding/DebateAgent/internal/agent/core"
	"github.com/MayuCoding/DebateAgent/internal/agent/telemetry"
	srv "github.com/MayuCoding/DebateAgent/internal/server"
)

func main() {
	var root = &cobra.Command{
		Use:   "debater",
		Short: "Evidence-grounded debate counter-argument generator",
	}

	root.AddCommand(counterCmd(), serveCmd(), migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func counterCmd() *cobra.Command {
	var motion, side, format, argument, argumentFile string

	cmd := &cobra.Command{
		Use:   "counter",
		Short: "Generate a counter-argument for a student submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			if argument == "" && argumentFile != "" {
				b, err := os.ReadFile(argumentFile)
				if err != nil {
					return fmt.Errorf("read argument file: %w", err)
				}
				argument = string(b)
			}

			parsedSide, err := core.ParseSide(side)
			if err != nil {
				return err
			}
			parsedFormat, err := core.ParseFormat(format)
			if err != nil {
				return err
			}
			sub := core.Submission{
				Motion:          strings.TrimSpace(motion),
				StudentSide:     parsedSide,
				ArgumentText:    strings.TrimSpace(argument),
				RequestedFormat: parsedFormat,
			}
			if err := sub.Validate(); err != nil {
				return err
			}

			cfg, err := appconfig.LoadConfig()
			if err != nil {
				return err
			}
			tele := telemetry.NewTelemetry(cfg.Telemetry)
			agent, err := core.NewAgent(cfg, log.New(os.Stderr, "[AGENT] ", log.LstdFlags), tele)
			if err != nil {
				return err
			}
			defer agent.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.General.DefaultTimeout)
			defer cancel()

			result, err := agent.GenerateCounter(ctx, sub)
			if err != nil {
				return err
			}
			tele.LogSummary()

			fmt.Println(result.Rendered)
			return nil
		},
	}

	cmd.Flags().StringVar(&motion, "motion", "", "debate motion")
	cmd.Flags().StringVar(&side, "side", "pro", "student side (pro or con)")
	cmd.Flags().StringVar(&format, "format", "points", "response format (points, rebuttal_paragraphs, referenced_paragraphs, evidence_based)")
	cmd.Flags().StringVar(&argument, "argument", "", "student argument text")
	cmd.Flags().StringVar(&argumentFile, "argument-file", "", "file containing the student argument")
	_ = cmd.MarkFlagRequired("motion")

	return cmd
}

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = os.Getenv("DEBATER_HTTP_ADDR")
			}
			return srv.Run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}

func migrateCmd() *cobra.Command {
	var dir, direction string
	var steps int
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return srv.Migrate(dir, os.Getenv("DATABASE_URL"), direction, steps)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "file://migrations", "migrations source (file://migrations)")
	cmd.Flags().StringVar(&direction, "direction", "up", "up or down")
	cmd.Flags().IntVar(&steps, "steps", 0, "number of steps (0 = all)")
	return cmd
}
