// Package main provides the CLI tool for the sticker-service.
// Uses Cobra for command parsing — Cobra is the standard Go CLI framework
// (used by kubectl, docker, hugo, and many others).
//
// Run with: go run ./cmd/cli convert cat.gif -o cat.webm
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fleveque/sticker-service/internal/config"
	"github.com/fleveque/sticker-service/internal/media"
	"github.com/fleveque/sticker-service/internal/model"
	"github.com/fleveque/sticker-service/internal/service"
	"github.com/fleveque/sticker-service/internal/storage"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootCmd creates the root command. Cobra builds a tree of commands:
// sticker-cli convert <file>
// sticker-cli quote --text "..." --author "..."
func rootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "sticker-cli",
		Short:        "Sticker service CLI tools",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $STICKER_CONFIG_PATH or ./config.yaml)")

	root.AddCommand(convertCmd(&configPath))
	root.AddCommand(quoteCmd(&configPath))
	root.AddCommand(capsCmd(&configPath))
	root.AddCommand(statsCmd(&configPath))
	return root
}

// env bundles what every subcommand needs. close releases it.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	core   *service.Core
	ctx    context.Context
	close  func()
}

func setup(configPath string) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	// Always use development mode for CLI
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	core, err := service.BuildCore(cfg, logger)
	if err != nil {
		return nil, err
	}

	// Ctrl+C cancels the running conversion; the transcoder cleans up its files.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	return &env{
		cfg:    cfg,
		logger: logger,
		core:   core,
		ctx:    ctx,
		close: func() {
			cancel()
			core.Close()
			_ = logger.Sync()
		},
	}, nil
}

func convertCmd(configPath *string) *cobra.Command {
	var (
		output   string
		mimeType string
		static   bool
	)

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert an image, GIF, SVG or video into a sticker",
		Args:  cobra.ExactArgs(1),
		// RunE returns an error (vs Run which doesn't). Cobra prints the error automatically.
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			if mimeType == "" {
				mimeType = mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
			}

			svc := service.NewStickerService(e.core.Converter, e.core.Renderer, nil, nil, e.logger)
			res, err := svc.Convert(e.ctx, model.MediaAsset{
				Data:     data,
				MimeType: mimeType,
				Filename: filepath.Base(path),
			}, media.ConvertOptions{Static: static})
			if err != nil {
				return err
			}

			if output == "" {
				output = strings.TrimSuffix(path, filepath.Ext(path)) + ".sticker" + res.Container.Extension()
			}
			if err := os.WriteFile(output, res.Data, 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s, %d bytes)\n", output, res.Kind, len(res.Data))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default <input>.sticker.<webp|webm>)")
	cmd.Flags().StringVar(&mimeType, "mime", "", "Declared MIME type (default guessed from the extension)")
	cmd.Flags().BoolVar(&static, "static", false, "Force a still sticker for GIF and video input")
	return cmd
}

func quoteCmd(configPath *string) *cobra.Command {
	var (
		text, author, theme   string
		avatarPath, badgePath string
		background, textColor string
		output                string
		hideAvatar            bool
	)

	cmd := &cobra.Command{
		Use:   "quote",
		Short: "Render a quote card sticker",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			if theme == "" {
				theme = e.cfg.Quote.Theme
			}
			req := model.QuoteRequest{
				Text:       text,
				AuthorName: author,
				Theme:      model.ParseTheme(theme),
				HideAvatar: hideAvatar,
			}
			if req.BackgroundColorOverride, err = optionalRGB(background); err != nil {
				return fmt.Errorf("--background: %w", err)
			}
			if req.TextColorOverride, err = optionalRGB(textColor); err != nil {
				return fmt.Errorf("--text-color: %w", err)
			}
			if avatarPath != "" {
				if req.AvatarImage, err = readImage(avatarPath); err != nil {
					return fmt.Errorf("--avatar: %w", err)
				}
			}
			if badgePath != "" {
				if req.BadgeImage, err = readImage(badgePath); err != nil {
					return fmt.Errorf("--badge: %w", err)
				}
			}

			svc := service.NewStickerService(e.core.Converter, e.core.Renderer, nil, nil, e.logger)
			out, err := svc.Quote(e.ctx, req)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, out.Data, 0644); err != nil {
				return fmt.Errorf("writing output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d bytes)\n", output, len(out.Data))
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "Quote body")
	cmd.Flags().StringVar(&author, "author", "", "Author display name")
	cmd.Flags().StringVar(&theme, "theme", "", "dark or light (default from config)")
	cmd.Flags().StringVar(&avatarPath, "avatar", "", "Avatar image file")
	cmd.Flags().StringVar(&badgePath, "badge", "", "Badge image file shown after the name")
	cmd.Flags().StringVar(&background, "background", "", "Bubble color override, #rrggbb")
	cmd.Flags().StringVar(&textColor, "text-color", "", "Text color override, #rrggbb")
	cmd.Flags().BoolVar(&hideAvatar, "hide-avatar", false, "Render without an avatar")
	cmd.Flags().StringVarP(&output, "output", "o", "quote.webp", "Output path")
	return cmd
}

func capsCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "caps",
		Short: "Show which optional features are available",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()
			return printJSON(cmd, e.core.Capabilities)
		},
	}
}

func statsCmd(configPath *string) *cobra.Command {
	var recent int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Summarize the conversion journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer e.close()

			db, err := storage.NewDatabase(e.cfg.Storage.DatabasePath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer db.Close()

			svc := service.NewStickerService(e.core.Converter, e.core.Renderer,
				storage.NewConversionRepository(db), nil, e.logger)
			stats, err := svc.Stats(e.ctx, recent)
			if err != nil {
				return err
			}
			return printJSON(cmd, stats)
		},
	}

	cmd.Flags().IntVar(&recent, "recent", 10, "Number of recent entries to list")
	return cmd
}

func optionalRGB(s string) (*model.RGB, error) {
	if s == "" {
		return nil, nil
	}
	c, err := model.ParseRGB(s)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func readImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, err := media.DecodeImage(data)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
