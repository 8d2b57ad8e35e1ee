package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ironsheep/photomosaic-mcp/internal/config"
	"github.com/ironsheep/photomosaic-mcp/internal/filter"
	"github.com/ironsheep/photomosaic-mcp/internal/imaging"
	"github.com/ironsheep/photomosaic-mcp/internal/mosaic"
	"github.com/ironsheep/photomosaic-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	logLevel   string

	libraryDir string
	indexPath  string

	cfg config.Config
	log = logrus.New()
)

var rootCmd = &cobra.Command{
	Use:   "mosaic-mcp",
	Short: "Photomosaic engine and MCP server",
	Long: `mosaic-mcp rebuilds images from a library of tile images.

Without a subcommand it runs the MCP server over stdin/stdout.
Configure it in your MCP client (e.g., Claude Desktop).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Resolve(configPath); err != nil {
			return err
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
		if libraryDir != "" {
			cfg.Library.Dir = libraryDir
		}
		if indexPath != "" {
			cfg.Library.IndexPath = indexPath
		}

		// Configure logging to stderr (stdout is for MCP protocol)
		log.SetOutput(os.Stderr)
		log.SetLevel(cfg.Level())
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		return nil
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server over stdin/stdout",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Photomosaic MCP server starting")

	server.Version = Version
	srv := server.New(cfg, server.WithLogger(log))
	if err := srv.Run(cmd.Context()); err != nil && err != context.Canceled {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the library color index, or load it if already persisted",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := mosaic.NewEngine(cfg, mosaic.WithLogger(log))
		ix, err := eng.BuildOrLoadIndex(cmd.Context(), cfg.Library.Dir, cfg.Library.IndexPath)
		if err != nil {
			return err
		}
		b := eng.Status().LastBuild()
		fmt.Printf("Color index %s at %s: %d tiles, %d quarantined (%s)\n",
			b.Source, cfg.Library.IndexPath, ix.Len(), b.Quarantined, b.Elapsed)
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete the persisted color index",
	RunE: func(cmd *cobra.Command, args []string) error {
		eng := mosaic.NewEngine(cfg, mosaic.WithLogger(log))
		if err := eng.ResetIndex(cfg.Library.IndexPath); err != nil {
			return err
		}
		fmt.Printf("Color index %s reset\n", cfg.Library.IndexPath)
		return nil
	},
}

var composeCmd = &cobra.Command{
	Use:   "compose <target>",
	Short: "Compose a photomosaic of the target image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		blockWidth, _ := cmd.Flags().GetInt("block-width")
		blockHeight, _ := cmd.Flags().GetInt("block-height")
		upscale, _ := cmd.Flags().GetInt("upscale")
		output, _ := cmd.Flags().GetString("output")
		grid, _ := cmd.Flags().GetString("grid")
		fidelity, _ := cmd.Flags().GetBool("fidelity")

		var gridColor imaging.RGB
		if grid != "" {
			c, err := imaging.ParseHex(grid)
			if err != nil {
				return fmt.Errorf("invalid --grid color: %w", err)
			}
			gridColor = c
		}

		target, err := imaging.Open(args[0])
		if err != nil {
			return err
		}
		eng := mosaic.NewEngine(cfg, mosaic.WithLogger(log))
		if _, err := eng.BuildOrLoadIndex(cmd.Context(), cfg.Library.Dir, cfg.Library.IndexPath); err != nil {
			return err
		}
		res, err := eng.ComposeMosaic(cmd.Context(), mosaic.Job{
			Target:        target,
			BlockWidth:    blockWidth,
			BlockHeight:   blockHeight,
			UpscaleFactor: upscale,
		})
		if err != nil {
			return err
		}
		if fidelity {
			cmp, err := imaging.Compare(res.Image, imaging.Upscale(target, upscale))
			if err != nil {
				return err
			}
			fmt.Printf("Fidelity: similarity %.3f, mean color diff %.2f, mean deltaE %.2f\n",
				cmp.SimilarityScore, cmp.AverageColorDiff, cmp.MeanDeltaE)
		}
		img := res.Image
		if grid != "" {
			img = imaging.DrawGrid(img, blockWidth, blockHeight, gridColor)
		}
		out, err := imaging.Deliver(img, output)
		if err != nil {
			return err
		}
		fmt.Printf("Mosaic %s written to %s (%dx%d, %d blocks)\n",
			res.JobID, out.Path, out.Width, out.Height, len(res.Placements))
		return nil
	},
}

var filterCmd = &cobra.Command{
	Use:   "filter <input>",
	Short: "Apply an image filter",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("filter")
		params, _ := cmd.Flags().GetString("params")
		output, _ := cmd.Flags().GetString("output")

		var opts []filter.DecodeOption
		if kind == string(filter.KindMosaic) {
			eng := mosaic.NewEngine(cfg, mosaic.WithLogger(log))
			if _, err := eng.BuildOrLoadIndex(cmd.Context(), cfg.Library.Dir, cfg.Library.IndexPath); err != nil {
				return err
			}
			opts = append(opts, filter.WithEngine(eng))
		}
		f, err := filter.Decode(kind, json.RawMessage(params), opts...)
		if err != nil {
			return err
		}
		img, err := imaging.Open(args[0])
		if err != nil {
			return err
		}
		filtered, err := f.Apply(cmd.Context(), img)
		if err != nil {
			return err
		}
		out, err := imaging.Deliver(filtered, output)
		if err != nil {
			return err
		}
		fmt.Printf("Filter %s written to %s (%dx%d)\n", f.Kind(), out.Path, out.Width, out.Height)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("mosaic-mcp %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "YAML config file (default $"+config.EnvConfigPath+")")
	pf.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default from config)")
	pf.StringVar(&libraryDir, "library", "", "Tile library directory (overrides library.dir)")
	pf.StringVar(&indexPath, "index", "", "Color index path (overrides library.index_path)")

	composeCmd.Flags().Int("block-width", 16, "Block width in pixels of the upscaled image")
	composeCmd.Flags().Int("block-height", 16, "Block height in pixels of the upscaled image")
	composeCmd.Flags().Int("upscale", 1, "Integer upscale factor applied before partitioning")
	composeCmd.Flags().StringP("output", "o", "", "Output image path; format chosen by extension")
	composeCmd.Flags().String("grid", "", "Draw block boundaries in this hex color (e.g., '#ff0000')")
	composeCmd.Flags().Bool("fidelity", false, "Report how closely the mosaic matches the upscaled target")
	_ = composeCmd.MarkFlagRequired("output")

	filterCmd.Flags().String("filter", "", "Filter kind")
	filterCmd.Flags().String("params", "", `Filter parameters as JSON, e.g. '{"radius":2}'`)
	filterCmd.Flags().StringP("output", "o", "", "Output image path; format chosen by extension")
	_ = filterCmd.MarkFlagRequired("filter")
	_ = filterCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(serveCmd, indexCmd, resetCmd, composeCmd, filterCmd, versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
