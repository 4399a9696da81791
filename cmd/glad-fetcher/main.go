package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	gladfetcher "github.com/hellenic-development/glad-fetcher"
	"github.com/hellenic-development/glad-fetcher/pkg/glad"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = glad.Version

var (
	dir                string
	origin             string
	timeout            time.Duration
	manifestPath       string
	keepArchiveOnError bool
	noProgress         bool
)

func main() {
	// An optional .env only seeds flag defaults.
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "glad-fetcher",
		Short:         "Download a generated OpenGL loader into third_party/glad",
		Long:          "Requests a C OpenGL 4.6 core loader from the glad web generator, downloads the generated archive and unpacks it into the dependency directory",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}

	rootCmd.Flags().StringVarP(&dir, "dir", "d", getEnv("GLAD_FETCHER_DIR", gladfetcher.DefaultDir), "Directory the loader is unpacked into; the archive is downloaded next to it")
	rootCmd.Flags().StringVar(&origin, "origin", getEnv("GLAD_FETCHER_ORIGIN", glad.DefaultOrigin), "glad generator origin")
	rootCmd.Flags().DurationVar(&timeout, "timeout", glad.DefaultTimeout, "Timeout for each HTTP request")
	rootCmd.Flags().StringVar(&manifestPath, "manifest", "", "Write a YAML record of the fetch to this path (optional)")
	rootCmd.Flags().BoolVar(&keepArchiveOnError, "keep-archive-on-error", false, "Leave the downloaded archive in place when extraction fails")
	rootCmd.Flags().BoolVar(&noProgress, "no-progress", false, "Disable the download progress bar")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "glad-fetcher version %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

func run(cmd *cobra.Command, args []string) error {
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	cyan.Println("\n🔧 glad loader fetcher")
	cyan.Println("======================")
	cyan.Println()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var progress io.Writer = os.Stderr
	if noProgress {
		progress = nil
	}

	result, err := gladfetcher.Run(ctx, gladfetcher.Options{
		Origin:             origin,
		Dir:                dir,
		Timeout:            timeout,
		KeepArchiveOnError: keepArchiveOnError,
		ManifestPath:       manifestPath,
		Progress:           progress,
		Logger:             &cliLogger{},
	})
	if err != nil {
		return err
	}

	cyan.Println("\n📦 Loader:")
	fmt.Printf("  • Source: %s\n", result.DownloadURL)
	fmt.Printf("  • Archive size: %d bytes\n", result.Bytes)
	fmt.Printf("  • Files: %d\n", len(result.Files))
	for _, f := range result.Files {
		fmt.Printf("    - %s\n", f)
	}

	green.Printf("\n✨ glad loader ready in %s\n\n", result.Dir)
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

// cliLogger implements gladfetcher.Logger with colored terminal output.
type cliLogger struct{}

func (l *cliLogger) Infof(format string, args ...any) {
	color.New(color.FgYellow).Printf(format+"\n", args...)
}

func (l *cliLogger) Warnf(format string, args ...any) {
	color.New(color.FgYellow).Printf("⚠ "+format+"\n", args...)
}

func (l *cliLogger) Errorf(format string, args ...any) {
	color.New(color.FgRed).Printf("✗ "+format+"\n", args...)
}
