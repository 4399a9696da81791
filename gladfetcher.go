package gladfetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/hellenic-development/glad-fetcher/pkg/bundle"
	"github.com/hellenic-development/glad-fetcher/pkg/glad"
	"github.com/hellenic-development/glad-fetcher/pkg/manifest"
	"github.com/hellenic-development/glad-fetcher/pkg/progress"
)

// DefaultDir is where the loader is unpacked when Options.Dir is empty.
const DefaultDir = "third_party/glad"

// Options configures a fetch.
type Options struct {
	Origin             string        // generator origin, default glad.DefaultOrigin
	Dir                string        // extraction directory, default DefaultDir
	Timeout            time.Duration // per request, default glad.DefaultTimeout
	HTTPClient         *http.Client  // overrides Timeout when set
	KeepArchiveOnError bool          // leave the temporary archive behind if extraction fails
	ManifestPath       string        // empty = no manifest
	Progress           io.Writer     // nil = no progress bar
	Logger             Logger        // nil = no logging
}

// Logger receives progress messages. A nil Logger means silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Result describes a completed fetch.
type Result struct {
	DownloadURL string
	ArchivePath string   // temporary archive, removed on success
	Dir         string   // extraction directory
	Files       []string // extracted files, slash-separated and relative to Dir
	Bytes       int64    // archive size
}

func (o *Options) logInfo(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Infof(f, a...)
	}
}

func (o *Options) logWarn(f string, a ...any) {
	if o.Logger != nil {
		o.Logger.Warnf(f, a...)
	}
}

func (o *Options) applyDefaults() {
	if o.Origin == "" {
		o.Origin = glad.DefaultOrigin
	}
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if o.Timeout <= 0 {
		o.Timeout = glad.DefaultTimeout
	}
}

// NewClient builds the generator client described by opts.
func NewClient(opts Options) (*glad.Client, error) {
	opts.applyDefaults()

	clientOpts := []glad.Option{glad.WithTimeout(opts.Timeout)}
	if opts.HTTPClient != nil {
		clientOpts = []glad.Option{glad.WithHTTPClient(opts.HTTPClient)}
	}

	return glad.NewClient(opts.Origin, clientOpts...)
}

// Run asks the generator for a loader bundle, downloads it and unpacks it
// into opts.Dir.
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.applyDefaults()

	client, err := NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("create client: %w", err)
	}

	opts.logInfo("Requesting loader from %s...", client.Origin())
	downloadURL, err := client.ResolveDownloadURL(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve download url: %w", err)
	}
	opts.logInfo("Generate glad zip url: %s", downloadURL)

	result, err := DownloadAndExtract(ctx, client, downloadURL, opts)
	if err != nil {
		return nil, fmt.Errorf("download and extract: %w", err)
	}

	if opts.ManifestPath != "" {
		m := &manifest.Manifest{
			Source:    result.DownloadURL,
			Generator: client.Origin(),
			Request:   glad.DefaultRequest().Encode(),
			FetchedAt: time.Now().UTC(),
			Dir:       filepath.ToSlash(result.Dir),
			Bytes:     result.Bytes,
			Files:     result.Files,
		}
		if err := manifest.Write(opts.ManifestPath, m); err != nil {
			return nil, err
		}
		opts.logInfo("Wrote manifest to %s", opts.ManifestPath)
	}

	return result, nil
}

// ArchivePath returns the temporary archive location for dir: a zip named
// after dir, next to it.
func ArchivePath(dir string) string {
	dir = filepath.Clean(dir)
	return filepath.Join(filepath.Dir(dir), filepath.Base(dir)+".zip")
}

// DownloadAndExtract fetches downloadURL into ArchivePath(opts.Dir), unpacks it
// into opts.Dir and removes the archive.
func DownloadAndExtract(ctx context.Context, client *glad.Client, downloadURL string, opts Options) (*Result, error) {
	opts.applyDefaults()

	archivePath := ArchivePath(opts.Dir)
	if err := os.MkdirAll(filepath.Dir(archivePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", filepath.Dir(archivePath), err)
	}

	cleanup := !opts.KeepArchiveOnError
	defer func() {
		if cleanup {
			os.Remove(archivePath)
		}
	}()

	opts.logInfo("Downloading %s...", downloadURL)
	n, err := downloadTo(ctx, client, downloadURL, archivePath, &opts)
	if err != nil {
		if opts.KeepArchiveOnError {
			opts.logWarn("Archive left at %s", archivePath)
		}
		return nil, err
	}

	files, err := bundle.Extract(archivePath, opts.Dir)
	if err != nil {
		if opts.KeepArchiveOnError {
			opts.logWarn("Archive left at %s", archivePath)
		}
		return nil, fmt.Errorf("extract: %w", err)
	}
	opts.logInfo("Unzip glad to: %s", opts.Dir)

	cleanup = false
	if err := os.Remove(archivePath); err != nil {
		return nil, fmt.Errorf("remove archive: %w", err)
	}

	return &Result{
		DownloadURL: downloadURL,
		ArchivePath: archivePath,
		Dir:         opts.Dir,
		Files:       files,
		Bytes:       n,
	}, nil
}

// downloadTo writes the archive at downloadURL to path.
func downloadTo(ctx context.Context, client *glad.Client, downloadURL, path string, opts *Options) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file %q: %w", path, err)
	}

	bar := progress.New(opts.Progress, filepath.Base(path))
	n, err := client.Download(ctx, downloadURL, f, bar.Reader)
	bar.Done(err)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("download: %w", err)
	}

	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to write file %q: %w", path, err)
	}

	return n, nil
}
