// Package gladfetcher vendors a generated OpenGL function loader from the glad
// web generator (https://glad.dav1d.de).
//
// The generator is asked for a C loader targeting OpenGL 4.6 core with the
// GL_ARB_bindless_texture and GL_NV_shader_atomic_fp16_vector extensions. Its
// result page links to a per-request archive, which is downloaded next to the
// destination directory, unpacked, and removed.
//
// The CLI lives in cmd/glad-fetcher; this root package exposes the same
// pipeline as a Go API.
//
// # Import
//
// The module path contains a hyphen but Go package names cannot, so the
// package is named gladfetcher:
//
//	import "github.com/hellenic-development/glad-fetcher" // package gladfetcher
//
// # Quick start
//
//	result, err := gladfetcher.Run(ctx, gladfetcher.Options{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Dir, len(result.Files))
//
// With zero Options the loader ends up in third_party/glad and the temporary
// archive at third_party/glad.zip is deleted afterwards.
//
// # Failures
//
// Nothing is retried. A changed generator page surfaces as
// [glad.ErrDownloadLinkNotFound], HTTP failures as [*glad.StatusError], and
// archive entries escaping the destination as [bundle.ErrIllegalPath]. The
// temporary archive is removed on every path unless
// [Options.KeepArchiveOnError] is set.
//
// # Logging
//
// Pass a [Logger] implementation in [Options.Logger] to receive progress
// messages. A nil Logger silences all output.
package gladfetcher
