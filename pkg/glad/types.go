package glad

import (
	"net/url"
	"strings"
)

// Fixed loader configuration requested from the generator.
const (
	Language      = "c"
	Specification = "gl"
	APIGL         = "gl=4.6"
	APIGLES1      = "gles1=none"
	APIGLES2      = "gles2=none"
	APIGLSC2      = "glsc2=none"
	Profile       = "core"
	Loader        = "on"
)

// Extensions lists the OpenGL extensions compiled into the loader.
var Extensions = []string{
	"GL_ARB_bindless_texture",
	"GL_NV_shader_atomic_fp16_vector",
}

// GenerateRequest describes the loader the generator should build.
// The generator form repeats api and extensions, so both are slices.
type GenerateRequest struct {
	Language      string
	Specification string
	APIs          []string // "name=version" or "name=none"
	Profile       string
	Extensions    []string
	Loader        bool
}

// DefaultRequest returns the C / OpenGL 4.6 core request with the
// bindless-texture and fp16-atomics extensions and a generated loader.
func DefaultRequest() GenerateRequest {
	return GenerateRequest{
		Language:      Language,
		Specification: Specification,
		APIs:          []string{APIGL, APIGLES1, APIGLES2, APIGLSC2},
		Profile:       Profile,
		Extensions:    append([]string(nil), Extensions...),
		Loader:        true,
	}
}

// Encode renders the request as an application/x-www-form-urlencoded body.
// Field order follows the generator's own form; url.Values would sort keys.
func (r GenerateRequest) Encode() string {
	var parts []string
	add := func(key, value string) {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(value))
	}

	add("language", r.Language)
	add("specification", r.Specification)
	for _, api := range r.APIs {
		add("api", api)
	}
	add("profile", r.Profile)
	for _, ext := range r.Extensions {
		add("extensions", ext)
	}
	if r.Loader {
		add("loader", Loader)
	}

	return strings.Join(parts, "&")
}
