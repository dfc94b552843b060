package middleware

import (
	"io"
	"net/http"

	"github.com/andybalholm/brotli"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Compress negotiates brotli, then gzip or deflate, for JSON responses.
func Compress(level int) func(next http.Handler) http.Handler {
	compressor := chimiddleware.NewCompressor(level, "application/json", "application/x-yaml", "text/plain")
	compressor.SetEncoder("br", func(w io.Writer, level int) io.Writer {
		return brotli.NewWriterLevel(w, level)
	})
	return compressor.Handler
}
