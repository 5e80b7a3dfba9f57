package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/aliskhannn/image-compressor/internal/api/handlers/compress"
	"github.com/aliskhannn/image-compressor/internal/api/middleware"
)

// Setup builds the API router. origins lists the browser origins allowed to
// call the API; requests from any other origin get no CORS headers.
func Setup(h *compress.Handler, origins []string) *ginext.Engine {
	r := ginext.New()

	r.Use(middleware.CORSMiddleware(origins))
	r.Use(ginext.Logger())
	r.Use(ginext.Recovery())

	api := r.Group("/api")

	api.POST("/compress", h.Compress)   // compressing a batch of paths
	api.GET("/info", h.Info)            // describing a file before processing
	api.GET("/outcomes/:id", h.Outcome) // getting a journaled outcome by id
	api.GET("/profiles", h.Profiles)    // listing configured profiles

	return r
}
