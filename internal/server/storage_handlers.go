package server

import (
	"strconv"

	"reelhub/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// ViewFile handles GET /storage/buckets/:bucket/files/:id/view
func (s *Server) ViewFile(c *fiber.Ctx) error {
	file, f, err := s.rt.Backend.Storage().Open(c.UserContext(), c.Params("bucket"), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, file.ContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=31536000, immutable")
	// SendStream closes f once the body is written.
	return c.SendStream(f, int(file.Size))
}

// PreviewFile handles GET /storage/buckets/:bucket/files/:id/preview?width=
func (s *Server) PreviewFile(c *fiber.Ctx) error {
	width, _ := strconv.Atoi(c.Query("width"))
	data, err := s.rt.Backend.Storage().Preview(c.UserContext(), c.Params("bucket"), c.Params("id"), width)
	if err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, storage.PreviewContentType)
	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.Send(data)
}
