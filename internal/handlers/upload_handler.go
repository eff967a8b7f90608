package handlers

import (
	"fmt"

	"github.com/arzan03/FitnexFitness/internal/services"
	"github.com/gofiber/fiber/v2"
)

// maxUploadSize bounds profile photos and class images.
const maxUploadSize = 5 << 20

// UploadImage stores the multipart "file" field and returns its URL.
func (h *Handler) UploadImage(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fmt.Errorf("failed to retrieve file: %w", services.ErrBadRequest)
	}
	if fileHeader.Size > maxUploadSize {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "File too large")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fmt.Errorf("failed to open file: %w", services.ErrBadRequest)
	}
	defer file.Close()

	url, err := h.media.Upload(c.UserContext(), fileHeader.Filename, fileHeader.Header.Get("Content-Type"), file, fileHeader.Size)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"url": url})
}
