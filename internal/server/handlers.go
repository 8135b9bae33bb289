package server

import (
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/planbiir/gpxpack/internal/codec"
	"github.com/planbiir/gpxpack/internal/gpx"
	"github.com/planbiir/gpxpack/internal/processor"
	"github.com/planbiir/gpxpack/internal/upload"
)

// FormField is the multipart field holding an uploaded GPX file.
const FormField = "gpx"

func RegisterRoutes(r fiber.Router, middleware ...fiber.Handler) {
	for _, m := range middleware {
		r.Use(m)
	}

	r.Post("/validate", func(c *fiber.Ctx) error {
		text, err := readGPX(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"valid": processor.ValidateGPX(text)})
	})

	r.Post("/reduce", func(c *fiber.Ctx) error {
		text, err := readGPX(c)
		if err != nil {
			return err
		}
		data, err := processor.ReduceCompressGPX(text)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, "application/gzip")
		return c.Send(data)
	})

	r.Post("/decompress", func(c *fiber.Ctx) error {
		if len(c.Body()) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "empty body")
		}
		text, err := codec.DecompressLimit(c.Body(), gpx.MaxInputBytes)
		if err != nil {
			return err
		}
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
		return c.SendString(text)
	})

	r.Post("/analyze", func(c *fiber.Ctx) error {
		text, err := readGPX(c)
		if err != nil {
			return err
		}
		analysis, err := processor.AnalyzeGPX(text)
		if err != nil {
			return err
		}
		return c.JSON(analysis)
	})

	r.Post("/process", func(c *fiber.Ctx) error {
		text, err := readGPX(c)
		if err != nil {
			return err
		}
		result, err := processor.ProcessGPXWithAnalytics(text)
		if err != nil {
			return err
		}
		return c.JSON(result)
	})
}

// readGPX returns the GPX text of a request: a multipart upload in the
// "gpx" field, a gzipped body, or a plain body.
func readGPX(c *fiber.Ctx) (string, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile(FormField)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, "missing gpx file")
		}
		f, err := fh.Open()
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer f.Close()

		data, err := io.ReadAll(f)
		if err != nil {
			return "", fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return upload.Extract(fh.Filename, data)
	}

	body := c.Body()
	if len(body) == 0 {
		return "", fiber.NewError(fiber.StatusBadRequest, "empty body")
	}
	if c.Get(fiber.HeaderContentType) == "application/gzip" {
		return codec.DecompressLimit(body, gpx.MaxInputBytes)
	}
	return string(body), nil
}
