//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"strconv"

	"github.com/otiai10/gosseract/v2"
)

type tesseractEngine struct {
	clientFactory func() *gosseract.Client
}

func newEngine() engine {
	return &tesseractEngine{clientFactory: gosseract.NewClient}
}

func (e *tesseractEngine) name() string { return "gosseract" }

func (e *tesseractEngine) version() (string, error) {
	c := e.clientFactory()
	defer c.Close()
	v := c.Version()
	if v == "" {
		return "", fmt.Errorf("tesseract library did not report a version")
	}
	return v, nil
}

func (e *tesseractEngine) recognize(ctx context.Context, img []byte, opts Options) (PageBoxes, error) {
	c := e.clientFactory()
	defer c.Close()

	if opts.TessdataPrefix != "" {
		if err := c.SetTessdataPrefix(opts.TessdataPrefix); err != nil {
			return PageBoxes{}, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := c.SetLanguage(opts.Languages...); err != nil {
		return PageBoxes{}, fmt.Errorf("failed to set language: %w", err)
	}
	if opts.PageSegMode > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(opts.PageSegMode)); err != nil {
			return PageBoxes{}, fmt.Errorf("failed to set page segmentation mode: %w", err)
		}
	}
	if opts.DPI > 0 {
		if err := c.SetVariable("user_defined_dpi", strconv.Itoa(opts.DPI)); err != nil {
			return PageBoxes{}, fmt.Errorf("failed to set dpi: %w", err)
		}
	}
	for k, v := range opts.Variables {
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return PageBoxes{}, fmt.Errorf("failed to set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(img); err != nil {
		return PageBoxes{}, fmt.Errorf("failed to set image: %w", err)
	}

	var page PageBoxes
	levels := []struct {
		level gosseract.PageIteratorLevel
		dst   *[]EngineBox
	}{
		{gosseract.RIL_BLOCK, &page.Blocks},
		{gosseract.RIL_TEXTLINE, &page.Lines},
		{gosseract.RIL_WORD, &page.Words},
		{gosseract.RIL_SYMBOL, &page.Symbols},
	}
	for _, l := range levels {
		select {
		case <-ctx.Done():
			return PageBoxes{}, ctx.Err()
		default:
		}
		boxes, err := c.GetBoundingBoxes(l.level)
		if err != nil {
			return PageBoxes{}, fmt.Errorf("failed to get bounding boxes: %w", err)
		}
		out := make([]EngineBox, 0, len(boxes))
		for _, b := range boxes {
			out = append(out, EngineBox{Rect: b.Box, Text: b.Word, Confidence: b.Confidence})
		}
		*l.dst = out
	}
	return page, nil
}
