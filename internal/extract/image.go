package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
)

// extractImage runs tesseract over the image bytes. A missing tesseract
// binary is reported as MissingSystemDependency so the caller can tell the
// user to install it rather than showing a generic failure.
func (p *Pipeline) extractImage(ctx context.Context, src Source) (Result, error) {
	const name = "ocr"

	if _, err := exec.LookPath("tesseract"); err != nil {
		return Result{}, fail(name, MissingSystemDependency, errors.New("tesseract not found in PATH"))
	}

	f, err := os.CreateTemp("", "ocr-*.img")
	if err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}
	defer func() { f.Close(); os.Remove(f.Name()) }()
	if _, err := f.Write(src.Data); err != nil {
		return Result{}, fail(name, UnsupportedFormat, err)
	}

	args := []string{f.Name(), "stdout"}
	if p.ocrLang != "" {
		args = append(args, "-l", p.ocrLang)
	}
	if p.ocrTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.ocrTimeout)
		defer cancel()
	}
	cmd := exec.CommandContext(ctx, "tesseract", args...)
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return Result{}, fail(name, UnsupportedFormat, fmt.Errorf("tesseract: %s", stderr.String()))
	}

	text := out.String()
	if len(collapseWhitespace(text)) < 10 {
		return Result{}, fail(name, EmptyContent, errors.New("image has no readable text, or quality is too low for ocr"))
	}
	return Result{Title: src.Name, Text: text, Strategy: name}, nil
}
