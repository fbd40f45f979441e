package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/cinelog/ticket-scanner/internal/common"
)

// TextConfidenceThreshold is the blended confidence below which a result is
// flagged as low quality.
const TextConfidenceThreshold = 0.6

// Result is the raw text recovered from a ticket image.
type Result struct {
	Text       string
	Language   string
	Duration   time.Duration
	Warnings   []string
	Confidence float32
}

// Extractor runs tesseract on preprocessed ticket photos.
type Extractor struct {
	cfg    common.OCRConfig
	runner Runner
	log    *slog.Logger
}

func NewExtractor(cfg common.OCRConfig, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.MaxDimension <= 0 {
		cfg.MaxDimension = 2000
	}
	return &Extractor{cfg: cfg, runner: execRunner{}, log: log}
}

// NewExtractorWithRunner is the test seam.
func NewExtractorWithRunner(cfg common.OCRConfig, runner Runner, log *slog.Logger) *Extractor {
	e := NewExtractor(cfg, log)
	e.runner = runner
	return e
}

// ExtractText preprocesses the image, runs tesseract, and normalizes the
// output. When preprocessing fails (unsupported format, corrupt file) the
// original image is recognized as-is with a warning.
func (e *Extractor) ExtractText(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	e.log.Debug("ocr.extract.start", "path", path)

	var warnings []string
	ocrPath := path
	if processed, cleanup, err := Preprocess(path, e.cfg.MaxDimension); err != nil {
		warnings = append(warnings, "preprocess: "+err.Error())
		e.log.Warn("ocr.preprocess.failed", "path", path, "error", err)
	} else {
		defer cleanup()
		ocrPath = processed
	}

	txt, warn, err := e.tesseractOCR(ctx, ocrPath)
	warnings = append(warnings, warn...)
	if err != nil {
		return Result{Warnings: warnings, Duration: time.Since(start)}, err
	}
	txt = Normalize(txt)

	ocrConf, warn2, err := e.tesseractTSVConfidence(ctx, ocrPath)
	warnings = append(warnings, warn2...)
	if err != nil {
		warnings = append(warnings, err.Error())
	}
	heurConf := heuristicConfidence(txt)

	// blend: weight tesseract's own word confidence higher when available
	conf := heurConf
	if ocrConf > 0 {
		conf = 0.7*ocrConf + 0.3*heurConf
	}
	if conf > 1.0 {
		conf = 1.0
	}

	res := Result{
		Text:       txt,
		Language:   e.cfg.TesseractLang,
		Duration:   time.Since(start),
		Warnings:   warnings,
		Confidence: conf,
	}
	e.log.Info("ocr.extract.done",
		"path", path,
		"chars", len(txt),
		"confidence", conf,
		"elapsed_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, path string) (string, []string, error) {
	args := e.tesseractArgs(path)
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}
	return string(out), nil, nil
}

// tesseractTSVConfidence runs tesseract in TSV mode and returns mean word
// confidence in 0..1.
func (e *Extractor) tesseractTSVConfidence(ctx context.Context, path string) (float32, []string, error) {
	args := append(e.tesseractArgs(path), "tsv")
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return 0, []string{string(errb)}, fmt.Errorf("tesseract tsv: %w", err)
	}
	var sum, n float64
	for i, ln := range strings.Split(string(out), "\n") {
		if i == 0 || len(ln) == 0 {
			continue // header
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		confStr := cols[len(cols)-2]
		if confStr == "" || confStr == "-1" {
			continue
		}
		if v, err := strconv.ParseFloat(confStr, 64); err == nil {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, nil, nil
	}
	return float32(sum / n / 100.0), nil, nil
}

func (e *Extractor) tesseractArgs(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}
	return args
}
