// Package imagequality scores scanned document images for OCR suitability.
//
// The analyzer decodes the image, derives resolution and an estimated print
// density, and computes three normalized sub-scores: sharpness from mean
// gradient magnitude, brightness from mean luminance, contrast from
// luminance spread. The overall 0-100 score is a fixed weighted blend.
package imagequality

import (
	"bytes"
	"context"
	"image"
	"log/slog"
	"math"

	// Registered decoders for the formats scanners produce.
	_ "image/jpeg"
	_ "image/png"

	xdraw "golang.org/x/image/draw"

	"poagate/internal/validation/models"
	dErrors "poagate/pkg/domain-errors"
)

// Blend weights for the overall score. Resolution is graded against the
// 300 DPI scanning floor.
const (
	weightSharpness  = 0.40
	weightBrightness = 0.20
	weightContrast   = 0.20
	weightResolution = 0.20
)

const (
	// targetDPI is the scan density OCR backends want.
	targetDPI = 300

	// Letter-size page assumption for the DPI estimate: stdlib decoders do
	// not expose embedded density metadata, so density is derived from
	// pixel dimensions against an 8.5 x 11 inch page.
	pageWidthInches  = 8.5
	pageHeightInches = 11.0

	// maxAnalysisDim bounds the per-pixel passes; larger images are
	// downscaled first.
	maxAnalysisDim = 1024

	// gradientGain maps typical document-scan gradient magnitudes onto 0-1.
	gradientGain = 12.0

	// contrastGain maps luminance standard deviation onto 0-1.
	contrastGain = 4.0
)

// Analyzer computes ImageQuality records from raw image bytes.
type Analyzer struct {
	logger *slog.Logger
}

type Option func(*Analyzer)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		a.logger = logger
	}
}

func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze decodes and scores one image. Unreadable data returns a coded
// error so callers can distinguish "could not analyze" from "analyzed and
// scored poorly".
func (a *Analyzer) Analyze(ctx context.Context, data []byte) (*models.ImageQuality, error) {
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "image data is empty")
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnprocessable, "image data could not be decoded")
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil, dErrors.New(dErrors.CodeUnprocessable, "image has zero dimensions")
	}

	dpi := estimateDPI(width, height)
	lum := luminancePlane(downscale(img))

	meanLum, stddevLum := lum.stats()
	gradient := lum.meanGradient()

	scores := models.QualityScores{
		Sharpness:  clamp01(gradient * gradientGain),
		Brightness: 1 - math.Abs(meanLum-0.5)*2,
		Contrast:   clamp01(stddevLum * contrastGain),
	}
	resolutionScore := clamp01(float64(dpi) / targetDPI)

	overall := weightSharpness*scores.Sharpness +
		weightBrightness*scores.Brightness +
		weightContrast*scores.Contrast +
		weightResolution*resolutionScore

	quality := &models.ImageQuality{
		OverallScore: int(math.Round(overall * 100)),
		Resolution: models.Resolution{
			Width:      width,
			Height:     height,
			Megapixels: math.Round(float64(width)*float64(height)/1e4) / 100,
			DPI:        dpi,
		},
		ColorSpace:      colorSpaceOf(img),
		Quality:         scores,
		Recommendations: recommend(dpi, scores, meanLum),
	}

	if a.logger != nil {
		a.logger.DebugContext(ctx, "image analyzed",
			"format", format,
			"width", width, "height", height,
			"dpi", dpi,
			"overall_score", quality.OverallScore,
		)
	}
	return quality, nil
}

func estimateDPI(width, height int) int {
	dpiW := float64(width) / pageWidthInches
	dpiH := float64(height) / pageHeightInches
	return int(math.Min(dpiW, dpiH))
}

func colorSpaceOf(img image.Image) string {
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		return "grayscale"
	case *image.CMYK:
		return "cmyk"
	default:
		return "rgb"
	}
}

func recommend(dpi int, scores models.QualityScores, meanLum float64) []string {
	var recs []string
	if dpi < targetDPI {
		recs = append(recs, "Image resolution is low. For better OCR results, scan at 300 DPI or higher.")
	}
	if scores.Sharpness < 0.5 {
		recs = append(recs, "Image appears blurry. Hold the camera steady or rescan the document.")
	}
	if meanLum < 0.35 {
		recs = append(recs, "Image is too dark. Rescan with more light or higher brightness.")
	}
	if meanLum > 0.85 {
		recs = append(recs, "Image is overexposed. Reduce lighting or scanner brightness.")
	}
	if scores.Contrast < 0.4 {
		recs = append(recs, "Image contrast is low. Text may not separate cleanly from the background.")
	}
	return recs
}

// downscale bounds analysis cost on large scans.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= maxAnalysisDim && h <= maxAnalysisDim {
		return img
	}

	scale := float64(maxAnalysisDim) / float64(max(w, h))
	dst := image.NewNRGBA(image.Rect(0, 0, int(float64(w)*scale), int(float64(h)*scale)))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// plane is a dense float64 luminance raster in 0-1.
type plane struct {
	w, h int
	pix  []float64
}

func luminancePlane(img image.Image) *plane {
	bounds := img.Bounds()
	p := &plane{w: bounds.Dx(), h: bounds.Dy()}
	p.pix = make([]float64, p.w*p.h)

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// Rec. 601 luma on 16-bit channel values.
			p.pix[i] = (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 65535.0
			i++
		}
	}
	return p
}

func (p *plane) at(x, y int) float64 { return p.pix[y*p.w+x] }

func (p *plane) stats() (mean, stddev float64) {
	n := float64(len(p.pix))
	if n == 0 {
		return 0, 0
	}
	var sum float64
	for _, v := range p.pix {
		sum += v
	}
	mean = sum / n

	var sq float64
	for _, v := range p.pix {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / n)
}

// meanGradient is the edge-energy estimate: average absolute horizontal and
// vertical luminance difference.
func (p *plane) meanGradient() float64 {
	if p.w < 2 || p.h < 2 {
		return 0
	}
	var sum float64
	var count int
	for y := 0; y < p.h-1; y++ {
		for x := 0; x < p.w-1; x++ {
			v := p.at(x, y)
			sum += math.Abs(p.at(x+1, y)-v) + math.Abs(p.at(x, y+1)-v)
			count += 2
		}
	}
	return sum / float64(count)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
