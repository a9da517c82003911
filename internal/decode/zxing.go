package decode

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/oned"
	"github.com/makiuchi-d/gozxing/qrcode"
	"github.com/makiuchi-d/gozxing/qrcode/detector"
)

var tryHarder = map[gozxing.DecodeHintType]interface{}{
	gozxing.DecodeHintType_TRY_HARDER: true,
}

func linearReaders() []gozxing.Reader {
	return []gozxing.Reader{
		oned.NewCode128Reader(),
		oned.NewCode39Reader(),
		oned.NewEAN13Reader(),
	}
}

// ZXingDecoder runs QR and common 1D readers over the whole image. Each reader
// contributes at most one symbol.
type ZXingDecoder struct {
	newReaders func() []gozxing.Reader
}

// NewZXingDecoder creates the generic full-frame decoder.
func NewZXingDecoder() *ZXingDecoder {
	return &ZXingDecoder{newReaders: func() []gozxing.Reader {
		return append([]gozxing.Reader{qrcode.NewQRCodeReader()}, linearReaders()...)
	}}
}

func (d *ZXingDecoder) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to binarize frame: %w", err)
	}
	return readAll(ctx, bmp, d.newReaders(), image.Point{}, map[string]struct{}{}), nil
}

// BandedDecoder finds several 1D barcodes in one frame by decoding
// overlapping horizontal bands separately.
type BandedDecoder struct {
	bands int
}

// NewBandedDecoder splits frames into bands strips. Values below 1 mean one band.
func NewBandedDecoder(bands int) *BandedDecoder {
	if bands < 1 {
		bands = 1
	}
	return &BandedDecoder{bands: bands}
}

func (d *BandedDecoder) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	seen := map[string]struct{}{}
	var syms []Symbol
	for _, band := range bandRects(img.Bounds(), d.bands) {
		if err := ctx.Err(); err != nil {
			return syms, nil
		}
		bmp, err := gozxing.NewBinaryBitmapFromImage(crop(img, band))
		if err != nil {
			return nil, fmt.Errorf("failed to binarize band %v: %w", band, err)
		}
		syms = append(syms, readAll(ctx, bmp, linearReaders(), band.Min, seen)...)
	}
	return syms, nil
}

// bandRects splits b into n strips, each extended by half a strip downwards so
// a code straddling a boundary is whole in at least one strip.
func bandRects(b image.Rectangle, n int) []image.Rectangle {
	h := b.Dy() / n
	if n == 1 || h == 0 {
		return []image.Rectangle{b}
	}
	rects := make([]image.Rectangle, 0, n)
	for i := 0; i < n; i++ {
		y0 := b.Min.Y + i*h
		y1 := y0 + h + h/2
		if i == n-1 || y1 > b.Max.Y {
			y1 = b.Max.Y
		}
		rects = append(rects, image.Rect(b.Min.X, y0, b.Max.X, y1))
	}
	return rects
}

// readAll tries every reader on bmp and keeps texts not already in seen.
func readAll(ctx context.Context, bmp *gozxing.BinaryBitmap, readers []gozxing.Reader, origin image.Point, seen map[string]struct{}) []Symbol {
	var syms []Symbol
	for _, r := range readers {
		if ctx.Err() != nil {
			break
		}
		res, err := r.Decode(bmp, tryHarder)
		if err != nil {
			continue
		}
		text := res.GetText()
		if _, dup := seen[text]; dup || text == "" {
			continue
		}
		seen[text] = struct{}{}
		syms = append(syms, Symbol{Text: text, Polygon: offset(toPoints(res.GetResultPoints()), origin)})
	}
	return syms
}

func toPoints(rps []gozxing.ResultPoint) []image.Point {
	pts := make([]image.Point, 0, len(rps))
	for _, rp := range rps {
		if rp == nil {
			continue
		}
		pts = append(pts, image.Pt(int(math.Round(rp.GetX())), int(math.Round(rp.GetY()))))
	}
	return pts
}

// QRCodeDetector decodes a single QR code. When the code is located but cannot
// be read, the finder pattern box is still reported.
type QRCodeDetector struct{}

// NewQRCodeDetector creates a QRCodeDetector.
func NewQRCodeDetector() *QRCodeDetector {
	return &QRCodeDetector{}
}

func (d *QRCodeDetector) DetectAndDecode(ctx context.Context, img image.Image) (string, []image.Point, bool, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", nil, false, fmt.Errorf("failed to binarize frame: %w", err)
	}
	if res, err := qrcode.NewQRCodeReader().Decode(bmp, tryHarder); err == nil {
		return res.GetText(), toPoints(res.GetResultPoints()), true, nil
	}

	matrix, err := bmp.GetBlackMatrix()
	if err != nil {
		return "", nil, false, nil
	}
	located, err := detector.NewDetector(matrix).Detect(tryHarder)
	if err != nil || !plausibleFinderBox(located.GetPoints()) {
		return "", nil, false, nil
	}
	return "", toPoints(located.GetPoints()), true, nil
}

// minFinderSpacing is the finder pattern centre distance of a version 1 code
// at one pixel per module.
const minFinderSpacing = 14

// plausibleFinderBox rejects finder pattern triples that cannot frame a QR
// code: the two sides meeting at the top-left pattern must be long enough,
// of similar length, and roughly perpendicular. Points are ordered
// bottom-left, top-left, top-right.
func plausibleFinderBox(points []gozxing.ResultPoint) bool {
	if len(points) < 3 || points[0] == nil || points[1] == nil || points[2] == nil {
		return false
	}
	bl, tl, tr := points[0], points[1], points[2]
	ax, ay := tr.GetX()-tl.GetX(), tr.GetY()-tl.GetY()
	bx, by := bl.GetX()-tl.GetX(), bl.GetY()-tl.GetY()
	top, left := math.Hypot(ax, ay), math.Hypot(bx, by)
	if top < minFinderSpacing || left < minFinderSpacing {
		return false
	}
	if math.Max(top, left)/math.Min(top, left) > 1.5 {
		return false
	}
	cos := (ax*bx + ay*by) / (top * left)
	return math.Abs(cos) <= 0.35
}
