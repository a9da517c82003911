// Package decode turns camera frames into barcode and QR detections using a
// fixed fallback order of decoding strategies.
package decode

import (
	"context"
	"image"
)

// Tier identifies the strategy that produced a Result.
type Tier int

const (
	TierNone Tier = iota
	TierMultiBarcode
	TierQR
	TierVendorQR
	TierGeneric
	TierRegionProposal
)

func (t Tier) String() string {
	switch t {
	case TierMultiBarcode:
		return "multi-barcode"
	case TierQR:
		return "qr"
	case TierVendorQR:
		return "vendor-qr"
	case TierGeneric:
		return "generic"
	case TierRegionProposal:
		return "region-proposal"
	}
	return "none"
}

// Outcome says how much of a detection could be read.
type Outcome int

const (
	// Decoded detections carry non-empty text.
	Decoded Outcome = iota
	// Unread detections were located but yielded no text.
	Unread
	// Candidate detections are proposed regions whose re-scan found nothing.
	Candidate
)

func (o Outcome) String() string {
	switch o {
	case Decoded:
		return "decoded"
	case Unread:
		return "unread"
	}
	return "candidate"
}

// Detection is one located code in frame coordinates.
type Detection struct {
	Text    string
	Polygon []image.Point
	Outcome Outcome
}

// Result is what the chain produced for one frame.
type Result struct {
	Tier       Tier
	Detections []Detection
}

// Submittable returns the distinct non-empty texts in detection order.
func (r Result) Submittable() []string {
	seen := make(map[string]struct{}, len(r.Detections))
	texts := make([]string, 0, len(r.Detections))
	for _, d := range r.Detections {
		if d.Text == "" {
			continue
		}
		if _, ok := seen[d.Text]; ok {
			continue
		}
		seen[d.Text] = struct{}{}
		texts = append(texts, d.Text)
	}
	return texts
}

// Symbol is a decoder's raw output. Text may be empty when only the location
// is known.
type Symbol struct {
	Text    string
	Polygon []image.Point
}

// Decoder finds any number of symbols in an image.
type Decoder interface {
	Decode(ctx context.Context, img image.Image) ([]Symbol, error)
}

// QRDetector locates and decodes a single QR code. found reports whether a
// code was located even if text is empty.
type QRDetector interface {
	DetectAndDecode(ctx context.Context, img image.Image) (text string, box []image.Point, found bool, err error)
}

// RegionProposer suggests rectangles likely to contain a code.
type RegionProposer interface {
	Propose(ctx context.Context, img image.Image) ([]image.Rectangle, error)
}

// Capabilities are the strategies available to a Chain. Any field may be nil.
type Capabilities struct {
	MultiBarcode Decoder
	QR           QRDetector
	VendorQR     Decoder
	Generic      Decoder
	Proposer     RegionProposer
}
