package decode

import (
	"context"
	"image"
	"image/draw"
	"log"
)

// Chain tries each available tier in order and stops at the first that finds
// anything.
type Chain struct {
	caps   Capabilities
	logger *log.Logger
}

// NewChain creates a Chain over caps. Absent capabilities are skipped.
func NewChain(caps Capabilities, logger *log.Logger) *Chain {
	if logger == nil {
		logger = log.Default()
	}
	return &Chain{caps: caps, logger: logger}
}

// Decode runs the tiers against frame. Tier failures are logged and treated as
// finding nothing.
func (c *Chain) Decode(ctx context.Context, frame image.Image) Result {
	if syms := c.decodeWith(ctx, TierMultiBarcode, c.caps.MultiBarcode, frame); len(syms) > 0 {
		return Result{Tier: TierMultiBarcode, Detections: toDetections(syms)}
	}

	if c.caps.QR != nil && ctx.Err() == nil {
		text, box, found, err := c.caps.QR.DetectAndDecode(ctx, frame)
		if err != nil {
			c.logger.Printf("decode tier %s failed: %v", TierQR, err)
		} else if found {
			return Result{Tier: TierQR, Detections: toDetections([]Symbol{{Text: text, Polygon: box}})}
		}
	}

	if syms := c.decodeWith(ctx, TierVendorQR, c.caps.VendorQR, frame); len(syms) > 0 {
		return Result{Tier: TierVendorQR, Detections: toDetections(syms)}
	}

	if syms := c.decodeWith(ctx, TierGeneric, c.caps.Generic, frame); len(syms) > 0 {
		return Result{Tier: TierGeneric, Detections: toDetections(syms)}
	}

	if dets := c.proposeRegions(ctx, frame); len(dets) > 0 {
		return Result{Tier: TierRegionProposal, Detections: dets}
	}

	return Result{Tier: TierNone}
}

func (c *Chain) decodeWith(ctx context.Context, tier Tier, d Decoder, img image.Image) []Symbol {
	if d == nil || ctx.Err() != nil {
		return nil
	}
	syms, err := d.Decode(ctx, img)
	if err != nil {
		c.logger.Printf("decode tier %s failed: %v", tier, err)
		return nil
	}
	return syms
}

// proposeRegions re-decodes each proposed region with the generic decoder and
// maps results back into frame coordinates.
func (c *Chain) proposeRegions(ctx context.Context, frame image.Image) []Detection {
	if c.caps.Proposer == nil || ctx.Err() != nil {
		return nil
	}
	regions, err := c.caps.Proposer.Propose(ctx, frame)
	if err != nil {
		c.logger.Printf("decode tier %s failed: %v", TierRegionProposal, err)
		return nil
	}

	var dets []Detection
	for _, r := range regions {
		r = r.Intersect(frame.Bounds())
		if r.Empty() {
			continue
		}
		syms := c.decodeWith(ctx, TierGeneric, c.caps.Generic, crop(frame, r))
		decoded := false
		for _, s := range syms {
			if s.Text == "" {
				continue
			}
			decoded = true
			dets = append(dets, Detection{Text: s.Text, Polygon: offset(s.Polygon, r.Min), Outcome: Decoded})
		}
		if !decoded {
			dets = append(dets, Detection{Polygon: rectPolygon(r), Outcome: Candidate})
		}
	}
	return dets
}

func toDetections(syms []Symbol) []Detection {
	dets := make([]Detection, 0, len(syms))
	for _, s := range syms {
		outcome := Decoded
		if s.Text == "" {
			outcome = Unread
		}
		dets = append(dets, Detection{Text: s.Text, Polygon: s.Polygon, Outcome: outcome})
	}
	return dets
}

// crop copies r out of img into a new image whose origin is r.Min.
func crop(img image.Image, r image.Rectangle) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst
}

func offset(pts []image.Point, by image.Point) []image.Point {
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Add(by)
	}
	return out
}

func rectPolygon(r image.Rectangle) []image.Point {
	return []image.Point{
		r.Min,
		{X: r.Max.X, Y: r.Min.Y},
		r.Max,
		{X: r.Min.X, Y: r.Max.Y},
	}
}
