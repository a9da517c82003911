package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"wareeye/config"
)

// remoteClient talks to an inference sidecar over HTTP.
type remoteClient struct {
	endpoint string
	client   *http.Client
}

func newRemoteClient(endpoint string, timeout time.Duration) remoteClient {
	return remoteClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		client:   &http.Client{Timeout: timeout},
	}
}

// probe reports whether the sidecar answers its health check.
func (rc remoteClient) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rc.endpoint+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := rc.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// post sends img as JPEG to path and decodes the JSON answer into out.
func (rc remoteClient) post(ctx context.Context, path string, img image.Image, out any) error {
	var body bytes.Buffer
	if err := jpeg.Encode(&body, img, &jpeg.Options{Quality: 90}); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rc.endpoint+path, &body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")

	resp, err := rc.client.Do(req)
	if err != nil {
		return fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("received non-200 status code: %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return nil
}

type remoteSymbol struct {
	Text   string   `json:"text"`
	Points [][2]int `json:"points"`
}

type decodeResponse struct {
	Symbols []remoteSymbol `json:"symbols"`
}

// RemoteDecoder asks a sidecar to decode a frame. Symbols with points but no
// text are returned as located but unread.
type RemoteDecoder struct {
	remoteClient
}

// NewRemoteDecoder creates a decoder posting to <endpoint>/decode.
func NewRemoteDecoder(endpoint string, timeout time.Duration) *RemoteDecoder {
	return &RemoteDecoder{newRemoteClient(endpoint, timeout)}
}

func (d *RemoteDecoder) Decode(ctx context.Context, img image.Image) ([]Symbol, error) {
	var resp decodeResponse
	if err := d.post(ctx, "/decode", img, &resp); err != nil {
		return nil, err
	}
	syms := make([]Symbol, 0, len(resp.Symbols))
	for _, s := range resp.Symbols {
		if s.Text == "" && len(s.Points) == 0 {
			continue
		}
		poly := make([]image.Point, len(s.Points))
		for i, p := range s.Points {
			poly[i] = image.Pt(p[0], p[1])
		}
		syms = append(syms, Symbol{Text: s.Text, Polygon: poly})
	}
	return syms, nil
}

type detectResponse struct {
	// Boxes are [x0, y0, x1, y1] in frame pixels.
	Boxes [][4]int `json:"boxes"`
}

// RemoteProposer asks a sidecar object detector for code regions.
type RemoteProposer struct {
	remoteClient
}

// NewRemoteProposer creates a proposer posting to <endpoint>/detect.
func NewRemoteProposer(endpoint string, timeout time.Duration) *RemoteProposer {
	return &RemoteProposer{newRemoteClient(endpoint, timeout)}
}

func (p *RemoteProposer) Propose(ctx context.Context, img image.Image) ([]image.Rectangle, error) {
	var resp detectResponse
	if err := p.post(ctx, "/detect", img, &resp); err != nil {
		return nil, err
	}
	rects := make([]image.Rectangle, 0, len(resp.Boxes))
	for _, b := range resp.Boxes {
		rects = append(rects, image.Rect(b[0], b[1], b[2], b[3]))
	}
	return rects, nil
}

// LoadCapabilities resolves the decoding strategies once at startup. The
// built-in decoders are always present; the sidecar ones are nil unless
// configured and answering their health check.
func LoadCapabilities(ctx context.Context, cfg *config.ScannerConfig, logger *log.Logger) Capabilities {
	if logger == nil {
		logger = log.Default()
	}
	caps := Capabilities{
		MultiBarcode: NewBandedDecoder(cfg.DecodeBands),
		QR:           NewQRCodeDetector(),
		Generic:      NewZXingDecoder(),
	}

	if cfg.VendorQREndpoint != "" {
		vendor := NewRemoteDecoder(cfg.VendorQREndpoint, cfg.RequestTimeout)
		if err := probeWithin(ctx, vendor.remoteClient, cfg.ProbeTimeout); err != nil {
			logger.Printf("Vendor QR decoder at %s unavailable: %v", cfg.VendorQREndpoint, err)
		} else {
			logger.Printf("Vendor QR decoder enabled at %s", cfg.VendorQREndpoint)
			caps.VendorQR = vendor
		}
	}

	if cfg.DetectorEndpoint != "" {
		proposer := NewRemoteProposer(cfg.DetectorEndpoint, cfg.RequestTimeout)
		if err := probeWithin(ctx, proposer.remoteClient, cfg.ProbeTimeout); err != nil {
			logger.Printf("Region detector at %s unavailable: %v", cfg.DetectorEndpoint, err)
		} else {
			logger.Printf("Region detector enabled at %s", cfg.DetectorEndpoint)
			caps.Proposer = proposer
		}
	}

	return caps
}

func probeWithin(ctx context.Context, rc remoteClient, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return rc.probe(ctx)
}
