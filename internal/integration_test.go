package internal

import (
	"context"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"wareeye/config"
	"wareeye/internal/api"
	"wareeye/internal/capture"
	"wareeye/internal/db"
	"wareeye/internal/decode"
	"wareeye/internal/model"
	"wareeye/internal/parse"
	"wareeye/internal/store"
	"wareeye/internal/submit"
	"wareeye/internal/validation"
)

// fixedQR reports a located QR code with the configured text.
type fixedQR struct{ text string }

func (f fixedQR) DetectAndDecode(context.Context, image.Image) (string, []image.Point, bool, error) {
	return f.text, []image.Point{{0, 0}, {50, 0}, {50, 50}, {0, 50}}, true, nil
}

// emptyDecoder never finds anything.
type emptyDecoder struct{}

func (emptyDecoder) Decode(context.Context, image.Image) ([]decode.Symbol, error) {
	return nil, nil
}

// oneFrame yields a single blank frame.
type oneFrame struct{ served bool }

func (s *oneFrame) Next(context.Context) (image.Image, error) {
	if s.served {
		return nil, io.EOF
	}
	s.served = true
	return image.NewGray(image.Rect(0, 0, 64, 64)), nil
}

// TestScanToShipment drives the whole pipeline: the scanner-side client posts
// decoded labels to a live server backed by SQLite, and the server validates
// them against the dock door the camera watches.
func TestScanToShipment(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// --- Test Setup ---
	testDB, err := gorm.Open(sqlite.Open("file:scan_to_shipment?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()
	require.NoError(t, db.Migrate(testDB))

	lax := model.DestinationCode{Code: "LAX", Name: "LA Carrier"}
	ord := model.DestinationCode{Code: "ORD", Name: "Chicago Carrier"}
	require.NoError(t, testDB.Create(&lax).Error)
	require.NoError(t, testDB.Create(&ord).Error)
	require.NoError(t, testDB.Omit("DestinationCode").Create(&model.DockDoor{Name: "DD12", DestinationCodeID: lax.ID, IsActive: true}).Error)
	require.NoError(t, testDB.Omit("Destination").Create(&model.OLPNLabel{Barcode: "OLPN1001", DestinationCodeID: lax.ID, Status: model.LabelStatusPending}).Error)
	require.NoError(t, testDB.Omit("Destination").Create(&model.OLPNLabel{Barcode: "OLPN2002", DestinationCodeID: ord.ID, Status: model.LabelStatusPending}).Error)

	cfg := &config.Config{}
	cfg.ApplyDefaults()
	rule := validation.NewRule(validation.MatchMode(cfg.Validation.DockDoorMatch), cfg.Validation.DockDoorPrefix, cfg.Validation.RequireActiveDock)
	handler := api.NewHandler(store.NewGormStore(testDB), rule, nil, nil)
	server := httptest.NewServer(api.NewRouter(&cfg.Server, handler))
	defer server.Close()

	host, port := splitHostPort(t, server.URL)
	dockCamera := parse.CameraInfo{Name: "Cam-3", Area: "DD12", Type: "fixed", ServerIP: host, Port: port, ClientIP: "10.0.0.31", URL: "rtsp://cam"}
	yardCamera := dockCamera
	yardCamera.Area = "Receiving"

	clock := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	now := func() time.Time { return clock }
	dock := submit.NewClient(dockCamera.ServerURL(), dockCamera, cfg.Scanner.Cooldown, cfg.Scanner.RequestTimeout, submit.WithClock(now))
	yard := submit.NewClient(yardCamera.ServerURL(), yardCamera, cfg.Scanner.Cooldown, cfg.Scanner.RequestTimeout, submit.WithClock(now))

	labelStatus := func(barcode string) string {
		var label model.OLPNLabel
		require.NoError(t, testDB.Where("barcode = ?", barcode).First(&label).Error)
		return label.Status
	}

	t.Run("Scenario A: matching destination ships the label", func(t *testing.T) {
		valid := dock.Submit("OLPN1001")
		require.NotNil(t, valid)
		assert.True(t, *valid)
		assert.Equal(t, model.LabelStatusShipped, labelStatus("OLPN1001"))
	})

	t.Run("Scenario B: other destination is rejected", func(t *testing.T) {
		valid := dock.Submit("OLPN2002")
		require.NotNil(t, valid)
		assert.False(t, *valid)
		assert.Equal(t, model.LabelStatusPending, labelStatus("OLPN2002"))
	})

	t.Run("Scenario C: non dock area only records the scan", func(t *testing.T) {
		assert.Nil(t, yard.Submit("PKG-77"))

		var scan model.Scan
		require.NoError(t, testDB.Where("barcode = ?", "PKG-77").First(&scan).Error)
		assert.Equal(t, "Receiving", scan.Area)
		assert.True(t, clock.Equal(scan.Timestamp), "capture time travels with the scan")
	})

	t.Run("cooldown suppresses repeats", func(t *testing.T) {
		assert.Nil(t, dock.Submit("OLPN1001"))
		clock = clock.Add(cfg.Scanner.Cooldown)
		valid := dock.Submit("OLPN1001")
		require.NotNil(t, valid)
		assert.True(t, *valid, "repeat scans of a shipped label at its dock stay valid")
	})

	t.Run("Scenario D: unread QR is never submitted", func(t *testing.T) {
		var before int64
		testDB.Model(&model.Scan{}).Count(&before)

		chain := decode.NewChain(decode.Capabilities{MultiBarcode: emptyDecoder{}, QR: fixedQR{}, Generic: emptyDecoder{}}, nil)
		queue := capture.NewFrameQueue(1)
		var outcome capture.Outcome
		pool := capture.NewDecodePool(1, queue, chain, dock, func(o capture.Outcome) { outcome = o }, nil)
		capture.NewRunner(&oneFrame{}, queue, pool, 0, nil).Run(context.Background())

		require.Len(t, outcome.Result.Detections, 1)
		assert.Equal(t, decode.TierQR, outcome.Result.Tier)
		assert.Equal(t, decode.Unread, outcome.Result.Detections[0].Outcome)
		assert.Empty(t, outcome.Verdicts)

		var after int64
		testDB.Model(&model.Scan{}).Count(&after)
		assert.Equal(t, before, after)
	})

	t.Run("invalid payload is rejected", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/api/scan", "application/json", nil)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("scan listing sees every accepted scan", func(t *testing.T) {
		var count int64
		testDB.Model(&model.Scan{}).Count(&count)
		assert.EqualValues(t, 4, count)

		page, err := store.NewGormStore(testDB).ListScans(context.Background(), store.ScanFilter{Area: "dd"})
		require.NoError(t, err)
		assert.EqualValues(t, 3, page.Total)
	})
}
