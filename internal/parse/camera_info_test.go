package parse

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCameraInfo(t *testing.T) {
	testCases := []struct {
		name     string
		raw      string
		expected CameraInfo
	}{
		{
			name: "Full file",
			raw: "Camera Name: Cam-3\nCamera Area: DD12\nCamera Type: fixed\nServer IP: 10.0.0.5\n" +
				"Port: 5000\nClient IP: 10.0.0.31\nCamera URL: rtsp://admin:pw@10.0.0.31:554/h264Preview_01_main\n",
			expected: CameraInfo{
				Name: "Cam-3", Area: "DD12", Type: "fixed", ServerIP: "10.0.0.5", Port: "5000",
				ClientIP: "10.0.0.31", URL: "rtsp://admin:pw@10.0.0.31:554/h264Preview_01_main",
			},
		},
		{
			name:     "Whitespace and blank lines",
			raw:      "\n  Camera Name :  Cam 1  \n\nCamera Area:Receiving\n",
			expected: CameraInfo{Name: "Cam 1", Area: "Receiving"},
		},
		{
			name:     "Unknown keys and lines without colon",
			raw:      "Firmware: 1.2\ngarbage line\nCamera Type: handheld\n",
			expected: CameraInfo{Type: "handheld"},
		},
		{
			name:     "Empty value",
			raw:      "Camera Area:\n",
			expected: CameraInfo{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			info, err := ParseCameraInfo(strings.NewReader(tc.raw))
			require.NoError(t, err)
			assert.Equal(t, tc.expected, *info)
		})
	}
}

func TestFormatCameraInfo_RoundTrip(t *testing.T) {
	info := &CameraInfo{
		Name: "Cam-3", Area: "DD12", Type: "fixed", ServerIP: "10.0.0.5", Port: "5000",
		ClientIP: "10.0.0.31", URL: "http://10.0.0.31/snapshot.jpg",
	}

	var buf bytes.Buffer
	require.NoError(t, FormatCameraInfo(&buf, info))
	assert.True(t, strings.HasPrefix(buf.String(), "Camera Name: Cam-3\nCamera Area: DD12\n"))

	parsed, err := ParseCameraInfo(&buf)
	require.NoError(t, err)
	assert.Equal(t, info, parsed)
}

func TestCameraInfo_ServerURL(t *testing.T) {
	assert.Equal(t, "http://localhost:5000", (&CameraInfo{}).ServerURL())
	assert.Equal(t, "http://10.0.0.5:8080", (&CameraInfo{ServerIP: "10.0.0.5", Port: "8080"}).ServerURL())
}
