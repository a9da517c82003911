package parse

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Camera info keys, in the order they are written.
const (
	KeyCameraName = "Camera Name"
	KeyCameraArea = "Camera Area"
	KeyCameraType = "Camera Type"
	KeyServerIP   = "Server IP"
	KeyPort       = "Port"
	KeyClientIP   = "Client IP"
	KeyCameraURL  = "Camera URL"
)

var cameraInfoKeys = []string{
	KeyCameraName, KeyCameraArea, KeyCameraType, KeyServerIP, KeyPort, KeyClientIP, KeyCameraURL,
}

// CameraInfo is the identity a scanner reports with every scan.
type CameraInfo struct {
	Name     string
	Area     string
	Type     string
	ServerIP string
	Port     string
	ClientIP string
	URL      string
}

// Keys returns the camera info keys in file order.
func Keys() []string {
	return append([]string(nil), cameraInfoKeys...)
}

// Get returns the value stored under key.
func (ci *CameraInfo) Get(key string) string {
	switch key {
	case KeyCameraName:
		return ci.Name
	case KeyCameraArea:
		return ci.Area
	case KeyCameraType:
		return ci.Type
	case KeyServerIP:
		return ci.ServerIP
	case KeyPort:
		return ci.Port
	case KeyClientIP:
		return ci.ClientIP
	case KeyCameraURL:
		return ci.URL
	}
	return ""
}

// Set stores value under key. Unknown keys are ignored.
func (ci *CameraInfo) Set(key, value string) {
	switch key {
	case KeyCameraName:
		ci.Name = value
	case KeyCameraArea:
		ci.Area = value
	case KeyCameraType:
		ci.Type = value
	case KeyServerIP:
		ci.ServerIP = value
	case KeyPort:
		ci.Port = value
	case KeyClientIP:
		ci.ClientIP = value
	case KeyCameraURL:
		ci.URL = value
	}
}

// ServerURL returns the base URL of the ingestion server, defaulting to
// localhost:5000 for missing parts.
func (ci *CameraInfo) ServerURL() string {
	host := ci.ServerIP
	if host == "" {
		host = "localhost"
	}
	port := ci.Port
	if port == "" {
		port = "5000"
	}
	return fmt.Sprintf("http://%s:%s", host, port)
}

// ParseCameraInfo reads "Key: value" lines. Blank lines, lines without a colon
// and unknown keys are skipped. The value may itself contain colons.
func ParseCameraInfo(r io.Reader) (*CameraInfo, error) {
	info := &CameraInfo{}
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		info.Set(strings.TrimSpace(key), strings.TrimSpace(value))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read camera info: %w", err)
	}
	return info, nil
}

// FormatCameraInfo writes info in the format ParseCameraInfo reads.
func FormatCameraInfo(w io.Writer, info *CameraInfo) error {
	for _, key := range cameraInfoKeys {
		if _, err := fmt.Fprintf(w, "%s: %s\n", key, info.Get(key)); err != nil {
			return err
		}
	}
	return nil
}
