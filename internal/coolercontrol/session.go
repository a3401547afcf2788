// FilePath: internal/coolercontrol/session.go
package coolercontrol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	nuts "github.com/vaudience/go-nuts"

	"github.com/damachine/coolerdash/internal/config"
	"github.com/damachine/coolerdash/internal/errors"
)

const (
	// Finite timeouts bound shutdown latency; a push in flight when a signal
	// arrives is observed only after it returns.
	connectTimeout = 2 * time.Second
	requestTimeout = 5 * time.Second

	liquidctlType = "Liquidctl"
)

// Session is the stateful authenticated HTTP session with the CoolerControl
// daemon. Lifecycle: Open -> DiscoverDeviceUID -> PushFrame* -> Close.
type Session struct {
	cfg     *config.Config
	client  *resty.Client
	jarFile string

	deviceUID   string
	deviceName  string
	initialized bool
	closed      bool
}

// device mirrors the fields of interest in the daemon's /devices payload.
type device struct {
	Name string `json:"name"`
	Type string `json:"type"`
	UID  string `json:"uid"`
}

type devicesPayload struct {
	Devices []device `json:"devices"`
}

// Open authenticates with the daemon using basic auth for the fixed CCAdmin
// user. On any failure the session stays uninitialised and the caller must
// abort startup. Side effect: a per-process cookie jar file on disk.
func Open(cfg *config.Config) (*Session, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, errors.NewSessionError("failed to create cookie jar", err)
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{Timeout: connectTimeout}).DialContext,
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.Daemon.Address, "/")).
		SetBasicAuth(config.DaemonUser, cfg.Daemon.Password).
		SetCookieJar(jar).
		SetTimeout(requestTimeout).
		SetTransport(transport)

	s := &Session{
		cfg:     cfg,
		client:  client,
		jarFile: filepath.Join(os.TempDir(), fmt.Sprintf("coolerdash_cookies_%d.txt", os.Getpid())),
	}

	resp, err := client.R().SetBody("").Post("/login")
	if err != nil {
		return nil, errors.NewSessionError("login request failed", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return nil, errors.NewSessionError(
			fmt.Sprintf("login rejected with status %d", resp.StatusCode()), nil)
	}

	s.initialized = true
	s.persistCookies()
	nuts.L.Infof("[CoolerControl] Session opened against %s", cfg.Daemon.Address)
	return s, nil
}

// persistCookies writes the session cookies to the per-process jar file. The
// file is the on-disk artifact of the session and is removed by Close.
func (s *Session) persistCookies() {
	base, err := url.Parse(s.cfg.Daemon.Address)
	if err != nil {
		return
	}
	var b strings.Builder
	for _, c := range s.client.GetClient().Jar.Cookies(base) {
		fmt.Fprintf(&b, "%s=%s\n", c.Name, c.Value)
	}
	if err := os.WriteFile(s.jarFile, []byte(b.String()), 0600); err != nil {
		nuts.L.Warnf("[CoolerControl] Could not persist cookie jar %s: %v", s.jarFile, err)
	}
}

// DiscoverDeviceUID finds the first Liquidctl device in the daemon's device
// listing and caches its UID for every subsequent upload. The UID is never
// revalidated; hot-plugged devices require a restart.
func (s *Session) DiscoverDeviceUID() (string, error) {
	if !s.initialized {
		return "", errors.NewSessionError("session not initialized", nil)
	}

	resp, err := s.client.R().Get("/devices")
	if err != nil {
		return "", errors.NewDiscoveryError("device listing request failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", errors.NewDiscoveryError(
			fmt.Sprintf("device listing returned status %d", resp.StatusCode()), nil)
	}

	devices, err := parseDevices(resp.Body())
	if err != nil {
		return "", errors.NewDiscoveryError("malformed device listing", err)
	}
	for _, d := range devices {
		if d.Type == liquidctlType {
			s.deviceUID = d.UID
			s.deviceName = d.Name
			if d.Name != "" {
				nuts.L.Infof("[CoolerControl] Connected to %s (uid %.20s...)", d.Name, d.UID)
			} else {
				nuts.L.Infof("[CoolerControl] Connected to AIO LCD (uid %.20s...)", d.UID)
			}
			nuts.L.Warnf("[CoolerControl] Device UID is cached for the process lifetime; hot-plugging devices requires a restart")
			return d.UID, nil
		}
	}
	return "", errors.NewDiscoveryError("no Liquidctl device in daemon listing", nil)
}

// parseDevices accepts both the daemon's {"devices":[...]} envelope and a
// bare device array.
func parseDevices(body []byte) ([]device, error) {
	var payload devicesPayload
	if err := json.Unmarshal(body, &payload); err == nil && payload.Devices != nil {
		return payload.Devices, nil
	}
	var bare []device
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, err
	}
	return bare, nil
}

// DeviceUID returns the cached device identifier, empty before discovery.
func (s *Session) DeviceUID() string {
	return s.deviceUID
}

// DeviceName returns the cached device name, empty when unknown.
func (s *Session) DeviceName() string {
	return s.deviceName
}

// Initialized reports whether login succeeded.
func (s *Session) Initialized() bool {
	return s.initialized
}

// Ready reports whether the session may push frames.
func (s *Session) Ready() bool {
	return s.initialized && s.deviceUID != ""
}

// CookieJarFile returns the on-disk jar path owned by this session.
func (s *Session) CookieJarFile() string {
	return s.jarFile
}

// PushFrame uploads the image at path to the device LCD. Firmware workaround:
// every call issues two consecutive identical PUTs; occasional dropped frames
// make the redundancy a correctness requirement, not an optimisation. An
// upload failure never transitions the session out of the ready state.
func (s *Session) PushFrame(path string) error {
	if !s.Ready() {
		return errors.NewSessionError("session not ready for uploads", nil)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewUploadError(fmt.Sprintf("cannot read frame %s", path), err)
	}

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := s.putFrame(path, data); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Session) putFrame(path string, data []byte) error {
	resp, err := s.client.R().
		SetMultipartFields(
			&resty.MultipartField{
				Param:  "mode",
				Reader: strings.NewReader("image"),
			},
			&resty.MultipartField{
				Param:  "brightness",
				Reader: strings.NewReader(strconv.Itoa(s.cfg.Display.Brightness)),
			},
			&resty.MultipartField{
				Param:  "orientation",
				Reader: strings.NewReader(strconv.Itoa(s.cfg.Display.Orientation)),
			},
			&resty.MultipartField{
				Param:       "images[]",
				FileName:    filepath.Base(path),
				ContentType: mimeTypeFor(path),
				Reader:      bytes.NewReader(data),
			},
		).
		Put("/devices/" + s.deviceUID + "/settings/lcd/lcd/images")
	if err != nil {
		return errors.NewUploadError("frame upload failed", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return errors.NewUploadError(
			fmt.Sprintf("frame upload returned status %d", resp.StatusCode()), nil)
	}
	return nil
}

func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// Close releases the HTTP client and removes the cookie jar file. Idempotent;
// the jar is removed even when client teardown has nothing left to do.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.initialized = false

	s.client.GetClient().CloseIdleConnections()
	if err := os.Remove(s.jarFile); err != nil && !os.IsNotExist(err) {
		nuts.L.Warnf("[CoolerControl] Could not remove cookie jar %s: %v", s.jarFile, err)
	}
	nuts.L.Infof("[CoolerControl] Session closed")
}
