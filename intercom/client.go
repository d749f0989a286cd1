package intercom

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/icholy/digest"
)

const (
	defaultTimeout     = 20 * time.Second
	maxSnapshotBytes   = int64(8 << 20)
	maxListBytes       = int64(1 << 20)
	defaultRetryMax    = 2
	intercomsBasePath  = "/auth_digest/intercoms"
	snapshotPathFormat = intercomsBasePath + "/%d/big_picture"
	openDoorPathFormat = intercomsBasePath + "/%d/open_door"
)

// Device is one intercom as reported by the vendor API. Index is the
// device's position in the fetched list; the vendor addresses open/snapshot
// calls by that position, so it is only meaningful against the list it was
// fetched with.
type Device struct {
	Index       int    `json:"index"`
	Description string `json:"description"`
	Section     string `json:"section,omitempty"`
}

// Client talks to the vendor's digest-authenticated intercom API.
type Client struct {
	baseURL string
	rc      *retryablehttp.Client
}

func NewClient(baseURL, user, password string) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = defaultRetryMax
	rc.Logger = nil
	rc.HTTPClient.Timeout = defaultTimeout
	rc.HTTPClient.Transport = &digest.Transport{
		Username: user,
		Password: password,
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		rc:      rc,
	}
}

// ListDevices fetches the current intercom list. Indices are assigned by
// position and are not stable across fetches.
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	body, err := c.get(ctx, intercomsBasePath, maxListBytes)
	if err != nil {
		return nil, err
	}
	var devices []Device
	if err := json.Unmarshal(body, &devices); err != nil {
		return nil, fmt.Errorf("intercom list decode: %w", err)
	}
	for i := range devices {
		devices[i].Index = i
	}
	return devices, nil
}

// Snapshot returns the raw camera image for the device at idx. The content
// type is opaque to this layer.
func (c *Client) Snapshot(ctx context.Context, idx int) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf(snapshotPathFormat, idx), maxSnapshotBytes)
}

// OpenDoor triggers the door relay for the device at idx. The response body
// is discarded; a non-2xx status is an error.
func (c *Client) OpenDoor(ctx context.Context, idx int) error {
	_, err := c.get(ctx, fmt.Sprintf(openDoorPathFormat, idx), maxListBytes)
	return err
}

func (c *Client) get(ctx context.Context, path string, maxBytes int64) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.rc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("intercom %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, fmt.Errorf("intercom %s read: %w", path, err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("intercom %s status %d", path, resp.StatusCode)
	}
	return body, nil
}
