// Package api is the HTTP client for the motion mapping service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Error is a non-2xx response from the backend. Detail carries the
// backend's own message when it sent one.
type Error struct {
	Status int
	Detail string
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("request failed (HTTP %d)", e.Status)
}

// Target identifies a DAW parameter.
type Target struct {
	TrackIndex     int `json:"track_index"`
	DeviceIndex    int `json:"device_index"`
	ParameterIndex int `json:"parameter_index"`
}

// Mapping is a persisted stream-to-parameter binding as the backend
// reports it. The client never mutates one; it holds snapshots only.
type Mapping struct {
	MotionStream string     `json:"motion_stream"`
	Target       Target     `json:"target"`
	Range        [2]float64 `json:"range"`
	Smoothing    float64    `json:"smoothing"`
	Enabled      bool       `json:"enabled"`
}

// MappingRequest is the create/update payload. The backend validates;
// the client only coerces.
type MappingRequest struct {
	MotionStream   string  `json:"motion_stream"`
	TrackIndex     int     `json:"track_index"`
	DeviceIndex    int     `json:"device_index"`
	ParameterIndex int     `json:"parameter_index"`
	RangeMin       float64 `json:"range_min"`
	RangeMax       float64 `json:"range_max"`
	Smoothing      float64 `json:"smoothing"`
	Enabled        bool    `json:"enabled"`
}

// SelectedParameter is the parameter last touched in the DAW.
type SelectedParameter struct {
	TrackIndex  int    `json:"track_index"`
	DeviceIndex int    `json:"device_index"`
	ParamIndex  int    `json:"param_index"`
	DeviceName  string `json:"device_name"`
	ParamName   string `json:"param_name"`
}

// LastSelected is the /api/ableton/last-selected payload. Data is set only
// when Type is "parameter".
type LastSelected struct {
	Type string             `json:"type"`
	Data *SelectedParameter `json:"data"`
}

type Client struct {
	base string
	http *http.Client
}

func NewClient(base string) *Client {
	return &Client{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{},
	}
}

// streamEntry tolerates both directory entry shapes: a bare name string or
// an object with a name field.
type streamEntry struct {
	Name string `json:"name"`
}

func (s *streamEntry) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &s.Name)
	}
	type alias streamEntry
	return json.Unmarshal(b, (*alias)(s))
}

// Streams fetches the live stream directory.
func (c *Client) Streams(ctx context.Context) ([]string, error) {
	var body struct {
		Streams []streamEntry `json:"streams"`
	}
	if err := c.get(ctx, "/api/streams", &body); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(body.Streams))
	for _, s := range body.Streams {
		if s.Name != "" {
			names = append(names, s.Name)
		}
	}
	return names, nil
}

// Mappings fetches the full mapping snapshot.
func (c *Client) Mappings(ctx context.Context) ([]Mapping, error) {
	var body struct {
		Mappings []Mapping `json:"mappings"`
	}
	if err := c.get(ctx, "/api/mappings", &body); err != nil {
		return nil, err
	}
	return body.Mappings, nil
}

// Values fetches the current reading of every stream.
func (c *Client) Values(ctx context.Context) (map[string]float64, error) {
	var body struct {
		Values map[string]float64 `json:"values"`
	}
	if err := c.get(ctx, "/api/stream-values", &body); err != nil {
		return nil, err
	}
	return body.Values, nil
}

// LastSelected fetches the parameter most recently selected in the DAW.
func (c *Client) LastSelected(ctx context.Context) (*LastSelected, error) {
	var body LastSelected
	if err := c.get(ctx, "/api/ableton/last-selected", &body); err != nil {
		return nil, err
	}
	return &body, nil
}

// CreateMapping submits a new mapping.
func (c *Client) CreateMapping(ctx context.Context, req MappingRequest) error {
	return c.send(ctx, http.MethodPost, "/api/mappings", req)
}

// UpdateMapping replaces fields of the mapping for stream.
func (c *Client) UpdateMapping(ctx context.Context, stream string, req MappingRequest) error {
	return c.send(ctx, http.MethodPut, "/api/mappings/"+url.PathEscape(stream), req)
}

// DeleteMapping removes the mapping for stream.
func (c *Client) DeleteMapping(ctx context.Context, stream string) error {
	return c.send(ctx, http.MethodDelete, "/api/mappings/"+url.PathEscape(stream), nil)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) send(ctx context.Context, method, path string, payload any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base+path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorFromResponse(resp)
	}
	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func errorFromResponse(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Detail = body.Detail
	}
	return apiErr
}
