package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamsDecodesBothEntryShapes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/streams", r.URL.Path)
		_, _ = w.Write([]byte(`{"streams":["pitch",{"name":"roll"},{"name":""}]}`))
	}))
	defer srv.Close()

	names, err := NewClient(srv.URL).Streams(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"pitch", "roll"}, names)
}

func TestMappingsDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"mappings":[{
			"motion_stream":"pitch",
			"target":{"track_index":1,"device_index":0,"parameter_index":4},
			"range":[0,1],
			"smoothing":0.5,
			"enabled":true
		}]}`))
	}))
	defer srv.Close()

	mappings, err := NewClient(srv.URL).Mappings(context.Background())
	require.NoError(t, err)
	require.Len(t, mappings, 1)
	assert.Equal(t, Mapping{
		MotionStream: "pitch",
		Target:       Target{TrackIndex: 1, DeviceIndex: 0, ParameterIndex: 4},
		Range:        [2]float64{0, 1},
		Smoothing:    0.5,
		Enabled:      true,
	}, mappings[0])
}

func TestCreateMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    string
		wantStatus int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"status":"ok"}`,
		},
		{
			name:       "backend detail surfaced",
			status:     http.StatusBadRequest,
			body:       `{"detail":"duplicate stream"}`,
			wantErr:    "duplicate stream",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "generic message when detail absent",
			status:     http.StatusInternalServerError,
			body:       `oops`,
			wantErr:    "request failed (HTTP 500)",
			wantStatus: http.StatusInternalServerError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MappingRequest
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/mappings", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			req := MappingRequest{
				MotionStream:   "pitch",
				TrackIndex:     1,
				ParameterIndex: 4,
				RangeMax:       1,
				Smoothing:      0.5,
				Enabled:        true,
			}
			err := NewClient(srv.URL).CreateMapping(context.Background(), req)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, req, got)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.wantStatus, apiErr.Status)
		})
	}
}

func TestUpdateMappingUsesPut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/mappings/pitch", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).UpdateMapping(context.Background(), "pitch", MappingRequest{MotionStream: "pitch"})
	require.NoError(t, err)
}

func TestDeleteMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/mappings/left%20hand", r.URL.RequestURI())
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteMapping(context.Background(), "left hand")
	require.NoError(t, err)
}

func TestDeleteMappingNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Mapping not found"}`))
	}))
	defer srv.Close()

	err := NewClient(srv.URL).DeleteMapping(context.Background(), "pitch")
	require.Error(t, err)
	assert.Equal(t, "Mapping not found", err.Error())
}

func TestValues(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/stream-values", r.URL.Path)
		_, _ = w.Write([]byte(`{"values":{"pitch":0.2,"roll":-1.5}}`))
	}))
	defer srv.Close()

	values, err := NewClient(srv.URL).Values(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"pitch": 0.2, "roll": -1.5}, values)
}

func TestLastSelected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ableton/last-selected", r.URL.Path)
		_, _ = w.Write([]byte(`{"type":"parameter","data":{
			"track_index":2,"device_index":1,"param_index":7,
			"device_name":"Operator","param_name":"Filter Freq"
		}}`))
	}))
	defer srv.Close()

	sel, err := NewClient(srv.URL).LastSelected(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "parameter", sel.Type)
	require.NotNil(t, sel.Data)
	assert.Equal(t, 2, sel.Data.TrackIndex)
	assert.Equal(t, 7, sel.Data.ParamIndex)
	assert.Equal(t, "Filter Freq", sel.Data.ParamName)
}

func TestGetPollFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Streams(context.Background())
	require.Error(t, err)

	// A downed backend also reports an error rather than hanging forever.
	srv.Close()
	_, err = NewClient(srv.URL).Values(context.Background())
	require.Error(t, err)
}
