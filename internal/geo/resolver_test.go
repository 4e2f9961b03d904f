package geo

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medifind/internal/domain"
	"medifind/internal/notify"
)

type fakeProvider struct {
	pos     Position
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeProvider) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	if f.started != nil {
		close(f.started)
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return Position{}, f.err
	}
	return f.pos, nil
}

type fakeGeocoder struct {
	loc domain.DetectedLocation
	err error
}

func (f *fakeGeocoder) Reverse(ctx context.Context, lat, lng float64) (domain.DetectedLocation, error) {
	if f.err != nil {
		return domain.DetectedLocation{}, f.err
	}
	return f.loc, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (r *recordingNotifier) Notify(level notify.Level, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, string(level)+": "+message)
}

func TestResolver_Unsupported(t *testing.T) {
	n := &recordingNotifier{}
	r := NewResolver(nil, &fakeGeocoder{}, n, nil)
	_, err := r.Detect(context.Background())
	require.ErrorIs(t, err, ErrUnsupported)
	require.NotEmpty(t, n.messages)
}

func TestResolver_PermissionDenied(t *testing.T) {
	p := &fakeProvider{err: &PositionError{Code: PermissionDenied}}
	r := NewResolver(p, &fakeGeocoder{}, nil, nil)
	_, err := r.Detect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "permission denied", "permission denial must not read as a generic failure")
}

func TestResolver_DistinctFailureMessages(t *testing.T) {
	codes := []PositionErrorCode{PermissionDenied, Timeout, PositionUnavailable}
	seen := map[string]bool{}
	for _, code := range codes {
		p := &fakeProvider{err: &PositionError{Code: code}}
		r := NewResolver(p, &fakeGeocoder{}, nil, nil)
		_, err := r.Detect(context.Background())
		require.Error(t, err)
		seen[err.Error()] = true
	}
	assert.Len(t, seen, 3, "three causes must map to three distinct messages")
}

func TestResolver_HappyPath(t *testing.T) {
	p := &fakeProvider{pos: Position{Lat: 6.9271, Lng: 79.8612}}
	g := &fakeGeocoder{loc: domain.DetectedLocation{
		Country: "Sri Lanka", State: "Western Province", City: "Colombo",
		DisplayAddress: "Colombo, Western Province, Sri Lanka",
	}}
	n := &recordingNotifier{}
	r := NewResolver(p, g, n, nil)

	loc, err := r.Detect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Colombo", loc.City)
	require.NotNil(t, loc.Coordinates)
	assert.InDelta(t, 6.9271, loc.Coordinates.Lat, 1e-9)
	assert.GreaterOrEqual(t, len(n.messages), 2, "start and success notifications expected")
}

func TestResolver_GeocodeFailureDegradesToCoordinates(t *testing.T) {
	p := &fakeProvider{pos: Position{Lat: 6.92708, Lng: 79.86124}}
	g := &fakeGeocoder{err: errors.New("geocoder down")}
	r := NewResolver(p, g, nil, nil)

	loc, err := r.Detect(context.Background())
	require.NoError(t, err, "reverse geocode failure must not fail the detection")
	assert.Equal(t, "6.9271, 79.8612", loc.DisplayAddress, "coordinates formatted to 4 decimal places")
	assert.Equal(t, "Unknown", loc.Country)
	require.NotNil(t, loc.Coordinates)
}

func TestResolver_RejectsConcurrentDetect(t *testing.T) {
	p := &fakeProvider{
		pos:     Position{Lat: 1, Lng: 2},
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	r := NewResolver(p, &fakeGeocoder{}, nil, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = r.Detect(context.Background())
	}()
	<-p.started

	_, err := r.Detect(context.Background())
	require.ErrorIs(t, err, ErrInProgress)

	close(p.release)
	<-done

	// re-enterable after completion
	p2 := &fakeProvider{pos: Position{Lat: 1, Lng: 2}}
	r2 := NewResolver(p2, &fakeGeocoder{}, nil, nil)
	_, err = r2.Detect(context.Background())
	require.NoError(t, err)
}

func TestNominatimClient_Reverse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "/reverse", req.URL.Path)
		require.NotEmpty(t, req.URL.Query().Get("lat"))
		_ = json.NewEncoder(w).Encode(map[string]any{
			"display_name": "Colombo, Western Province, Sri Lanka",
			"address": map[string]string{
				"country": "Sri Lanka",
				"state":   "Western Province",
				"town":    "Colombo",
			},
		})
	}))
	defer srv.Close()

	c := NewNominatimClient(srv.URL)
	loc, err := c.Reverse(context.Background(), 6.9271, 79.8612)
	require.NoError(t, err)
	assert.Equal(t, "Sri Lanka", loc.Country)
	assert.Equal(t, "Colombo", loc.City, "town is accepted when city is absent")
	assert.Equal(t, "Colombo, Western Province, Sri Lanka", loc.DisplayAddress)
}

func TestIPProvider_Timeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	p := NewIPProvider(srv.URL)
	_, err := p.CurrentPosition(context.Background(), PositionOptions{Timeout: 50 * time.Millisecond})
	var perr *PositionError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, Timeout, perr.Code)
}
