package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Position координаты, полученные от провайдера
type Position struct {
	Lat float64
	Lng float64
}

// PositionErrorCode причина неудачи определения позиции;
// каждая причина даёт своё сообщение пользователю
type PositionErrorCode int

const (
	PermissionDenied PositionErrorCode = iota + 1
	PositionUnavailable
	Timeout
)

// PositionError ошибка провайдера позиции с различимой причиной
type PositionError struct {
	Code  PositionErrorCode
	Cause error
}

func (e *PositionError) Error() string {
	switch e.Code {
	case PermissionDenied:
		return "position access denied"
	case Timeout:
		return "position request timed out"
	default:
		return "position unavailable"
	}
}

func (e *PositionError) Unwrap() error { return e.Cause }

// PositionOptions параметры запроса позиции
type PositionOptions struct {
	Timeout      time.Duration
	MaximumAge   time.Duration
	HighAccuracy bool
}

// PositionProvider одноразовый источник текущей позиции устройства
type PositionProvider interface {
	CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error)
}

// IPProvider определяет позицию по IP через внешний HTTP-сервис
// (контракт ip-api: поля status, lat, lon)
type IPProvider struct {
	BaseURL string
	HTTP    *http.Client
}

func NewIPProvider(baseURL string) *IPProvider {
	return &IPProvider{BaseURL: baseURL, HTTP: &http.Client{}}
}

var _ PositionProvider = (*IPProvider)(nil)

func (p *IPProvider) CurrentPosition(ctx context.Context, opts PositionOptions) (Position, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/json", nil)
	if err != nil {
		return Position{}, &PositionError{Code: PositionUnavailable, Cause: err}
	}
	resp, err := p.HTTP.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, &PositionError{Code: Timeout, Cause: err}
		}
		return Position{}, &PositionError{Code: PositionUnavailable, Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests {
		return Position{}, &PositionError{Code: PermissionDenied, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}
	if resp.StatusCode != http.StatusOK {
		return Position{}, &PositionError{Code: PositionUnavailable, Cause: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	var body struct {
		Status string  `json:"status"`
		Lat    float64 `json:"lat"`
		Lon    float64 `json:"lon"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Position{}, &PositionError{Code: PositionUnavailable, Cause: err}
	}
	if body.Status != "" && body.Status != "success" {
		return Position{}, &PositionError{Code: PositionUnavailable, Cause: fmt.Errorf("lookup status %q", body.Status)}
	}
	return Position{Lat: body.Lat, Lng: body.Lon}, nil
}
