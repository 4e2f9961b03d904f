// Package geo одноразовое определение локации пользователя:
// позиция устройства плюс обратное геокодирование с деградацией до координат.
package geo

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"medifind/internal/domain"
	"medifind/internal/notify"
)

const (
	// DetectTimeout ограничение на запрос позиции
	DetectTimeout = 10 * time.Second
	// MaxPositionAge допустимый возраст кэшированной позиции
	MaxPositionAge = 5 * time.Minute
)

var (
	// ErrUnsupported определение локации недоступно на этом устройстве
	ErrUnsupported = errors.New("location detection is not supported on this device")
	// ErrInProgress повторный запуск, пока идёт определение
	ErrInProgress = errors.New("location detection is already in progress")

	errPermissionDenied = errors.New("location permission denied, please allow location access")
	errTimeout          = errors.New("location request timed out, please try again")
	errUnavailable      = errors.New("unable to determine your location")
)

// Resolver машина состояний idle → detecting → (resolved | error),
// допускает повторные запуски, но не параллельные
type Resolver struct {
	provider PositionProvider
	geocoder ReverseGeocoder
	notifier notify.Notifier
	log      logrus.FieldLogger

	mu        sync.Mutex
	detecting bool
}

func NewResolver(provider PositionProvider, geocoder ReverseGeocoder, notifier notify.Notifier, log logrus.FieldLogger) *Resolver {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{provider: provider, geocoder: geocoder, notifier: notifier, log: log}
}

// Detecting идёт ли определение прямо сейчас
func (r *Resolver) Detecting() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.detecting
}

// Detect однократно определяет локацию. Сбой обратного геокодирования —
// не ошибка: возвращается локация с сырыми координатами в адресе
func (r *Resolver) Detect(ctx context.Context) (domain.DetectedLocation, error) {
	if r.provider == nil {
		r.notifier.Notify(notify.LevelError, ErrUnsupported.Error())
		return domain.DetectedLocation{}, ErrUnsupported
	}

	r.mu.Lock()
	if r.detecting {
		r.mu.Unlock()
		return domain.DetectedLocation{}, ErrInProgress
	}
	r.detecting = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.detecting = false
		r.mu.Unlock()
	}()

	r.notifier.Notify(notify.LevelInfo, "detecting your location...")

	pos, err := r.provider.CurrentPosition(ctx, PositionOptions{
		Timeout:      DetectTimeout,
		MaximumAge:   MaxPositionAge,
		HighAccuracy: true,
	})
	if err != nil {
		mapped := mapPositionError(err)
		r.notifier.Notify(notify.LevelError, mapped.Error())
		return domain.DetectedLocation{}, mapped
	}

	loc, err := r.geocoder.Reverse(ctx, pos.Lat, pos.Lng)
	if err != nil {
		// degraded success: raw coordinates are still usable for search
		r.log.WithError(err).Warn("reverse geocoding failed, falling back to coordinates")
		loc = domain.DetectedLocation{
			Country:        "Unknown",
			State:          "Unknown",
			City:           "Unknown",
			DisplayAddress: FormatCoordinates(pos.Lat, pos.Lng),
			Coordinates:    &domain.Coordinates{Lat: pos.Lat, Lng: pos.Lng},
		}
	}
	if loc.Coordinates == nil {
		loc.Coordinates = &domain.Coordinates{Lat: pos.Lat, Lng: pos.Lng}
	}

	r.notifier.Notify(notify.LevelSuccess, "location detected: "+loc.DisplayAddress)
	return loc, nil
}

// FormatCoordinates координаты с четырьмя знаками после запятой
func FormatCoordinates(lat, lng float64) string {
	return fmt.Sprintf("%.4f, %.4f", lat, lng)
}

// mapPositionError причина → своё сообщение: отказ в доступе, таймаут
// и недоступность позиции различимы для пользователя
func mapPositionError(err error) error {
	var perr *PositionError
	if errors.As(err, &perr) {
		switch perr.Code {
		case PermissionDenied:
			return errPermissionDenied
		case Timeout:
			return errTimeout
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return errTimeout
	}
	return errUnavailable
}
