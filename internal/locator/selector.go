// Package locator реализует каскадный выбор локации:
// страна → регион → город, каждый уровень зависит от предыдущего.
package locator

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"medifind/internal/domain"
)

// LevelState состояние одного уровня выбора
type LevelState string

const (
	StateIdle    LevelState = "idle"
	StateLoading LevelState = "loading"
	StateLoaded  LevelState = "loaded"
	StateError   LevelState = "error"
)

var (
	ErrNoCountry = errors.New("country not selected")
	ErrNoState   = errors.New("state not selected")
	ErrBlank     = errors.New("blank value")
)

// OptionSource поставщик вариантов для каждого уровня
type OptionSource interface {
	Countries(ctx context.Context) ([]string, error)
	States(ctx context.Context, country string) ([]string, error)
	Cities(ctx context.Context, country, state string) ([]string, error)
}

type level struct {
	state   LevelState
	options []string
}

// Selector машина состояний трёх зависимых уровней. Смена страны очищает
// регион и город, смена региона очищает город; ответ запроса, чья
// зависимость уже сменилась, отбрасывается, а не перетирает новые данные
type Selector struct {
	mu     sync.Mutex
	source OptionSource
	log    logrus.FieldLogger

	countries level
	states    level
	cities    level
	sel       domain.LocationSelection

	// generation counters guard against superseded in-flight fetches
	statesGen uint64
	citiesGen uint64
}

func New(source OptionSource, log logrus.FieldLogger) *Selector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Selector{
		source:    source,
		log:       log,
		countries: level{state: StateIdle},
		states:    level{state: StateIdle},
		cities:    level{state: StateIdle},
	}
}

// Activate разовая загрузка списка стран при входе в ручной режим.
// Ошибка не фатальна: список остаётся пустым, контрол — рабочим
func (s *Selector) Activate(ctx context.Context) {
	s.mu.Lock()
	if s.countries.state == StateLoaded {
		s.mu.Unlock()
		return
	}
	s.countries.state = StateLoading
	s.mu.Unlock()

	opts, err := s.source.Countries(ctx)
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.WithError(err).Warn("country list load failed")
		s.countries = level{state: StateLoaded}
		return
	}
	s.countries = level{state: StateLoaded, options: filterBlank(opts)}
}

// SelectCountry выбирает страну: регион и город очищаются до начала
// нового запроса, загружается список регионов
func (s *Selector) SelectCountry(ctx context.Context, country string) error {
	if strings.TrimSpace(country) == "" {
		return ErrBlank
	}
	s.mu.Lock()
	s.sel = domain.LocationSelection{Country: country}
	s.cities = level{state: StateIdle}
	s.states = level{state: StateLoading}
	s.statesGen++
	s.citiesGen++
	gen := s.statesGen
	s.mu.Unlock()

	opts, err := s.source.States(ctx, country)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.statesGen {
		// a newer country selection superseded this fetch
		return nil
	}
	if err != nil {
		s.states.state = StateError
		return err
	}
	s.states = level{state: StateLoaded, options: filterBlank(opts)}
	return nil
}

// SelectState выбирает регион: город очищается, загружается список городов
func (s *Selector) SelectState(ctx context.Context, state string) error {
	if strings.TrimSpace(state) == "" {
		return ErrBlank
	}
	s.mu.Lock()
	if s.sel.Country == "" {
		s.mu.Unlock()
		return ErrNoCountry
	}
	country := s.sel.Country
	s.sel.State = state
	s.sel.City = ""
	s.cities = level{state: StateLoading}
	s.citiesGen++
	gen := s.citiesGen
	s.mu.Unlock()

	opts, err := s.source.Cities(ctx, country, state)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.citiesGen {
		return nil
	}
	if err != nil {
		s.cities.state = StateError
		return err
	}
	s.cities = level{state: StateLoaded, options: filterBlank(opts)}
	return nil
}

// SelectCity выбирает город и завершает выбор локации
func (s *Selector) SelectCity(city string) error {
	if strings.TrimSpace(city) == "" {
		return ErrBlank
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sel.State == "" {
		return ErrNoState
	}
	s.sel.City = city
	return nil
}

// Selection текущее состояние выбора
func (s *Selector) Selection() domain.LocationSelection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel
}

// Location строка локации; false, пока выбраны не все три уровня
func (s *Selector) Location() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.sel.Complete() {
		return "", false
	}
	return s.sel.String(), true
}

// CountryOptions доступные страны
func (s *Selector) CountryOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.countries.options...)
}

// StateOptions доступные регионы
func (s *Selector) StateOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.states.options...)
}

// CityOptions доступные города
func (s *Selector) CityOptions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.cities.options...)
}

// StateLevel состояние уровня регионов
func (s *Selector) StateLevel() LevelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states.state
}

// CityLevel состояние уровня городов
func (s *Selector) CityLevel() LevelState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cities.state
}

// StateEnabled уровень регионов активен только при выбранной стране
func (s *Selector) StateEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.Country != ""
}

// CityEnabled уровень городов активен только при выбранном регионе
func (s *Selector) CityEnabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sel.State != ""
}

// filterBlank отбрасывает пустые значения из ответа бэкенда,
// чтобы они не предлагались к выбору
func filterBlank(opts []string) []string {
	out := make([]string, 0, len(opts))
	for _, o := range opts {
		if strings.TrimSpace(o) == "" {
			continue
		}
		out = append(out, o)
	}
	return out
}
