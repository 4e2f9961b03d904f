package locator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource настраиваемый источник вариантов
type fakeSource struct {
	mu        sync.Mutex
	countries []string
	states    map[string][]string
	cities    map[string][]string
	statesErr error
	citiesErr error

	// per-country gates: States blocks until the gate is closed
	gates map[string]chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		countries: []string{"Sri Lanka", "India"},
		states: map[string][]string{
			"Sri Lanka": {"Colombo District", "Kandy District"},
			"India":     {"Kerala"},
		},
		cities: map[string][]string{
			"Sri Lanka/Colombo District": {"Colombo", "Sri Jayawardenepura Kotte"},
			"Sri Lanka/Kandy District":   {},
			"India/Kerala":               {"Kochi"},
		},
	}
}

func (f *fakeSource) Countries(ctx context.Context) ([]string, error) {
	return f.countries, nil
}

func (f *fakeSource) States(ctx context.Context, country string) ([]string, error) {
	if gate, ok := f.gates[country]; ok {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statesErr != nil {
		return nil, f.statesErr
	}
	return f.states[country], nil
}

func (f *fakeSource) Cities(ctx context.Context, country, state string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.citiesErr != nil {
		return nil, f.citiesErr
	}
	return f.cities[country+"/"+state], nil
}

func TestSelector_CascadeHappyPath(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	sel := New(src, nil)

	sel.Activate(ctx)
	assert.Equal(t, []string{"Sri Lanka", "India"}, sel.CountryOptions())
	assert.False(t, sel.StateEnabled(), "state level is disabled before country selection")

	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
	assert.Equal(t, StateLoaded, sel.StateLevel())
	assert.Equal(t, []string{"Colombo District", "Kandy District"}, sel.StateOptions())
	assert.False(t, sel.CityEnabled())

	require.NoError(t, sel.SelectState(ctx, "Colombo District"))
	assert.Equal(t, StateLoaded, sel.CityLevel())
	assert.True(t, sel.CityEnabled())

	require.NoError(t, sel.SelectCity("Colombo"))
	loc, ok := sel.Location()
	require.True(t, ok)
	assert.Equal(t, "Colombo, Colombo District, Sri Lanka", loc)
}

func TestSelector_CountryChangeClearsDescendants(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	sel := New(src, nil)
	sel.Activate(ctx)

	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
	require.NoError(t, sel.SelectState(ctx, "Colombo District"))
	require.NoError(t, sel.SelectCity("Colombo"))

	require.NoError(t, sel.SelectCountry(ctx, "India"))
	got := sel.Selection()
	assert.Equal(t, "India", got.Country)
	assert.Empty(t, got.State, "state selection must be cleared on country change")
	assert.Empty(t, got.City, "city selection must be cleared on country change")
	assert.Empty(t, sel.CityOptions(), "city options must be invalidated")
	assert.Equal(t, StateIdle, sel.CityLevel())

	_, ok := sel.Location()
	assert.False(t, ok)
}

func TestSelector_StateChangeClearsCity(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	sel := New(src, nil)
	sel.Activate(ctx)

	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
	require.NoError(t, sel.SelectState(ctx, "Colombo District"))
	require.NoError(t, sel.SelectCity("Colombo"))

	require.NoError(t, sel.SelectState(ctx, "Kandy District"))
	assert.Empty(t, sel.Selection().City)
}

func TestSelector_OrderingGuards(t *testing.T) {
	ctx := context.Background()
	sel := New(newFakeSource(), nil)
	sel.Activate(ctx)

	require.ErrorIs(t, sel.SelectState(ctx, "Colombo District"), ErrNoCountry)
	require.ErrorIs(t, sel.SelectCity("Colombo"), ErrNoState)
}

func TestSelector_EmptyCityListIsLoaded(t *testing.T) {
	ctx := context.Background()
	sel := New(newFakeSource(), nil)
	sel.Activate(ctx)

	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
	require.NoError(t, sel.SelectState(ctx, "Kandy District"))
	// enabled-but-empty, not disabled and not an error
	assert.Equal(t, StateLoaded, sel.CityLevel())
	assert.True(t, sel.CityEnabled())
	assert.Empty(t, sel.CityOptions())
}

func TestSelector_BlankOptionsFiltered(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.states["Sri Lanka"] = []string{"Colombo District", "", "  ", "Kandy District"}
	sel := New(src, nil)

	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
	assert.Equal(t, []string{"Colombo District", "Kandy District"}, sel.StateOptions())
}

func TestSelector_FetchErrorSetsErrorState(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	src.statesErr = errors.New("boom")
	sel := New(src, nil)

	require.Error(t, sel.SelectCountry(ctx, "Sri Lanka"))
	assert.Equal(t, StateError, sel.StateLevel())
}

func TestSelector_CountryLoadFailsOpen(t *testing.T) {
	ctx := context.Background()
	sel := New(countriesFail{}, nil)
	sel.Activate(ctx)
	// usable but empty, not fatal
	assert.Empty(t, sel.CountryOptions())
	require.NoError(t, sel.SelectCountry(ctx, "Sri Lanka"))
}

type countriesFail struct{}

func (countriesFail) Countries(ctx context.Context) ([]string, error) {
	return nil, errors.New("backend down")
}
func (countriesFail) States(ctx context.Context, country string) ([]string, error) {
	return []string{"Colombo District"}, nil
}
func (countriesFail) Cities(ctx context.Context, country, state string) ([]string, error) {
	return nil, nil
}

func TestSelector_SupersededFetchDiscarded(t *testing.T) {
	ctx := context.Background()
	src := newFakeSource()
	gate := make(chan struct{})
	src.gates = map[string]chan struct{}{"Sri Lanka": gate}
	sel := New(src, nil)

	done := make(chan error, 1)
	go func() {
		// fetch for Sri Lanka hangs on the gate
		done <- sel.SelectCountry(ctx, "Sri Lanka")
	}()

	// let the first fetch get issued, then supersede it
	time.Sleep(20 * time.Millisecond)
	require.NoError(t, sel.SelectCountry(ctx, "India"))
	assert.Equal(t, []string{"Kerala"}, sel.StateOptions())

	// release the stale fetch; its result must be dropped
	close(gate)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"Kerala"}, sel.StateOptions(), "stale states response must not overwrite newer options")
	assert.Equal(t, "India", sel.Selection().Country)
}
