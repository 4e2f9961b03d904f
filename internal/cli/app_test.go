package cli

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medifind/internal/api"
	"medifind/internal/auth"
	"medifind/internal/geo"
	httpapi "medifind/internal/http"
	"medifind/internal/locator"
	"medifind/internal/notify"
	"medifind/internal/repository"
	"medifind/internal/service"
	"medifind/internal/session"
)

// запускает CLI против полного dev-сервера поверх httptest
func setupApp(t *testing.T) (*App, *bytes.Buffer) {
	t.Helper()

	store := repository.NewMemoryStore()
	pharmacies := repository.NewMemoryPharmacies(store)
	users := repository.NewMemoryUsers(store)
	settings := repository.NewMemorySettings(store)
	tx := repository.NewMemoryTx(store)
	tokens := auth.NewManager("test-secret", "medifind-test", time.Hour)

	srv := httpapi.NewServer(
		service.NewAuthService(pharmacies, users, settings, tx, tokens),
		service.NewInventoryService(store),
		service.NewSearchService(store, pharmacies),
		service.NewProfileService(pharmacies, settings, 2<<20),
		service.NewAnalyticsService(store),
		repository.NewStaticGeography(),
		tokens,
	)
	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(ts.Close)

	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	sessions := session.NewMemStore()
	client := api.New(api.Config{BaseURL: ts.URL, Sessions: sessions, Logger: log})

	out := &bytes.Buffer{}
	return &App{
		Client:   client,
		Sessions: sessions,
		Selector: locator.New(client, log),
		Resolver: geo.NewResolver(nil, nil, notify.Nop{}, log),
		Log:      log,
		Out:      out,
		Err:      &bytes.Buffer{},
	}, out
}

func register(t *testing.T, app *App) {
	t.Helper()
	err := app.Run(context.Background(), []string{"register",
		"-name", "City Pharmacy", "-email", "city@example.com",
		"-password", "secret1", "-confirm", "secret1",
		"-phone", "011-1234567", "-license", "PH-100",
		"-address", "Colombo, Western, Sri Lanka",
	})
	require.NoError(t, err)
}

func TestRegisterStoresSession(t *testing.T) {
	app, out := setupApp(t)
	register(t, app)
	assert.Contains(t, out.String(), "registered and logged in as pharmacy")

	s, ok, err := app.Sessions.Load()
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, s.Token)
	assert.Equal(t, "pharmacy", string(s.UserType))
}

func TestRegisterPasswordMismatch(t *testing.T) {
	app, _ := setupApp(t)
	err := app.Run(context.Background(), []string{"register",
		"-name", "P", "-email", "p@example.com",
		"-password", "secret1", "-confirm", "different",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "passwords do not match")
}

func TestLoginBadCredentials(t *testing.T) {
	app, _ := setupApp(t)
	register(t, app)
	require.NoError(t, app.Run(context.Background(), []string{"logout"}))

	err := app.Run(context.Background(), []string{"login",
		"-email", "city@example.com", "-password", "wrong",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid email or password")
}

// медикамент с остатком 5 приходит с бэкенда под ключом stock и
// отображается как заканчивающийся по цене с двумя знаками
func TestAddAndListNormalization(t *testing.T) {
	app, out := setupApp(t)
	register(t, app)

	err := app.Run(context.Background(), []string{"medicines", "add",
		"-name", "Paracetamol", "-price", "9.99", "-qty", "5",
	})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "added Paracetamol ($9.99, low_stock)")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"medicines", "list"}))
	listing := out.String()
	assert.Contains(t, listing, "Paracetamol")
	assert.Contains(t, listing, "$9.99")
	assert.Contains(t, listing, "low_stock")
	// category default fills in on the client
	assert.Contains(t, listing, "General")
}

func TestAddValidation(t *testing.T) {
	app, _ := setupApp(t)
	register(t, app)

	err := app.Run(context.Background(), []string{"medicines", "add",
		"-name", "X", "-price", "0", "-qty", "1",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "price must be positive")

	err = app.Run(context.Background(), []string{"medicines", "add",
		"-name", "X", "-price", "1", "-qty", "-3",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity cannot be negative")
}

func TestSearchWithoutLogin(t *testing.T) {
	app, out := setupApp(t)
	register(t, app)
	require.NoError(t, app.Run(context.Background(), []string{"medicines", "add",
		"-name", "Ibuprofen", "-price", "4.50", "-qty", "100",
	}))
	require.NoError(t, app.Run(context.Background(), []string{"logout"}))

	out.Reset()
	err := app.Run(context.Background(), []string{"search", "-name", "ibu", "-location", "Colombo"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Ibuprofen")
	assert.Contains(t, out.String(), "City Pharmacy")
}

func TestExpiredSessionClearedOnUse(t *testing.T) {
	app, _ := setupApp(t)
	register(t, app)

	// corrupt the stored token to simulate expiry
	s, ok, err := app.Sessions.Load()
	require.NoError(t, err)
	require.True(t, ok)
	s.Token = "expired-token"
	require.NoError(t, app.Sessions.Save(s))

	err = app.Run(context.Background(), []string{"medicines", "list"})
	require.Error(t, err)
	assert.True(t, api.IsAuthExpired(err))
	assert.Contains(t, err.Error(), "session expired, please log in again")

	_, ok, err = app.Sessions.Load()
	require.NoError(t, err)
	assert.False(t, ok, "session should be cleared after a 401")
}

func TestLocationSelectionFlow(t *testing.T) {
	app, out := setupApp(t)

	require.NoError(t, app.Run(context.Background(), []string{"location"}))
	assert.Contains(t, out.String(), "Sri Lanka")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"location", "-country", "Sri Lanka"}))
	assert.Contains(t, out.String(), "states:")

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"location",
		"-country", "Sri Lanka", "-state", "Colombo District", "-city", "Colombo",
	}))
	assert.Contains(t, out.String(), "location set: Colombo, Colombo District, Sri Lanka")
}

func TestLocationOutOfOrder(t *testing.T) {
	app, _ := setupApp(t)
	app.Selector.Activate(context.Background())
	err := app.Selector.SelectState(context.Background(), "Colombo District")
	require.Error(t, err)
}

func TestLocateUnsupported(t *testing.T) {
	app, _ := setupApp(t)
	err := app.Run(context.Background(), []string{"locate"})
	require.Error(t, err)
	assert.ErrorIs(t, err, geo.ErrUnsupported)
}

func TestAnalyticsOutput(t *testing.T) {
	app, out := setupApp(t)
	register(t, app)
	require.NoError(t, app.Run(context.Background(), []string{"medicines", "add",
		"-name", "A", "-price", "10", "-qty", "50",
	}))

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"analytics"}))
	assert.Contains(t, out.String(), "inventory value: $500.00")
}

func TestUsageForUnknownCommand(t *testing.T) {
	app, _ := setupApp(t)
	err := app.Run(context.Background(), []string{"bogus"})
	require.Error(t, err)
}

func TestProfileRoundTrip(t *testing.T) {
	app, out := setupApp(t)
	register(t, app)

	require.NoError(t, app.Run(context.Background(), []string{"profile", "update", "-phone", "011-7654321"}))

	out.Reset()
	require.NoError(t, app.Run(context.Background(), []string{"profile", "show"}))
	lines := out.String()
	assert.True(t, strings.HasPrefix(lines, "City Pharmacy"))
	assert.Contains(t, lines, "011-7654321")
}
