package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/sirupsen/logrus"

	"medifind/internal/api"
	"medifind/internal/config"
	"medifind/internal/domain"
	"medifind/internal/geo"
	"medifind/internal/locator"
	"medifind/internal/notify"
	"medifind/internal/session"
)

// App консольный клиент локатора медикаментов. Все зависимости
// внедряются, чтобы команды можно было проверять против httptest-сервера
type App struct {
	Client   *api.Client
	Sessions session.Store
	Selector *locator.Selector
	Resolver *geo.Resolver
	Log      logrus.FieldLogger
	Out      io.Writer
	Err      io.Writer
}

func NewApp(cfg config.Config, sessions session.Store, log logrus.FieldLogger, out, errOut io.Writer) *App {
	client := api.New(api.Config{
		BaseURL:  cfg.APIBaseURL,
		Sessions: sessions,
		Logger:   log,
	})
	notifier := notify.NewLogNotifier(log)
	resolver := geo.NewResolver(
		geo.NewIPProvider(cfg.IPLookupURL),
		geo.NewNominatimClient(cfg.GeocoderURL),
		notifier,
		log,
	)
	return &App{
		Client:   client,
		Sessions: sessions,
		Selector: locator.New(client, log),
		Resolver: resolver,
		Log:      log,
		Out:      out,
		Err:      errOut,
	}
}

var errUsage = errors.New("usage")

// Run выполняет одну команду. При истёкшей сессии локальная сессия
// сбрасывается, чтобы следующий вызов сразу попросил войти заново
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.usage()
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "health":
		err = a.cmdHealth(ctx)
	case "login":
		err = a.cmdLogin(ctx, rest)
	case "register":
		err = a.cmdRegister(ctx, rest)
	case "logout":
		err = a.cmdLogout(ctx)
	case "search":
		err = a.cmdSearch(ctx, rest)
	case "medicines":
		err = a.cmdMedicines(ctx, rest)
	case "profile":
		err = a.cmdProfile(ctx, rest)
	case "settings":
		err = a.cmdSettings(ctx, rest)
	case "analytics":
		err = a.cmdAnalytics(ctx)
	case "location":
		err = a.cmdLocation(ctx, rest)
	case "locate":
		err = a.cmdLocate(ctx)
	default:
		fmt.Fprintf(a.Err, "unknown command %q\n", cmd)
		a.usage()
		return errUsage
	}
	return a.checkSession(err)
}

// checkSession сбрасывает локальную сессию при 401 от бэкенда
func (a *App) checkSession(err error) error {
	if err == nil {
		return nil
	}
	if api.IsAuthExpired(err) {
		if cerr := a.Sessions.Clear(); cerr != nil {
			a.Log.WithError(cerr).Warn("failed to clear session")
		}
	}
	return err
}

func (a *App) usage() {
	fmt.Fprint(a.Err, `medifind - find medicines in nearby pharmacies

commands:
  search     -name <medicine> [-location <area>]
  location   [-country C [-state S [-city T]]]
  locate
  login      -email E -password P [-user]
  register   -name N -email E -password P -confirm P [-phone] [-license] [-address] [-user]
  logout
  medicines  list | add | update | delete
  profile    show | update
  settings   show | update
  analytics
  health
`)
}

func (a *App) printMedicines(items []domain.Medicine) {
	if len(items) == 0 {
		fmt.Fprintln(a.Out, "no medicines found")
		return
	}
	tw := tabwriter.NewWriter(a.Out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQTY\tSTATUS\tPHARMACY")
	for _, m := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			m.ID, m.Name, m.Category, domain.FormatPrice(m.Price),
			m.StockQuantity, domain.DisplayStatus(m), m.PharmacyName)
	}
	tw.Flush()
}
