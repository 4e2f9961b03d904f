package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"medifind/internal/api"
	"medifind/internal/domain"
)

func (a *App) cmdHealth(ctx context.Context) error {
	status, err := a.Client.Health(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "backend: %s\n", status)
	return nil
}

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	asUser := fs.Bool("user", false, "log in as a regular user instead of a pharmacy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" || *password == "" {
		return fmt.Errorf("email and password are required")
	}

	var (
		res *api.AuthResponse
		err error
	)
	if *asUser {
		res, err = a.Client.UserLogin(ctx, *email, *password)
	} else {
		res, err = a.Client.PharmacyLogin(ctx, *email, *password)
	}
	if err != nil {
		if api.IsAuthExpired(err) {
			return fmt.Errorf("login failed: invalid email or password")
		}
		return err
	}
	if err := a.Sessions.Save(res.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(a.Out, "logged in as %s\n", res.UserType)
	return nil
}

func (a *App) cmdRegister(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	name := fs.String("name", "", "pharmacy or user name")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	confirm := fs.String("confirm", "", "password confirmation")
	phone := fs.String("phone", "", "contact phone")
	license := fs.String("license", "", "pharmacy license number")
	address := fs.String("address", "", "pharmacy address")
	asUser := fs.Bool("user", false, "register a regular user instead of a pharmacy")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *name == "" || *email == "" || *password == "" {
		return fmt.Errorf("name, email and password are required")
	}
	if *password != *confirm {
		return fmt.Errorf("passwords do not match")
	}

	var (
		res *api.AuthResponse
		err error
	)
	if *asUser {
		res, err = a.Client.UserRegister(ctx, *name, *email, *password, *phone)
	} else {
		res, err = a.Client.PharmacyRegister(ctx, api.RegisterRequest{
			Name:          *name,
			Email:         *email,
			Password:      *password,
			Phone:         *phone,
			LicenseNumber: *license,
			Address:       *address,
		})
	}
	if err != nil {
		return err
	}
	if err := a.Sessions.Save(res.Session()); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	fmt.Fprintf(a.Out, "registered and logged in as %s\n", res.UserType)
	return nil
}

func (a *App) cmdLogout(ctx context.Context) error {
	// the backend call is best effort, the local session always goes
	if err := a.Client.Logout(ctx); err != nil && !api.IsAuthExpired(err) {
		a.Log.WithError(err).Warn("logout request failed")
	}
	if err := a.Sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	fmt.Fprintln(a.Out, "logged out")
	return nil
}

func (a *App) cmdSearch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("search", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	name := fs.String("name", "", "medicine name to search for")
	location := fs.String("location", "", "area to search in")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*name) == "" {
		return fmt.Errorf("medicine name is required")
	}
	loc := *location
	if loc == "" {
		if selected, ok := a.Selector.Location(); ok {
			loc = selected
		}
	}
	res, err := a.Client.SearchMedicines(ctx, domain.SearchQuery{
		MedicineName: *name,
		Location:     loc,
	})
	if err != nil {
		return err
	}
	a.printMedicines(res.Medicines)
	return nil
}

func (a *App) cmdMedicines(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("medicines: expected list, add, update or delete")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "list":
		items, err := a.Client.ListMedicines(ctx)
		if err != nil {
			return err
		}
		a.printMedicines(items)
		return nil
	case "add":
		return a.cmdMedicineAdd(ctx, rest)
	case "update":
		return a.cmdMedicineUpdate(ctx, rest)
	case "delete":
		return a.cmdMedicineDelete(ctx, rest)
	default:
		return fmt.Errorf("medicines: unknown subcommand %q", sub)
	}
}

func medicineFlags(fs *flag.FlagSet) (name, description, category *string, price *float64, qty *int) {
	name = fs.String("name", "", "medicine name")
	description = fs.String("description", "", "short description")
	category = fs.String("category", "", "category")
	price = fs.Float64("price", 0, "unit price")
	qty = fs.Int("qty", 0, "stock quantity")
	return
}

func validateMedicine(name string, price float64, qty int) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("medicine name is required")
	}
	if price <= 0 {
		return fmt.Errorf("price must be positive")
	}
	if qty < 0 {
		return fmt.Errorf("quantity cannot be negative")
	}
	return nil
}

func (a *App) cmdMedicineAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("medicines add", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	name, description, category, price, qty := medicineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := validateMedicine(*name, *price, *qty); err != nil {
		return err
	}
	added, err := a.Client.AddMedicine(ctx, domain.Medicine{
		Name:          *name,
		Description:   *description,
		Category:      *category,
		Price:         *price,
		StockQuantity: *qty,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "added %s (%s, %s)\n", added.Name, domain.FormatPrice(added.Price), domain.DisplayStatus(*added))
	return nil
}

func (a *App) cmdMedicineUpdate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("medicines update", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	id := fs.String("id", "", "medicine id")
	name, description, category, price, qty := medicineFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("medicine id is required")
	}
	if err := validateMedicine(*name, *price, *qty); err != nil {
		return err
	}
	err := a.Client.UpdateMedicine(ctx, *id, domain.Medicine{
		Name:          *name,
		Description:   *description,
		Category:      *category,
		Price:         *price,
		StockQuantity: *qty,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "updated")
	return nil
}

func (a *App) cmdMedicineDelete(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("medicines delete", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	id := fs.String("id", "", "medicine id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return fmt.Errorf("medicine id is required")
	}
	if err := a.Client.DeleteMedicine(ctx, *id); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "deleted")
	return nil
}

func (a *App) cmdProfile(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("profile: expected show or update")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		p, err := a.Client.GetPharmacyInfo(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "%s\nemail:   %s\nphone:   %s\naddress: %s\nlicense: %s\n",
			p.Name, p.Email, p.Phone, p.Address, p.LicenseNumber)
		return nil
	case "update":
		fs := flag.NewFlagSet("profile update", flag.ContinueOnError)
		fs.SetOutput(a.Err)
		name := fs.String("name", "", "pharmacy name")
		email := fs.String("email", "", "contact email")
		phone := fs.String("phone", "", "contact phone")
		address := fs.String("address", "", "pharmacy address")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		err := a.Client.UpdatePharmacyInfo(ctx, api.PharmacyUpdate{
			Name:    *name,
			Email:   *email,
			Phone:   *phone,
			Address: *address,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, "profile updated")
		return nil
	default:
		return fmt.Errorf("profile: unknown subcommand %q", sub)
	}
}

func (a *App) cmdSettings(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("settings: expected show or update")
	}
	sub, rest := args[0], args[1:]
	switch sub {
	case "show":
		s, err := a.Client.GetSettings(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Out, "open:  %s - %s\nemail notifications: %v\nsms notifications:   %v\n",
			s.OpeningTime, s.ClosingTime, s.EmailNotifications, s.SMSNotifications)
		return nil
	case "update":
		fs := flag.NewFlagSet("settings update", flag.ContinueOnError)
		fs.SetOutput(a.Err)
		opening := fs.String("open", "08:00", "opening time")
		closing := fs.String("close", "20:00", "closing time")
		emailOn := fs.Bool("email-notifications", true, "send email notifications")
		smsOn := fs.Bool("sms-notifications", false, "send sms notifications")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		err := a.Client.UpdateSettings(ctx, domain.Settings{
			OpeningTime:        *opening,
			ClosingTime:        *closing,
			EmailNotifications: *emailOn,
			SMSNotifications:   *smsOn,
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Out, "settings updated")
		return nil
	default:
		return fmt.Errorf("settings: unknown subcommand %q", sub)
	}
}

func (a *App) cmdAnalytics(ctx context.Context) error {
	res, err := a.Client.GetAnalytics(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "medicines:       %d\nlow stock:       %d\nout of stock:    %d\ninventory value: %s\n",
		res.TotalMedicines, res.LowStock, res.OutOfStock, domain.FormatPrice(res.TotalInventoryValue))
	for _, c := range res.CategoryBreakdown {
		fmt.Fprintf(a.Out, "  %s: %d\n", c.Category, c.Count)
	}
	return nil
}

// cmdLocation каскадный выбор: страна открывает регионы, регион — города.
// Без флагов печатает доступные варианты текущего уровня
func (a *App) cmdLocation(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("location", flag.ContinueOnError)
	fs.SetOutput(a.Err)
	country := fs.String("country", "", "country name")
	state := fs.String("state", "", "state or province")
	city := fs.String("city", "", "city name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	a.Selector.Activate(ctx)
	if *country == "" {
		a.printOptions("countries", a.Selector.CountryOptions())
		return nil
	}
	if err := a.Selector.SelectCountry(ctx, *country); err != nil {
		return err
	}
	if *state == "" {
		a.printOptions("states", a.Selector.StateOptions())
		return nil
	}
	if err := a.Selector.SelectState(ctx, *state); err != nil {
		return err
	}
	if *city == "" {
		a.printOptions("cities", a.Selector.CityOptions())
		return nil
	}
	if err := a.Selector.SelectCity(*city); err != nil {
		return err
	}
	loc, _ := a.Selector.Location()
	fmt.Fprintf(a.Out, "location set: %s\n", loc)
	return nil
}

func (a *App) printOptions(kind string, opts []string) {
	if len(opts) == 0 {
		fmt.Fprintf(a.Out, "no %s available\n", kind)
		return
	}
	fmt.Fprintf(a.Out, "%s:\n", kind)
	for _, o := range opts {
		fmt.Fprintf(a.Out, "  %s\n", o)
	}
}

func (a *App) cmdLocate(ctx context.Context) error {
	loc, err := a.Resolver.Detect(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "detected: %s\n", loc.DisplayAddress)
	if loc.City != "" {
		fmt.Fprintf(a.Out, "  city:    %s\n", loc.City)
	}
	if loc.State != "" {
		fmt.Fprintf(a.Out, "  state:   %s\n", loc.State)
	}
	if loc.Country != "" {
		fmt.Fprintf(a.Out, "  country: %s\n", loc.Country)
	}
	return nil
}
