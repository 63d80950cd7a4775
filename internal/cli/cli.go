// Package cli implements crmctl, a terminal front end for the CRM API.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"crm/internal/crmclient"
	"crm/internal/dashboard"
	"crm/internal/model"
)

const (
	envPrefix = "CRM"

	flagAPIURL         = "api-url"
	flagSessionFile    = "session-file"
	flagLocale         = "locale"
	flagCurrency       = "currency"
	flagAttendanceDate = "attendance-date"
	flagProductionDate = "production-date"
	flagOutput         = "output"

	defaultAPIURL = "http://localhost:8080/api"
)

// App holds the configuration shared by every crmctl command.
type App struct {
	config *viper.Viper
	out    io.Writer
	now    func() time.Time
}

// NewApp creates an App writing to out.
func NewApp(out io.Writer) *App {
	return &App{config: viper.New(), out: out, now: time.Now}
}

// Command builds the root cobra command.
func (a *App) Command() (*cobra.Command, error) {
	root := &cobra.Command{
		Use:           "crmctl",
		Short:         "Work with the CRM from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String(flagAPIURL, defaultAPIURL, "base URL of the CRM API")
	flags.String(flagSessionFile, "", "where the login session is kept (default: user config dir)")
	flags.String(flagLocale, "ru", "locale used for numbers")
	flags.String(flagCurrency, "₽", "currency symbol")

	a.config.SetEnvPrefix(envPrefix)
	a.config.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.config.AutomaticEnv()
	if err := bindFlags(a.config, flags); err != nil {
		return nil, err
	}

	root.AddCommand(
		a.loginCommand(),
		a.logoutCommand(),
		a.dashboardCommand(),
		a.saveCommand(),
		a.deleteCommand(),
		a.exportCommand(),
	)
	return root, nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var bindErr error
	flags.VisitAll(func(flag *pflag.Flag) {
		if err := v.BindPFlag(flag.Name, flag); err != nil && bindErr == nil {
			bindErr = fmt.Errorf("bind flag %s: %w", flag.Name, err)
		}
	})
	return bindErr
}

func (a *App) loginCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "login <login> <password>",
		Short: "Sign in and remember the session",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.client("").Login(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			path, err := a.sessionPath()
			if err != nil {
				return err
			}
			session := &crmclient.Session{
				Login: result.User.Login,
				User:  result.User.User,
				At:    a.now(),
				Token: result.Token,
			}
			if err := crmclient.SaveSession(path, session); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Signed in as %s\n", session.DisplayName())
			return nil
		},
	}
}

func (a *App) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			path, err := a.sessionPath()
			if err != nil {
				return err
			}
			if err := crmclient.ClearSession(path); err != nil {
				return err
			}
			fmt.Fprintln(a.out, "Signed out")
			return nil
		},
	}
}

func (a *App) dashboardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print every table and the summary cards",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, client, err := a.signedIn()
			if err != nil {
				return err
			}
			filter, err := a.filter(cmd.Flags())
			if err != nil {
				return err
			}
			state := dashboard.NewState(filter)
			if err := state.Refresh(cmd.Context(), client); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "User: %s\n\n", session.DisplayName())
			return printView(a.out, dashboard.Render(state.Snapshot(), state.Filter(), a.formatter()))
		},
	}
	addFilterFlags(cmd.Flags())
	return cmd
}

func (a *App) saveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save <entity> key=value...",
		Short:   "Create or update a record",
		Example: "  crmctl save clients name=Acme contact=Ann phone=+79000000000\n  crmctl save deals clientId=1 orderName=Tables amount=1500 status=in_progress",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			payload, err := parsePairs(args[1:])
			if err != nil {
				return err
			}
			return a.apply(cmd.Context(), func(ctx context.Context, client *crmclient.Client) error {
				return client.Save(ctx, kind, payload)
			}, "Saved.")
		},
	}
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <entity> <id>",
		Short: "Delete a record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := model.ParseEntityKind(args[0])
			if err != nil {
				return err
			}
			id, err := strconv.ParseUint(args[1], 10, 0)
			if err != nil || id == 0 {
				return fmt.Errorf("invalid id %q", args[1])
			}
			return a.apply(cmd.Context(), func(ctx context.Context, client *crmclient.Client) error {
				return client.Delete(ctx, kind, uint(id))
			}, "Deleted.")
		},
	}
}

func (a *App) exportCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download the spreadsheet export",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, client, err := a.signedIn()
			if err != nil {
				return err
			}
			filter, err := a.filter(cmd.Flags())
			if err != nil {
				return err
			}
			output, _ := cmd.Flags().GetString(flagOutput)
			if output == "" {
				output = fmt.Sprintf("crm-%s.xlsx", model.DateOf(a.now()))
			}

			file, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create %s: %w", output, err)
			}
			if err := client.Export(cmd.Context(), filter, file); err != nil {
				_ = file.Close()
				_ = os.Remove(output)
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close %s: %w", output, err)
			}
			fmt.Fprintf(a.out, "Saved %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringP(flagOutput, "o", "", "output file (default: crm-<today>.xlsx)")
	addFilterFlags(cmd.Flags())
	return cmd
}

// apply runs mutation through a dashboard State so the result is reported
// only after the snapshot was fetched again.
func (a *App) apply(ctx context.Context, mutation func(context.Context, *crmclient.Client) error, successText string) error {
	_, client, err := a.signedIn()
	if err != nil {
		return err
	}
	state := dashboard.NewState(model.SnapshotFilter{})
	err = state.Apply(ctx, client, func(ctx context.Context) error {
		return mutation(ctx, client)
	}, successText)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, state.Status().Text)
	return nil
}

func (a *App) signedIn() (*crmclient.Session, *crmclient.Client, error) {
	path, err := a.sessionPath()
	if err != nil {
		return nil, nil, err
	}
	session, err := crmclient.LoadSession(path)
	if err != nil {
		if errors.Is(err, crmclient.ErrNotLoggedIn) {
			return nil, nil, fmt.Errorf("%w: run crmctl login first", err)
		}
		return nil, nil, err
	}
	return session, a.client(session.Token), nil
}

func (a *App) client(token string) *crmclient.Client {
	var opts []crmclient.Option
	if token != "" {
		opts = append(opts, crmclient.WithToken(token))
	}
	return crmclient.New(a.config.GetString(flagAPIURL), opts...)
}

func (a *App) sessionPath() (string, error) {
	if path := strings.TrimSpace(a.config.GetString(flagSessionFile)); path != "" {
		return path, nil
	}
	return crmclient.DefaultSessionPath()
}

func (a *App) formatter() *dashboard.Formatter {
	return dashboard.NewFormatter(a.config.GetString(flagLocale), a.config.GetString(flagCurrency))
}

func addFilterFlags(flags *pflag.FlagSet) {
	flags.String(flagAttendanceDate, "", "attendance day, YYYY-MM-DD (default: today)")
	flags.String(flagProductionDate, "", "production day, YYYY-MM-DD (default: today)")
}

// filter reads the date flags; an omitted day means today.
func (a *App) filter(flags *pflag.FlagSet) (model.SnapshotFilter, error) {
	today := model.DateOf(a.now())
	pick := func(name string) (model.Date, error) {
		raw, _ := flags.GetString(name)
		if strings.TrimSpace(raw) == "" {
			return today, nil
		}
		day, err := model.ParseDate(raw)
		if err != nil {
			return model.Date{}, fmt.Errorf("invalid --%s %q, expected YYYY-MM-DD", name, raw)
		}
		return day, nil
	}

	var filter model.SnapshotFilter
	var err error
	if filter.AttendanceDate, err = pick(flagAttendanceDate); err != nil {
		return filter, err
	}
	if filter.ProductionDate, err = pick(flagProductionDate); err != nil {
		return filter, err
	}
	return filter, nil
}

// parsePairs turns key=value arguments into a request body.
func parsePairs(args []string) (map[string]string, error) {
	payload := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		payload[key] = value
	}
	return payload, nil
}

func printView(out io.Writer, view dashboard.View) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	for _, cards := range [][]dashboard.Card{view.Overview, view.Progress} {
		for _, card := range cards {
			fmt.Fprintf(w, "%s\t%s\n", card.Label, card.Value)
		}
		fmt.Fprintln(w)
	}

	section(w, "Performance", "NAME\tDEALS\tWON\tREVENUE")
	for _, row := range view.Performance {
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\n", row.Name, row.Deals, row.Won, row.Revenue)
	}

	section(w, "Clients", "ID\tNAME\tCONTACT\tPHONE\tDEALS")
	for _, row := range view.Clients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", row.ID, row.Name, row.Contact, row.Phone, row.Deals)
	}

	section(w, "Workers", "ID\tNAME\tROLE")
	for _, row := range view.Workers {
		fmt.Fprintf(w, "%d\t%s\t%s\n", row.ID, row.Name, row.Role)
	}

	section(w, "Deals", "ID\tORDER\tCLIENT\tWORKER\tAMOUNT\tSTATUS\tCREATED")
	for _, row := range view.Deals {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n", row.ID, row.OrderName, row.ClientName, row.WorkerName, row.Amount, row.Status.Label, row.Created)
	}

	section(w, "Attendance "+view.AttendanceDate, "ID\tDATE\tWORKER\tSTATUS\tOVERTIME")
	for _, row := range view.Attendance {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", row.ID, row.Date, row.WorkerName, row.Status.Label, row.Overtime)
	}

	section(w, "Production "+view.ProductionDate, "ID\tDATE\tWORKER\tPRODUCT\tQUANTITY")
	for _, row := range view.Productions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\n", row.ID, row.Date, row.WorkerName, row.Product, row.Quantity)
	}

	return w.Flush()
}

func section(w io.Writer, title, header string) {
	fmt.Fprintf(w, "\n%s\n%s\n", title, header)
}
