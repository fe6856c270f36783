package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	argscmd "nathanbeddoewebdev/dropproxy/cmd/commands/args"
	"nathanbeddoewebdev/dropproxy/cmd/commands/auth"
	cfgcmd "nathanbeddoewebdev/dropproxy/cmd/commands/config"
	dnscmd "nathanbeddoewebdev/dropproxy/cmd/commands/dns"
	"nathanbeddoewebdev/dropproxy/cmd/commands/list"
	nginxcmd "nathanbeddoewebdev/dropproxy/cmd/commands/nginx"
	provisioncmd "nathanbeddoewebdev/dropproxy/cmd/commands/provision"
	"nathanbeddoewebdev/dropproxy/cmd/commands/runs"
	"nathanbeddoewebdev/dropproxy/internal/app"
	"nathanbeddoewebdev/dropproxy/internal/argfile"
	cloudproviders "nathanbeddoewebdev/dropproxy/internal/cloud/providers"
	"nathanbeddoewebdev/dropproxy/internal/console"
	dnsproviders "nathanbeddoewebdev/dropproxy/internal/dns/providers"
	"nathanbeddoewebdev/dropproxy/internal/logging"

	"github.com/spf13/cobra"
)

// Legacy root flags, checked in this order.
const (
	flagHelp       = "Help"
	flagDroplet    = "Droplet"
	flagSubdomains = "Subdomains"
	flagKeys       = "Keys"
	flagMakeNginx  = "Make_nginx_conf"
	flagInputFile  = "Input_file"
)

// NewRootCommand returns the dropproxy command tree.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dropproxy [argfile]",
		Short: "Provision a droplet behind nginx and point a DNS record at it",
		Long: `dropproxy replaces a named droplet with a fresh one, installs nginx with a
reverse proxy site over SSH, and creates or updates the domain's A record
to the new droplet's address.

Credentials are read from keys.txt (GDD_PUBLIC_KEY, GDD_SECRET_KEY and
DO_TOKEN, one KEY=VALUE per line) or from the keychain, see "auth login".

Quick start:
  dropproxy -m app.example.com 10.0.0.5 80,8080 /   # write the site and arguments.txt
  dropproxy arguments.txt                          # provision it
  dropproxy -d                                     # list droplets
  dropproxy -s                                     # list domains
  dropproxy -k                                     # list SSH keys`,
		Args:          cobra.ArbitraryArgs,
		RunE:          runRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, _ := cmd.Flags().GetString(app.FlagLogLevel)
			file, _ := cmd.Flags().GetString(app.FlagLogFile)
			if err := logging.Init(level, file); err != nil {
				return fmt.Errorf("%w: %w", app.ErrUsage, err)
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolP(flagHelp, "h", false, "Show this help")
	flags.Bool("help", false, "Show this help")
	_ = flags.MarkHidden("help")
	flags.BoolP(flagDroplet, "d", false, "List droplets, then provision with a following argument file")
	flags.BoolP(flagSubdomains, "s", false, "List domains, then provision with a following argument file")
	flags.BoolP(flagKeys, "k", false, "List SSH keys, then provision with a following argument file")
	flags.BoolP(flagMakeNginx, "m", false, "Write an nginx site: -m <server_name> <upstream_ip> <ports_csv> <app_location>")
	flags.StringP(flagInputFile, "i", "", "Argument file to provision with, created if missing")

	app.AddPersistentFlags(cmd.PersistentFlags())
	cmd.SetFlagErrorFunc(app.FlagError)

	cmd.AddCommand(provisioncmd.NewCommand())
	cmd.AddCommand(nginxcmd.NewCommand())
	cmd.AddCommand(argscmd.NewCommand())
	cmd.AddCommand(list.NewCommand())
	cmd.AddCommand(dnscmd.NewCommand())
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(runs.NewCommand())

	return cmd
}

func runRoot(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	isSet := func(name string) bool {
		v, _ := flags.GetBool(name)
		return v
	}

	switch {
	case isSet(flagHelp):
		return cmd.Help()
	case isSet(flagDroplet):
		return listThenProvision(cmd, args, list.Droplets)
	case isSet(flagSubdomains):
		return listThenProvision(cmd, args, list.Domains)
	case isSet(flagKeys):
		return listThenProvision(cmd, args, list.Keys)
	case isSet(flagMakeNginx):
		if len(args) != 4 {
			return fmt.Errorf("%w: -m takes <server_name> <upstream_ip> <ports_csv> <app_location>, got %d argument(s)", app.ErrUsage, len(args))
		}
		return nginxcmd.Make(cmd, ".", argfile.DefaultFile, args)
	case flags.Changed(flagInputFile):
		path, _ := flags.GetString(flagInputFile)
		if err := argfile.EnsureExists(path); err != nil {
			return err
		}
		return provisioncmd.Run(cmd, path)
	case len(args) > 0:
		return provisioncmd.Run(cmd, args[0])
	}
	return cmd.Help()
}

// listThenProvision runs a listing and, when an argument file follows,
// provisions with it.
func listThenProvision(cmd *cobra.Command, args []string, listing func(*cobra.Command) error) error {
	if err := listing(cmd); err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return provisioncmd.Run(cmd, args[0])
}

// Execute runs the root command and exits with the code ExitCode assigns
// to its error. It is called by main.main().
func Execute() {
	cloudproviders.RegisterAll()
	dnsproviders.RegisterAll()

	// Writes to a closed pipe return EPIPE instead of killing the process.
	signal.Ignore(syscall.SIGPIPE)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	root := NewRootCommand()
	err := root.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}

	code := ExitCode(err)
	stderr := console.New(os.Stderr)
	stderr.Errorf("Error: %v", err)
	if code == ExitUsage {
		fmt.Fprintf(os.Stderr, "Run '%s --help' for usage.\n", root.CommandPath())
	}
	os.Exit(code)
}
