package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Skotchmaster/camera_shop/pkg/storefront"
)

var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(viper.New()).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func shopctlDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopctl"
	}
	return filepath.Join(home, ".shopctl")
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "shopctl",
		Short:         "Terminal storefront for the camera shop",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(v)
		},
	}

	root.PersistentFlags().String("api", "http://localhost:5000", "shop API base URL")
	root.PersistentFlags().String("session", filepath.Join(shopctlDir(), "session.json"), "session file")
	root.PersistentFlags().Bool("json", false, "print raw JSON")
	root.PersistentFlags().Bool("verbose", false, "log client events to stderr")
	_ = v.BindPFlags(root.PersistentFlags())

	app := &cliApp{v: v}
	root.AddCommand(
		productsCmd(app),
		loginCmd(app),
		logoutCmd(app),
		registerCmd(app),
		profileCmd(app),
		cartCmd(app),
		checkoutCmd(app),
		ordersCmd(app),
		adminCmd(app),
	)
	return root
}

// loadConfig layers ~/.shopctl/config.yaml and SHOPCTL_* env under the flags.
func loadConfig(v *viper.Viper) error {
	v.SetEnvPrefix("SHOPCTL")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(shopctlDir())
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("read config: %w", err)
		}
	}
	return nil
}

// cliApp builds the storefront store lazily from the resolved config.
type cliApp struct {
	v     *viper.Viper
	store *storefront.Store
}

func (a *cliApp) Store() (*storefront.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	level := slog.LevelWarn
	if a.v.GetBool("verbose") {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	client := storefront.NewClient(a.v.GetString("api"))
	session := storefront.NewFileStore(a.v.GetString("session"))
	st, err := storefront.NewStore(client, session, log)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	a.store = st
	return st, nil
}

func (a *cliApp) JSON() bool { return a.v.GetBool("json") }
