package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/qoo-shop/shopclient/internal/cache"
	"github.com/qoo-shop/shopclient/internal/cart"
	"github.com/qoo-shop/shopclient/internal/config"
	"github.com/qoo-shop/shopclient/internal/gateway"
	"github.com/qoo-shop/shopclient/internal/logging"
	"github.com/qoo-shop/shopclient/internal/order"
	"github.com/qoo-shop/shopclient/internal/session"
)

var (
	flagServer    string
	flagState     string
	flagLogLevel  string
	flagLogFormat string

	app *appState
)

// appState is everything a command needs, constructed once per invocation.
type appState struct {
	log      *slog.Logger
	gw       *gateway.Client
	sessions *session.Manager
	cart     *cart.Store
	orders   *order.Service
}

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "shopctl",
		Short: "shopctl — command line client for the Qoo storefront API",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if flagServer != "" {
				cfg.BaseURL = flagServer
			}
			if flagState != "" {
				cfg.StatePath = flagState
			}
			if flagLogLevel != "" {
				cfg.LogLevel = flagLogLevel
			}
			if flagLogFormat != "" {
				cfg.LogFormat = flagLogFormat
			}

			log := logging.New(cfg.LogLevel, cfg.LogFormat)

			store, err := cache.Open(cfg.StatePath)
			if err != nil {
				return fmt.Errorf("open local state: %w", err)
			}

			gw := gateway.NewClient(cfg.BaseURL, cfg.HTTPTimeout, log)
			sessions := session.NewManager(gw, store, log)
			cartStore := cart.NewStore(gw, store, sessions, log)
			orders := order.NewService(gw, cartStore, sessions, log)

			app = &appState{
				log:      log,
				gw:       gw,
				sessions: sessions,
				cart:     cartStore,
				orders:   orders,
			}
			return nil
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().StringVar(&flagServer, "server", "", "shop API base URL (or SHOP_BASE_URL env)")
	root.PersistentFlags().StringVar(&flagState, "state", "", "path to the local state db (or SHOP_STATE_PATH env)")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newRegisterCmd(),
		newCartCmd(),
		newProductsCmd(),
		newOrdersCmd(),
	)

	return root
}
