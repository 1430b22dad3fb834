package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/bitfsorg/estateshare-go/config"
	"github.com/bitfsorg/estateshare-go/market"
	"github.com/bitfsorg/estateshare-go/server"
	"github.com/bitfsorg/estateshare-go/wallet"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parsePropertyID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid property id %q", s)
	}
	return id, nil
}

func parseYears(s string) (int, error) {
	years, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", market.ErrInvalidDuration, s)
	}
	return years, nil
}

// withApp wires the application for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx, current, logger)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(flags.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", flags.configPath)
			}
			if err := config.SaveConfig(flags.configPath, current); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", flags.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newMnemonicCmd() *cobra.Command {
	var words int
	cmd := &cobra.Command{
		Use:   "mnemonic",
		Short: "Generate a payer wallet mnemonic and show its first address",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mnemonic, err := wallet.NewMnemonic(words)
			if err != nil {
				return fmt.Errorf("--words must be 12 or 24: %w", err)
			}
			keys, err := loadKeyring(current.Network, map[string]string{
				"ESTATE_MNEMONIC":   mnemonic,
				"ESTATE_PAYER_KEYS": "1",
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), map[string]interface{}{
				"mnemonic": mnemonic,
				"address":  keys.Addresses()[0],
				"network":  current.Network,
			})
		},
	}
	cmd.Flags().IntVar(&words, "words", 12, "mnemonic length: 12 or 24")
	return cmd
}

func newQuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote <property-id> <years>",
		Short: "Price a rental",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePropertyID(args[0])
			if err != nil {
				return err
			}
			years, err := parseYears(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				q, err := market.GetQuote(ctx, a.session(), id, years)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), server.QuoteView{
					Quote:             *q,
					YearlyRentDisplay: market.FormatAmount(q.YearlyRent, a.cfg.Decimals),
					TotalDisplay:      market.FormatAmount(q.Total, a.cfg.Decimals),
				})
			})
		},
	}
}

func newRentCmd() *cobra.Command {
	var amount, total string
	cmd := &cobra.Command{
		Use:   "rent <property-id> <years>",
		Short: "Rent a property, paying its shareholders",
		Long: `Rent a property for the acting account.

Without --amount or --total the quoted price is paid. Payouts that settle
before a failed transfer are not reversed; they are listed in the error.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePropertyID(args[0])
			if err != nil {
				return err
			}
			years, err := parseYears(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				sess := a.session()
				req := market.RentRequest{PropertyID: id, DurationYears: years}

				switch {
				case amount != "" && total != "":
					return errors.New("use --amount or --total, not both")
				case amount != "":
					if req.TotalPayment, err = market.ParseAmount(amount, a.cfg.Decimals); err != nil {
						return err
					}
				case total != "":
					v, ok := new(big.Int).SetString(total, 10)
					if !ok {
						return fmt.Errorf("%w: %q", market.ErrInvalidPayment, total)
					}
					req.TotalPayment = v
				default:
					q, err := market.GetQuote(ctx, sess, id, years)
					if err != nil {
						return err
					}
					req = q.Request()
				}

				conf, err := a.rentals.Rent(ctx, sess, req)
				if err != nil {
					return err
				}
				logger.Info("property rented",
					zap.Uint64("property_id", id),
					zap.String("mode", string(conf.Mode)),
					zap.String("request_id", conf.RequestID))
				return printJSON(cmd.OutOrStdout(), conf)
			})
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "payment in display units, e.g. 1.5")
	cmd.Flags().StringVar(&total, "total", "", "payment in base units")
	return cmd
}

func newRentalCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rental <property-id>",
		Short: "Show the rental of a property",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePropertyID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				rec, err := a.rentals.Details(ctx, a.session(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), server.RentalView{
					Rental: rec,
					Status: rec.Status(time.Now().Unix()),
				})
			})
		},
	}
}

func newRentalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rentals [tenant]",
		Short: "List the rentals of a tenant (default: --account)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tenant := flags.account
			if len(args) == 1 {
				tenant = args[0]
			}
			if tenant == "" {
				return market.ErrNoAccount
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				list, err := market.MyRentals(ctx, a.store, tenant, time.Now())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), list)
			})
		},
	}
}

func newDividendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dividends <property-id> <amount>",
		Short: "Distribute dividends to a property's shareholders (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parsePropertyID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(ctx context.Context, a *app) error {
				amount, err := market.ParseAmount(args[1], a.cfg.Decimals)
				if err != nil {
					return err
				}
				receipt, err := market.DistributeDividends(ctx, a.session(), a.rpc, id, amount)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), receipt)
			})
		},
	}
}

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Summarise the acting account's investments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				stats, err := market.Dashboard(ctx, a.session())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]interface{}{
					"totalInvestment":        stats.TotalInvestment,
					"totalInvestmentDisplay": market.FormatAmount(stats.TotalInvestment, a.cfg.Decimals),
					"propertiesOwned":        stats.PropertiesOwned,
					"activeInvestments":      stats.ActiveInvestments,
				})
			})
		},
	}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the rental API and the front-end",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, current, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			srv := server.New(server.Config{
				Addr:         a.cfg.ListenAddr,
				StaticDir:    a.cfg.StaticDir,
				ContractsDir: a.cfg.ContractsDir,
				Decimals:     a.cfg.Decimals,
			}, a.rentals, a.store, a.contract, a.metrics, logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(srv.Start)
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			})
			return g.Wait()
		},
	}
}
