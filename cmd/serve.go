package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/GSKISBOT/fileconvertor/pkg/admin"
	"github.com/GSKISBOT/fileconvertor/pkg/auth"
	"github.com/GSKISBOT/fileconvertor/pkg/bot"
	"github.com/GSKISBOT/fileconvertor/pkg/config"
	"github.com/GSKISBOT/fileconvertor/pkg/core"
	"github.com/GSKISBOT/fileconvertor/pkg/logger"
	"github.com/GSKISBOT/fileconvertor/pkg/telegram"
	"github.com/GSKISBOT/fileconvertor/pkg/utils"
)

var (
	noAdmin     bool
	noAutostart bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the bot and the admin console",
	Long: `Run the chat bot. Unless --no-admin is given, the admin console is served on
admin.listen (or $PORT) and controls the bot; it needs admin.password_hash or
WEB_PASSWORD. Without console credentials the bot runs on its own.

The bot stops cleanly on SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.Bot.Token == "" {
			return utils.NewValidationError("bot token is not set (bot.token or TELEGRAM_BOT_TOKEN)", nil)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, closer, err := auth.NewRepository(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		authorizer := auth.NewAuthorizer(repo, log)

		run := botRunner(cfg, log, authorizer)

		if noAdmin || (cfg.Admin.PasswordHash == "" && cfg.Admin.Password == "") {
			if !noAdmin {
				log.Warn("No admin password configured, running the bot without the console")
			}
			return ignoreCanceled(run(ctx))
		}

		supervisor := admin.NewSupervisor(run, log)
		server, err := admin.NewServer(admin.Options{
			PasswordHash: cfg.Admin.PasswordHash,
			Password:     cfg.Admin.Password,
			Supervisor:   supervisor,
			Authorizer:   authorizer,
			Logger:       log,
		})
		if err != nil {
			return err
		}

		if !noAutostart {
			supervisor.Start(ctx)
		}

		serveErr := server.ListenAndServe(ctx, cfg.Admin.Listen)

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := supervisor.Stop(stopCtx); err != nil {
			log.Warn("Bot did not stop in time: %v", err)
		}
		return serveErr
	},
}

// botRunner returns a function that polls for updates and handles them until ctx ends
func botRunner(cfg *config.Config, log *logger.Logger, authorizer *auth.Authorizer) admin.RunFunc {
	return func(ctx context.Context) error {
		client, err := telegram.NewClient(ctx, telegram.ClientOptions{
			APIURL:         cfg.Bot.APIURL,
			Token:          cfg.Bot.Token,
			RequestTimeout: cfg.RequestTimeout(),
			PollTimeout:    cfg.PollTimeout(),
			MaxDownload:    cfg.MaxFileSizeBytes(),
		}, log)
		if err != nil {
			return utils.WrapError(err, utils.ErrorTypeNetwork, "could not reach the Bot API")
		}
		log.Info("Connected as @%s", client.Username())

		processor := core.NewFromConfig(cfg, log)
		b := bot.New(client, processor, authorizer, log)
		updates := make(chan bot.Update)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return telegram.NewPoller(client, cfg.PollTimeout(), log).Run(gctx, updates)
		})
		g.Go(func() error {
			return b.Run(gctx, updates)
		})
		return g.Wait()
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().BoolVar(&noAdmin, "no-admin", false, "Run the bot without the admin console")
	serveCmd.Flags().BoolVar(&noAutostart, "no-autostart", false, "Start with the bot stopped; start it from the console")
}
