package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bwmarrin/discordgo"

	"github.com/latoulicious/ideaboard/internal/config"
	"github.com/latoulicious/ideaboard/internal/handlers"
	"github.com/latoulicious/ideaboard/internal/presence"
	"github.com/latoulicious/ideaboard/pkg/cron"
	"github.com/latoulicious/ideaboard/pkg/engine"
	"github.com/latoulicious/ideaboard/pkg/logging"
	"github.com/latoulicious/ideaboard/pkg/metrics"
	"github.com/latoulicious/ideaboard/pkg/reaction"
)

func main() {
	// Load configuration (.env is optional)
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := logging.New(cfg.Logging)

	// discordgo logs through the standard log package
	logging.NewStdLogAdapter(logger.With(logging.String("component", "discordgo")), logging.WarnLevel).SetAsStdLogger()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		logger.Fatal("Failed to create Discord session", logging.Error(err))
	}
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildEmojis |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	stats := metrics.NewRegistry()
	gateway := handlers.NewSessionGateway(dg)

	applier := reaction.NewApplicator(reaction.Options{
		Reactor:     gateway,
		Logger:      logger,
		Metrics:     stats,
		Limiter:     reaction.NewLimiter(cfg.ReactionRate, cfg.ReactionBurst),
		Concurrency: cfg.ReactionConcurrency,
	})

	opts := engine.Options{
		Allowlist: cfg.Channels,
		Registry:  handlers.NewStateRegistry(dg.State),
		Applier:   applier,
		Logger:    logger,
		Metrics:   stats,
	}
	if cfg.ThreadsEnabled {
		opts.Threads = gateway
	}
	eng := engine.New(opts)

	presenceManager := presence.NewManager(dg, cfg.Channels, logger)

	// Register handlers
	dg.AddHandler(handlers.ReadyHandler(cfg.Channels, presenceManager, logger))
	dg.AddHandler(handlers.MessageHandler(eng, logger))

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		logger.Fatal("Failed to open Discord session", logging.Error(err))
	}

	scheduler := cron.NewScheduler(logger)
	if cfg.CronEnabled {
		if err := scheduler.AddJob("presence", cfg.PresenceSchedule, presenceManager.Refresh); err != nil {
			logger.Error("Failed to schedule presence refresh", logging.Error(err))
		}
		reporter := metrics.NewReporter(stats, logger)
		if err := scheduler.AddJob("stats", cfg.StatsSchedule, reporter.Report); err != nil {
			logger.Error("Failed to schedule stats report", logging.Error(err))
		}
		scheduler.Start()
	}

	logger.Info("Bot is running. Press CTRL-C to exit.",
		logging.Bool("threads", eng.ThreadsEnabled()),
		logging.Int("channels", cfg.Channels.Channels()),
	)

	// Wait here until CTRL-C or other term signal is received.
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	if cfg.CronEnabled {
		scheduler.Stop()
	}

	// Cleanly close down the Discord session.
	if err := dg.Close(); err != nil {
		logger.Warn("Error closing Discord session", logging.Error(err))
	}
}
