package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/joho/godotenv"
	"github.com/jrsteele09/go-yoga-server/auth"
	"github.com/jrsteele09/go-yoga-server/internal/config"
	"github.com/jrsteele09/go-yoga-server/roster"
	"github.com/jrsteele09/go-yoga-server/server"
	fakesessionrepo "github.com/jrsteele09/go-yoga-server/sessions/repofakes"
	"github.com/jrsteele09/go-yoga-server/storage/badgerdb"
	"github.com/jrsteele09/go-yoga-server/storage/postgres"
	teacherrepofakes "github.com/jrsteele09/go-yoga-server/teachers/repofakes"
	"github.com/jrsteele09/go-yoga-server/token"
	fakeuserrepo "github.com/jrsteele09/go-yoga-server/users/repofake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	for {
		if err := run(); err != nil {
			log.Fatal().Err(err).Msg("Error running server")
		} else {
			break
		}
	}
	log.Info().Msg("Server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("Recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.New()
	if err != nil {
		return err
	}
	setupLogger(c)
	displayAppname(c.GetAppName())

	repos, closeStore, err := openStorage(c)
	if err != nil {
		return err
	}
	defer closeStore()

	authority, err := token.NewAuthorityFromConfig(c)
	if err != nil {
		return err
	}
	authService, err := auth.NewService(repos.Users, authority)
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}
	rosterManager, err := roster.NewManager(repos.Sessions, repos.Users,
		roster.WithLogger(log.With().Str("component", "roster").Logger()))
	if err != nil {
		return fmt.Errorf("roster manager: %w", err)
	}

	handler, err := server.New(c, repos, authService, rosterManager)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- listenAndServe(httpServer)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogger(c config.Config) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var out io.Writer = os.Stderr
	if c.GetEnv() == "DEV" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Str("app", c.GetAppName()).Logger()
}

// openStorage builds the entity stores for the configured backend and returns a closer for them
func openStorage(c config.Config) (server.Repos, func(), error) {
	switch c.GetStorage() {
	case config.StoragePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		store, err := postgres.Open(ctx, c.GetDatabaseDSN())
		if err != nil {
			return server.Repos{}, nil, err
		}
		log.Info().Msg("Using PostgreSQL storage")
		return server.Repos{
			Users:    store.Users(),
			Teachers: store.Teachers(),
			Sessions: store.Sessions(),
		}, func() { _ = store.Close() }, nil

	case config.StorageBadger:
		store, err := badgerdb.Open(c.GetDataFolder())
		if err != nil {
			return server.Repos{}, nil, err
		}
		log.Info().Str("folder", c.GetDataFolder()).Msg("Using BadgerDB storage")
		return server.Repos{
			Users:    store.Users(),
			Teachers: store.Teachers(),
			Sessions: store.Sessions(),
		}, func() { _ = store.Close() }, nil

	default:
		log.Warn().Msg("Using in-memory storage, data is lost on restart")
		return server.Repos{
			Users:    fakeuserrepo.NewFakeUserRepo(),
			Teachers: teacherrepofakes.NewFakeTeacherRepo(),
			Sessions: fakesessionrepo.NewFakeSessionRepo(),
		}, func() {}, nil
	}
}

func listenAndServe(server *http.Server) error {
	log.Info().Msgf("Server listening on %s", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
