package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pawcal-app/pawcal/internal/db"
	"github.com/pawcal-app/pawcal/internal/notify"
	"github.com/pawcal-app/pawcal/internal/redis"
	"github.com/pawcal-app/pawcal/internal/reminder"
	"github.com/pawcal-app/pawcal/internal/scheduler"
)

func main() {
	env := LoadEnvironment()

	if env.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// initialize PostgreSQL
	if err := db.Init(env.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("db init")
	}

	// run pending migrations
	if err := db.RunMigrations(env.MigrationsPath); err != nil {
		log.Fatal().Err(err).Msg("db migrate")
	}

	// redis holds registered push device tokens
	redis.InitRedis(env.RedisAddress, env.RedisUsername, env.RedisPassword)

	store := db.NewStore(db.DB)

	notifier, err := notify.NewMQTTNotifier(env.MQTTBrokerURL, "pawcal-server", redis.TokenStore{})
	if err != nil {
		log.Fatal().Err(err).Msg("mqtt init")
	}
	defer notifier.Close()

	mat := scheduler.NewMaterializer(store)

	// background reminder scan
	scanner := reminder.New(store, notifier, env.ReminderTick, env.ReminderLookahead)
	if err := scanner.Start(); err != nil {
		log.Fatal().Err(err).Msg("reminder scanner start")
	}
	defer scanner.Stop()

	r := gin.Default()
	RegisterRoutes(r, env, store, mat)

	log.Info().Str("address", env.ServerAddress).Msg("listening")
	if err := r.Run(env.ServerAddress); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
