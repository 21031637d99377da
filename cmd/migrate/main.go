package main

import (
	"context"
	"os"
	"time"

	"github.com/formlab/formgen/internal/config"
	"github.com/formlab/formgen/internal/repository/mongo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Creates the indexes the application relies on. Safe to run repeatedly;
// index creation is idempotent.
func main() {
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := mongo.NewDB(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	defer db.Close(context.Background())

	// Unique email, case-insensitive
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}
	createIndexes(ctx, db, "users", []mongodriver.IndexModel{
		{
			Keys: bson.D{{Key: "email", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetCollation(caseInsensitive),
		},
	})

	createIndexes(ctx, db, "workspaces", []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "userIds", Value: 1}}},
	})

	createIndexes(ctx, db, "prototypes", []mongodriver.IndexModel{
		{Keys: bson.D{{Key: "workspaceId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "sharedWithUserIds", Value: 1}}},
		{Keys: bson.D{{Key: "previousId", Value: 1}}},
	})

	log.Info().Msg("Indexes created")
}

func createIndexes(ctx context.Context, db *mongo.DB, collection string, models []mongodriver.IndexModel) {
	names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
	if err != nil {
		log.Fatal().Err(err).Str("collection", collection).Msg("Failed to create indexes")
	}
	log.Info().Str("collection", collection).Strs("indexes", names).Msg("Created")
}
