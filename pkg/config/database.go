package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connections
type DB struct {
	SQL   *gorm.DB
	Mongo *mongo.Client
}

// InitDB opens the relational database and, when MONGO_URI is set, the
// MongoDB client used by the audit journal.
func InitDB(cfg *Config) (*DB, error) {
	sqlDB, err := OpenSQL(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}
	db := &DB{SQL: sqlDB}

	if cfg.MongoURI != "" {
		mongoClient, err := initMongo(cfg.MongoURI)
		if err != nil {
			db.CloseDB()
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		db.Mongo = mongoClient
	}
	return db, nil
}

// OpenSQL opens the database addressed by url with constraint errors
// translated and, for SQLite, foreign keys enforced.
func OpenSQL(url string) (*gorm.DB, error) {
	dialector, err := Dialector(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger: logger.New(slog.NewLogLogger(slog.Default().Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, err
	}

	// Ping the database to verify connection
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if dialector.Name() == "sqlite" && (url == "sqlite://" || strings.Contains(url, ":memory:")) {
		// every connection to an in-memory database opens a new, empty one
		sqlDB.SetMaxOpenConns(1)
	}

	slog.Info("connected to database", "dialect", dialector.Name())
	return db, nil
}

// Dialector picks the gorm driver from the scheme of a database URL.
// SQLAlchemy-style URLs ("postgresql+psycopg2://", "sqlite:///blog.db")
// are accepted as well.
func Dialector(url string) (gorm.Dialector, error) {
	scheme, rest, hasScheme := strings.Cut(url, "://")
	if hasScheme {
		scheme, _, _ = strings.Cut(strings.ToLower(scheme), "+")
	}

	switch {
	case hasScheme && (scheme == "postgres" || scheme == "postgresql"):
		return postgres.Open(scheme + "://" + rest), nil
	case !hasScheme && strings.Contains(url, "host="):
		return postgres.Open(url), nil
	case hasScheme && scheme == "sqlite":
		path := strings.TrimPrefix(rest, "/")
		if path == "" {
			path = ":memory:"
		}
		return sqlite.Open(withForeignKeys(path)), nil
	case !hasScheme && (strings.HasPrefix(url, "file:") || strings.HasSuffix(url, ".db") || strings.HasSuffix(url, ".sqlite")):
		return sqlite.Open(withForeignKeys(url)), nil
	default:
		return nil, fmt.Errorf("unsupported database url %q", redact(url))
	}
}

func withForeignKeys(dsn string) string {
	if strings.Contains(dsn, "_foreign_keys=") || strings.Contains(dsn, "_fk=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&_foreign_keys=on"
	}
	return dsn + "?_foreign_keys=on"
}

// redact drops credentials from a URL before it is logged.
func redact(url string) string {
	scheme, rest, ok := strings.Cut(url, "://")
	if !ok {
		return url
	}
	if at := strings.LastIndex(rest, "@"); at >= 0 {
		rest = "***@" + rest[at+1:]
	}
	return scheme + "://" + rest
}

// initMongo initializes the MongoDB connection
func initMongo(uri string) (*mongo.Client, error) {
	clientOptions := options.Client().ApplyURI(uri)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, err
	}

	slog.Info("connected to MongoDB")
	return client, nil
}

// CloseDB closes the database connections
func (db *DB) CloseDB() {
	if db.SQL != nil {
		sqlDB, err := db.SQL.DB()
		if err != nil {
			slog.Error("error getting SQL DB from GORM", "error", err)
		} else if err := sqlDB.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		} else {
			slog.Info("database connection closed")
		}
	}

	if db.Mongo != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := db.Mongo.Disconnect(ctx); err != nil {
			slog.Error("error closing MongoDB connection", "error", err)
		} else {
			slog.Info("MongoDB connection closed")
		}
	}
}
