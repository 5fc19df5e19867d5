package main

import (
	"flag"

	"github.com/nasahack25/airq/crud"
	"github.com/nasahack25/airq/http"
	"github.com/nasahack25/airq/logger"
	"github.com/nasahack25/airq/storage"
)

// main is the app's entry point.
func main() {
	// Check if the flag "-prod" has been provided. It means that we're running in production.
	productionBool := flag.Bool("prod", false, "Provide this flag in production to ensure that a .config.json file is provided before the application starts.")
	flag.Parse()

	// Load configuration from a .config.json file if present, otherwise use
	// the default dev setup, with .env / environment variable overrides.
	config := LoadConfig(*productionBool)
	logger.Init(config.LogLevel)

	// Open a database connection and execute migrations. The DB handle is
	// owned here and injected into the services; nothing else opens
	// connections or caches store state.
	db := NewDB(config.Database.ConnectionInfo())
	err := Open(db, config.IsProd())
	must(err)
	defer Close(db)
	err = AutoMigrate(db)
	must(err)

	// Start the crud services.
	services, err := crud.NewServices(
		db.Gorm,
		crud.WithUser(config.Pepper, config.HMACKey),
		crud.WithPost(),
		crud.WithComment(),
		crud.WithLike(),
		crud.WithFeed(),
	)
	must(err)

	// Set up the image storage collaborator.
	images, uploadDir, err := newImageStorage(config.Storage)
	must(err)

	// Set up a webserver.
	server := http.NewServer(config.IsProd(), config.ClientURL, uploadDir, services, images)

	// Serve the app.
	server.Run(config.Port)
}

// newImageStorage builds the configured image storage backend. The returned
// dir is non-empty only for the local backend, which needs its files served
// by the webserver itself.
func newImageStorage(cfg StorageConfig) (*storage.ImageService, string, error) {
	switch cfg.Backend {
	case "s3":
		backend, err := storage.NewS3(cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			return nil, "", err
		}
		return storage.NewImageService(backend), "", nil
	default:
		backend, err := storage.NewLocal(cfg.LocalDir)
		if err != nil {
			return nil, "", err
		}
		return storage.NewImageService(backend), cfg.LocalDir, nil
	}
}

// must is a little helper for shortening the panic instruction.
func must(err error) {
	if err != nil {
		panic(err)
	}
}
