package cmd

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"media-gallery/pkg/config"
	"media-gallery/pkg/logging"
	"media-gallery/pkg/services"
)

// Configuration flags
var (
	configFile    string
	adminPassword string
	portNumber    string
	blobBackend   string
	bucketName    string
	catalogPath   string
	galleryDir    string
	logLevel      string
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "media-gallery",
		Short: "Media Gallery catalogs images and link cards by category",
		Long: `Media Gallery is a command line application that maintains a catalog of images
and link previews grouped into categories. Image bytes live on the local disk, in Google Cloud
Storage or in Amazon S3. It can also serve the gallery and its admin API over HTTP.`,
	}

	// Define persistent flags that will be available for all commands
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Set the CONFIG_FILE YAML file (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&adminPassword, "admin-password", "a", "", "Set the ADMIN_PASSWORD (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&portNumber, "port", "p", "", "Set the PORT (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&blobBackend, "backend", "", "Set the BLOB_BACKEND: local, gcs or s3 (overrides environment variable)")
	rootCmd.PersistentFlags().StringVarP(&bucketName, "bucket", "b", "", "Set the BUCKET_NAME (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "Set the CATALOG_PATH (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&galleryDir, "gallery-dir", "", "Set the GALLERY_DIR (overrides environment variable)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Set the LOG_LEVEL (overrides environment variable)")

	// Add commands to root
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newSeedCmd())
	rootCmd.AddCommand(newListCategoriesCmd())
	rootCmd.AddCommand(newListImagesCmd())
	rootCmd.AddCommand(newAddLinkCmd())
	rootCmd.AddCommand(newDeleteImageCmd())
	rootCmd.AddCommand(newDeleteCategoryCmd())
	rootCmd.AddCommand(newDisplayModeCmd())
	rootCmd.AddCommand(newExportCmd())

	return rootCmd
}

// LoadConfig loads configuration with respect to command line flags
func LoadConfig() (*config.Config, error) {
	// Set environment variables from flags if provided
	flagEnv := map[string]string{
		"CONFIG_FILE":    configFile,
		"ADMIN_PASSWORD": adminPassword,
		"PORT":           portNumber,
		"BLOB_BACKEND":   blobBackend,
		"BUCKET_NAME":    bucketName,
		"CATALOG_PATH":   catalogPath,
		"GALLERY_DIR":    galleryDir,
		"LOG_LEVEL":      logLevel,
	}
	for key, value := range flagEnv {
		if value != "" {
			os.Setenv(key, value)
		}
	}

	// Load configuration from environment variables (potentially set above)
	return config.Load()
}

// initService loads the configuration, sets up logging and initializes the
// shared service, exiting on failure
func initService() (*config.Config, *services.Service) {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logging.Setup(cfg.SlogLevel())

	if err := services.InitService(cfg); err != nil {
		log.Fatalf("Failed to initialize service: %v", err)
	}
	return cfg, services.Default()
}
