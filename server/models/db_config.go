package models

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/Daskott/instantdoc/server/logger"
	"github.com/Daskott/instantdoc/shared"
	"github.com/Daskott/instantdoc/utils"
	sqliteEncrypt "github.com/Daskott/gorm-sqlite-cipher"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

const (
	DB_NAME = "instantdoc.db"

	SQLITE_DRIVER   = "sqlite"
	MYSQL_DRIVER    = "mysql"
	POSTGRES_DRIVER = "postgres"
)

var logg = logger.NewLogger("models")

// Store owns the database handle shared by the http handlers and the job workers
type Store struct {
	db *gorm.DB

	// sqliteFilePath is empty unless the store is backed by sqlite
	sqliteFilePath string
}

// Open connects to the database selected by 'config.Driver'.
// For sqlite, the encrypted db file lives in '<rootDir>/db'.
func Open(config shared.DatabaseConfig, rootDir string) (*Store, error) {
	var dialector gorm.Dialector
	store := &Store{}

	switch config.Driver {
	case SQLITE_DRIVER:
		dbDir, err := DbDirectory(rootDir)
		if err != nil {
			return nil, err
		}

		store.sqliteFilePath = filepath.Join(dbDir, DB_NAME)
		dialector = sqliteEncrypt.Open(sqliteDSN(store.sqliteFilePath, config.PassPhrase))
	case MYSQL_DRIVER:
		dialector = mysql.Open(config.DSN)
	case POSTGRES_DRIVER:
		dialector = postgres.Open(config.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", config.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.New(
			log.New(os.Stdout, "\r\n", log.LstdFlags),
			gormLogger.Config{
				LogLevel:                  gormLogger.Silent,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %v", err)
	}

	store.db = db
	return store, nil
}

// AutoMigrate auto-migrates the db schema and inserts seed data
func (store *Store) AutoMigrate() error {
	err := store.db.AutoMigrate(&JobStatus{}, &Job{}, &User{}, &Contact{})
	if err != nil {
		return fmt.Errorf("failed to migrate database: %v", err)
	}

	return store.populateDBWithSeedData()
}

// Ping checks that the database is reachable
func (store *Store) Ping(ctx context.Context) error {
	sqlDB, err := store.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.PingContext(ctx)
}

func (store *Store) Close() error {
	sqlDB, err := store.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}

// SqliteFilePath returns the path of the sqlite db file, or "" for other drivers
func (store *Store) SqliteFilePath() string {
	return store.sqliteFilePath
}

// ---------------------------------------------------------------------------------//
// Helper functions
// --------------------------------------------------------------------------------//

func (store *Store) populateDBWithSeedData() error {
	if err := store.db.First(&JobStatus{}).Error; errors.Is(err, gorm.ErrRecordNotFound) {
		logg.Info("Inserting seed data into 'JobStatus'")
		return store.db.Create(&[]JobStatus{
			{Name: ENQUEUED_JOB}, {Name: IN_PROGRESS_JOB}, {Name: SUCCESSFUL_JOB}, {Name: DEAD_JOB},
		}).Error
	}

	return nil
}

func sqliteDSN(dbFilePath, passPhrase string) string {
	return fmt.Sprintf(
		"file:%v?_pragma_key=%s&_pragma_cipher_page_size=4096&_journal_mode=WAL",
		dbFilePath,
		passPhrase,
	)
}

func DbDirectory(rootDir string) (string, error) {
	dbDir := filepath.Join(rootDir, "db")

	if err := utils.EnsureDir(dbDir); err != nil {
		return "", err
	}

	return dbDir, nil
}
