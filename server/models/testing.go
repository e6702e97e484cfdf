package models

import (
	"os"

	"github.com/Daskott/instantdoc/shared"
)

// InitializeTestDb returns a migrated sqlite store in a fresh temp directory.
// It panics on failure since it is only meant for tests.
func InitializeTestDb() *Store {
	rootDir, err := os.MkdirTemp("", "instantdoc-test-")
	if err != nil {
		panic(err)
	}

	store, err := Open(shared.DatabaseConfig{Driver: SQLITE_DRIVER, PassPhrase: "test-passphrase"}, rootDir)
	if err != nil {
		panic(err)
	}

	if err = store.AutoMigrate(); err != nil {
		panic(err)
	}

	return store
}
