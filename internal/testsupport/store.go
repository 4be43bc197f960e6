package testsupport

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"byebye/internal/config"
	"byebye/internal/inventory"
)

// MustOpenStore opens an inventory.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *inventory.Store {
	t.Helper()

	store, err := inventory.Open(cfg)
	if err != nil {
		t.Fatalf("inventory.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewItem creates an item for tests using the provided store.
func NewItem(t testing.TB, store *inventory.Store, title, artist, catalogNo string) *inventory.Item {
	t.Helper()

	item, err := store.CreateItem(context.Background(), inventory.NewItem{
		Title:     title,
		Artist:    artist,
		CatalogNo: catalogNo,
		Format:    inventory.FormatRecord,
	})
	if err != nil {
		t.Fatalf("store.CreateItem: %v", err)
	}
	return item
}

// ExecSQL runs a statement directly against a database file, bypassing the store.
func ExecSQL(path, statement string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(statement)
	return err
}
