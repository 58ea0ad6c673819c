package testutil

import (
	"context"
	"os"
	"path/filepath"

	"github.com/andrebq/chiefofstaff/credstore"
)

type (
	TestLog interface {
		Fatal(...interface{})
		Log(...interface{})
	}
)

// AcquireStore returns a migrated sqlite store living in a temporary
// directory, the returned func closes it and removes the directory.
func AcquireStore(ctx context.Context, t TestLog) (*credstore.SQL, func()) {
	dir, err := os.MkdirTemp("", "chiefofstaff-tests")
	if err != nil {
		t.Fatal(err)
	}
	store, err := credstore.Open(ctx, credstore.Options{
		Driver:  string(credstore.SQLite3),
		DSN:     filepath.Join(dir, "users.db"),
		Migrate: true,
	})
	if err != nil {
		os.RemoveAll(dir)
		t.Fatal(err)
	}
	return store, func() {
		err := store.Close()
		if err != nil {
			t.Log("unable to close store", err)
		}
		err = os.RemoveAll(dir)
		if err != nil {
			t.Log("unable to cleanup temp dir", dir)
		}
	}
}
