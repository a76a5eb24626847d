package store

import (
	"context"
	"path/filepath"
	"testing"

	"feria/internal/auth"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feria.db")
	db, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := EnsureSQLiteSchema(db); err != nil {
		t.Fatalf("EnsureSQLiteSchema: %v", err)
	}
	d := New(db)
	d.SetDialect(DialectSQLite)
	return d
}

func mustCreateUser(t *testing.T, d *DB, username string) User {
	t.Helper()
	hash, err := auth.HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := d.CreateUser(context.Background(), username, hash)
	if err != nil {
		t.Fatalf("CreateUser(%s): %v", username, err)
	}
	return u
}

func mustCreateStore(t *testing.T, d *DB, owner User, name string) Store {
	t.Helper()
	st, err := d.CreateStore(context.Background(), NewStore{
		Category:    "Cafetería",
		Name:        name,
		Description: "café de especialidad",
		Location:    "Edificio A, primer piso",
		Junaeb:      true,
		OwnerID:     owner.ID,
	})
	if err != nil {
		t.Fatalf("CreateStore(%s): %v", name, err)
	}
	return st
}
