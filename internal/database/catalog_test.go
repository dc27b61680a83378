// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/tomtom215/curator/internal/models"
)

func TestActiveCatalog(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	items, err := db.ActiveCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 0 {
		t.Errorf("ActiveCatalog() on empty db = %v", items)
	}

	seedProducts(t, db,
		models.CatalogItem{ID: "c", Name: "Canvas Bag", Brand: "Acme", Category: "bags", Active: true},
		models.CatalogItem{ID: "a", Name: "Anvil", Description: "heavy", Price: models.Float64Ptr(99.5), Rating: models.Float64Ptr(4.1), Active: true},
		product("b", "Banjo", false),
	)

	items, err = db.ActiveCatalog(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[0].ID != "a" || items[1].ID != "c" {
		t.Fatalf("ActiveCatalog() = %+v, want [a c]", items)
	}

	a := items[0]
	if a.Description != "heavy" || a.Price == nil || *a.Price != 99.5 || a.Rating == nil || *a.Rating != 4.1 {
		t.Errorf("item a = %+v", a)
	}
	c := items[1]
	if c.Price != nil || c.Rating != nil {
		t.Errorf("item c price/rating = %v/%v, want nil", c.Price, c.Rating)
	}
	if c.Brand != "Acme" || c.Category != "bags" {
		t.Errorf("item c = %+v", c)
	}
}

func TestUpsertCatalogItems(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	seedProducts(t, db, product("a", "Anvil", true))

	n, err := db.UpsertCatalogItems(ctx, []models.CatalogItem{
		{ID: "a", Name: "Anvil v2", Active: false},
		{ID: "b", Name: "Banjo", Active: true},
		{ID: "b", Name: "Banjo Deluxe", Active: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("UpsertCatalogItems() = %d, want 2", n)
	}

	a, err := db.CatalogItem(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Anvil v2" || a.Active || a.Price != nil {
		t.Errorf("updated a = %+v", a)
	}
	b, _ := db.CatalogItem(ctx, "b")
	if b.Name != "Banjo Deluxe" {
		t.Errorf("b.Name = %q, want last entry of the batch", b.Name)
	}

	if _, err := db.CatalogItem(ctx, "zzz"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("CatalogItem(unknown) error = %v, want ErrItemNotFound", err)
	}
}

func TestUpsertCatalogItems_Invalid(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if n, err := db.UpsertCatalogItems(ctx, nil); n != 0 || err != nil {
		t.Errorf("UpsertCatalogItems(nil) = %d, %v", n, err)
	}

	_, err := db.UpsertCatalogItems(ctx, []models.CatalogItem{product("ok", "Fine", true), {ID: "", Name: "x"}})
	if !errors.Is(err, ErrInvalidProduct) {
		t.Fatalf("error = %v, want ErrInvalidProduct", err)
	}
	// Validation happens before any write.
	if _, err := db.CatalogItem(ctx, "ok"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("partial batch was written: %v", err)
	}
}

func TestDedupeByID(t *testing.T) {
	t.Parallel()

	got := dedupeByID([]models.CatalogItem{
		{ID: "x", Name: "1"}, {ID: "y", Name: "2"}, {ID: "x", Name: "3"},
	})
	if len(got) != 2 || got[0].ID != "x" || got[0].Name != "3" || got[1].ID != "y" {
		t.Errorf("dedupeByID() = %+v", got)
	}
}
