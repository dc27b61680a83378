// Curator - Content-Based Product Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/curator

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/curator/internal/models"
)

func TestRecordView_Validation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product("a", "Anvil", true))

	tests := []struct {
		name string
		view models.View
		want error
	}{
		{"missing user", models.View{ItemID: "a"}, ErrInvalidInteraction},
		{"missing item", models.View{UserID: "u1"}, ErrInvalidInteraction},
		{"negative duration", models.View{UserID: "u1", ItemID: "a", DurationSeconds: -1}, ErrInvalidInteraction},
		{"unknown item", models.View{UserID: "u1", ItemID: "nope"}, ErrItemNotFound},
		{"valid", models.View{UserID: "u1", ItemID: "a", DurationSeconds: 30}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := db.RecordView(ctx, tt.view)
			if !errors.Is(err, tt.want) {
				t.Errorf("RecordView() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecentViews(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("p%d", i)
		seedProducts(t, db, product(id, "Item "+id, true))
		if err := db.RecordView(ctx, models.View{UserID: "u1", ItemID: id, Timestamp: base.Add(time.Duration(i) * time.Minute), DurationSeconds: i}); err != nil {
			t.Fatal(err)
		}
	}
	// Same instant as p4: inserted later, so it sorts first.
	if err := db.RecordView(ctx, models.View{UserID: "u1", ItemID: "p0", Timestamp: base.Add(4 * time.Minute)}); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordView(ctx, models.View{UserID: "u2", ItemID: "p1", Timestamp: base.Add(time.Hour)}); err != nil {
		t.Fatal(err)
	}

	views, err := db.RecentViews(ctx, "u1", 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"p0", "p4", "p3"}
	if len(views) != len(want) {
		t.Fatalf("RecentViews() = %+v, want %v", views, want)
	}
	for i, id := range want {
		if views[i].ItemID != id || views[i].UserID != "u1" {
			t.Errorf("RecentViews()[%d] = %+v, want %s", i, views[i], id)
		}
	}
	if !views[1].Timestamp.Equal(base.Add(4*time.Minute)) || views[1].DurationSeconds != 4 {
		t.Errorf("view p4 = %+v", views[1])
	}

	if v, err := db.RecentViews(ctx, "u1", 0); err != nil || len(v) != 0 {
		t.Errorf("RecentViews(limit=0) = %v, %v", v, err)
	}
	if v, err := db.RecentViews(ctx, "nobody", 10); err != nil || len(v) != 0 {
		t.Errorf("RecentViews(unknown) = %v, %v", v, err)
	}
}

func TestToggleLike(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product("a", "Anvil", true), product("b", "Banjo", true))

	steps := []bool{true, false, true}
	for i, want := range steps {
		got, err := db.ToggleLike(ctx, "u1", "a")
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("toggle %d = %v, want %v", i+1, got, want)
		}
	}
	if _, err := db.ToggleLike(ctx, "u1", "b"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ToggleLike(ctx, "u1", "b"); err != nil {
		t.Fatal(err)
	}

	likes, err := db.UserLikes(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(likes) != 1 || likes[0].ItemID != "a" || !likes[0].Active {
		t.Errorf("UserLikes() = %+v, want only active like on a", likes)
	}

	if _, err := db.ToggleLike(ctx, "u1", "ghost"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("ToggleLike(unknown) error = %v, want ErrItemNotFound", err)
	}
	if _, err := db.ToggleLike(ctx, "", "a"); !errors.Is(err, ErrInvalidInteraction) {
		t.Errorf("ToggleLike(no user) error = %v, want ErrInvalidInteraction", err)
	}
}

func TestToggleLike_KeepsLikedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product("a", "Anvil", true))

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	fixedClock(db, first)
	if _, err := db.ToggleLike(ctx, "u1", "a"); err != nil {
		t.Fatal(err)
	}

	fixedClock(db, first.Add(48*time.Hour))
	tests := []struct {
		name       string
		wantActive bool
	}{
		{"unlike", false},
		{"like again", true},
	}
	for _, tt := range tests {
		active, err := db.ToggleLike(ctx, "u1", "a")
		if err != nil {
			t.Fatalf("%s: %v", tt.name, err)
		}
		if active != tt.wantActive {
			t.Errorf("%s: active = %v, want %v", tt.name, active, tt.wantActive)
		}

		var likedAt time.Time
		err = db.Conn().QueryRowContext(ctx,
			`SELECT liked_at FROM user_likes WHERE user_id = 'u1' AND item_id = 'a'`).Scan(&likedAt)
		if err != nil {
			t.Fatal(err)
		}
		if !likedAt.Equal(first) {
			t.Errorf("%s: liked_at = %v, want %v", tt.name, likedAt, first)
		}
	}
}

func TestRecordPurchase(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	seedProducts(t, db, product("a", "Anvil", true))

	ts := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	if err := db.RecordPurchase(ctx, models.Purchase{UserID: "u1", ItemID: "a", Quantity: 3, UnitPrice: 19.5, Timestamp: ts}); err != nil {
		t.Fatal(err)
	}
	if err := db.RecordPurchase(ctx, models.Purchase{UserID: "u1", ItemID: "a", Quantity: 0, UnitPrice: 1}); !errors.Is(err, ErrInvalidInteraction) {
		t.Errorf("zero quantity error = %v, want ErrInvalidInteraction", err)
	}
	if err := db.RecordPurchase(ctx, models.Purchase{UserID: "u1", ItemID: "x", Quantity: 1}); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("unknown item error = %v, want ErrItemNotFound", err)
	}

	purchases, err := db.UserPurchases(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(purchases) != 1 {
		t.Fatalf("UserPurchases() = %+v", purchases)
	}
	p := purchases[0]
	if p.Quantity != 3 || p.UnitPrice != 19.5 || !p.Timestamp.Equal(ts) {
		t.Errorf("purchase = %+v", p)
	}

	var total float64
	if err := db.Conn().QueryRowContext(ctx, `SELECT total_price FROM user_purchases`).Scan(&total); err != nil {
		t.Fatal(err)
	}
	if total != 58.5 {
		t.Errorf("total_price = %v, want 58.5", total)
	}
}

func TestInteractionCounts(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	now := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	fixedClock(db, now)
	seedProducts(t, db,
		product("a", "Anvil", true),
		product("b", "Banjo", true),
		product("c", "Cello", false),
		product("d", "Drum", true),
		product("e", "Easel", true),
	)

	view := func(item string, ago time.Duration) {
		t.Helper()
		if err := db.RecordView(ctx, models.View{UserID: "u1", ItemID: item, Timestamp: now.Add(-ago)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 10; i++ {
		view("a", time.Hour)
	}
	for i := 0; i < 5; i++ {
		view("b", time.Hour)
	}
	view("b", 30*24*time.Hour) // outside the window
	view("c", time.Hour)       // inactive product

	for i := 0; i < 5; i++ {
		if _, err := db.ToggleLike(ctx, fmt.Sprintf("liker%d", i), "b"); err != nil {
			t.Fatal(err)
		}
	}
	for i := 0; i < 2; i++ {
		if _, err := db.ToggleLike(ctx, fmt.Sprintf("liker%d", i), "a"); err != nil {
			t.Fatal(err)
		}
	}
	// Liked then unliked: no longer counted.
	if _, err := db.ToggleLike(ctx, "fickle", "d"); err != nil {
		t.Fatal(err)
	}
	if _, err := db.ToggleLike(ctx, "fickle", "d"); err != nil {
		t.Fatal(err)
	}

	counts, err := db.InteractionCounts(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	// Active products without interactions in the window are still listed.
	want := []models.TrendingItem{
		{ItemID: "a", Views: 10, Likes: 2},
		{ItemID: "b", Views: 5, Likes: 5},
		{ItemID: "d", Views: 0, Likes: 0},
		{ItemID: "e", Views: 0, Likes: 0},
	}
	if len(counts) != len(want) {
		t.Fatalf("InteractionCounts() = %+v, want %+v", counts, want)
	}
	for i := range want {
		if counts[i] != want[i] {
			t.Errorf("InteractionCounts()[%d] = %+v, want %+v", i, counts[i], want[i])
		}
	}
}
