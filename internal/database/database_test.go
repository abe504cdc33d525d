// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testIngest(n int) []models.PlaceIngest {
	places := make([]models.PlaceIngest, 0, n)
	cuisines := []string{"Mexican", "Italian", "Thai", "Japanese"}
	for i := 0; i < n; i++ {
		places = append(places, models.PlaceIngest{
			GooglePlaceID: "gp-" + string(rune('a'+i)),
			Name:          "Place " + string(rune('A'+i)),
			Latitude:      37.75 + float64(i)*0.001,
			Longitude:     -122.41,
			PriceTier:     1 + i%3,
			Cuisine:       cuisines[i%len(cuisines)],

			HasOutdoorSeating: i%2 == 0,
			GoodForDates:      i%3 == 0,
		})
	}
	return places
}

func TestIngestPlacesDeduplicates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	inserted, err := db.IngestPlaces(ctx, testIngest(4))
	if err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}
	if inserted != 4 {
		t.Fatalf("inserted = %d, want 4", inserted)
	}

	// Re-ingesting the same payload plus one new row inserts only the new row.
	again := append(testIngest(4), models.PlaceIngest{
		GooglePlaceID: "gp-new",
		Name:          "Newcomer",
		Latitude:      37.76,
		Longitude:     -122.42,
		PriceTier:     2,
		Cuisine:       "Korean",
	})
	inserted, err = db.IngestPlaces(ctx, again)
	if err != nil {
		t.Fatalf("IngestPlaces (again): %v", err)
	}
	if inserted != 1 {
		t.Errorf("inserted = %d, want 1", inserted)
	}

	all, err := db.OperationalPlaces(ctx)
	if err != nil {
		t.Fatalf("OperationalPlaces: %v", err)
	}
	if len(all) != 5 {
		t.Errorf("catalog size = %d, want 5", len(all))
	}
}

func TestOperationalPlacesExcludesClosed(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	places := testIngest(2)
	places[1].BusinessStatus = "CLOSED_PERMANENTLY"
	if _, err := db.IngestPlaces(ctx, places); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}

	open, err := db.OperationalPlaces(ctx)
	if err != nil {
		t.Fatalf("OperationalPlaces: %v", err)
	}
	if len(open) != 1 {
		t.Fatalf("operational places = %d, want 1", len(open))
	}
	if open[0].Name != "Place A" {
		t.Errorf("name = %q, want Place A", open[0].Name)
	}
}

func TestPlaceByIDNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.PlaceByID(context.Background(), 9999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSearchPlaces(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.IngestPlaces(ctx, []models.PlaceIngest{
		{GooglePlaceID: "g1", Name: "Taqueria Luna", Latitude: 37.75, Longitude: -122.41, PriceTier: 1, Cuisine: "Mexican"},
		{GooglePlaceID: "g2", Name: "Luna Ramen", Latitude: 37.75, Longitude: -122.41, PriceTier: 2, Cuisine: "Japanese"},
		{GooglePlaceID: "g3", Name: "Osteria Nova", Latitude: 37.75, Longitude: -122.41, PriceTier: 3, Cuisine: "Italian"},
	}); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}

	got, err := db.SearchPlaces(ctx, "luna", 10)
	if err != nil {
		t.Fatalf("SearchPlaces: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].Name != "Luna Ramen" {
		t.Errorf("first match = %q, want Luna Ramen (name order)", got[0].Name)
	}
}

func TestListLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	l, err := db.CreateList(ctx, "Date Night")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	if l.ID == 0 || l.Name != "Date Night" {
		t.Fatalf("unexpected list: %+v", l)
	}

	if err := db.SoftDeleteList(ctx, l.ID, time.Now()); err != nil {
		t.Fatalf("SoftDeleteList: %v", err)
	}

	active, err := db.ActiveLists(ctx)
	if err != nil {
		t.Fatalf("ActiveLists: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("active lists = %d, want 0", len(active))
	}

	deleted, err := db.DeletedLists(ctx)
	if err != nil {
		t.Fatalf("DeletedLists: %v", err)
	}
	if len(deleted) != 1 || deleted[0].DeletedAt == nil {
		t.Fatalf("deleted lists = %+v, want one with DeletedAt set", deleted)
	}

	// Deleting again is ErrNotFound: the active row no longer exists.
	if err := db.SoftDeleteList(ctx, l.ID, time.Now()); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}

	if err := db.RestoreList(ctx, l.ID); err != nil {
		t.Fatalf("RestoreList: %v", err)
	}
	got, err := db.ListByID(ctx, l.ID)
	if err != nil {
		t.Fatalf("ListByID: %v", err)
	}
	if got.Deleted() {
		t.Error("list still marked deleted after restore")
	}
}

func TestPurgeDeletedLists(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.IngestPlaces(ctx, testIngest(1)); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}
	places, err := db.OperationalPlaces(ctx)
	if err != nil || len(places) != 1 {
		t.Fatalf("OperationalPlaces: %v (%d places)", err, len(places))
	}

	old, err := db.CreateList(ctx, "stale")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}
	fresh, err := db.CreateList(ctx, "fresh")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}

	if err := db.AddPlaceToList(ctx, old.ID, places[0].ID); err != nil {
		t.Fatalf("AddPlaceToList: %v", err)
	}
	if err := db.AddRating(ctx, models.Rating{PlaceID: places[0].ID, ListID: old.ID, Stars: 4}); err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	now := time.Now()
	if err := db.SoftDeleteList(ctx, old.ID, now.Add(-40*24*time.Hour)); err != nil {
		t.Fatalf("SoftDeleteList(old): %v", err)
	}
	if err := db.SoftDeleteList(ctx, fresh.ID, now.Add(-1*time.Hour)); err != nil {
		t.Fatalf("SoftDeleteList(fresh): %v", err)
	}

	purged, err := db.PurgeDeletedLists(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("PurgeDeletedLists: %v", err)
	}
	if purged != 1 {
		t.Errorf("purged = %d, want 1", purged)
	}

	if _, err := db.ListByID(ctx, old.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("old list err = %v, want ErrNotFound", err)
	}
	if _, err := db.ListByID(ctx, fresh.ID); err != nil {
		t.Errorf("fresh list should survive purge: %v", err)
	}
}

func TestAddRatingDuplicate(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.IngestPlaces(ctx, testIngest(1)); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}
	places, _ := db.OperationalPlaces(ctx)
	l, err := db.CreateList(ctx, "favorites")
	if err != nil {
		t.Fatalf("CreateList: %v", err)
	}

	r := models.Rating{PlaceID: places[0].ID, ListID: l.ID, Stars: 5}
	if err := db.AddRating(ctx, r); err != nil {
		t.Fatalf("AddRating: %v", err)
	}
	if err := db.AddRating(ctx, r); !errors.Is(err, ErrDuplicateRating) {
		t.Errorf("second AddRating err = %v, want ErrDuplicateRating", err)
	}
}

func TestBucketAverage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.IngestPlaces(ctx, []models.PlaceIngest{
		{GooglePlaceID: "g1", Name: "A", Latitude: 37.75, Longitude: -122.41, PriceTier: 1, Cuisine: "Mexican"},
		{GooglePlaceID: "g2", Name: "B", Latitude: 37.75, Longitude: -122.41, PriceTier: 1, Cuisine: "Mexican"},
		{GooglePlaceID: "g3", Name: "C", Latitude: 37.75, Longitude: -122.41, PriceTier: 3, Cuisine: "Mexican"},
	}); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}
	places, _ := db.OperationalPlaces(ctx)
	l, _ := db.CreateList(ctx, "l")

	for i, stars := range []int{4, 2} {
		if err := db.AddRating(ctx, models.Rating{PlaceID: places[i].ID, ListID: l.ID, Stars: stars}); err != nil {
			t.Fatalf("AddRating: %v", err)
		}
	}
	// Different bucket; must not bleed into the (Mexican, 1) average.
	if err := db.AddRating(ctx, models.Rating{PlaceID: places[2].ID, ListID: l.ID, Stars: 5}); err != nil {
		t.Fatalf("AddRating: %v", err)
	}

	avg, count, err := db.BucketAverage(ctx, "Mexican", 1)
	if err != nil {
		t.Fatalf("BucketAverage: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if avg != 3.0 {
		t.Errorf("avg = %v, want 3.0", avg)
	}

	_, count, err = db.BucketAverage(ctx, "Ethiopian", 2)
	if err != nil {
		t.Fatalf("BucketAverage (empty): %v", err)
	}
	if count != 0 {
		t.Errorf("empty bucket count = %d, want 0", count)
	}
}

func TestRecommendationFeedbackFlow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.IngestPlaces(ctx, testIngest(2)); err != nil {
		t.Fatalf("IngestPlaces: %v", err)
	}
	places, _ := db.OperationalPlaces(ctx)
	l, _ := db.CreateList(ctx, "l")

	recs := []models.Recommendation{
		{ID: "rec-1", SessionID: "s-1", PlaceID: places[0].ID, ListID: l.ID,
			PredictedScore: 4.2, Reason: models.ReasonHeuristicBaseline, DistanceM: 310},
		{ID: "rec-2", SessionID: "s-1", PlaceID: places[1].ID, ListID: l.ID,
			PredictedScore: 3.0, Reason: models.ReasonColdStart, DistanceM: 480},
	}
	if err := db.InsertRecommendations(ctx, recs); err != nil {
		t.Fatalf("InsertRecommendations: %v", err)
	}

	got, err := db.LatestRecommendationForPlace(ctx, l.ID, places[0].ID)
	if err != nil {
		t.Fatalf("LatestRecommendationForPlace: %v", err)
	}
	if got.ID != "rec-1" || got.Reason != models.ReasonHeuristicBaseline {
		t.Fatalf("unexpected recommendation: %+v", got)
	}

	fb := models.FeedbackRecord{RecommendationID: "rec-1", ObservedRating: 5}
	if err := db.AttachFeedback(ctx, fb); err != nil {
		t.Fatalf("AttachFeedback: %v", err)
	}
	if err := db.AttachFeedback(ctx, fb); !errors.Is(err, ErrDuplicateFeedback) {
		t.Errorf("duplicate feedback err = %v, want ErrDuplicateFeedback", err)
	}
	if err := db.AttachFeedback(ctx, models.FeedbackRecord{RecommendationID: "nope", ObservedRating: 3}); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown recommendation err = %v, want ErrNotFound", err)
	}

	// Cold-start rows never count toward the learned-model gate.
	count, err := db.RealFeedbackCount(ctx)
	if err != nil {
		t.Fatalf("RealFeedbackCount: %v", err)
	}
	if count != 1 {
		t.Errorf("real feedback count = %d, want 1", count)
	}

	if err := db.AttachFeedback(ctx, models.FeedbackRecord{RecommendationID: "rec-2", ObservedRating: 2}); err != nil {
		t.Fatalf("AttachFeedback(cold start): %v", err)
	}
	count, _ = db.RealFeedbackCount(ctx)
	if count != 1 {
		t.Errorf("real feedback count after cold-start feedback = %d, want 1", count)
	}

	examples, err := db.TrainingExamples(ctx)
	if err != nil {
		t.Fatalf("TrainingExamples: %v", err)
	}
	if len(examples) != 1 {
		t.Fatalf("training examples = %d, want 1", len(examples))
	}
	ex := examples[0]
	if ex.Rating != 5 || ex.Context != "l" || ex.DistanceM != 310 {
		t.Errorf("unexpected example: %+v", ex)
	}
}
