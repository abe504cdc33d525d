// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package models

// BusinessStatus describes whether a place is currently operating.
type BusinessStatus string

const (
	// StatusOperational marks a place that is open for business.
	StatusOperational BusinessStatus = "OPERATIONAL"
	// StatusClosed marks a place that has closed permanently.
	StatusClosed BusinessStatus = "CLOSED_PERMANENTLY"
)

// Place is a catalog entry: one restaurant with its location and the
// discrete attributes the questioning loop partitions on.
//
// Places are immutable within a recommendation session. GooglePlaceID is
// the external deduplication key used at ingest time; ID is the internal
// primary key referenced by lists, ratings, and recommendations.
type Place struct {
	ID            int64          `json:"id"`
	GooglePlaceID string         `json:"google_place_id"`
	Name          string         `json:"name"`
	Latitude      float64        `json:"latitude"`
	Longitude     float64        `json:"longitude"`
	Address       string         `json:"address,omitempty"`
	Status        BusinessStatus `json:"business_status"`

	// PriceTier is 1 ($) through 3 ($$$).
	PriceTier int `json:"price_tier"`

	// Cuisine is the dominant category label (e.g. "Mexican").
	Cuisine string `json:"cuisine"`

	Attributes PlaceAttributes `json:"attributes"`
}

// PlaceAttributes holds the boolean probe attributes.
type PlaceAttributes struct {
	HasOutdoorSeating bool `json:"has_outdoor_seating"`
	GoodForDates      bool `json:"good_for_dates"`
	IsVeganFriendly   bool `json:"is_vegan_friendly"`
	GoodForGroups     bool `json:"good_for_groups"`
	QuietAmbiance     bool `json:"quiet_ambiance"`
	HasCocktails      bool `json:"has_cocktails"`
}

// PlaceIngest is the ingestion payload for one place, pre-fetched from a
// third-party places source. No network calls happen at ingest time.
type PlaceIngest struct {
	GooglePlaceID     string  `json:"google_place_id" validate:"required"`
	Name              string  `json:"name" validate:"required"`
	Latitude          float64 `json:"latitude" validate:"latitude"`
	Longitude         float64 `json:"longitude" validate:"longitude"`
	Address           string  `json:"address,omitempty"`
	PriceTier         int     `json:"price_tier" validate:"omitempty,min=1,max=3"`
	Cuisine           string  `json:"cuisine,omitempty"`
	BusinessStatus    string  `json:"business_status,omitempty"`
	HasOutdoorSeating bool    `json:"has_outdoor_seating,omitempty"`
	GoodForDates      bool    `json:"good_for_dates,omitempty"`
	IsVeganFriendly   bool    `json:"is_vegan_friendly,omitempty"`
	GoodForGroups     bool    `json:"good_for_groups,omitempty"`
	QuietAmbiance     bool    `json:"quiet_ambiance,omitempty"`
	HasCocktails      bool    `json:"has_cocktails,omitempty"`
}
