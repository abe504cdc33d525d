// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

// Package geo provides the small amount of geodesy Mesafinder needs:
// great-circle distance between coordinates and the service-area
// bounding box check.
package geo

import "math"

// earthRadiusM is the mean Earth radius in meters.
const earthRadiusM = 6371000

// MetersPerMile converts statute miles to meters.
const MetersPerMile = 1609.34

// Point is a WGS84 coordinate pair.
type Point struct {
	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
}

// HaversineM returns the great-circle distance between two points in
// meters.
func HaversineM(a, b Point) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(h))
}

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// Contains reports whether p lies inside the box (inclusive).
func (b BoundingBox) Contains(p Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// MissionDistrict is the pilot service area: the Mission District in
// San Francisco, bounded by Cesar Chavez, Duboce, Divisadero, and the
// 101 freeway.
var MissionDistrict = BoundingBox{
	MinLat: 37.739,
	MaxLat: 37.770,
	MinLng: -122.433,
	MaxLng: -122.399,
}
