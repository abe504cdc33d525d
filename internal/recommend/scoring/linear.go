// Mesafinder - Interactive Restaurant Discovery and Recommendation
// Copyright 2026 A. Velasquez (avelasq)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/avelasq/mesafinder

package scoring

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avelasq/mesafinder/internal/models"
	"github.com/avelasq/mesafinder/internal/recommend"
)

// ErrInsufficientData is returned by Train when there are fewer
// examples than features, where ridge regression is not meaningful.
var ErrInsufficientData = errors.New("not enough training examples")

// LinearModel is a ridge-regression rating predictor over place
// features, session context, and distance. It is safe for concurrent
// Predict calls while a background Train runs.
type LinearModel struct {
	mu        sync.RWMutex
	weights   []float64
	cuisines  []string
	trainedAt time.Time
	version   int
	lambda    float64
}

// NewLinearModel creates an untrained model. lambda is the ridge
// penalty; zero selects a mild default.
func NewLinearModel(lambda float64) *LinearModel {
	if lambda <= 0 {
		lambda = 1.0
	}
	return &LinearModel{lambda: lambda}
}

// ModelSnapshot is the persistable model state.
type ModelSnapshot struct {
	Weights   []float64
	Cuisines  []string
	Version   int
	TrainedAt time.Time
}

// IsTrained reports whether the model holds usable weights.
func (m *LinearModel) IsTrained() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.weights) > 0
}

// Info returns the model version and training time.
func (m *LinearModel) Info() (version int, trainedAt time.Time, trained bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.version, m.trainedAt, len(m.weights) > 0
}

// Snapshot returns a copy of the trained state for persistence.
func (m *LinearModel) Snapshot() ModelSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return ModelSnapshot{
		Weights:   append([]float64(nil), m.weights...),
		Cuisines:  append([]string(nil), m.cuisines...),
		Version:   m.version,
		TrainedAt: m.trainedAt,
	}
}

// Restore installs previously persisted state.
func (m *LinearModel) Restore(s ModelSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.weights = append([]float64(nil), s.Weights...)
	m.cuisines = append([]string(nil), s.Cuisines...)
	m.version = s.Version
	m.trainedAt = s.TrainedAt
}

// Train fits ridge regression over the examples and atomically swaps in
// the new weights. The cuisine vocabulary is rebuilt from the examples,
// so unseen cuisines at predict time simply contribute no term.
func (m *LinearModel) Train(examples []models.TrainingExample, now time.Time) error {
	cuisines := cuisineVocabulary(examples)
	dim := featureDim(len(cuisines))
	if len(examples) < dim {
		return fmt.Errorf("%w: %d examples for %d features", ErrInsufficientData, len(examples), dim)
	}

	// Normal equations: (X'X + lambda*I) w = X'y.
	xtx := make([][]float64, dim)
	for i := range xtx {
		xtx[i] = make([]float64, dim)
	}
	xty := make([]float64, dim)

	for _, ex := range examples {
		f := featuresOf(ex.PriceTier, ex.Cuisine, ex.Attributes, ex.Context, ex.DistanceM, cuisines)
		for i := 0; i < dim; i++ {
			if f[i] == 0 {
				continue
			}
			xty[i] += f[i] * ex.Rating
			for j := 0; j < dim; j++ {
				xtx[i][j] += f[i] * f[j]
			}
		}
	}
	for i := 1; i < dim; i++ { // leave the bias unpenalized
		xtx[i][i] += m.lambda
	}

	weights, err := solve(xtx, xty)
	if err != nil {
		return fmt.Errorf("fit model: %w", err)
	}

	m.mu.Lock()
	m.weights = weights
	m.cuisines = cuisines
	m.version++
	m.trainedAt = now
	m.mu.Unlock()
	return nil
}

// Predict returns the model's score for a candidate in context.
// Callers must check IsTrained first; an untrained model predicts 0.
func (m *LinearModel) Predict(c recommend.Candidate, sessionContext string) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.weights) == 0 {
		return 0
	}
	f := featuresOf(c.Place.PriceTier, c.Place.Cuisine, c.Place.Attributes,
		sessionContext, c.DistanceM, m.cuisines)
	sum := 0.0
	for i, w := range m.weights {
		sum += w * f[i]
	}
	return sum
}

// Fixed feature layout: bias, tier, six attribute booleans, distance,
// the five canonical contexts, then the cuisine vocabulary.
const baseFeatures = 1 + 1 + 6 + 1

func featureDim(cuisineCount int) int {
	return baseFeatures + len(recommend.KnownContexts()) + cuisineCount
}

func featuresOf(priceTier int, cuisine string, attrs models.PlaceAttributes,
	sessionContext string, distanceM float64, cuisines []string) []float64 {

	contexts := recommend.KnownContexts()
	f := make([]float64, featureDim(len(cuisines)))
	f[0] = 1.0
	f[1] = float64(priceTier) / 3.0
	f[2] = boolFeature(attrs.HasOutdoorSeating)
	f[3] = boolFeature(attrs.GoodForDates)
	f[4] = boolFeature(attrs.IsVeganFriendly)
	f[5] = boolFeature(attrs.GoodForGroups)
	f[6] = boolFeature(attrs.QuietAmbiance)
	f[7] = boolFeature(attrs.HasCocktails)
	f[8] = distanceM / 1000.0

	for i, c := range contexts {
		if c == sessionContext {
			f[baseFeatures+i] = 1.0
			break
		}
	}
	for i, c := range cuisines {
		if c == cuisine {
			f[baseFeatures+len(contexts)+i] = 1.0
			break
		}
	}
	return f
}

func boolFeature(b bool) float64 {
	if b {
		return 1.0
	}
	return 0.0
}

func cuisineVocabulary(examples []models.TrainingExample) []string {
	seen := make(map[string]struct{})
	for _, ex := range examples {
		if ex.Cuisine != "" {
			seen[ex.Cuisine] = struct{}{}
		}
	}
	vocab := make([]string, 0, len(seen))
	for c := range seen {
		vocab = append(vocab, c)
	}
	sort.Strings(vocab)
	return vocab
}

// solve performs Gaussian elimination with partial pivoting on a
// symmetric positive-definite system. The matrix is mutated in place.
func solve(a [][]float64, b []float64) ([]float64, error) {
	n := len(b)
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if abs(a[r][col]) > abs(a[pivot][col]) {
				pivot = r
			}
		}
		if abs(a[pivot][col]) < 1e-12 {
			return nil, errors.New("singular system")
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for r := col + 1; r < n; r++ {
			factor := a[r][col] / a[col][col]
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r][c] -= factor * a[col][c]
			}
			b[r] -= factor * b[col]
		}
	}

	w := make([]float64, n)
	for r := n - 1; r >= 0; r-- {
		sum := b[r]
		for c := r + 1; c < n; c++ {
			sum -= a[r][c] * w[c]
		}
		w[r] = sum / a[r][r]
	}
	return w, nil
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
