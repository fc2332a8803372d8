// Package forecast fits an additive time-series model over daily sales and
// produces forward predictions with confidence bounds. The model is a linear
// trend plus weekly Fourier seasonality estimated by ordinary least squares;
// prediction intervals come from the residual standard deviation.
package forecast

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/mat"
)

const (
	weeklyPeriod = 7.0
	maxHarmonics = 3
	// zScore95 widens the interval to roughly a 95% band.
	zScore95 = 1.96
)

// Observation is one day of the training series.
type Observation struct {
	Date  time.Time
	Value float64
}

// Point is one predicted day.
type Point struct {
	DS        string  `json:"ds"`
	YHat      float64 `json:"yhat"`
	YHatLower float64 `json:"yhat_lower"`
	YHatUpper float64 `json:"yhat_upper"`
}

// Model holds the fitted coefficients and everything needed to predict.
// Serialized as the persisted artifact.
type Model struct {
	TrainedAt time.Time `json:"trained_at"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Harmonics int       `json:"harmonics"`
	Coeffs    []float64 `json:"coeffs"`
	Sigma     float64   `json:"sigma"`
	Rows      int       `json:"rows"`
}

// Fit estimates the model from the observed series. The harmonic count is
// reduced for short series so the system stays overdetermined.
func Fit(observations []Observation) (*Model, error) {
	n := len(observations)
	if n < 3 {
		return nil, fmt.Errorf("need at least 3 observations to fit, got %d", n)
	}

	harmonics := maxHarmonics
	for harmonics > 0 && n < 2+2*harmonics+2 {
		harmonics--
	}
	p := 2 + 2*harmonics

	start := observations[0].Date
	end := observations[0].Date
	for _, obs := range observations {
		if obs.Date.Before(start) {
			start = obs.Date
		}
		if obs.Date.After(end) {
			end = obs.Date
		}
	}

	design := mat.NewDense(n, p, nil)
	response := mat.NewDense(n, 1, nil)
	for i, obs := range observations {
		t := obs.Date.Sub(start).Hours() / 24
		design.SetRow(i, features(t, harmonics))
		response.Set(i, 0, obs.Value)
	}

	var qr mat.QR
	qr.Factorize(design)
	var solution mat.Dense
	if err := qr.SolveTo(&solution, false, response); err != nil {
		return nil, fmt.Errorf("solve least squares: %w", err)
	}

	coeffs := make([]float64, p)
	for j := 0; j < p; j++ {
		coeffs[j] = solution.At(j, 0)
	}

	// Residual standard deviation with degrees-of-freedom correction.
	var ssr float64
	for _, obs := range observations {
		t := obs.Date.Sub(start).Hours() / 24
		residual := obs.Value - dot(features(t, harmonics), coeffs)
		ssr += residual * residual
	}
	dof := float64(n - p)
	if dof < 1 {
		dof = 1
	}
	sigma := math.Sqrt(ssr / dof)

	return &Model{
		TrainedAt: time.Now().UTC(),
		Start:     start,
		End:       end,
		Harmonics: harmonics,
		Coeffs:    coeffs,
		Sigma:     sigma,
		Rows:      n,
	}, nil
}

// Predict returns the next periods daily points after the training window.
func (m *Model) Predict(periods int) []Point {
	if periods <= 0 {
		return nil
	}
	band := zScore95 * m.Sigma
	points := make([]Point, 0, periods)
	for i := 1; i <= periods; i++ {
		date := m.End.AddDate(0, 0, i)
		t := date.Sub(m.Start).Hours() / 24
		yhat := dot(features(t, m.Harmonics), m.Coeffs)
		points = append(points, Point{
			DS:        date.Format("2006-01-02"),
			YHat:      yhat,
			YHatLower: yhat - band,
			YHatUpper: yhat + band,
		})
	}
	return points
}

// features builds the regression row for day offset t: intercept, trend, and
// sin/cos pairs of the weekly cycle.
func features(t float64, harmonics int) []float64 {
	row := make([]float64, 0, 2+2*harmonics)
	row = append(row, 1, t)
	for k := 1; k <= harmonics; k++ {
		angle := 2 * math.Pi * float64(k) * t / weeklyPeriod
		row = append(row, math.Sin(angle), math.Cos(angle))
	}
	return row
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
