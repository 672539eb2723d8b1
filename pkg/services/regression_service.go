package services

import (
	"errors"
	"fmt"
	"math"
	"time"

	"fixnow-api/pkg/models"

	"gonum.org/v1/gonum/mat"
)

// FitLinearRegression fits y ~ X by ordinary least squares with an intercept.
// X is row-major (one row per observation, one column per feature).
//
// The features are centred and the system is solved through a thin SVD, so a
// rank deficient design (e.g. a single distinct zip code) yields the
// minimum-norm solution with a zero coefficient instead of an error.
func FitLinearRegression(features []string, X [][]float64, y []float64) (*models.LinearModel, error) {
	n, k := len(y), len(features)
	if n == 0 {
		return nil, errors.New("regression: no observations")
	}
	if k == 0 {
		return nil, errors.New("regression: no features")
	}
	if len(X) != n {
		return nil, fmt.Errorf("regression: %d rows of X but %d targets", len(X), n)
	}
	for i, row := range X {
		if len(row) != k {
			return nil, fmt.Errorf("regression: row %d has %d values, want %d", i, len(row), k)
		}
	}

	xMean := make([]float64, k)
	yMean := 0.0
	for i, row := range X {
		for j, v := range row {
			xMean[j] += v
		}
		yMean += y[i]
	}
	for j := range xMean {
		xMean[j] /= float64(n)
	}
	yMean /= float64(n)

	a := mat.NewDense(n, k, nil)
	b := mat.NewVecDense(n, nil)
	for i, row := range X {
		for j, v := range row {
			a.Set(i, j, v-xMean[j])
		}
		b.SetVec(i, y[i]-yMean)
	}

	coef := make([]float64, k)
	if mat.Norm(a, 1) > 0 {
		var svd mat.SVD
		if !svd.Factorize(a, mat.SVDThin) {
			return nil, errors.New("regression: SVD factorization failed")
		}
		eps := math.Nextafter(1, 2) - 1
		rcond := eps * float64(max(n, k))
		if rank := svd.Rank(rcond); rank > 0 {
			var beta mat.VecDense
			svd.SolveVecTo(&beta, b, rank)
			for j := range coef {
				coef[j] = beta.AtVec(j)
			}
		}
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * xMean[j]
	}

	m := &models.LinearModel{
		Features:     append([]string(nil), features...),
		Intercept:    intercept,
		Coefficients: coef,
		Samples:      n,
		TrainedAt:    time.Now().UTC(),
	}
	m.RSquared = rSquared(m, X, y, yMean)
	return m, nil
}

// rSquared is the coefficient of determination on the training data.
// A constant target gives 1 for a perfect fit and 0 otherwise.
func rSquared(m *models.LinearModel, X [][]float64, y []float64, yMean float64) float64 {
	var ssTotal, ssResidual float64
	for i, row := range X {
		pred, _ := m.Predict(row...)
		ssTotal += (y[i] - yMean) * (y[i] - yMean)
		ssResidual += (y[i] - pred) * (y[i] - pred)
	}
	if ssTotal == 0 {
		if ssResidual < 1e-12 {
			return 1
		}
		return 0
	}
	return 1 - ssResidual/ssTotal
}

// roundTo rounds v to the given number of decimal places, halves to even
func roundTo(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.RoundToEven(v*p) / p
}
