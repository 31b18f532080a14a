package statedec

import (
	"gonum.org/v1/gonum/mat"
)

// leastSquares solves the normal equations (XᵀX + λI)·B = XᵀY for the p×q
// coefficient map B. With lambda == 0 this is plain ordinary least squares.
// Returns ErrNumericalInstability (wrapped) when the system is singular or
// ill-conditioned.
func leastSquares(xm, ym *mat.Dense, lambda float64) (*mat.Dense, error) {
	_, p := xm.Dims()

	var xtx mat.Dense
	xtx.Mul(xm.T(), xm)
	if lambda > 0 {
		for i := 0; i < p; i++ {
			xtx.Set(i, i, xtx.At(i, i)+lambda)
		}
	}

	var xty mat.Dense
	xty.Mul(xm.T(), ym)

	var beta mat.Dense
	if err := beta.Solve(&xtx, &xty); err != nil {
		return nil, ErrNumericalInstability
	}
	return &beta, nil
}

// fitCoefficients fits a plain OLS coefficient map and falls back to a
// ridge-regularized solve when the normal equations are singular or
// ill-conditioned. The boolean reports whether the fallback was used.
// Fails with ErrNumericalInstability only when the ridge solve fails too.
func fitCoefficients(xm, ym *mat.Dense, ridge float64) (*mat.Dense, bool, error) {
	beta, err := leastSquares(xm, ym, 0)
	if err == nil {
		return beta, false, nil
	}
	beta, err = leastSquares(xm, ym, ridge)
	if err != nil {
		return nil, true, err
	}
	return beta, true, nil
}

// residualNorm returns the Frobenius norm of Y - X·B.
func residualNorm(xm, ym, beta *mat.Dense) float64 {
	var pred mat.Dense
	pred.Mul(xm, beta)
	pred.Sub(ym, &pred)
	return mat.Norm(&pred, 2)
}

// sumSquaredResidual returns the squared Frobenius norm of Y - X·B.
func sumSquaredResidual(xm, ym, beta *mat.Dense) float64 {
	r := residualNorm(xm, ym, beta)
	return r * r
}

// zeroCoefficients returns an all-zero p×q coefficient map. Used for clusters
// that currently have no assigned time points, so their predictions are zero
// and their reconstruction error is ‖Y‖².
func zeroCoefficients(p, q int) *mat.Dense {
	return mat.NewDense(p, q, nil)
}
