package predict

import "errors"

// Sentinel kinds for prediction errors. Callers treat any of them as
// "prediction unavailable" and fall back to a default grade.
var (
	ErrNoPredictions = errors.New("no predictions for request")
	ErrLoadTable     = errors.New("load prediction table failed")
	ErrRemote        = errors.New("remote predictor failed")
)
