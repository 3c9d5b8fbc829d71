package ports

import (
	"context"

	"github.com/krishisense/krishi-cli/internal/domain"
)

// Backend is the crop-recommendation service boundary. The prediction model
// itself lives behind this interface; the client only shapes requests and
// consumes responses.
type Backend interface {
	Login(ctx context.Context, email, password string) (domain.Session, error)
	Register(ctx context.Context, name, email, password string) (domain.Session, error)
	SubmitPrediction(ctx context.Context, token string, params domain.Parameters) (domain.Prediction, error)
	History(ctx context.Context, token string) ([]domain.Prediction, error)
}
