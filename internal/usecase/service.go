package usecase

import (
	"travel-booking/internal/data/repository"
	"travel-booking/internal/gateway"
	"travel-booking/internal/notification"
	"travel-booking/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Payment PaymentService
}

func NewService(
	repo *repository.Repository,
	gw gateway.Client,
	dispatcher notification.Dispatcher,
	config *utils.Config,
	log *zap.Logger,
) *Service {
	return &Service{
		Payment: NewPaymentService(repo, gw, dispatcher, config.Chapa, log),
	}
}
