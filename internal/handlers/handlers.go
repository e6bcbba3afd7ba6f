package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/rinawarp/downloads/internal/services"
)

type Handlers struct {
	Token    *TokenHandler
	Download *DownloadHandler
	Verify   *VerifyHandler
	Health   *HealthHandler
}

func New(logger *logrus.Logger, svc *services.Services) *Handlers {
	return &Handlers{
		Token:    NewTokenHandler(svc.Token, svc.Entitlement, svc.Metrics, svc.Events, logger),
		Download: NewDownloadHandler(svc.Token, svc.Entitlement, svc.Installers, svc.Metrics, svc.Events, logger),
		Verify:   NewVerifyHandler(svc.Installers, logger),
		Health:   NewHealthHandler(logger, svc.Health),
	}
}
