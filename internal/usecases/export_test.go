package usecases

import (
	"context"
	"time"

	"factura-scanner.backend/internal/domain/entities"
)

func (u *DocumentUsecase) SetSleep(fn func(ctx context.Context, d time.Duration)) {
	u.sleep = fn
}

func (u *DocumentUsecase) SetRetryConfig(cfg entities.RetryConfig) {
	u.retryCfg = cfg
}
