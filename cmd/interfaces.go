package cmd

import (
	"context"

	"github.com/anicoll/huawei-solar-integration/internal/pkg/server"
)

// InverterService defines what cmd.serve expects from one polled inverter.
type InverterService interface {
	server.Inverter
	Run(ctx context.Context) error
}

// Cleaner removes expired history.
type Cleaner interface {
	Cleanup(ctx context.Context) error
}
