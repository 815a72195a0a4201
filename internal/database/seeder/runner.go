package seeder

import (
	"context"
	"fmt"

	"github.com/gilsonricardopeloso/devretain/internal/database"
	"github.com/gilsonricardopeloso/devretain/internal/pkg/logger"
)

type Runner struct {
	Seeders []Seeder
	Logger  *logger.Logger
}

func (r Runner) Run(ctx context.Context, db database.DB) error {
	if db == nil {
		return fmt.Errorf("nil db")
	}
	for _, s := range r.Seeders {
		if s == nil {
			continue
		}
		if err := s.Run(ctx, db); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
		r.Logger.Info("seeder applied", "name", s.Name())
	}
	return nil
}
