package seeder

import (
	"context"

	"github.com/gilsonricardopeloso/devretain/internal/database"
)

type Seeder interface {
	Name() string
	Run(ctx context.Context, db database.DB) error
}
