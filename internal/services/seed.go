package services

import (
	"context"

	"github.com/KRaymonne/pro/internal/config"
	"github.com/KRaymonne/pro/internal/models"
	"github.com/KRaymonne/pro/internal/repository"

	"go.uber.org/zap"
)

// SeedLibrary populates the poem library from the YAML seed file when the
// table is empty. Subsequent startups leave the library alone.
func SeedLibrary(ctx context.Context, log *zap.Logger) error {
	count, err := repository.CountPoems(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		log.Debug("Poem library already populated", zap.Int64("poems", count))
		return nil
	}

	library, err := models.LoadLibrary(config.Conf.Library.SeedFile)
	if err != nil {
		return err
	}

	for _, entry := range library.Poems {
		poem := entry.Model()
		if err := repository.CreatePoem(ctx, &poem); err != nil {
			return err
		}
	}

	log.Info("Poem library seeded", zap.Int("poems", len(library.Poems)))
	return nil
}
