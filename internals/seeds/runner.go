package seeds

import (
	"context"

	"coursemarket_backend/internals/features/quizzes/repository"
	"coursemarket_backend/internals/logger"
	"coursemarket_backend/internals/seeds/lectures"
)

// RunAllSeeds dipanggil saat SEED_LECTURES diisi; file yang tidak ada cukup di-skip.
func RunAllSeeds(ctx context.Context, store repository.LectureStore, lecturesFile string) {
	if lecturesFile == "" {
		return
	}

	//* Lectures
	n, err := lectures.SeedLecturesFromFile(ctx, store, lecturesFile)
	if err != nil {
		logger.Log.WithError(err).WithField("file", lecturesFile).Warn("❌ seeding lectures failed")
		return
	}
	logger.Log.WithField("count", n).Info("✅ lectures seeded")
}
