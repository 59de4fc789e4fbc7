package lectures

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bytedance/sonic"
	"gopkg.in/yaml.v3"

	"coursemarket_backend/internals/features/quizzes/repository"
)

// SeedLecturesFromFile upsert lecture dari file JSON / YAML (dipilih dari ekstensi).
// Lecture CRUD ada di service course; seed ini untuk dev lokal & mode memory.
func SeedLecturesFromFile(ctx context.Context, store repository.LectureStore, filePath string) (int, error) {
	raw, err := os.ReadFile(filePath)
	if err != nil {
		return 0, fmt.Errorf("read seed file: %w", err)
	}

	var seeds []repository.LectureSeed
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &seeds)
	default:
		err = sonic.Unmarshal(raw, &seeds)
	}
	if err != nil {
		return 0, fmt.Errorf("decode seed file: %w", err)
	}

	count := 0
	for i := range seeds {
		s := &seeds[i]
		s.Title = strings.TrimSpace(s.Title)
		if s.Title == "" {
			return count, fmt.Errorf("lecture #%d: title is required", i)
		}
		if err := store.UpsertLecture(ctx, s); err != nil {
			return count, fmt.Errorf("upsert lecture %s: %w", s.ID, err)
		}
		count++
	}
	return count, nil
}
