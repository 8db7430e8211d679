package save_test

import (
	"testing"

	"github.com/cory-johannsen/dungeon/internal/game/save"
	"github.com/cory-johannsen/dungeon/internal/game/save/savetest"
)

func TestMemoryRepository_Contract(t *testing.T) {
	savetest.RunRepositoryContract(t, func(*testing.T) save.Repository {
		return save.NewMemoryRepository()
	})
}

func TestMemoryProfileRepository_Contract(t *testing.T) {
	savetest.RunProfileContract(t, func(*testing.T) save.ProfileRepository {
		return save.NewMemoryProfileRepository()
	})
}
