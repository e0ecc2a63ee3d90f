package repository_test

import (
	"testing"
	"time"

	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestVersionRepository_AppendAndFind 测试追加和查询版本快照
func TestVersionRepository_AppendAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewVersionRepository(db)

	now := time.Now()
	require.NoError(t, repo.Append(&model.FicheVersionModel{
		ID: "ver-001", FicheID: "fiche-001", Version: 2, Content: "v2", Status: "en_validation", CreatedAt: now,
	}))
	require.NoError(t, repo.Append(&model.FicheVersionModel{
		ID: "ver-002", FicheID: "fiche-001", Version: 3, Content: "v3", Status: "en_validation", CreatedAt: now,
	}))
	require.NoError(t, repo.Append(&model.FicheVersionModel{
		ID: "ver-003", FicheID: "fiche-002", Version: 2, Content: "autre", Status: "en_validation", CreatedAt: now,
	}))

	versions, err := repo.FindByFiche("fiche-001")
	require.NoError(t, err)
	require.Len(t, versions, 2)

	// 按版本号倒序
	assert.Equal(t, 3, versions[0].Version)
	assert.Equal(t, 2, versions[1].Version)
}

// TestVersionRepository_DuplicateVersion 测试同一评估单的版本号唯一
func TestVersionRepository_DuplicateVersion(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewVersionRepository(db)

	now := time.Now()
	require.NoError(t, repo.Append(&model.FicheVersionModel{
		ID: "ver-001", FicheID: "fiche-001", Version: 2, Content: "v2", Status: "en_validation", CreatedAt: now,
	}))

	err := repo.Append(&model.FicheVersionModel{
		ID: "ver-002", FicheID: "fiche-001", Version: 2, Content: "doublon", Status: "en_validation", CreatedAt: now,
	})
	assert.Error(t, err)
}

// TestVersionRepository_Validate 测试无效快照被拒绝
func TestVersionRepository_Validate(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewVersionRepository(db)

	err := repo.Append(&model.FicheVersionModel{ID: "ver-001", FicheID: "", Version: 1, Status: "brouillon"})
	assert.Error(t, err)
}
