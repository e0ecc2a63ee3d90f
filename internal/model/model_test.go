package model

import (
	"testing"

	"github.com/mautops/fiche-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
)

// TestFicheModel_Validate 测试评估单模型验证
func TestFicheModel_Validate(t *testing.T) {
	fiche := &FicheModel{
		ID:       "fiche-001",
		Type:     "projet",
		Status:   "brouillon",
		Content:  "objectifs du projet",
		AuthorID: "alice",
		Version:  1,
	}
	assert.NoError(t, fiche.Validate())

	invalid := *fiche
	invalid.ID = ""
	assert.Error(t, invalid.Validate())

	invalid = *fiche
	invalid.Type = "inconnu"
	assert.Error(t, invalid.Validate())

	invalid = *fiche
	invalid.Status = "pending"
	assert.Error(t, invalid.Validate())

	invalid = *fiche
	invalid.AuthorID = ""
	assert.Error(t, invalid.Validate())

	invalid = *fiche
	invalid.Version = 0
	assert.Error(t, invalid.Validate())
}

// TestFicheModel_Snapshot 测试快照映射
func TestFicheModel_Snapshot(t *testing.T) {
	fiche := &FicheModel{
		ID:           "fiche-001",
		Type:         "annuelle",
		Status:       "en_validation",
		CurrentStage: "coach_rh",
		AuthorID:     "alice",
		Version:      2,
	}

	s := fiche.Snapshot()
	assert.Equal(t, "fiche-001", s.ID)
	assert.Equal(t, workflow.TypeAnnual, s.Type)
	assert.Equal(t, workflow.StatusInReview, s.Status)
	assert.Equal(t, workflow.StageHRCoach, s.Stage)
	assert.Equal(t, "alice", s.AuthorID)
	assert.Equal(t, 2, s.Version)
}

// TestFicheVersionModel_Validate 测试版本快照模型验证
func TestFicheVersionModel_Validate(t *testing.T) {
	version := &FicheVersionModel{
		ID:      "ver-001",
		FicheID: "fiche-001",
		Version: 2,
		Content: "contenu",
		Status:  "en_validation",
	}
	assert.NoError(t, version.Validate())

	invalid := *version
	invalid.FicheID = ""
	assert.Error(t, invalid.Validate())

	invalid = *version
	invalid.Version = 0
	assert.Error(t, invalid.Validate())
}

// TestJournalEntryModel_Validate 测试日志条目模型验证
func TestJournalEntryModel_Validate(t *testing.T) {
	entry := &JournalEntryModel{
		FicheID:    "fiche-001",
		ActorID:    "coach",
		ActorRole:  "coach_rh",
		ActionType: "validation",
	}
	assert.NoError(t, entry.Validate())

	invalid := *entry
	invalid.FicheID = ""
	assert.Error(t, invalid.Validate())

	invalid = *entry
	invalid.ActionType = ""
	assert.Error(t, invalid.Validate())
}
