package service_test

import (
	"context"
	"strings"
	"testing"

	"github.com/mautops/fiche-gin/internal/model"
	"github.com/mautops/fiche-gin/internal/service"
	"github.com/mautops/fiche-gin/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB 创建测试数据库
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&model.FicheModel{}, &model.FicheVersionModel{}, &model.JournalEntryModel{})
	require.NoError(t, err)

	return db
}

// ctxFor 构造携带身份的上下文
func ctxFor(userID string, role workflow.Role) context.Context {
	ctx := context.WithValue(context.Background(), "user_id", userID)
	return context.WithValue(ctx, "role", string(role))
}

// TestFicheService_Create 测试创建评估单
func TestFicheService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	fiche, err := svc.Create(ctxFor("alice", workflow.RoleEmployee), &service.CreateFicheRequest{
		Type:    "projet",
		Content: "objectifs du projet",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, fiche.ID)
	assert.Equal(t, "brouillon", fiche.Status)
	assert.Empty(t, fiche.CurrentStage)
	assert.Equal(t, "alice", fiche.AuthorID)
	assert.Equal(t, 1, fiche.Version)

	// 创建不写日志
	var count int64
	db.Model(&model.JournalEntryModel{}).Count(&count)
	assert.Zero(t, count)
}

// TestFicheService_Create_InvalidType 测试未知类型被拒绝
func TestFicheService_Create_InvalidType(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	_, err := svc.Create(ctxFor("alice", workflow.RoleEmployee), &service.CreateFicheRequest{Type: "inconnu"})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestFicheService_Create_MissingIdentity 测试无身份时被拒绝
func TestFicheService_Create_MissingIdentity(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	_, err := svc.Create(context.Background(), &service.CreateFicheRequest{Type: "projet"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

// TestFicheService_ProjectFlow 测试项目评估单的完整审批流程
// 提交 → 项目负责人通过 → 管理层通过 → 锁定
func TestFicheService_ProjectFlow(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "projet", Content: "plan initial"})
	require.NoError(t, err)

	// 提交: 版本递增,进入第一阶段
	fiche, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, "en_validation", fiche.Status)
	assert.Equal(t, "referent_projet", fiche.CurrentStage)
	assert.Equal(t, 2, fiche.Version)

	// 版本快照已冻结
	var versions []model.FicheVersionModel
	require.NoError(t, db.Where("fiche_id = ?", fiche.ID).Find(&versions).Error)
	require.Len(t, versions, 1)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, "plan initial", versions[0].Content)
	assert.Equal(t, "en_validation", versions[0].Status)

	// 项目负责人通过: 阶段前进
	fiche, err = svc.Approve(ctxFor("ref", workflow.RoleProjectReferent), fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, "en_validation", fiche.Status)
	assert.Equal(t, "direction", fiche.CurrentStage)

	// 管理层通过: 锁定
	fiche, err = svc.Approve(ctxFor("dir", workflow.RoleManagement), fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, "validee", fiche.Status)
	assert.Empty(t, fiche.CurrentStage)

	// 日志包含两条通过记录
	var entries []model.JournalEntryModel
	require.NoError(t, db.Where("fiche_id = ?", fiche.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, "validation", entries[0].ActionType)
	assert.Equal(t, "ref", entries[0].ActorID)
	assert.Equal(t, "validation", entries[1].ActionType)
	assert.Equal(t, "dir", entries[1].ActorID)

	// 锁定后不可编辑
	_, err = svc.UpdateContent(author, fiche.ID, &service.UpdateContentRequest{Content: "trop tard"})
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

// TestFicheService_RejectAndResubmit 测试拒绝后修改并重新提交
func TestFicheService_RejectAndResubmit(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "evaluation", Content: "bilan"})
	require.NoError(t, err)

	fiche, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, "coach_rh", fiche.CurrentStage)

	// HR 教练拒绝
	coach := ctxFor("coach", workflow.RoleHRCoach)
	fiche, err = svc.Reject(coach, fiche.ID, &service.RejectRequest{
		Reason:  "Informations incomplètes",
		Comment: "il manque le bilan du premier semestre",
	})
	require.NoError(t, err)
	assert.Equal(t, "refusee", fiche.Status)
	assert.Empty(t, fiche.CurrentStage)

	// 拒绝日志携带格式化的原因
	var entries []model.JournalEntryModel
	require.NoError(t, db.Where("fiche_id = ?", fiche.ID).Find(&entries).Error)
	require.Len(t, entries, 1)
	assert.Equal(t, "refus", entries[0].ActionType)
	assert.Equal(t, "Motif : Informations incomplètes\n\nCommentaire : il manque le bilan du premier semestre", entries[0].Comment)

	// 作者修改内容并重新提交
	fiche, err = svc.UpdateContent(author, fiche.ID, &service.UpdateContentRequest{Content: "bilan complété"})
	require.NoError(t, err)
	assert.Equal(t, 2, fiche.Version) // 编辑不递增版本号

	fiche, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, "en_validation", fiche.Status)
	assert.Equal(t, "coach_rh", fiche.CurrentStage)
	assert.Equal(t, 3, fiche.Version)

	// 两次提交产生两份版本快照
	var versions []model.FicheVersionModel
	require.NoError(t, db.Where("fiche_id = ?", fiche.ID).Order("version").Find(&versions).Error)
	require.Len(t, versions, 2)
	assert.Equal(t, 2, versions[0].Version)
	assert.Equal(t, 3, versions[1].Version)
	assert.Equal(t, "bilan complété", versions[1].Content)
}

// TestFicheService_Reject_UnknownReason 测试自由文本原因被拒绝
func TestFicheService_Reject_UnknownReason(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "evaluation"})
	require.NoError(t, err)
	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	_, err = svc.Reject(ctxFor("coach", workflow.RoleHRCoach), fiche.ID, &service.RejectRequest{Reason: "Pas envie"})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestFicheService_Comment 测试评论
func TestFicheService_Comment(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "annuelle"})
	require.NoError(t, err)
	fiche, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	before, err := svc.Get(ctxFor("dir", workflow.RoleManagement), fiche.ID)
	require.NoError(t, err)

	err = svc.Comment(ctxFor("coach", workflow.RoleHRCoach), fiche.ID, &service.CommentRequest{Text: "à discuter"})
	require.NoError(t, err)

	// 评论不改变状态,不触碰 updated_at
	after, err := svc.Get(ctxFor("dir", workflow.RoleManagement), fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, before.Status, after.Status)
	assert.Equal(t, before.CurrentStage, after.CurrentStage)
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.UpdatedAt.Unix(), after.UpdatedAt.Unix())
	assert.Equal(t, before.Revision+1, after.Revision)

	// 员工不可评论
	err = svc.Comment(author, fiche.ID, &service.CommentRequest{Text: "moi aussi"})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

// TestFicheService_Get_Visibility 测试读权限
func TestFicheService_Get_Visibility(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "projet"})
	require.NoError(t, err)

	// 其他员工不可见
	_, err = svc.Get(ctxFor("bob", workflow.RoleEmployee), fiche.ID)
	assert.ErrorIs(t, err, workflow.ErrForbidden)

	// 管理层可见
	_, err = svc.Get(ctxFor("dir", workflow.RoleManagement), fiche.ID)
	assert.NoError(t, err)
}

// TestFicheService_Submit_Twice 测试重复提交被拒绝
func TestFicheService_Submit_Twice(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "projet"})
	require.NoError(t, err)

	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	_, err = svc.Submit(author, fiche.ID)
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)
}

// TestFicheService_NotifierEvents 测试工作流事件广播
func TestFicheService_NotifierEvents(t *testing.T) {
	db := setupTestDB(t)
	notifier := &recordingNotifier{}
	svc := service.NewFicheService(db, notifier)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "evaluation"})
	require.NoError(t, err)

	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)
	_, err = svc.Approve(ctxFor("coach", workflow.RoleHRCoach), fiche.ID)
	require.NoError(t, err)

	require.Len(t, notifier.events, 2)
	assert.Equal(t, "submit", notifier.events[0].Action)
	assert.Equal(t, "en_validation", notifier.events[0].Status)
	assert.Equal(t, "approve", notifier.events[1].Action)
	assert.Equal(t, "validee", notifier.events[1].Status)
}

// recordingNotifier 记录事件的测试替身
type recordingNotifier struct {
	events []*service.FicheEvent
}

func (n *recordingNotifier) Publish(event *service.FicheEvent) {
	n.events = append(n.events, event)
}

// TestFicheService_AllowedActions 测试操作列表
func TestFicheService_AllowedActions(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "annuelle"})
	require.NoError(t, err)

	actions, err := svc.AllowedActions(author, fiche.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []workflow.Action{workflow.ActionRead, workflow.ActionEdit, workflow.ActionSubmit}, actions)

	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	actions, err = svc.AllowedActions(ctxFor("coach", workflow.RoleHRCoach), fiche.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []workflow.Action{
		workflow.ActionRead, workflow.ActionApprove, workflow.ActionReject, workflow.ActionComment,
	}, actions)
}

// TestFicheService_Comment_Sanitized 评论文本入库前清理
func TestFicheService_Comment_Sanitized(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "annuelle"})
	require.NoError(t, err)
	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	coach := ctxFor("coach", workflow.RoleHRCoach)
	err = svc.Comment(coach, fiche.ID, &service.CommentRequest{Text: "  bon travail\x00\x08  "})
	require.NoError(t, err)

	// 首尾空白与控制字符被清除
	var entry model.JournalEntryModel
	require.NoError(t, db.Where("fiche_id = ?", fiche.ID).Order("id DESC").First(&entry).Error)
	assert.Equal(t, "bon travail", entry.Comment)

	// 纯空白文本视为空
	err = svc.Comment(coach, fiche.ID, &service.CommentRequest{Text: "   "})
	assert.ErrorIs(t, err, workflow.ErrValidation)

	// 超长文本拒绝
	err = svc.Comment(coach, fiche.ID, &service.CommentRequest{Text: strings.Repeat("x", 2001)})
	assert.ErrorIs(t, err, workflow.ErrValidation)
}

// TestFicheService_Approve_StaleRevision 两个并发审批仅一个成功
func TestFicheService_Approve_StaleRevision(t *testing.T) {
	db := setupTestDB(t)
	svc := service.NewFicheService(db, nil)

	author := ctxFor("alice", workflow.RoleEmployee)
	fiche, err := svc.Create(author, &service.CreateFicheRequest{Type: "annuelle"})
	require.NoError(t, err)
	_, err = svc.Submit(author, fiche.ID)
	require.NoError(t, err)

	// 在状态更新落库前插入一次并发写入,使本次提交携带的 revision 过期
	interfered := false
	err = db.Callback().Update().Before("gorm:update").Register("concurrent_write", func(tx *gorm.DB) {
		if interfered {
			return
		}
		interfered = true
		tx.Session(&gorm.Session{NewDB: true}).
			Exec("UPDATE fiches SET revision = revision + 1 WHERE id = ?", fiche.ID)
	})
	require.NoError(t, err)
	defer db.Callback().Update().Remove("concurrent_write")

	_, err = svc.Approve(ctxFor("coach", workflow.RoleHRCoach), fiche.ID)
	assert.ErrorIs(t, err, workflow.ErrConflict)

	// 落败的提交整体回滚:状态不变,不写日志
	reloaded, err := svc.Get(ctxFor("dir", workflow.RoleManagement), fiche.ID)
	require.NoError(t, err)
	assert.Equal(t, string(workflow.StatusInReview), reloaded.Status)

	var journalCount int64
	require.NoError(t, db.Model(&model.JournalEntryModel{}).Where("fiche_id = ?", fiche.ID).Count(&journalCount).Error)
	assert.Equal(t, int64(0), journalCount)
}
