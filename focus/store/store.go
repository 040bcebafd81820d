package store

import (
	"context"
	"github.com/hatcher/voyage/focus/entity"
	"github.com/hatcher/voyage/models"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Store 会话/任务/事件的数据访问层，各消费方按需声明所依赖的子接口
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 同步表结构
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(
		&entity.User{},
		&entity.Task{},
		&entity.Session{},
		&entity.DriftEvent{},
		&entity.Intervention{},
	)
}

func (s *Store) CreateSession(ctx context.Context, session *entity.Session) error {
	return models.Insert(s.db.WithContext(ctx), session)
}

func (s *Store) GetSessionByID(ctx context.Context, id int64) (*entity.Session, error) {
	var session entity.Session
	err := s.db.WithContext(ctx).First(&session, id).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *Store) SaveSession(ctx context.Context, session *entity.Session) error {
	return models.Update(s.db.WithContext(ctx), session)
}

func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&entity.Session{}, id).Error
}

// ListSessionsByUser 按用户查询会话，最近的在前
func (s *Store) ListSessionsByUser(ctx context.Context, userID int64) ([]*entity.Session, error) {
	var lst []*entity.Session
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&lst).Error
	return lst, err
}

// ListActiveSessions 查询未结束的会话
func (s *Store) ListActiveSessions(ctx context.Context) ([]*entity.Session, error) {
	return models.GetByCondition[*entity.Session](
		s.db.WithContext(ctx).Order("id asc"),
		"status in ?", []entity.SessionStatus{entity.SessionActive, entity.SessionDrifting},
	)
}

func (s *Store) GetUserByID(ctx context.Context, id int64) (*entity.User, error) {
	var user entity.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) CreateTask(ctx context.Context, task *entity.Task) error {
	return models.Insert(s.db.WithContext(ctx), task)
}

func (s *Store) GetTaskByID(ctx context.Context, id int64) (*entity.Task, error) {
	var task entity.Task
	err := s.db.WithContext(ctx).First(&task, id).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Store) SaveTask(ctx context.Context, task *entity.Task) error {
	return models.Update(s.db.WithContext(ctx), task)
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Delete(&entity.Task{}, id).Error
}

func (s *Store) ListTasksByUser(ctx context.Context, userID int64) ([]*entity.Task, error) {
	var lst []*entity.Task
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&lst).Error
	return lst, err
}

func (s *Store) AppendDriftEvent(ctx context.Context, event *entity.DriftEvent) error {
	return models.Insert(s.db.WithContext(ctx), event)
}

// LatestDriftEvents 查询会话最近的事件，新的在前。时间戳精度不可靠，按自增主键排序
func (s *Store) LatestDriftEvents(ctx context.Context, sessionID int64, limit int) ([]*entity.DriftEvent, error) {
	var lst []*entity.DriftEvent
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id desc").
		Limit(limit).
		Find(&lst).Error
	return lst, err
}

// MarkInterventionTriggered 条件更新干预标记，返回是否由本次调用完成翻转。
// 并发清扫下只有一个调用者能拿到 true
func (s *Store) MarkInterventionTriggered(ctx context.Context, eventID int64) (bool, error) {
	result := s.db.WithContext(ctx).
		Model(&entity.DriftEvent{}).
		Where("id = ? AND intervention_triggered = ?", eventID, false).
		Update("intervention_triggered", true)
	if result.Error != nil {
		return false, errors.WithMessagef(result.Error, "翻转干预标记失败, event:%d", eventID)
	}
	return result.RowsAffected > 0, nil
}

// ClearInterventionTriggered 推送失败时回滚标记，下次清扫自然重试
func (s *Store) ClearInterventionTriggered(ctx context.Context, eventID int64) error {
	return s.db.WithContext(ctx).
		Model(&entity.DriftEvent{}).
		Where("id = ?", eventID).
		Update("intervention_triggered", false).Error
}

func (s *Store) CreateIntervention(ctx context.Context, record *entity.Intervention) error {
	return models.Insert(s.db.WithContext(ctx), record)
}

// PageInterventions 分页查询干预记录
func (s *Store) PageInterventions(ctx context.Context, sessionID int64, pageable *models.Pageable) ([]*entity.Intervention, int64, error) {
	return models.PageQuery[*entity.Intervention](s.db.WithContext(ctx), pageable, "session_id = ?", sessionID)
}

// IsNotFound 判断是否为记录不存在
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
