package Projects

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"CoHub/Activity"
	"CoHub/Models"
	"CoHub/email"
	"CoHub/logger"
)

// Notifier tells a user they were added to a project.
type Notifier interface {
	SendInvite(invite email.Invite) error
}

// Notifiers fans an invite out to every channel and joins their errors.
type Notifiers []Notifier

func (n Notifiers) SendInvite(invite email.Invite) error {
	var err error
	for _, notifier := range n {
		err = multierr.Append(err, notifier.SendInvite(invite))
	}
	return err
}

type Service struct {
	DB       *gorm.DB
	Activity *Activity.Aggregator
	Notifier Notifier
	Log      *zap.Logger
}

func NewService(db *gorm.DB, activity *Activity.Aggregator, notifier Notifier, log *zap.Logger) *Service {
	return &Service{DB: db, Activity: activity, Notifier: notifier, Log: logger.OrNop(log)}
}

type CreateProjectInput struct {
	Name        string `json:"name" validate:"required,max=255"`
	Description string `json:"description"`
}

type InviteInput struct {
	UserID string `json:"userId" validate:"required"`
}

func withMembers(db *gorm.DB) *gorm.DB {
	return db.Preload("Members", Models.MembersInOrder).Preload("Members.User")
}

// Create stores a project with the creator as its only admin.
func (s *Service) Create(ctx context.Context, actorID uint, input CreateProjectInput) (*Models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, Models.Invalid("name", "name is required")
	}

	project := Models.Project{Name: name, Description: input.Description, CreatedBy: actorID}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&project).Error; err != nil {
			return err
		}
		return tx.Create(&Models.ProjectMember{ProjectID: project.ID, UserID: actorID, Role: Models.RoleAdmin}).Error
	})
	if err != nil {
		return nil, Models.StoreFailure("create project", err)
	}

	s.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   project.ID,
		Action:      Models.ActionProjectCreated,
		Description: fmt.Sprintf("created project %q", project.Name),
	})
	return s.Get(ctx, project.ID)
}

// ListForUser returns every project userID is a member of, newest first.
func (s *Service) ListForUser(ctx context.Context, userID uint) ([]Models.Project, error) {
	projects := []Models.Project{}
	err := s.DB.WithContext(ctx).
		Scopes(withMembers).
		Where("id IN (?)", s.DB.Model(&Models.ProjectMember{}).Select("project_id").Where("user_id = ?", userID)).
		Order("created_at DESC").
		Order("id DESC").
		Find(&projects).Error
	if err != nil {
		return nil, Models.StoreFailure("fetch projects", err)
	}
	return projects, nil
}

func (s *Service) Get(ctx context.Context, projectID uint) (*Models.Project, error) {
	var project Models.Project
	err := s.DB.WithContext(ctx).Scopes(withMembers).First(&project, projectID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.NotFound("project")
	}
	if err != nil {
		return nil, Models.StoreFailure("fetch project", err)
	}
	return &project, nil
}

// Membership loads the project and the caller's entry in it. A missing
// project is ErrNotFound, a caller outside it ErrForbidden.
func (s *Service) Membership(ctx context.Context, projectID, userID uint) (*Models.Project, Models.ProjectMember, error) {
	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, Models.ProjectMember{}, err
	}
	member, ok := project.Member(userID)
	if !ok {
		return nil, Models.ProjectMember{}, Models.ErrForbidden
	}
	return project, member, nil
}

// Invite appends the user with login handle to the project's members.
func (s *Service) Invite(ctx context.Context, projectID, actorID uint, handle string) (*Models.Project, error) {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil, Models.Invalid("userId", "userId is required")
	}

	project, err := s.Get(ctx, projectID)
	if err != nil {
		return nil, err
	}

	db := s.DB.WithContext(ctx)
	var invitee Models.User
	err = db.Where("user_id = ?", handle).First(&invitee).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, Models.NotFound("user")
	}
	if err != nil {
		return nil, Models.StoreFailure("invite member", err)
	}
	if _, ok := project.Member(invitee.ID); ok {
		return nil, Models.ErrDuplicateMember
	}

	member := Models.ProjectMember{ProjectID: project.ID, UserID: invitee.ID, Role: Models.RoleMember}
	if err := db.Create(&member).Error; err != nil {
		if Models.IsDuplicateKey(err) {
			return nil, Models.ErrDuplicateMember
		}
		return nil, Models.StoreFailure("invite member", err)
	}

	s.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   project.ID,
		Action:      Models.ActionMemberInvited,
		Description: fmt.Sprintf("invited %s to the project", invitee.Name),
		Metadata:    map[string]interface{}{"userId": invitee.UserID},
	})
	s.notify(ctx, project, actorID, invitee)
	return s.Get(ctx, project.ID)
}

// RemoveMember drops memberID from the project. Removing someone who is not
// a member succeeds without changing anything.
func (s *Service) RemoveMember(ctx context.Context, projectID, actorID, memberID uint) error {
	if _, err := s.Get(ctx, projectID); err != nil {
		return err
	}

	res := s.DB.WithContext(ctx).
		Where("project_id = ? AND user_id = ?", projectID, memberID).
		Delete(&Models.ProjectMember{})
	if res.Error != nil {
		return Models.StoreFailure("remove member", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil
	}

	s.Activity.Track(ctx, Activity.Event{
		UserID:      actorID,
		ProjectID:   projectID,
		Action:      Models.ActionMemberRemoved,
		Description: "removed a member",
		Metadata:    map[string]interface{}{"memberId": memberID},
	})
	return nil
}

func (s *Service) notify(ctx context.Context, project *Models.Project, actorID uint, invitee Models.User) {
	if s.Notifier == nil {
		return
	}
	var inviter Models.User
	if err := s.DB.WithContext(ctx).First(&inviter, actorID).Error; err != nil {
		s.Log.Warn("invite notice skipped", zap.Uint("project", project.ID), zap.Error(err))
		return
	}
	err := s.Notifier.SendInvite(email.Invite{
		To:      invitee.Email,
		Invitee: invitee.Name,
		Inviter: inviter.Name,
		Project: project.Name,
	})
	if err != nil {
		s.Log.Warn("invite notice not sent",
			zap.Uint("project", project.ID),
			zap.String("invitee", invitee.UserID),
			zap.Error(err),
		)
	}
}
