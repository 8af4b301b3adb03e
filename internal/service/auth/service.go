package auth

import (
	"sitechat/internal/model"
	"sitechat/internal/repository"
	"sitechat/pkg/rbac"
)

// Service answers identity and access questions. Identity itself is trusted:
// whoever calls switch_user becomes that user.
type Service struct {
	userRepo *repository.UserRepository
}

func NewService(userRepo *repository.UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

func (s *Service) GetUser(userID string) (model.User, error) {
	return s.userRepo.Get(userID)
}

func (s *Service) ListUsers() []model.User {
	return s.userRepo.List()
}

// DefaultUser is the first seeded user; new sessions start as this user.
func (s *Service) DefaultUser() (model.User, bool) {
	users := s.userRepo.List()
	if len(users) == 0 {
		return model.User{}, false
	}
	return users[0], true
}

func (s *Service) HasProjectAccess(userID, projectID string) bool {
	return s.AuthorizeProject(userID, projectID) == nil
}

// AuthorizeProject returns *rbac.ProjectAccessDeniedError for unknown users
// and for projects outside the user's access list.
func (s *Service) AuthorizeProject(userID, projectID string) error {
	u, err := s.userRepo.Get(userID)
	if err != nil {
		return &rbac.ProjectAccessDeniedError{UserID: userID, ProjectID: projectID}
	}
	return rbac.CheckProjectAccess(u.ID, u.ProjectAccess, projectID)
}

// Authorize checks a role permission for the user.
func (s *Service) Authorize(userID, permission string) error {
	u, err := s.userRepo.Get(userID)
	if err != nil {
		return &rbac.PermissionDeniedError{UserID: userID, Permission: permission}
	}
	return rbac.CheckPermission(u.ID, u.Role, permission)
}

// UserProjects returns the ids the user may access, or nil for unknown users.
func (s *Service) UserProjects(userID string) []string {
	u, err := s.userRepo.Get(userID)
	if err != nil {
		return nil
	}
	return append([]string(nil), u.ProjectAccess...)
}
