package user

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/request-routing/internal"
	"github.com/frahmantamala/request-routing/internal/auth"
	userDatamodel "github.com/frahmantamala/request-routing/internal/core/datamodel/user"
	"github.com/frahmantamala/request-routing/internal/core/events"
	"github.com/frahmantamala/request-routing/internal/department"
)

// ListFilter narrows Repository.List. Zero values do not filter.
type ListFilter struct {
	Role            string
	IncludeArchived bool
}

type RepositoryAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*userDatamodel.User, error)
	GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error)
	Create(ctx context.Context, user *userDatamodel.User) error
	Update(ctx context.Context, user *userDatamodel.User) error
}

const (
	actionAdded           = "added"
	actionUpdated         = "updated"
	actionArchived        = "archived"
	actionPasswordChanged = "password_reset"
)

type Service struct {
	repo      RepositoryAPI
	passwords auth.PasswordScheme
	roles     *auth.RoleResolver
	events    events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, passwords auth.PasswordScheme, publisher events.Publisher, logger *slog.Logger) *Service {
	if passwords == nil {
		passwords = auth.PlainPasswords{}
	}
	return &Service{
		repo:      repo,
		passwords: passwords,
		roles:     auth.NewRoleResolver(logger),
		events:    publisher,
		logger:    logger,
	}
}

// ListUsers returns users ordered by id, filtered by canonical department
// and role when given.
func (s *Service) ListUsers(ctx context.Context, dto ListUsersDTO) ([]*User, error) {
	filter := ListFilter{IncludeArchived: dto.IncludeArchived}
	if dto.Role != "" {
		role, err := auth.ParseRole(dto.Role)
		if err != nil {
			return nil, err
		}
		filter.Role = string(role)
	}

	rows, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("failed to list users", "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	users := FromDataModelSlice(rows)
	if dto.Department == "" {
		return users, nil
	}

	filtered := make([]*User, 0, len(users))
	for _, u := range users {
		if department.Same(u.Department, dto.Department) {
			filtered = append(filtered, u)
		}
	}
	return filtered, nil
}

func (s *Service) AddUser(ctx context.Context, dto AddUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByEmail(ctx, dto.Email)
	if err != nil {
		s.logger.Error("failed to look up user", "email", dto.Email, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}
	if existing != nil {
		return nil, internal.ErrUserExists
	}

	hashed, err := s.passwords.Hash(dto.Password)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	role, _ := s.roles.Resolve(dto.Role)
	u := &User{
		Email:      dto.Email,
		Name:       dto.Name,
		Role:       role,
		RawRole:    dto.Role,
		Password:   hashed,
		Department: department.Normalize(dto.Department),
		Status:     StatusActive,
	}

	row := ToDataModel(u)
	if err := s.repo.Create(ctx, row); err != nil {
		if appErr, ok := internal.IsAppError(err); ok {
			return nil, appErr
		}
		s.logger.Error("failed to create user", "email", dto.Email, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	s.logger.Info("user added", "email", u.Email, "role", u.Role, "department", u.Department)
	s.publish(ctx, u.Email, actionAdded)
	return FromDataModel(row), nil
}

// UpdateUser applies the non-nil fields of dto to the user keyed by email.
func (s *Service) UpdateUser(ctx context.Context, dto UpdateUserDTO) (*User, error) {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	row, err := s.load(ctx, dto.Email)
	if err != nil {
		return nil, err
	}

	if dto.Name != nil && *dto.Name != "" {
		row.Name = *dto.Name
	}
	if dto.Department != nil && *dto.Department != "" {
		row.Department = department.Normalize(*dto.Department)
	}
	if dto.Role != nil && *dto.Role != "" {
		role, _ := s.roles.Resolve(*dto.Role)
		row.Role = string(role)
		row.RawRole = *dto.Role
	}
	if dto.Password != nil && *dto.Password != "" {
		hashed, err := s.passwords.Hash(*dto.Password)
		if err != nil {
			return nil, internal.NewInternalError("failed to hash password", err)
		}
		row.Password = hashed
	}
	if dto.Status != nil && *dto.Status != "" {
		row.Status = *dto.Status
	}

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to update user", "email", dto.Email, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	s.publish(ctx, row.Email, actionUpdated)
	return FromDataModel(row), nil
}

// ArchiveUser hides a user from login and listings without deleting it.
func (s *Service) ArchiveUser(ctx context.Context, dto ArchiveUserDTO) error {
	dto.Email = normalizeEmail(dto.Email)
	if err := dto.Validate(); err != nil {
		return err
	}

	row, err := s.load(ctx, dto.Email)
	if err != nil {
		return err
	}
	if row.Status == StatusArchived {
		return nil
	}

	row.Status = StatusArchived
	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to archive user", "email", dto.Email, "error", err)
		return internal.ErrStoreUnavailable.Wrap(err)
	}

	s.logger.Info("user archived", "email", row.Email)
	s.publish(ctx, row.Email, actionArchived)
	return nil
}

// Employees lists active employees whose canonical department matches.
// An empty department lists every active employee.
func (s *Service) Employees(ctx context.Context, dto GetEmployeesDTO) ([]Employee, error) {
	rows, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		s.logger.Error("failed to list employees", "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}

	employees := make([]Employee, 0)
	for _, row := range rows {
		u := FromDataModel(row)
		if !u.IsActive() || s.effectiveRole(row) != auth.RoleEmployee {
			continue
		}
		if dto.Department != "" && !department.Same(u.Department, dto.Department) {
			continue
		}
		employees = append(employees, Employee{
			Name:       u.Name,
			Email:      u.Email,
			Department: u.CanonicalDepartment(),
		})
	}
	return employees, nil
}

func (s *Service) ResetPassword(ctx context.Context, dto ResetPasswordDTO) error {
	dto.Normalize()
	if err := dto.Validate(); err != nil {
		return err
	}

	row, err := s.load(ctx, dto.Email)
	if err != nil {
		return err
	}

	hashed, err := s.passwords.Hash(dto.NewPassword)
	if err != nil {
		return internal.NewInternalError("failed to hash password", err)
	}
	row.Password = hashed

	if err := s.repo.Update(ctx, row); err != nil {
		s.logger.Error("failed to reset password", "email", dto.Email, "error", err)
		return internal.ErrStoreUnavailable.Wrap(err)
	}

	s.logger.Info("password reset", "email", row.Email)
	s.publish(ctx, row.Email, actionPasswordChanged)
	return nil
}

func (s *Service) load(ctx context.Context, email string) (*userDatamodel.User, error) {
	row, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Error("failed to look up user", "email", email, "error", err)
		return nil, internal.ErrStoreUnavailable.Wrap(err)
	}
	if row == nil {
		return nil, internal.ErrUserNotFound
	}
	return row, nil
}

// effectiveRole prefers the free-text role a row was imported with.
func (s *Service) effectiveRole(row *userDatamodel.User) auth.Role {
	if row.RawRole != "" {
		role, _ := auth.ResolveRole(row.RawRole)
		return role
	}
	if role := auth.Role(row.Role); role.Valid() {
		return role
	}
	role, _ := auth.ResolveRole(row.Role)
	return role
}

func (s *Service) publish(ctx context.Context, email, action string) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, events.NewUserChangedEvent(email, action)); err != nil {
		s.logger.Warn("failed to publish user event", "email", email, "error", err)
	}
}
