package app

import (
	"fmt"
	"strings"
	"time"

	"paperdesk/internal/authz"
	"paperdesk/internal/util"
	"paperdesk/pkg/auth"
	"paperdesk/pkg/domain"
)

// CreateUserInput carries the signup fields. Role is honored only when
// the actor is an admin; open signups always become students.
type CreateUserInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      domain.UserRole
}

// CreateUser registers a user. Works unauthenticated (open signup) and
// for admins creating staff accounts.
func (a *App) CreateUser(actor *domain.User, in CreateUserInput) (domain.User, error) {
	email := strings.TrimSpace(strings.ToLower(in.Email))
	if email == "" || in.Password == "" {
		return domain.User{}, E(KindValidation, "email and password required")
	}
	if err := auth.ValidatePassword(in.Password); err != nil {
		return domain.User{}, Wrap(KindValidation, err.Error(), err)
	}
	exists, err := a.store.HasUserEmail(email)
	if err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return domain.User{}, E(KindConflict, MsgEmailExists)
	}

	role := domain.RoleStudent
	if in.Role != "" && in.Role != domain.RoleStudent {
		if !authz.Can(actor, authz.EntityUser, authz.ActionCreate, authz.Target{}) {
			return domain.User{}, E(KindForbidden, MsgAdminOnly)
		}
		role = in.Role
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := a.store.SaveUser(user); err != nil {
		return domain.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Login validates credentials and issues an access token.
func (a *App) Login(email, password string) (domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, ok, err := a.store.GetUserByEmail(email)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, "", E(KindValidation, MsgInvalidCredentials)
	}
	if !auth.CheckPassword(password, user.PasswordHash) {
		return domain.User{}, "", E(KindValidation, MsgInvalidCredentials)
	}
	token, err := a.tokens.Sign(user.ID)
	if err != nil {
		return domain.User{}, "", fmt.Errorf("sign token: %w", err)
	}
	return user, token, nil
}

// UserFromToken resolves the actor for a bearer credential. Invalid or
// unknown tokens yield no actor rather than an error; resolvers decide
// how an absent actor surfaces.
func (a *App) UserFromToken(token string) (domain.User, bool) {
	uid, err := a.tokens.VerifySubject(token)
	if err != nil {
		return domain.User{}, false
	}
	user, found, err := a.store.GetUserByID(uid)
	if err != nil || !found {
		return domain.User{}, false
	}
	return user, true
}

// Me returns the authenticated user.
func (a *App) Me(actor *domain.User) (domain.User, error) {
	if actor == nil {
		return domain.User{}, ErrUnauthenticatedQuery
	}
	return *actor, nil
}

// GetUser returns a user by ID for admins or the user themself.
func (a *App) GetUser(actor *domain.User, id string) (domain.User, error) {
	if actor == nil {
		return domain.User{}, ErrUnauthenticatedQuery
	}
	if !authz.Can(actor, authz.EntityUser, authz.ActionRead, authz.Target{SubjectID: id}) {
		return domain.User{}, E(KindForbidden, MsgAdminOnly)
	}
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, E(KindNotFound, MsgUserNotFound)
	}
	return user, nil
}

// ListUsers returns all users, admin only.
func (a *App) ListUsers(actor *domain.User) ([]domain.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticatedQuery
	}
	if !authz.HasRole(actor, domain.RoleAdmin) {
		return nil, E(KindForbidden, MsgAdminOnly)
	}
	users, err := a.store.ListUsers()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// UpdateUserInput carries optional fields for an admin user update.
type UpdateUserInput struct {
	FirstName *string
	LastName  *string
	Role      *domain.UserRole
}

// UpdateUser applies an admin update to a user.
func (a *App) UpdateUser(actor *domain.User, id string, in UpdateUserInput) (domain.User, error) {
	if actor == nil {
		return domain.User{}, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityUser, authz.ActionUpdate, authz.Target{}) {
		return domain.User{}, E(KindForbidden, MsgAdminOnly)
	}
	user, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return domain.User{}, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return domain.User{}, E(KindNotFound, MsgUserNotFound)
	}
	if in.FirstName != nil {
		user.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		user.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	user.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateUser(user); err != nil {
		return domain.User{}, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// DeleteUser removes a user, admin only.
func (a *App) DeleteUser(actor *domain.User, id string) (bool, error) {
	if actor == nil {
		return false, ErrUnauthenticatedMutation
	}
	if !authz.Can(actor, authz.EntityUser, authz.ActionDelete, authz.Target{}) {
		return false, E(KindForbidden, MsgAdminOnly)
	}
	_, ok, err := a.store.GetUserByID(id)
	if err != nil {
		return false, fmt.Errorf("fetch user: %w", err)
	}
	if !ok {
		return false, E(KindNotFound, MsgUserNotFound)
	}
	if err := a.store.DeleteUser(id); err != nil {
		return false, fmt.Errorf("delete user: %w", err)
	}
	return true, nil
}
