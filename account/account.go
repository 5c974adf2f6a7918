// Package account registers users, logs them in and maintains their profiles.
package account

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/murtaza309/streemza/media"
	"github.com/murtaza309/streemza/model"
	"github.com/murtaza309/streemza/store"
	"github.com/murtaza309/streemza/utils"
	"github.com/pkg/errors"
)

type RegisterInput struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	DateOfBirth string `json:"dateOfBirth" validate:"required"`
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
	Role        string `json:"role" validate:"omitempty,oneof=creator consumer"`
}

// LoginInput accepts either the username or the email as identifier.
type LoginInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}

// Upload is a file sent along with a form.
type Upload struct {
	FileName    string
	ContentType string
	File        io.Reader
}

// ProfilePatch holds the profile fields to change. Nil fields are kept.
type ProfilePatch struct {
	FirstName   *string
	LastName    *string
	Username    *string
	Email       *string
	Role        *string
	DateOfBirth *string
	Password    *string
	ProfilePic  *Upload
}

type Accounts struct {
	users  store.UserStore
	media  media.MediaStore
	tokens *TokenIssuer

	now func() time.Time
}

func NewAccounts(users store.UserStore, mediaStore media.MediaStore, tokens *TokenIssuer) *Accounts {
	return &Accounts{
		users:  users,
		media:  mediaStore,
		tokens: tokens,
		now:    time.Now,
	}
}

func parseDateOfBirth(value string) (time.Time, error) {
	dob, err := dateparse.ParseAny(value)
	if err != nil {
		return time.Time{}, utils.NewValidationError("Invalid date of birth")
	}
	return dob, nil
}

func (a *Accounts) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := utils.ValidateStruct(input); err != nil {
		return nil, err
	}
	if err := CheckPasswordPolicy(input.Password); err != nil {
		return nil, err
	}
	dob, err := parseDateOfBirth(input.DateOfBirth)
	if err != nil {
		return nil, err
	}

	if taken, err := a.isTaken(ctx, input.Username, input.Email, ""); err != nil {
		return nil, err
	} else if taken {
		return nil, utils.ErrDuplicateUser
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	role := model.RoleConsumer
	if input.Role != "" {
		role = model.Role(input.Role)
	}
	user := &model.User{
		Id:          uuid.New().String(),
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		DateOfBirth: dob,
		Username:    input.Username,
		Email:       input.Email,
		Password:    hash,
		Role:        role,
		Subscribers: pq.StringArray{},
	}
	if err := a.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			return nil, utils.ErrDuplicateUser
		}
		return nil, errors.Wrap(err, "create user")
	}
	return user, nil
}

// isTaken reports whether username or email belongs to a user other than
// exceptId.
func (a *Accounts) isTaken(ctx context.Context, username string, email string, exceptId string) (bool, error) {
	lookups := []func() (*model.User, error){
		func() (*model.User, error) { return a.users.GetUserByUsername(ctx, username) },
		func() (*model.User, error) { return a.users.GetUserByEmail(ctx, email) },
	}
	for _, lookup := range lookups {
		u, err := lookup()
		if err == nil && u.Id != exceptId {
			return true, nil
		}
		if err != nil && !errors.Is(err, store.ErrRecordNotFound) {
			return false, errors.Wrap(err, "check existing user")
		}
	}
	return false, nil
}

func (a *Accounts) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	if input.Password == "" || (input.Username == "" && input.Email == "") {
		return nil, utils.ErrInvalidCredentials
	}

	var user *model.User
	var err error
	if input.Email != "" {
		user, err = a.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(input.Email)))
	} else {
		user, err = a.users.GetUserByUsername(ctx, strings.TrimSpace(input.Username))
	}
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, "load user")
	}
	if !checkPassword(user.Password, input.Password) {
		return nil, utils.ErrInvalidCredentials
	}

	token, err := a.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, User: user}, nil
}

func (a *Accounts) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := a.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "load user by username")
	}
	return user, nil
}

func (a *Accounts) GetById(ctx context.Context, id string) (*model.User, error) {
	user, err := a.users.GetUserById(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, utils.ErrUserNotFound
		}
		return nil, errors.Wrap(err, "load user by id")
	}
	return user, nil
}

// resolve looks usernameOrId up as a username first and as an id second.
func (a *Accounts) resolve(ctx context.Context, usernameOrId string) (*model.User, error) {
	user, err := a.users.GetUserByUsername(ctx, usernameOrId)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, store.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load user by username")
	}
	return a.GetById(ctx, usernameOrId)
}

// UpdateProfile applies patch to the user identified by usernameOrId. When
// actorId is not empty it must be the id of that user.
func (a *Accounts) UpdateProfile(ctx context.Context, actorId string, usernameOrId string, patch ProfilePatch) (*model.User, error) {
	user, err := a.resolve(ctx, usernameOrId)
	if err != nil {
		return nil, err
	}
	if actorId != "" && actorId != user.Id {
		return nil, utils.ErrActorMismatch
	}

	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Username != nil {
		user.Username = strings.TrimSpace(*patch.Username)
	}
	if patch.Email != nil {
		user.Email = strings.ToLower(strings.TrimSpace(*patch.Email))
	}
	if patch.Role != nil {
		role := model.Role(*patch.Role)
		if !role.IsValid() {
			return nil, utils.NewValidationError("Role must be one of [creator consumer]")
		}
		user.Role = role
	}
	if patch.DateOfBirth != nil && *patch.DateOfBirth != "" {
		if user.DateOfBirth, err = parseDateOfBirth(*patch.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if patch.Password != nil && *patch.Password != "" {
		if err := CheckPasswordPolicy(*patch.Password); err != nil {
			return nil, err
		}
		if user.Password, err = hashPassword(*patch.Password); err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
	}

	if patch.Username != nil || patch.Email != nil {
		if taken, err := a.isTaken(ctx, user.Username, user.Email, user.Id); err != nil {
			return nil, err
		} else if taken {
			return nil, utils.ErrDuplicateUser
		}
	}

	if patch.ProfilePic != nil {
		if !media.IsAllowedFile(patch.ProfilePic.FileName) {
			return nil, utils.ErrFileType
		}
		key := media.NewKey(media.ProfilePicPrefix, patch.ProfilePic.FileName, a.now())
		key, err := a.media.Store(ctx, key, patch.ProfilePic.File, patch.ProfilePic.ContentType)
		if err != nil {
			return nil, errors.Wrap(err, "store profile picture")
		}
		user.ProfilePic = a.media.GetUrlFromKey(key)
	}

	if err := a.users.UpdateUser(ctx, user); err != nil {
		switch {
		case errors.Is(err, store.ErrRecordNotFound):
			return nil, utils.ErrUserNotFound
		case errors.Is(err, store.ErrDuplicateKey):
			return nil, utils.ErrDuplicateUser
		}
		return nil, errors.Wrap(err, "update user")
	}
	return a.GetById(ctx, user.Id)
}
