package actors

import (
	"time"

	"yatube/internal/config"
	"yatube/internal/models"
	"yatube/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Message types for accounts
type (
	RegisterUserMsg struct {
		Username  string `validate:"required,max=150,username"`
		Email     string `validate:"omitempty,email"`
		Password  string `validate:"min=8"`
		FirstName string `validate:"max=150"`
		LastName  string `validate:"max=150"`
		// IsAdmin is set by the command line only, never over HTTP.
		IsAdmin bool
	}

	LoginMsg struct {
		Username string
		Password string
	}

	GetUserMsg struct {
		UserID uuid.UUID
	}

	ListUsersMsg struct{}

	// UpdateProfileMsg changes the fields that are not nil.
	UpdateProfileMsg struct {
		UserID uuid.UUID
		Avatar *string `validate:"omitempty,max=255"`
		Info   *string
	}

	DeleteUserMsg struct {
		UserID uuid.UUID
	}
)

// UserSupervisor manages accounts and greets every new user through the
// ChatActor.
type UserSupervisor struct {
	base
	welcome        config.WelcomeConfig
	chatPID        *actor.PID
	requestTimeout time.Duration
	passwordCost   int
}

func NewUserSupervisor(deps Deps, welcome config.WelcomeConfig, chatPID *actor.PID, requestTimeout time.Duration) actor.Actor {
	return &UserSupervisor{
		base:           newBase(deps, "UserSupervisor"),
		welcome:        welcome,
		chatPID:        chatPID,
		requestTimeout: requestTimeout,
		passwordCost:   bcrypt.DefaultCost,
	}
}

func (s *UserSupervisor) Receive(context actor.Context) {
	switch msg := context.Message().(type) {
	case *RegisterUserMsg:
		s.handleRegister(context, msg)
	case *LoginMsg:
		s.handleLogin(context, msg)
	case *GetUserMsg:
		ctx, cancel := s.storeCtx()
		defer cancel()
		user, err := s.db.GetUser(ctx, msg.UserID)
		if err != nil {
			s.fail(context, "get user", err)
			return
		}
		context.Respond(user)
	case *ListUsersMsg:
		ctx, cancel := s.storeCtx()
		defer cancel()
		users, err := s.db.GetAllUsers(ctx)
		if err != nil {
			s.fail(context, "list users", err)
			return
		}
		context.Respond(users)
	case *UpdateProfileMsg:
		s.handleUpdateProfile(context, msg)
	case *DeleteUserMsg:
		s.handleDeleteUser(context, msg)
	case *GetCountsMsg:
		ctx, cancel := s.storeCtx()
		defer cancel()
		count, err := s.db.CountUsers(ctx)
		if err != nil {
			s.fail(context, "count users", err)
			return
		}
		context.Respond(count)
	default:
		s.unhandled(msg)
	}
}

func (s *UserSupervisor) handleRegister(context actor.Context, msg *RegisterUserMsg) {
	startTime := time.Now()
	defer s.observe("register_user", startTime)

	if err := utils.Validate(msg); err != nil {
		s.fail(context, "register user", err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(msg.Password), s.passwordCost)
	if err != nil {
		s.fail(context, "register user", utils.NewAppError(utils.ErrInvalidInput, "password cannot be hashed", err))
		return
	}

	user := &models.User{
		ID:             uuid.New(),
		Username:       msg.Username,
		Email:          msg.Email,
		FirstName:      msg.FirstName,
		LastName:       msg.LastName,
		HashedPassword: string(hashed),
		IsAdmin:        msg.IsAdmin,
		CreatedAt:      time.Now(),
	}

	ctx, cancel := s.storeCtx()
	err = s.db.CreateUser(ctx, user)
	cancel()
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrDuplicate) {
			context.Respond(utils.NewAppError(utils.ErrDuplicate, "username already taken", err))
			return
		}
		s.fail(context, "register user", err)
		return
	}

	s.logger.Info("user registered", "user", user.ID, "username", user.Username)
	s.greet(context, user)
	context.Respond(user)
}

// greet creates the profile of a new user and sends the welcome message.
// Nothing here fails the registration.
func (s *UserSupervisor) greet(context actor.Context, user *models.User) {
	ctx, cancel := s.storeCtx()
	defer cancel()

	if err := s.db.CreateProfile(ctx, &models.Profile{UserID: user.ID, Avatar: models.DefaultAvatar}); err != nil {
		s.logger.Error("profile creation failed", "user", user.ID, "error", err)
	}

	if s.welcome.Sender == "" || s.chatPID == nil {
		return
	}
	sender, err := s.db.GetUserByUsername(ctx, s.welcome.Sender)
	if err != nil {
		s.logger.Warn("welcome sender unavailable", "sender", s.welcome.Sender, "error", err)
		return
	}
	if sender.ID == user.ID {
		return
	}

	_, err = Ask[*models.Message](context, s.chatPID, &DeliverMsg{
		SenderID:    sender.ID,
		RecipientID: user.ID,
		Text:        s.welcome.Text,
	}, s.requestTimeout)
	if err != nil {
		s.logger.Error("welcome message failed", "user", user.ID, "error", err)
	}
}

func (s *UserSupervisor) handleLogin(context actor.Context, msg *LoginMsg) {
	ctx, cancel := s.storeCtx()
	defer cancel()

	invalid := utils.NewAppError(utils.ErrInvalidCredentials, "invalid username or password", nil)
	user, err := s.db.GetUserByUsername(ctx, msg.Username)
	if err != nil {
		if utils.IsErrorCode(err, utils.ErrNotFound) {
			context.Respond(invalid)
			return
		}
		s.fail(context, "login", err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(msg.Password)); err != nil {
		s.logger.Debug("login rejected", "username", msg.Username)
		context.Respond(invalid)
		return
	}
	context.Respond(user)
}

func (s *UserSupervisor) handleUpdateProfile(context actor.Context, msg *UpdateProfileMsg) {
	if err := utils.Validate(msg); err != nil {
		s.fail(context, "update profile", err)
		return
	}

	ctx, cancel := s.storeCtx()
	defer cancel()

	profile, err := s.db.GetProfile(ctx, msg.UserID)
	missing := utils.IsErrorCode(err, utils.ErrNotFound)
	if err != nil && !missing {
		s.fail(context, "update profile", err)
		return
	}
	if missing {
		profile = &models.Profile{UserID: msg.UserID, Avatar: models.DefaultAvatar}
	}
	if msg.Avatar != nil {
		profile.Avatar = *msg.Avatar
	}
	if msg.Info != nil {
		profile.Info = *msg.Info
	}

	if missing {
		err = s.db.CreateProfile(ctx, profile)
	} else {
		err = s.db.UpdateProfile(ctx, profile)
	}
	if err != nil {
		s.fail(context, "update profile", err)
		return
	}
	context.Respond(profile)
}

func (s *UserSupervisor) handleDeleteUser(context actor.Context, msg *DeleteUserMsg) {
	ctx, cancel := s.storeCtx()
	defer cancel()

	if err := s.db.DeleteUser(ctx, msg.UserID); err != nil {
		s.fail(context, "delete user", err)
		return
	}
	s.logger.Info("user deleted", "user", msg.UserID)
	context.Respond(&Done{})
}
