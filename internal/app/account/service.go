package account

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"
	"neon-tycoon/internal/store"
)

const (
	maxUsernameLen = 32
	namerTimeout   = 10 * time.Second
)

type Service struct {
	repo   store.Repository
	mgr    *session.Manager
	namer  session.CompanyNamer
	admins []string
}

func NewService(repo store.Repository, mgr *session.Manager, namer session.CompanyNamer, admins []string) *Service {
	return &Service{repo: repo, mgr: mgr, namer: namer, admins: admins}
}

// Register creates an account and logs it in. The company name comes from
// the namer when it answers, otherwise "<username> Corp" stands in until a
// later login replaces it.
func (s *Service) Register(ctx context.Context, in Credentials) (*LoginResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(in); err != nil {
		return nil, err
	}
	if _, err := s.repo.Load(ctx, in.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	p := progression.New(s.mgr.Engine().Now())
	p.CompanyName = s.companyName(ctx, in.Username)
	acct := store.Account{
		ID:           store.NewID(),
		Username:     in.Username,
		PasswordHash: store.HashPassword(in.Password),
		IsAdmin:      slices.Contains(s.admins, in.Username),
		Progress:     p,
	}
	if err := s.repo.Create(ctx, acct); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}
	log.Info().Str("username", acct.Username).Str("company", p.CompanyName).Msg("account registered")
	return s.open(acct), nil
}

func (s *Service) Login(ctx context.Context, in Credentials) (*LoginResponse, error) {
	in.Username = strings.TrimSpace(in.Username)
	if err := validate(in); err != nil {
		return nil, err
	}
	acct, err := s.repo.Load(ctx, in.Username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if acct.PasswordHash != store.HashPassword(in.Password) {
		return nil, ErrInvalidCredentials
	}
	if slices.Contains(s.admins, acct.Username) {
		acct.IsAdmin = true
	}
	return s.open(acct), nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.mgr.Close(ctx, token)
}

func (s *Service) open(acct store.Account) *LoginResponse {
	sess, token := s.mgr.Open(acct)
	snap := sess.Snapshot()
	return &LoginResponse{
		Token:       token,
		Username:    snap.Username,
		CompanyName: snap.Progress.CompanyName,
		IsAdmin:     snap.IsAdmin,
	}
}

func (s *Service) companyName(ctx context.Context, username string) string {
	fallback := username + " Corp"
	if s.namer == nil {
		return fallback
	}
	ctx, cancel := context.WithTimeout(ctx, namerTimeout)
	defer cancel()
	name, err := s.namer.CompanyName(ctx)
	if err != nil || strings.TrimSpace(name) == "" {
		return fallback
	}
	return name
}

func validate(in Credentials) error {
	if in.Username == "" || in.Password == "" {
		return ErrInvalidRequest
	}
	if utf8.RuneCountInString(in.Username) > maxUsernameLen {
		return ErrInvalidRequest
	}
	return nil
}
