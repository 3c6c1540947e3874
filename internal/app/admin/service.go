package admin

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"neon-tycoon/internal/events"
	"neon-tycoon/internal/progression"
	"neon-tycoon/internal/session"
	"neon-tycoon/internal/store"
)

type Service struct {
	repo store.Repository
	mgr  *session.Manager
	pub  events.Publisher
}

func NewService(repo store.Repository, mgr *session.Manager, pub events.Publisher) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Service{repo: repo, mgr: mgr, pub: pub}
}

func (s *Service) Players(ctx context.Context) (*PlayersResponse, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	accts := s.mgr.Overlay(stored)
	items := make([]PlayerItem, 0, len(accts))
	for _, a := range accts {
		_, online := s.mgr.Get(a.Username)
		items = append(items, PlayerItem{
			Username:    a.Username,
			IsAdmin:     a.IsAdmin,
			Online:      online,
			CompanyName: a.Progress.CompanyName,
			Progress:    a.Progress,
		})
	}
	return &PlayersResponse{Items: items}, nil
}

// Apply runs an operator action against the player's live session, or
// against the stored account when the player is offline.
func (s *Service) Apply(ctx context.Context, username string, in ActionInput) (*ActionResponse, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrInvalidRequest
	}
	fn, err := s.action(in)
	if err != nil {
		return nil, err
	}

	applied, snap, live, err := s.mgr.Edit(ctx, username, fn)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrPlayerNotFound
	}
	if err != nil {
		return nil, err
	}
	resp := &ActionResponse{Username: username, Action: in.Action, Applied: applied, Live: live, Progress: snap.Progress}

	log.Info().
		Str("username", username).
		Str("action", in.Action).
		Str("upgrade_id", in.UpgradeID).
		Bool("applied", resp.Applied).
		Bool("live", resp.Live).
		Msg("admin action")
	if resp.Applied {
		s.pub.Publish(ctx, events.Event{
			Type:     events.AdminAction,
			Username: username,
			At:       s.mgr.Engine().Now(),
			Data:     map[string]any{"action": in.Action, "upgrade_id": in.UpgradeID, "delta": in.Delta},
		})
	}
	return resp, nil
}

func (s *Service) action(in ActionInput) (func(*progression.Engine, *progression.Progress) bool, error) {
	switch in.Action {
	case ActionResetMoney:
		return (*progression.Engine).ResetMoney, nil
	case ActionStealRebirth:
		return (*progression.Engine).RevokeRebirth, nil
	case ActionResetUpgrades:
		return (*progression.Engine).ResetUpgrades, nil
	case ActionAddMoney:
		return func(e *progression.Engine, p *progression.Progress) bool {
			return e.GrantMoney(p, progression.AdminGrantAmount)
		}, nil
	case ActionGrantTech:
		return func(e *progression.Engine, p *progression.Progress) bool {
			return e.GrantTech(p, progression.AdminGrantUnits)
		}, nil
	case ActionAdjustUpgrade:
		if _, ok := s.mgr.Engine().Catalog().Lookup(in.UpgradeID); !ok {
			return nil, ErrUnknownUpgrade
		}
		if in.Delta == 0 {
			return nil, ErrInvalidRequest
		}
		return func(e *progression.Engine, p *progression.Progress) bool {
			return e.AdjustUpgrade(p, in.UpgradeID, in.Delta)
		}, nil
	}
	return nil, ErrInvalidRequest
}
