package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pollwise/internal/domain/notification"
	"pollwise/internal/domain/user"
	"pollwise/internal/repository"
	pollwise_errors "pollwise/pkg/errors"
)

// RoleService manages the poll-manager role: direct grants, revocation, and
// the emailed invitation-token flow. Invitations expire after seven days and
// the expiry is checked in the acceptance path.
type RoleService struct {
	userRepo      repository.UserRepository
	notifications *NotificationService
}

func NewRoleService(userRepo repository.UserRepository, notifications *NotificationService) *RoleService {
	return &RoleService{userRepo: userRepo, notifications: notifications}
}

func (s *RoleService) Invite(ctx context.Context, email string, invitedBy uuid.UUID) (user.RoleInvitation, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || !strings.Contains(email, "@") {
		return user.RoleInvitation{}, pollwise_errors.ErrInvalidInput
	}

	inv := user.RoleInvitation{
		Token:     uuid.New(),
		Email:     email,
		Role:      user.RolePollManager,
		InvitedBy: invitedBy,
		ExpiresAt: time.Now().Add(user.InvitationTTL),
		CreatedAt: time.Now(),
	}
	if err := s.userRepo.CreateInvitation(ctx, &inv); err != nil {
		return user.RoleInvitation{}, err
	}

	if s.notifications != nil {
		_ = s.notifications.Enqueue(ctx, notification.KindManagerInvite, uuid.NullUUID{}, email,
			"You have been invited as a poll manager",
			fmt.Sprintf("Use the token %s to accept your poll manager invitation. The invitation expires in 7 days.", inv.Token))
	}
	return inv, nil
}

func (s *RoleService) Accept(ctx context.Context, token, userID uuid.UUID) error {
	inv, err := s.userRepo.GetInvitation(ctx, token)
	if err != nil {
		return err
	}
	if inv.AcceptedAt.Valid {
		return pollwise_errors.ErrAlreadyExists
	}
	if inv.Expired(time.Now()) {
		return pollwise_errors.ErrTokenExpired
	}

	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	// Invitations never demote an admin.
	if u.Role == user.RoleAdmin {
		return pollwise_errors.ErrAlreadyExists
	}

	if err := s.userRepo.UpdateRole(ctx, userID, inv.Role); err != nil {
		return err
	}
	return s.userRepo.MarkInvitationAccepted(ctx, token)
}

// Revoke demotes a poll manager back to a regular user.
func (s *RoleService) Revoke(ctx context.Context, userID uuid.UUID) error {
	u, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u.Role != user.RolePollManager {
		return pollwise_errors.ErrInvalidInput
	}
	return s.userRepo.UpdateRole(ctx, userID, user.RoleUser)
}
