package social

import (
	"auction-marketplace/internal/biddingerrors"
	"auction-marketplace/internal/models"
	"auction-marketplace/internal/repository"
	"auction-marketplace/utils"
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate applies the same rules as the gin binding tags on the HTTP edge
var validate = validator.New()

// CreateUserInput carries the fields of a new user
type CreateUserInput struct {
	Username string
	Email    string
	Role     string
}

// SocialService maintains users and the follow graph between them
type SocialService struct {
	repo repository.AuctionDB
}

// NewSocialService creates a new SocialService
func NewSocialService(repo repository.AuctionDB) *SocialService {
	return &SocialService{repo: repo}
}

// CreateUser validates and stores a new user
func (s *SocialService) CreateUser(ctx context.Context, in CreateUserInput) (models.User, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	if username == "" {
		return models.User{}, fmt.Errorf("service: %w - please add a username", biddingerrors.ErrInvalidUser)
	}
	if err := validate.Var(email, "required,email"); err != nil {
		return models.User{}, fmt.Errorf("service: %w - invalid email %q", biddingerrors.ErrInvalidUser, email)
	}

	role := in.Role
	if role == "" {
		role = models.RoleUser
	}
	if role != models.RoleUser && role != models.RoleAdmin {
		return models.User{}, fmt.Errorf("service: %w - unknown role %q", biddingerrors.ErrInvalidUser, role)
	}

	user := models.User{
		UserID:   utils.GenerateID(),
		Username: username,
		Email:    email,
		Role:     role,
	}
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return models.User{}, fmt.Errorf("service: failed to create user %s: %w", email, err)
	}
	return user, nil
}

// EnsureAdmin returns an admin registered under email. A missing user is
// created as admin; an existing user without the admin role is promoted.
// The bool reports whether a user was created.
func (s *SocialService) EnsureAdmin(ctx context.Context, username, email string) (models.User, bool, error) {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return models.User{}, false, err
	}
	for _, u := range users {
		if !strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			continue
		}
		if u.IsAdmin() {
			return u, false, nil
		}
		u.Role = models.RoleAdmin
		if err := s.repo.UpdateUser(ctx, u); err != nil {
			return models.User{}, false, fmt.Errorf("service: failed to promote user %s: %w", u.UserID, err)
		}
		return u, false, nil
	}

	user, err := s.CreateUser(ctx, CreateUserInput{Username: username, Email: email, Role: models.RoleAdmin})
	if err != nil {
		return models.User{}, false, err
	}
	return user, true, nil
}

// GetUser returns a single user
func (s *SocialService) GetUser(ctx context.Context, userID string) (models.User, error) {
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("service: failed to get user %s: %w", userID, err)
	}
	return user, nil
}

// ListUsers returns every user
func (s *SocialService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("service: failed to list users: %w", err)
	}
	return users, nil
}

// Follow makes followerID follow targetID. The two sides are written
// independently, so a failure between the writes leaves them out of step.
func (s *SocialService) Follow(ctx context.Context, followerID, targetID string) (models.User, error) {
	if followerID == targetID {
		return models.User{}, fmt.Errorf("service: %w", biddingerrors.ErrSelfFollow)
	}

	follower, target, err := s.loadPair(ctx, followerID, targetID)
	if err != nil {
		return models.User{}, err
	}

	if containsRef(target.Followers, followerID) || containsRef(follower.Following, targetID) {
		return models.User{}, fmt.Errorf("service: %w - %s already follows %s", biddingerrors.ErrAlreadyFollowing, followerID, targetID)
	}

	target.Followers = append(target.Followers, follower.Ref())
	if err := s.repo.UpdateUser(ctx, target); err != nil {
		return models.User{}, fmt.Errorf("service: failed to update followers of %s: %w", targetID, err)
	}

	follower.Following = append(follower.Following, target.Ref())
	if err := s.repo.UpdateUser(ctx, follower); err != nil {
		return models.User{}, fmt.Errorf("service: failed to update following of %s: %w", followerID, err)
	}

	return follower, nil
}

// Unfollow removes the follow edge from followerID to targetID. A missing
// edge is not an error.
func (s *SocialService) Unfollow(ctx context.Context, followerID, targetID string) (models.User, error) {
	follower, target, err := s.loadPair(ctx, followerID, targetID)
	if err != nil {
		return models.User{}, err
	}

	if followers, removed := removeRef(target.Followers, followerID); removed {
		target.Followers = followers
		if err := s.repo.UpdateUser(ctx, target); err != nil {
			return models.User{}, fmt.Errorf("service: failed to update followers of %s: %w", targetID, err)
		}
	}

	if following, removed := removeRef(follower.Following, targetID); removed {
		follower.Following = following
		if err := s.repo.UpdateUser(ctx, follower); err != nil {
			return models.User{}, fmt.Errorf("service: failed to update following of %s: %w", followerID, err)
		}
	}

	return follower, nil
}

// RemoveFollower drops followerID from userID's followers
func (s *SocialService) RemoveFollower(ctx context.Context, userID, followerID string) (models.User, error) {
	if _, err := s.Unfollow(ctx, followerID, userID); err != nil {
		return models.User{}, err
	}
	return s.GetUser(ctx, userID)
}

func (s *SocialService) loadPair(ctx context.Context, followerID, targetID string) (models.User, models.User, error) {
	follower, err := s.repo.GetUser(ctx, followerID)
	if err != nil {
		return models.User{}, models.User{}, fmt.Errorf("service: failed to get user %s: %w", followerID, err)
	}
	target, err := s.repo.GetUser(ctx, targetID)
	if err != nil {
		return models.User{}, models.User{}, fmt.Errorf("service: failed to get user %s: %w", targetID, err)
	}
	return follower, target, nil
}

func containsRef(refs []models.UserRef, userID string) bool {
	for _, ref := range refs {
		if ref.UserID == userID {
			return true
		}
	}
	return false
}

func removeRef(refs []models.UserRef, userID string) ([]models.UserRef, bool) {
	kept := refs[:0:0]
	removed := false
	for _, ref := range refs {
		if ref.UserID == userID {
			removed = true
			continue
		}
		kept = append(kept, ref)
	}
	if len(kept) == 0 {
		kept = nil
	}
	return kept, removed
}
