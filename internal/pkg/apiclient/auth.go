package apiclient

import (
	"context"
	"errors"

	"golang.org/x/sync/singleflight"

	"github.com/techsupport-hub/portal/internal/app/models"
)

// AuthAPI wraps the auth group and owns the cached profile's lifecycle:
// filled after a verified login or registration, refreshed on profile
// update, cleared on logout.
type AuthAPI struct {
	client *Client
	probes *singleflight.Group
}

// NewAuthAPI returns an AuthAPI. probes coalesces concurrent session checks
// carrying the same credential; pass a shared group, or nil for none.
func NewAuthAPI(client *Client, probes *singleflight.Group) *AuthAPI {
	return &AuthAPI{client: client, probes: probes}
}

func (a *AuthAPI) Client() *Client { return a.client }

// Login authenticates and, on success, verifies the new session with Me and
// caches the profile.
func (a *AuthAPI) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	var resp models.AuthResponse
	if err := a.client.Post(ctx, "login", req, &resp); err != nil {
		return nil, err
	}
	return a.verify(ctx)
}

// Register creates an account. APIs that sign the user in straight away
// get the same verification as Login; otherwise nil is returned.
func (a *AuthAPI) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Password != req.ConfirmPassword {
		return nil, models.ErrPasswordsDiffer
	}
	var resp models.AuthResponse
	if err := a.client.Post(ctx, "register", req, &resp); err != nil {
		return nil, err
	}
	if _, ok := a.client.Credential(); !ok {
		return nil, nil
	}
	return a.verify(ctx)
}

// Me is the session-check probe. Concurrent checks with the same credential
// share one request, which runs detached from any single caller so one
// cancelled request cannot fail the others; the client timeout bounds it.
func (a *AuthAPI) Me(ctx context.Context) (*models.User, error) {
	token, ok := a.client.Credential()
	if a.probes == nil || !ok {
		return a.fetchMe(ctx)
	}

	shared := context.WithoutCancel(ctx)
	ch := a.probes.DoChan(token, func() (any, error) {
		return a.fetchMe(shared)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		user := *res.Val.(*models.User)
		return &user, nil
	}
}

func (a *AuthAPI) fetchMe(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.client.Get(ctx, "me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Logout ends the API session. The cached profile is cleared whatever the
// API answers.
func (a *AuthAPI) Logout(ctx context.Context) error {
	defer a.clearProfile(ctx)
	return a.client.Post(ctx, "logout", nil, nil)
}

func (a *AuthAPI) ForgotPassword(ctx context.Context, req models.ForgotPasswordRequest) error {
	return a.client.Post(ctx, "forgot-password", req, nil)
}

func (a *AuthAPI) ResetPassword(ctx context.Context, req models.ResetPasswordRequest) error {
	if req.Password != req.ConfirmPassword {
		return models.ErrPasswordsDiffer
	}
	return a.client.Post(ctx, "reset-password", req, nil)
}

// UpdateProfile saves profile fields and refreshes the cached profile.
func (a *AuthAPI) UpdateProfile(ctx context.Context, req models.UpdateProfileRequest) (*models.User, error) {
	var user models.User
	if err := a.client.Put(ctx, "profile", req, &user); err != nil {
		return nil, err
	}
	if a.client.env.Profiles != nil {
		a.client.env.Profiles.Set(ctx, &user)
	}
	return &user, nil
}

// Refresh re-runs the session check and re-caches the profile, for visitors
// whose cached profile was evicted.
func (a *AuthAPI) Refresh(ctx context.Context) (*models.User, error) {
	return a.verify(ctx)
}

func (a *AuthAPI) verify(ctx context.Context) (*models.User, error) {
	user, err := a.Me(ctx)
	if err != nil {
		return nil, err
	}
	if user == nil || user.ID == "" {
		return nil, errors.New("session check returned no user")
	}
	if a.client.env.Profiles != nil {
		a.client.env.Profiles.Set(ctx, user)
	}
	return user, nil
}

func (a *AuthAPI) clearProfile(ctx context.Context) {
	if a.client.env.Profiles != nil {
		a.client.env.Profiles.Clear(ctx)
	}
}
