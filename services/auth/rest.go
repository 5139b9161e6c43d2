// Package authsvc talks to the school-administration backend's auth endpoints.
package authsvc

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/session"
	"github.com/trezcool/shule/core/user"
)

type (
	LoginResponse struct {
		AccessToken string    `json:"access_token"`
		TokenType   string    `json:"token_type"`
		User        user.User `json:"user"`
	}

	restService struct {
		client  *http.Client
		baseURL string
	}
)

var _ session.AuthService = (*restService)(nil) // interface compliance check

func NewRESTService(conf core.APIConfig) session.AuthService {
	return &restService{
		client:  &http.Client{Timeout: conf.Timeout},
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
	}
}

func (svc *restService) Login(ctx context.Context, creds user.Credentials) (string, user.User, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "marshalling credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, svc.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", user.User{}, errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := svc.client.Do(req)
	if err != nil {
		return "", user.User{}, errors.WithMessage(session.ErrNetworkUnavailable, err.Error())
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusBadRequest,
		res.StatusCode == http.StatusUnauthorized,
		res.StatusCode == http.StatusForbidden:
		return "", user.User{}, session.ErrAuthRejected
	default:
		return "", user.User{}, errors.Errorf("auth service: unexpected status %d", res.StatusCode)
	}

	var data LoginResponse
	if err := json.NewDecoder(res.Body).Decode(&data); err != nil {
		return "", user.User{}, errors.Wrap(err, "decoding login response")
	}
	return data.AccessToken, data.User, nil
}

func (svc *restService) Me(ctx context.Context, token string) (user.User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, svc.baseURL+"/auth/me", nil)
	if err != nil {
		return user.User{}, errors.Wrap(err, "building me request")
	}
	req.Header.Set("Authorization", "Bearer "+token)

	res, err := svc.client.Do(req)
	if err != nil {
		return user.User{}, errors.WithMessage(session.ErrNetworkUnavailable, err.Error())
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusUnauthorized, res.StatusCode == http.StatusForbidden:
		return user.User{}, session.ErrSessionExpired
	default:
		return user.User{}, errors.Errorf("auth service: unexpected status %d", res.StatusCode)
	}

	var usr user.User
	if err := json.NewDecoder(res.Body).Decode(&usr); err != nil {
		return user.User{}, errors.Wrap(err, "decoding user")
	}
	return usr, nil
}
