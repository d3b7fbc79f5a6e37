package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BradenHooton/portfolio/internal/models"
)

// GoTrueClient performs password sign-in against the hosted auth API.
type GoTrueClient struct {
	baseURL string
	anonKey string
	client  *http.Client
}

func NewGoTrueClient(baseURL, anonKey string, client *http.Client) *GoTrueClient {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &GoTrueClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		client:  client,
	}
}

type goTrueTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	User         struct {
		Email string `json:"email"`
	} `json:"user"`
}

type goTrueError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Msg              string `json:"msg"`
}

func (e goTrueError) message() string {
	for _, m := range []string{e.ErrorDescription, e.Msg, e.Error} {
		if m != "" {
			return m
		}
	}
	return ""
}

// SignIn exchanges email and password for a session. Rejected credentials
// wrap models.ErrInvalidCredentials with the provider's message.
func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	if c.baseURL == "" || c.anonKey == "" {
		return nil, errors.New("auth provider not configured")
	}

	body, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, fmt.Errorf("encode sign-in request: %w", err)
	}

	endpoint := c.baseURL + "/auth/v1/token?" + url.Values{"grant_type": {"password"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: sign-in request: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var token goTrueTokenResponse
		if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
			return nil, fmt.Errorf("%w: decode session: %v", models.ErrUpstream, err)
		}
		return &models.Session{
			AccessToken:  token.AccessToken,
			RefreshToken: token.RefreshToken,
			TokenType:    token.TokenType,
			ExpiresIn:    token.ExpiresIn,
			Email:        strings.ToLower(token.User.Email),
		}, nil

	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
		var apiErr goTrueError
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		msg := apiErr.message()
		if msg == "" {
			msg = "Invalid login credentials"
		}
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidCredentials, msg)

	default:
		return nil, fmt.Errorf("%w: auth provider returned status %d", models.ErrUpstream, resp.StatusCode)
	}
}
