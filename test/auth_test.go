package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/2beens/liftlog/internal/users"

	"github.com/stretchr/testify/require"
)

const testPassword = "test-password-1"

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// authedRequest builds a request with the usual test headers and, when
// token is not empty, the bearer auth header.
func (s *IntegrationTestSuite) authedRequest(
	ctx context.Context,
	method, url, token string,
	body []byte,
) *http.Request {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	require.NoError(s.T(), err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (s *IntegrationTestSuite) registerUser(ctx context.Context, name string) *users.User {
	reqJson, err := json.Marshal(registerRequest{
		Email:    name + "@liftlog.test",
		Username: name,
		Password: testPassword,
	})
	require.NoError(s.T(), err)

	req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/a/register", serverEndpoint), "", reqJson)
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	defer resp.Body.Close()

	var user users.User
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&user))
	require.NotZero(s.T(), user.ID)
	return &user
}

func (s *IntegrationTestSuite) login(ctx context.Context, email, password string) users.LoginResponse {
	reqJson, err := json.Marshal(loginRequest{
		Email:    email,
		Password: password,
	})
	require.NoError(s.T(), err)

	req := s.authedRequest(ctx, "POST", fmt.Sprintf("%s/a/login", serverEndpoint), "", reqJson)
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()

	var loginResp users.LoginResponse
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(&loginResp))
	require.NotEmpty(s.T(), loginResp.AccessToken)
	require.NotEmpty(s.T(), loginResp.RefreshToken)
	return loginResp
}

// registerAndLogin registers a fresh account and logs it in; every test
// works with its own users so tests do not step on each other.
func (s *IntegrationTestSuite) registerAndLogin(ctx context.Context, name string) (*users.User, string) {
	user := s.registerUser(ctx, name)
	loginResp := s.login(ctx, user.Email, testPassword)
	return user, loginResp.AccessToken
}

// doJSON fires the request and decodes the response json into dest when
// the status matches; on mismatch it fails with the response body in the
// message to make broken tests easy to read.
func (s *IntegrationTestSuite) doJSON(req *http.Request, wantStatus int, dest any) {
	resp, err := s.httpClient.Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	require.NoError(s.T(), err)
	require.Equal(s.T(), wantStatus, resp.StatusCode, "response: %s", respBytes)

	if dest != nil {
		require.NoError(s.T(), json.Unmarshal(respBytes, dest), "response: %s", respBytes)
	}
}
