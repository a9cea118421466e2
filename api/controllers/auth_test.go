package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authsvc "github.com/storefrontlabs/storefront-backend/internal/auth"
	"github.com/storefrontlabs/storefront-backend/internal/users"
	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type stubAuthService struct {
	registerResp *authsvc.RegisterResponse
	loginResp    *authsvc.LoginResponse
	err          error
}

func (s stubAuthService) Register(_ context.Context, _ authsvc.RegisterRequest) (*authsvc.RegisterResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.registerResp, nil
}

func (s stubAuthService) Login(_ context.Context, _ authsvc.LoginRequest) (*authsvc.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loginResp, nil
}

func TestRegisterSuccess(t *testing.T) {
	handler := Register(stubAuthService{registerResp: &authsvc.RegisterResponse{
		User: users.UserDTO{Name: "Ada", Email: "ada@example.com"},
	}}, nil)

	body := bytes.NewBufferString(`{"name":"Ada","email":"ada@example.com","password":"secret-pass-1","re_password":"secret-pass-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}

	var envelope struct {
		Data authsvc.RegisterResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.User.Email != "ada@example.com" {
		t.Fatalf("unexpected email %s", envelope.Data.User.Email)
	}
}

func TestRegisterRejectsMalformedBody(t *testing.T) {
	handler := Register(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(`{"email":}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestRegisterRejectsMissingFields(t *testing.T) {
	handler := Register(stubAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewBufferString(`{"email":"x@example.com"}`))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	handler := Login(stubAuthService{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}, nil)

	body := bytes.NewBufferString(`{"email":"ada@example.com","password":"wrong"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
}

func TestLoginSuccess(t *testing.T) {
	handler := Login(stubAuthService{loginResp: &authsvc.LoginResponse{AccessToken: "token-123"}}, nil)

	body := bytes.NewBufferString(`{"email":"ada@example.com","password":"secret-pass-1"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", body)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data authsvc.LoginResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.AccessToken != "token-123" {
		t.Fatalf("unexpected token %s", envelope.Data.AccessToken)
	}
}
