package sendinvite

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/client"
)

func TestDispatchSendsPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/functions/send-invite" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("unexpected authorization %q", r.Header.Get("Authorization"))
		}
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["email"] != "ana@example.com" || body["nombre"] != "Ana" || body["empleadoId"] != "emp-1" {
			t.Errorf("unexpected body %v", body)
		}
		_ = json.NewEncoder(w).Encode(InviteResponse{Success: true, Message: "ok", UserID: "auth-1"})
	}))
	defer srv.Close()

	c := NewSendInviteClient(srv.URL+"/functions/", "key", 0)
	res, err := c.Dispatch(context.Background(), client.InviteRequest{Email: "ana@example.com", Name: "Ana", EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if res.AuthUserID != "auth-1" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDispatchErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		code   apperrors.Code
	}{
		{"already registered", http.StatusBadRequest, `{"error":"Este correo ya tiene una cuenta registrada"}`, apperrors.CodeAlreadyRegistered},
		{"missing fields", http.StatusBadRequest, `{"error":"Email, nombre y empleadoId son requeridos"}`, apperrors.CodeValidation},
		{"server error", http.StatusInternalServerError, `{"error":"Error al enviar la invitacion"}`, apperrors.CodeInviteFailed},
		{"unreadable body", http.StatusBadGateway, `<html>`, apperrors.CodeInviteFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewSendInviteClient(srv.URL, "", 0).Dispatch(context.Background(), client.InviteRequest{Email: "a@b.c", Name: "A", EmployeeID: "1"})
			if !apperrors.Is(err, tt.code) {
				t.Fatalf("expected code %s, got %v", tt.code, err)
			}
		})
	}
}

func TestDispatchUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewSendInviteClient(url, "", 0).Dispatch(context.Background(), client.InviteRequest{Email: "a@b.c", Name: "A", EmployeeID: "1"})
	if !apperrors.Is(err, apperrors.CodeInviteFailed) {
		t.Fatalf("expected invite failure, got %v", err)
	}
}
