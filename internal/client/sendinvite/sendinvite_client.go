// Package sendinvite calls a remote send-invite function over HTTP.
package sendinvite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/TWRT/law-office/internal/apperrors"
	"github.com/TWRT/law-office/internal/client"
)

// alreadyRegistered is the message the function answers with when the email
// already has an account.
const alreadyRegistered = "Este correo ya tiene una cuenta registrada"

type SendInviteClient struct {
	baseUrl    string
	token      string
	httpClient *http.Client
}

func NewSendInviteClient(baseUrl, token string, timeout time.Duration) *SendInviteClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &SendInviteClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *SendInviteClient) Dispatch(ctx context.Context, invite client.InviteRequest) (client.InviteResult, error) {
	body, err := json.Marshal(invite)
	if err != nil {
		return client.InviteResult{}, fmt.Errorf("encode invite: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseUrl+"/send-invite", bytes.NewReader(body))
	if err != nil {
		return client.InviteResult{}, fmt.Errorf("build request (send-invite): %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, "Error al enviar la invitacion", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, "Error al enviar la invitacion", err)
	}

	if resp.StatusCode != http.StatusOK {
		var inviteErr ErrorResponse
		if err := json.Unmarshal(responseBody, &inviteErr); err != nil || inviteErr.Error == "" {
			return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, "Error al enviar la invitacion",
				fmt.Errorf("send-invite status %d", resp.StatusCode))
		}
		if resp.StatusCode == http.StatusBadRequest && strings.Contains(inviteErr.Error, alreadyRegistered) {
			return client.InviteResult{}, apperrors.New(apperrors.CodeAlreadyRegistered, inviteErr.Error)
		}
		if resp.StatusCode == http.StatusBadRequest {
			return client.InviteResult{}, apperrors.Validation(inviteErr.Error)
		}
		return client.InviteResult{}, apperrors.New(apperrors.CodeInviteFailed, inviteErr.Error)
	}

	var inviteResp InviteResponse
	if err := json.Unmarshal(responseBody, &inviteResp); err != nil {
		return client.InviteResult{}, apperrors.Wrap(apperrors.CodeInviteFailed, "Error al enviar la invitacion",
			fmt.Errorf("parse send-invite response: %w", err))
	}

	return client.InviteResult{AuthUserID: inviteResp.UserID}, nil
}
