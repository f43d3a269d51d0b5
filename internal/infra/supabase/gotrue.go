package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/boddenberg/finance-dashboard-bfa-go/internal/domain"
	"github.com/boddenberg/finance-dashboard-bfa-go/internal/infra/resilience"

	"go.uber.org/zap"
)

// Authenticate verifies email/password with Supabase Auth (GoTrue
// password grant) and returns the user it identifies.
func (c *Client) Authenticate(ctx context.Context, email, password string) (*domain.Principal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.Authenticate")
	defer span.End()

	payload, err := json.Marshal(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}

	var principal *domain.Principal
	err = c.call(ctx, "auth", func() error {
		url := fmt.Sprintf("%s/auth/v1/token?grant_type=password", c.baseURL)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
		if err != nil {
			return resilience.Permanent(err)
		}
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		switch {
		case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized:
			return resilience.Permanent(&domain.ErrUnauthorized{Message: "invalid email or password"})
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			c.logger.Warn("supabase auth: non-2xx response", zap.Int("status", resp.StatusCode))
			return fmt.Errorf("supabase auth returned status %d", resp.StatusCode)
		}

		var out struct {
			User struct {
				ID    string `json:"id"`
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := json.Unmarshal(body, &out); err != nil {
			return resilience.Permanent(fmt.Errorf("failed to decode auth response: %w", err))
		}
		principal = &domain.Principal{ID: out.User.ID, Email: out.User.Email}
		return nil
	})
	return principal, err
}
