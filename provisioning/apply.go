package provisioning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sitewarden/sitecloner/interfaces"
)

// applyRequest is the payload of the template application endpoint.
type applyRequest struct {
	Template        []byte `json:"template"`
	ClearNavigation bool   `json:"clearNavigation"`
}

// Apply provisions the template onto the session's site. Pre-existing
// navigation on the target is always cleared first so the clone starts from
// the source's navigation, never a merge. The remote endpoint streams
// progress events while handlers run and terminates with a done event.
// There is no rollback: a mid-apply failure leaves the target partially
// provisioned.
func (e *Engine) Apply(ctx context.Context, session interfaces.Session, template interfaces.ProvisioningTemplate, progress interfaces.ProgressReporter) error {
	start := time.Now()

	payload, err := json.Marshal(applyRequest{
		Template:        template,
		ClearNavigation: true,
	})
	if err != nil {
		return fmt.Errorf("failed to encode application request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(session.Site(), "/api/provisioning/template/apply"), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create application request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := session.Do(req)
	if err != nil {
		return fmt.Errorf("template application request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("template application returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	terminal, err := decodeEventStream(resp.Body, progress)
	if err != nil {
		return fmt.Errorf("template application failed: %w", err)
	}
	if terminal.Type != eventDone {
		return fmt.Errorf("unexpected terminal event %q from application", terminal.Type)
	}

	e.log.Info("Template applied",
		slog.String("site", session.Site().String()),
		slog.Int("template_size", len(template)),
		slog.Duration("duration", time.Since(start)))

	return nil
}
