package provisioning

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sitewarden/sitecloner/interfaces"
)

// Extract captures the provisioning template of the session's site. The
// remote endpoint streams progress events while it walks the site and
// terminates with the template itself. An empty artifact is an error.
func (e *Engine) Extract(ctx context.Context, session interfaces.Session, progress interfaces.ProgressReporter) (interfaces.ProvisioningTemplate, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpointURL(session.Site(), "/api/provisioning/template/extract"), strings.NewReader("{}"))
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := session.Do(req)
	if err != nil {
		return nil, fmt.Errorf("template extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, fmt.Errorf("template extraction returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	terminal, err := decodeEventStream(resp.Body, progress)
	if err != nil {
		return nil, fmt.Errorf("template extraction failed: %w", err)
	}
	if terminal.Type != eventTemplate {
		return nil, fmt.Errorf("unexpected terminal event %q from extraction", terminal.Type)
	}

	template := interfaces.ProvisioningTemplate(terminal.Template)
	if template.Empty() {
		return nil, interfaces.ErrEmptyTemplate
	}

	e.log.Info("Template extracted",
		slog.String("site", session.Site().String()),
		slog.Int("template_size", len(template)),
		slog.Duration("duration", time.Since(start)))

	return template, nil
}
