package cloner

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/stretchr/testify/mock"

	"github.com/sitewarden/sitecloner/api"
	"github.com/sitewarden/sitecloner/interfaces"
)

// CloneClient implements CloneProvider against a remote site cloning service.
type CloneClient struct {
	// ServerAddr is the base URL of the cloning service.
	ServerAddr string

	// FunctionKey authenticates requests when the service requires keys.
	FunctionKey string

	// Client is the HTTP client used for requests. Defaults to
	// http.DefaultClient, which has no timeout: clone calls block until
	// the remote pipeline finishes.
	Client *http.Client
}

// Clone asks the service to copy the source site's provisioning template
// onto the target site. The call blocks for the whole pipeline.
func (c *CloneClient) Clone(sourceURL, targetURL interfaces.SiteURL) error {
	body, err := json.Marshal(api.CloneRequest{SourceURL: sourceURL, TargetURL: targetURL})
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, c.ServerAddr+"/api/clone", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.FunctionKey != "" {
		req.Header.Set(api.FunctionKeyHeader, c.FunctionKey)
	}

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("could not request clone endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("clone endpoint returned non-200 response: %d", resp.StatusCode)
		}
		return fmt.Errorf("clone endpoint returned error %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	return nil
}

// MockCloneProvider implements CloneProvider for testing.
type MockCloneProvider struct {
	mock.Mock
}

// Clone implements the CloneProvider interface for testing.
// The behavior is determined by how the mock is configured in tests.
func (m *MockCloneProvider) Clone(sourceURL, targetURL interfaces.SiteURL) error {
	args := m.Called(sourceURL, targetURL)
	return args.Error(0)
}
