package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/sitecraft-inc/sitecraft-engine/pkg/config"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/models"
	"github.com/sitecraft-inc/sitecraft-engine/pkg/retry"
)

// DeployService provisions hosting for a newly created organization:
// a hosting project, its environment variables, and the first deployment.
// It runs strictly after the data clone's report is final; its failures
// are reported separately and never affect the clone results.
type DeployService interface {
	// Provision creates hosting for the organization. Returns nil result
	// and nil error when provisioning is disabled.
	Provision(ctx context.Context, org *models.Organization) (*models.DeploymentResult, error)
}

// NewDeployService creates a DeployService from configuration. Without a
// configured control-plane URL it returns a disabled implementation.
func NewDeployService(cfg *config.DeployConfig, logger *zap.Logger) DeployService {
	if cfg.APIURL == "" {
		return &disabledDeployService{}
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &deployService{
		apiURL: cfg.APIURL,
		token:  cfg.Token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger.Named("deploy"),
	}
}

type disabledDeployService struct{}

func (s *disabledDeployService) Provision(ctx context.Context, org *models.Organization) (*models.DeploymentResult, error) {
	return nil, nil
}

// deployService talks to the hosting control plane over HTTP.
type deployService struct {
	apiURL     string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

var _ DeployService = (*deployService)(nil)

// provisionRequest is the control-plane payload.
type provisionRequest struct {
	OrganizationID string            `json:"organization_id"`
	Name           string            `json:"name"`
	Env            map[string]string `json:"env"`
}

func (s *deployService) Provision(ctx context.Context, org *models.Organization) (*models.DeploymentResult, error) {
	endpoint, err := buildURL(s.apiURL, "api", "v1", "hosting", "projects")
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	payload := provisionRequest{
		OrganizationID: org.ID.String(),
		Name:           org.Name,
		Env: map[string]string{
			"SITE_ORG_ID": org.ID.String(),
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	s.logger.Info("Provisioning hosting for organization",
		zap.String("url", endpoint),
		zap.String("org_id", org.ID.String()))

	var result *models.DeploymentResult
	err = retry.Do(ctx, retry.DefaultConfig(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+s.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		result, err = s.doProvisionRequest(req)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// doProvisionRequest executes an HTTP request and parses the deployment
// response.
func (s *deployService) doProvisionRequest(req *http.Request) (*models.DeploymentResult, error) {
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call control plane: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		s.logger.Error("Control plane returned error",
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)))
		return nil, fmt.Errorf("control plane returned status %d: %s", resp.StatusCode, string(body))
	}

	// Response format: { "deployment": { ... } }
	var response struct {
		Deployment models.DeploymentResult `json:"deployment"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	return &response.Deployment, nil
}

// buildURL joins a base URL with path segments.
func buildURL(base string, segments ...string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	u.Path = path.Join(append([]string{u.Path}, segments...)...)
	return u.String(), nil
}
