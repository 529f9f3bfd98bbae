package transfer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/imroc/req/v3"
	"github.com/ve-data-science/vedatool/internal/version"
)

const (
	authTokenPath = "/auth/token"
	endpointsPath = "/endpoints/%s/ls"
	transfersPath = "/transfers"
	taskPath      = "/transfers/%s"

	taskPollInterval = 2 * time.Second
)

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

type authRequest struct {
	ClientID string `json:"client_id"`
}

type authResponse struct {
	AccessToken string `json:"access_token"`
}

type listResponse struct {
	Path    string       `json:"path"`
	Entries []*ListEntry `json:"entries"`
}

type submitResponse struct {
	TaskID string `json:"task_id"`
}

type taskResponse struct {
	Status           string `json:"status"` // ACTIVE, SUCCEEDED, FAILED
	NiceStatus       string `json:"nice_status"`
	Files            int    `json:"files"`
	FilesTransferred int    `json:"files_transferred"`
}

// HTTPClient talks to the transfer service's REST API. It implements Client,
// translating HTTP failures into the transient/fatal error classes the rest
// of the tool acts on.
type HTTPClient struct {
	client   *req.Client
	clientID string
}

var _ Client = (*HTTPClient)(nil)

func NewHTTPClient(serverURL, clientID string) *HTTPClient {
	client := req.C().
		SetBaseURL(serverURL).
		SetCommonRetryCount(3).
		SetCommonRetryFixedInterval(1 * time.Second).
		SetUserAgent("vedatool/" + version.Version).
		SetCommonErrorResult(&apiError{}).
		SetTimeout(30 * time.Second)

	return &HTTPClient{
		client:   client,
		clientID: clientID,
	}
}

// Authenticate exchanges the configured client id for a bearer token applied
// to all subsequent requests.
func (c *HTTPClient) Authenticate(ctx context.Context) error {
	var auth authResponse

	res, err := c.client.R().
		SetContext(ctx).
		SetBody(&authRequest{ClientID: c.clientID}).
		SetSuccessResult(&auth).
		Post(authTokenPath)

	if err := classify(res, err, "authenticate"); err != nil {
		return err
	}

	c.client.SetCommonBearerAuthToken(auth.AccessToken)
	return nil
}

func (c *HTTPClient) List(ctx context.Context, endpoint, path string) ([]*ListEntry, error) {
	var listing listResponse

	res, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("path", path).
		SetSuccessResult(&listing).
		Get(fmt.Sprintf(endpointsPath, endpoint))

	if err := classify(res, err, "list "+endpoint); err != nil {
		return nil, err
	}

	return listing.Entries, nil
}

// Copy submits a transfer task and polls it to completion, mirroring the
// service's task document lifecycle.
func (c *HTTPClient) Copy(ctx context.Context, copyReq *CopyRequest) error {
	var submit submitResponse

	res, err := c.client.R().
		SetContext(ctx).
		SetBody(copyReq).
		SetSuccessResult(&submit).
		Post(transfersPath)

	if err := classify(res, err, "submit transfer"); err != nil {
		return err
	}

	return c.waitForTask(ctx, submit.TaskID)
}

func (c *HTTPClient) waitForTask(ctx context.Context, taskID string) error {
	start := time.Now()

	for {
		var task taskResponse
		res, err := c.client.R().
			SetContext(ctx).
			SetSuccessResult(&task).
			Get(fmt.Sprintf(taskPath, taskID))

		if err := classify(res, err, "poll transfer"); err != nil {
			return err
		}

		switch task.Status {
		case "SUCCEEDED":
			slog.Debug("transfer complete", "task", taskID, "took", time.Since(start))
			return nil
		case "FAILED":
			return fmt.Errorf("%w: task %s failed: %s", ErrRemoteUnavailable, taskID, task.NiceStatus)
		}

		slog.Debug("transfer active", "task", taskID,
			"transferred", task.FilesTransferred, "files", task.Files, "status", task.NiceStatus)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(taskPollInterval):
		}
	}
}

// classify maps request outcomes onto the transient/fatal error taxonomy:
// network failures and 5xx responses are transient, 401/403 are fatal auth
// errors, anything else surfaces the service's own error body.
func classify(res *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("%w: %s: %v", ErrRemoteUnavailable, operation, requestErr)
	}

	if res.IsErrorState() {
		code := res.GetStatusCode()
		switch {
		case code == 401 || code == 403:
			return fmt.Errorf("%w: %s (http %d)", ErrRemoteAuth, operation, code)
		case code >= 500:
			return fmt.Errorf("%w: %s (http %d)", ErrRemoteUnavailable, operation, code)
		}
		if apiErr, ok := res.ErrorResult().(*apiError); ok && apiErr.Code != "" {
			return fmt.Errorf("%s: %w", operation, apiErr)
		}
		return fmt.Errorf("%s: http %d", operation, code)
	}

	return nil
}
