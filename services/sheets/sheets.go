// Package sheets reads cell ranges from Google Sheets.
package sheets

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/cast"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/rudderlabs/rudder-go-kit/logger"

	"github.com/rudderlabs/sheetsync/internal/logfield"
	"github.com/rudderlabs/sheetsync/internal/model"
)

const serviceCacheSize = 16

// Client fetches ranges with read-only scope. Services are cached per
// credential file.
type Client struct {
	logger   logger.Logger
	opts     []option.ClientOption
	services *lru.Cache[string, *sheetsapi.Service]
}

// New returns a client. Extra options are appended to every service, which
// allows pointing the client at a different endpoint.
func New(log logger.Logger, opts ...option.ClientOption) (*Client, error) {
	services, err := lru.New[string, *sheetsapi.Service](serviceCacheSize)
	if err != nil {
		return nil, fmt.Errorf("creating service cache: %w", err)
	}
	return &Client{
		logger:   log.Child("sheets"),
		opts:     opts,
		services: services,
	}, nil
}

// FetchRange returns the rows of the range as strings. Missing trailing cells
// are not padded.
func (c *Client) FetchRange(ctx context.Context, credentialPath, spreadsheetID, rng string) ([][]string, error) {
	svc, err := c.service(ctx, credentialPath)
	if err != nil {
		return nil, &model.RemoteError{Op: "connecting to sheets", Err: err}
	}

	c.logger.Debugn("Fetching range",
		logger.NewStringField(logfield.SheetID, spreadsheetID),
		logger.NewStringField(logfield.Range, rng),
	)

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &model.RemoteError{Op: "fetching range " + rng, Err: ctxErr}
		}
		statusCode, message := HandleServiceError(err)
		return nil, &model.RemoteError{
			Op:  "fetching range " + rng,
			Err: fmt.Errorf("status %d: %s", statusCode, message),
		}
	}

	rows := make([][]string, 0, len(resp.Values))
	for _, row := range resp.Values {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = cast.ToString(v)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func (c *Client) service(ctx context.Context, credentialPath string) (*sheetsapi.Service, error) {
	if svc, ok := c.services.Get(credentialPath); ok {
		return svc, nil
	}

	opts := []option.ClientOption{option.WithScopes(sheetsapi.SpreadsheetsReadonlyScope)}
	if credentialPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialPath))
	}
	opts = append(opts, c.opts...)

	svc, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	c.services.Add(credentialPath, svc)
	return svc, nil
}

// HandleServiceError extracts the status code and message of a googleapi error.
// Other errors are reported as bad requests.
func HandleServiceError(err error) (statusCode int, message string) {
	statusCode = 400
	message = err.Error()

	var serviceErr *googleapi.Error
	if errors.As(err, &serviceErr) {
		statusCode = serviceErr.Code
		if serviceErr.Message != "" {
			message = serviceErr.Message
		}
	}
	return statusCode, message
}
