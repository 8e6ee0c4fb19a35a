// Package app assembles the spreadsheet stack shared by the server and the
// worker binaries.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/hugh/member-sync/internal/google"
	"github.com/hugh/member-sync/internal/member"
	"github.com/hugh/member-sync/internal/sheets"
	"github.com/hugh/member-sync/pkg/config"
	"github.com/hugh/member-sync/pkg/crypto"
	"golang.org/x/oauth2"
	"google.golang.org/api/option"
)

const outboundTimeout = 20 * time.Second

// Sheets is the configured spreadsheet reader and writer. Writer is nil when
// writes are disabled.
type Sheets struct {
	Reader member.SheetReader
	Writer member.SheetWriter
}

// BuildSheets picks the read and write strategies from configuration.
func BuildSheets(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Sheets, error) {
	httpClient := &http.Client{Timeout: outboundTimeout}

	var apiClient *sheets.Client
	if cfg.Sheets.NeedsServiceAccount() {
		c, err := newAPIClient(ctx, cfg, httpClient)
		if err != nil {
			return nil, err
		}
		apiClient = c
	}

	out := &Sheets{}

	switch cfg.Sheets.ReadStrategy {
	case config.ReadAPI:
		out.Reader = sheets.NewReader(apiClient)
	default:
		out.Reader = sheets.NewReader(sheets.NewExportSource(cfg.Sheets.CSVExportURL(), httpClient))
	}

	switch cfg.Sheets.WriteStrategy {
	case config.WriteCells:
		out.Writer = sheets.NewCellWriter(apiClient, cfg.Sheets.BatchWrites)
	case config.WriteAutomation:
		if cfg.Sheets.WebhookURL == "" {
			logger.Warn("AUTOMATION_WEBHOOK_URL not set, spreadsheet writes will fail")
		}
		out.Writer = sheets.NewAutomationWriter(cfg.Sheets.WebhookURL, httpClient)
	case config.WriteNone:
		logger.Info("spreadsheet writes disabled")
	}

	logger.Info("spreadsheet stack ready",
		"read", cfg.Sheets.ReadStrategy,
		"write", cfg.Sheets.WriteStrategy,
	)
	return out, nil
}

func newAPIClient(ctx context.Context, cfg *config.Config, httpClient *http.Client) (*sheets.Client, error) {
	var dec google.Decrypter
	if cfg.Encryption.Key != "" {
		enc, err := crypto.NewEncryptor(cfg.Encryption.Key)
		if err != nil {
			return nil, fmt.Errorf("creating encryptor: %w", err)
		}
		dec = enc
	}

	sa, err := google.LoadServiceAccount(cfg.Google, dec)
	if err != nil {
		if errors.Is(err, google.ErrNoServiceAccount) {
			return nil, fmt.Errorf("strategy %s/%s needs a service account: %w",
				cfg.Sheets.ReadStrategy, cfg.Sheets.WriteStrategy, err)
		}
		return nil, err
	}

	minter, err := google.NewMinter(sa, httpClient)
	if err != nil {
		return nil, err
	}

	var provider google.TokenProvider = minter
	if cfg.Google.CacheTokens {
		provider = google.NewCachingProvider(minter)
	}

	// oauth2.Transport asks the provider for a token on every request, so
	// GOOGLE_TOKEN_CACHE alone decides whether tokens are reused.
	authed := &http.Client{
		Timeout: outboundTimeout,
		Transport: &oauth2.Transport{
			Source: google.TokenSource(ctx, provider),
			Base:   httpClient.Transport,
		},
	}
	opts := []option.ClientOption{option.WithHTTPClient(authed)}
	if cfg.Sheets.APIEndpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Sheets.APIEndpoint))
	}

	return sheets.NewClient(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, opts...)
}
