package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"mockupgen/internal/infra"
	"mockupgen/internal/sqlinline"
)

const (
	ProviderPrintful = "printful"
)

// Printful is the credential pair the vendor client needs. StoreID is only
// required for account-level tokens.
type Printful struct {
	APIKey  string
	StoreID string
}

// Empty reports whether no key is present.
func (p Printful) Empty() bool { return p.APIKey == "" }

// Store keeps vendor API tokens in the integration_tokens table so they can
// be rotated without redeploying.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Printful returns the stored credentials, or the zero value when none are set.
func (s *Store) Printful(ctx context.Context) (Printful, error) {
	var creds Printful
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, ProviderPrintful)
	if err := row.Scan(&creds.APIKey, &creds.StoreID); err != nil {
		if infra.IsNoRows(err) {
			return Printful{}, nil
		}
		return Printful{}, fmt.Errorf("credentials: load %s token: %w", ProviderPrintful, err)
	}
	creds.APIKey = strings.TrimSpace(creds.APIKey)
	creds.StoreID = strings.TrimSpace(creds.StoreID)
	return creds, nil
}

// ResolvePrintful prefers the stored token. A stored token without a store
// scope inherits the fallback's StoreID.
func (s *Store) ResolvePrintful(ctx context.Context, fallback Printful) (Printful, error) {
	fallback.APIKey = strings.TrimSpace(fallback.APIKey)
	fallback.StoreID = strings.TrimSpace(fallback.StoreID)

	stored, err := s.Printful(ctx)
	if err != nil {
		return fallback, err
	}
	if stored.Empty() {
		return fallback, nil
	}
	if stored.StoreID == "" {
		stored.StoreID = fallback.StoreID
	}
	return stored, nil
}

// SetPrintful stores the token along with the store it is scoped to.
func (s *Store) SetPrintful(ctx context.Context, creds Printful) error {
	key := strings.TrimSpace(creds.APIKey)
	if key == "" {
		return errors.New("printful api key is required")
	}
	props := map[string]string{}
	if storeID := strings.TrimSpace(creds.StoreID); storeID != "" {
		props["store_id"] = storeID
	}
	raw, err := json.Marshal(props)
	if err != nil {
		return err
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, ProviderPrintful, key, raw); err != nil {
		return fmt.Errorf("credentials: store %s token: %w", ProviderPrintful, err)
	}
	return nil
}
