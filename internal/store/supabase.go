package store

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/supabase-community/postgrest-go"

	"github.com/isometry/payment-webhook/internal/models"
)

const supabaseRESTPath = "/rest/v1"

// Supabase writes records through the PostgREST API of a Supabase project.
// The PostgREST client takes no context, so cancellation is not propagated.
type Supabase struct {
	client *postgrest.Client
	table  string
}

// NewSupabase returns a store for the project at projectURL, authenticated with apiKey.
func NewSupabase(projectURL, apiKey, table string) (*Supabase, error) {
	client := postgrest.NewClient(strings.TrimSuffix(projectURL, "/")+supabaseRESTPath, "public", map[string]string{
		"apikey":        apiKey,
		"Authorization": "Bearer " + apiKey,
	})
	if client.ClientError != nil {
		return nil, errors.Wrap(client.ClientError, "failed to create supabase client")
	}
	return &Supabase{client: client, table: table}, nil
}

func (s *Supabase) Upsert(ctx context.Context, record models.TransactionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, _, err := s.client.From(s.table).Upsert(record, "tx_ref", "minimal", "").Execute(); err != nil {
		return errors.Wrapf(err, "failed to upsert transaction %s", record.TxRef)
	}
	return nil
}
