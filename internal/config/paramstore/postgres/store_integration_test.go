//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	paramstore "idproof/internal/config/paramstore/postgres"
	"idproof/pkg/platform/sentinel"
	"idproof/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *paramstore.Store
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = paramstore.New(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background(), "parameters"))
}

func (s *PostgresStoreSuite) TestPutAndLoad() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "aamva_public_key", "pub"))

	v, err := s.store.Load(ctx, "aamva_public_key")
	s.Require().NoError(err)
	s.Equal("pub", v)
}

func (s *PostgresStoreSuite) TestPutOverwrites() {
	ctx := context.Background()
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	store := paramstore.New(s.postgres.DB, paramstore.WithClock(func() time.Time { return fixed }))

	s.Require().NoError(store.Put(ctx, "acuant_timeout", "10"))
	s.Require().NoError(store.Put(ctx, "acuant_timeout", "30"))

	v, err := store.Load(ctx, "acuant_timeout")
	s.Require().NoError(err)
	s.Equal("30", v)

	var updated time.Time
	err = s.postgres.DB.QueryRowContext(ctx, `SELECT updated_at FROM parameters WHERE name = $1`, "acuant_timeout").Scan(&updated)
	s.Require().NoError(err)
	s.True(fixed.Equal(updated))
}

func (s *PostgresStoreSuite) TestMissingParameter() {
	_, err := s.store.Load(context.Background(), "nope")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestEnsureSchemaIsIdempotent() {
	s.NoError(s.store.EnsureSchema(context.Background()))
}
