package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/timesheet/internal/common"
	"github.com/dmitrijs2005/timesheet/internal/server/models"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/audit"
	"github.com/dmitrijs2005/timesheet/internal/server/repositories/repomanager"
)

type failingAuditRepo struct{}

func (failingAuditRepo) Append(context.Context, *models.AuditEvent) error {
	return common.ErrStoreUnavailable
}

func (failingAuditRepo) List(context.Context) ([]models.AuditEvent, error) {
	return nil, common.ErrStoreUnavailable
}

type brokenAudit struct {
	repomanager.RepositoryManager
}

func (brokenAudit) Audit() audit.Repository { return failingAuditRepo{} }

func TestRecord_FailureOnlyWarns(t *testing.T) {
	f := newFixture(t)
	f.audit.repomanager = brokenAudit{f.rm}

	assert.NotPanics(t, func() {
		f.audit.Record(context.Background(), "001", "alice", models.ActionLogin, "x", models.StatusSuccess)
	})
	assert.Equal(t, 1, f.logger.count("warn"))
}

func TestList_NewestFirstAndFiltered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	at := fixedNow
	f.audit.now = func() time.Time { return at }
	f.audit.Record(ctx, "001", "alice", models.ActionLogin, "first", models.StatusSuccess)
	at = at.Add(time.Minute)
	f.audit.Record(ctx, "002", "Bob", models.ActionLogin, "second", models.StatusSuccess)
	at = at.Add(time.Minute)
	f.audit.Record(ctx, "001", "alice", models.ActionLogout, "third", models.StatusInfo)

	all, err := f.audit.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Description)
	assert.Equal(t, "first", all[2].Description)

	bob, err := f.audit.List(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "second", bob[0].Description)
}

func TestList_Error(t *testing.T) {
	f := newFixture(t)
	f.audit.repomanager = brokenAudit{f.rm}

	_, err := f.audit.List(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrStoreUnavailable)
}
