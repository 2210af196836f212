package store

import (
	"context"
	"fmt"
	"time"

	"eventdesk/internal/utils"
	"eventdesk/internal/wizard"
	"eventdesk/pkg/types"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"
)

const draftTableName = "eventdesk.wizard_drafts"

var (
	draftColumns        = utils.Columns(types.DraftRecord{})
	draftSummaryColumns = utils.Columns(types.DraftSummary{})
	// created_at keeps the first save
	draftUpsertSet = utils.ExcludedAssignments(utils.Columns(types.DraftRecord{}, "user_id", "created_at"))
)

// DraftRepository persists wizard snapshots so a half-finished event survives
// restarts and can be resumed from another browser.
type DraftRepository struct {
	pool *pgxpool.Pool
}

func NewDraftRepository(pool *pgxpool.Pool) *DraftRepository {
	return &DraftRepository{pool: pool}
}

func (r *DraftRepository) SaveDraft(ctx context.Context, userID int64, snap *wizard.Snapshot) error {
	data, err := wizard.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	savedAt := snap.SavedAt
	if savedAt.IsZero() {
		savedAt = time.Now()
	}

	record := &types.DraftRecord{
		UserID:    userID,
		Variant:   string(snap.Variant),
		Step:      int(snap.State.Step),
		Snapshot:  data,
		SavedAt:   savedAt,
		CreatedAt: savedAt,
	}

	query, args, err := upsertDraftQuery(record)
	if err != nil {
		return fmt.Errorf("failed to generate upsert draft query: %w", err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.WrapErr(err, "failed to save draft")
}

func upsertDraftQuery(record *types.DraftRecord) (string, []any, error) {
	return psql().
		Insert(draftTableName).
		SetMap(utils.ColumnMap(record)).
		Suffix("ON CONFLICT (user_id) DO UPDATE SET " + draftUpsertSet).
		ToSql()
}

func (r *DraftRepository) Draft(ctx context.Context, userID int64) (*types.DraftRecord, error) {
	query, args, err := psql().Select(draftColumns...).From(draftTableName).
		Where(sq.Eq{"user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate draft query: %w", err)
	}

	var record = new(types.DraftRecord)
	err = pgxscan.Get(ctx, r.pool, record, query, args...)
	if err != nil && !pgxscan.NotFound(err) {
		return nil, err
	}

	if err != nil {
		return nil, types.ErrDraftNotFound
	}

	return record, nil
}

func (r *DraftRepository) LoadDraft(ctx context.Context, userID int64) (*wizard.Snapshot, error) {
	record, err := r.Draft(ctx, userID)
	if err != nil {
		return nil, err
	}
	return wizard.DecodeSnapshot(record.Snapshot)
}

func (r *DraftRepository) ClearDraft(ctx context.Context, userID int64) error {
	query, args, err := psql().Delete(draftTableName).Where(sq.Eq{"user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("failed to generate delete draft query for user %d: %w", userID, err)
	}

	_, err = r.pool.Exec(ctx, query, args...)
	return utils.WrapErr(err, "failed to clear draft")
}

// Drafts lists stored drafts, most recently saved first.
func (r *DraftRepository) Drafts(ctx context.Context) ([]*types.DraftSummary, error) {
	query, args, err := psql().Select(draftSummaryColumns...).From(draftTableName).
		OrderBy("saved_at desc").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to generate drafts query: %w", err)
	}

	var drafts []*types.DraftSummary
	err = pgxscan.Select(ctx, r.pool, &drafts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch drafts: %w", err)
	}

	return drafts, nil
}

// PurgeBefore deletes drafts last saved before cutoff.
func (r *DraftRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query, args, err := psql().Delete(draftTableName).Where(sq.Lt{"saved_at": cutoff}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to generate purge drafts query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to purge drafts: %w", err)
	}

	return tag.RowsAffected(), nil
}
