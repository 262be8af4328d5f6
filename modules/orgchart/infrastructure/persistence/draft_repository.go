package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/iota-uz/orgchart/modules/orgchart/domain/changeset"
	"github.com/iota-uz/orgchart/modules/orgchart/domain/draft"
	"github.com/iota-uz/orgchart/modules/orgchart/infrastructure/persistence/models"
	"github.com/iota-uz/orgchart/pkg/composables"
	"github.com/iota-uz/orgchart/pkg/repo"
)

type DraftRepository struct{}

func NewDraftRepository() draft.Repository {
	return &DraftRepository{}
}

const draftColumns = "id, tenant_id, name, description, creator_id, status, created_at, updated_at, published_at"

func (r *DraftRepository) Create(ctx context.Context, d *draft.Draft) (*draft.Draft, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Draft
	err = tx.QueryRow(ctx, `
		INSERT INTO org_drafts (tenant_id, name, description, creator_id, status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+draftColumns,
		tenantID,
		d.Name,
		d.Description,
		d.CreatorID,
		string(draft.StatusDraft),
	).Scan(
		&row.ID,
		&row.TenantID,
		&row.Name,
		&row.Description,
		&row.CreatorID,
		&row.Status,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.PublishedAt,
	)
	if err != nil {
		return nil, err
	}
	return toDomainDraft(&row, nil), nil
}

func (r *DraftRepository) GetByID(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var row models.Draft
	err = tx.QueryRow(ctx, `
		SELECT `+draftColumns+`
		FROM org_drafts
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id).Scan(
		&row.ID,
		&row.TenantID,
		&row.Name,
		&row.Description,
		&row.CreatorID,
		&row.Status,
		&row.CreatedAt,
		&row.UpdatedAt,
		&row.PublishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}

	changes, err := r.changesForDraft(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDomainDraft(&row, changes), nil
}

func (r *DraftRepository) List(ctx context.Context, params draft.FindParams) ([]*draft.Summary, int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, 0, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, 0, err
	}

	where := []string{"d.tenant_id = $1"}
	args := []interface{}{tenantID}
	if len(params.Statuses) > 0 {
		statuses := make([]string, 0, len(params.Statuses))
		for _, s := range params.Statuses {
			statuses = append(statuses, string(s))
		}
		where = append(where, fmt.Sprintf("d.status = ANY($%d)", len(args)+1))
		args = append(args, statuses)
	}

	direction := "DESC"
	if params.SortAsc {
		direction = "ASC"
	}
	query := `
		SELECT ` + prefixedDraftColumns("d") + `, COUNT(c.user_id) AS change_count
		FROM org_drafts d
		LEFT JOIN org_draft_changes c ON c.draft_id = d.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY d.id
		ORDER BY d.updated_at ` + direction + `, d.id ` + direction + `
	` + repo.FormatLimitOffset(params.Limit, params.Offset)

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var summaries []*draft.Summary
	for rows.Next() {
		var row models.Draft
		var changeCount int64
		if err := rows.Scan(
			&row.ID,
			&row.TenantID,
			&row.Name,
			&row.Description,
			&row.CreatorID,
			&row.Status,
			&row.CreatedAt,
			&row.UpdatedAt,
			&row.PublishedAt,
			&changeCount,
		); err != nil {
			return nil, 0, err
		}
		summaries = append(summaries, &draft.Summary{
			Draft:       *toDomainDraft(&row, nil),
			ChangeCount: int(changeCount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	var total int64
	if err := tx.QueryRow(ctx,
		`SELECT COUNT(*) FROM org_drafts d WHERE `+strings.Join(where, " AND "),
		args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}
	return summaries, total, nil
}

func (r *DraftRepository) Rename(ctx context.Context, id uuid.UUID, name string, description *string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE org_drafts
		SET name = $3, description = $4, updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'draft'
	`, tenantID, id, name, description)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	return nil
}

func (r *DraftRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		DELETE FROM org_drafts
		WHERE tenant_id = $1 AND id = $2
	`, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", draft.ErrNotFound, id)
	}
	return nil
}

func (r *DraftRepository) SaveChange(ctx context.Context, draftID uuid.UUID, change *changeset.Change) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO org_draft_changes (
			draft_id, user_id,
			new_supervisor_id, new_department, new_role, new_squad_ids,
			original_supervisor_id, original_department, original_role, original_squad_ids,
			position
		)
		VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			COALESCE((SELECT MAX(position) + 1 FROM org_draft_changes WHERE draft_id = $1), 0)
		)
		ON CONFLICT (draft_id, user_id) DO UPDATE SET
			new_supervisor_id = EXCLUDED.new_supervisor_id,
			new_department = EXCLUDED.new_department,
			new_role = EXCLUDED.new_role,
			new_squad_ids = EXCLUDED.new_squad_ids,
			original_supervisor_id = EXCLUDED.original_supervisor_id,
			original_department = EXCLUDED.original_department,
			original_role = EXCLUDED.original_role,
			original_squad_ids = EXCLUDED.original_squad_ids,
			updated_at = now()
	`,
		draftID,
		change.UserID,
		change.NewSupervisorID,
		change.NewDepartment,
		toDBRole(change.NewRole),
		change.NewSquadIDs,
		change.OriginalSupervisorID,
		change.OriginalDepartment,
		toDBRole(change.OriginalRole),
		change.OriginalSquadIDs,
	)
	if err != nil {
		return err
	}
	return r.touch(ctx, draftID)
}

func (r *DraftRepository) DeleteChange(ctx context.Context, draftID, userID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		DELETE FROM org_draft_changes
		WHERE draft_id = $1 AND user_id = $2
	`, draftID, userID)
	if err != nil {
		return err
	}
	return r.touch(ctx, draftID)
}

// Publish applies every pending change to org_users/org_user_squads and
// flips the draft to published, all inside one transaction. Any failure
// rolls everything back, leaving the draft and the organization untouched.
func (r *DraftRepository) Publish(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	err = composables.InTx(ctx, func(txCtx context.Context) error {
		tx, err := composables.UseTx(txCtx)
		if err != nil {
			return err
		}

		// Lock the draft row so concurrent publishes serialize.
		var status string
		err = tx.QueryRow(ctx, `
			SELECT status FROM org_drafts
			WHERE tenant_id = $1 AND id = $2
			FOR UPDATE
		`, tenantID, id).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("%w: %s", draft.ErrNotFound, id)
		}
		if err != nil {
			return err
		}
		if draft.Status(status) != draft.StatusDraft {
			return draft.ErrInvalidState
		}

		changes, err := r.changesForDraft(txCtx, id)
		if err != nil {
			return err
		}
		for _, change := range changes {
			if err := applyChangeToOrg(ctx, tx, tenantID, change); err != nil {
				return err
			}
		}

		_, err = tx.Exec(ctx, `
			UPDATE org_drafts
			SET status = 'published', published_at = now(), updated_at = now()
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return r.GetByID(ctx, id)
}

func (r *DraftRepository) Archive(ctx context.Context, id uuid.UUID) (*draft.Draft, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE org_drafts
		SET status = 'archived', updated_at = now()
		WHERE tenant_id = $1 AND id = $2 AND status = 'draft'
	`, tenantID, id)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, draft.ErrInvalidState
	}
	return r.GetByID(ctx, id)
}

func (r *DraftRepository) changesForDraft(ctx context.Context, draftID uuid.UUID) ([]*changeset.Change, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := tx.Query(ctx, `
		SELECT draft_id, user_id,
			new_supervisor_id, new_department, new_role, new_squad_ids,
			original_supervisor_id, original_department, original_role, original_squad_ids,
			position, created_at, updated_at
		FROM org_draft_changes
		WHERE draft_id = $1
		ORDER BY position
	`, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var changes []*changeset.Change
	for rows.Next() {
		var row models.DraftChange
		if err := rows.Scan(
			&row.DraftID,
			&row.UserID,
			&row.NewSupervisorID,
			&row.NewDepartment,
			&row.NewRole,
			&row.NewSquadIDs,
			&row.OriginalSupervisorID,
			&row.OriginalDepartment,
			&row.OriginalRole,
			&row.OriginalSquadIDs,
			&row.Position,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		changes = append(changes, toDomainChange(&row))
	}
	return changes, rows.Err()
}

func (r *DraftRepository) touch(ctx context.Context, draftID uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
		UPDATE org_drafts SET updated_at = now() WHERE id = $1
	`, draftID)
	return err
}

func applyChangeToOrg(ctx context.Context, tx repo.Tx, tenantID uuid.UUID, change *changeset.Change) error {
	if change.NewSupervisorID != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE org_users SET supervisor_id = $3, updated_at = now()
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, change.UserID, *change.NewSupervisorID); err != nil {
			return err
		}
	}
	if change.NewDepartment != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE org_users SET department = $3, updated_at = now()
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, change.UserID, *change.NewDepartment); err != nil {
			return err
		}
	}
	if change.NewRole != nil {
		if _, err := tx.Exec(ctx, `
			UPDATE org_users SET role = $3, updated_at = now()
			WHERE tenant_id = $1 AND id = $2
		`, tenantID, change.UserID, string(*change.NewRole)); err != nil {
			return err
		}
	}
	if change.NewSquadIDs != nil {
		if _, err := tx.Exec(ctx, `
			DELETE FROM org_user_squads WHERE user_id = $1
		`, change.UserID); err != nil {
			return err
		}
		// Squad ids that no longer resolve are skipped, matching the
		// lenient patch behavior.
		if _, err := tx.Exec(ctx, `
			INSERT INTO org_user_squads (user_id, squad_id, position)
			SELECT $1, s.id, idx - 1
			FROM unnest($2::uuid[]) WITH ORDINALITY AS ids(id, idx)
			JOIN org_squads s ON s.id = ids.id AND s.tenant_id = $3
		`, change.UserID, change.NewSquadIDs, tenantID); err != nil {
			return err
		}
	}
	return nil
}

func prefixedDraftColumns(alias string) string {
	cols := strings.Split(draftColumns, ", ")
	for i, col := range cols {
		cols[i] = alias + "." + col
	}
	return strings.Join(cols, ", ")
}
