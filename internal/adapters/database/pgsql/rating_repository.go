package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/fintaxcl/tax_events_app/internal/apperrors"
	"github.com/fintaxcl/tax_events_app/internal/core/domain"
	portsrepo "github.com/fintaxcl/tax_events_app/internal/core/ports/repositories"
	"github.com/fintaxcl/tax_events_app/internal/models"
	"github.com/fintaxcl/tax_events_app/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxRatingRepository struct {
	BaseRepository
}

// newPgxRatingRepository creates a new repository for tax rating data.
func newPgxRatingRepository(pool *pgxpool.Pool) portsrepo.RatingRepository {
	return &PgxRatingRepository{
		BaseRepository: BaseRepository{Pool: pool},
	}
}

// Ensure implementation matches interface
var _ portsrepo.RatingRepository = (*PgxRatingRepository)(nil)

const ratingColumns = `calificacion_id, evento_id, monto_total_distribuido, monto_unitario_pesos, estado, created_at, created_by, last_updated_at, last_updated_by`

// CreateRatingWithEvent inserts a manually entered event, its rating, its
// factor details and the corresponding audit records in one transaction.
func (r *PgxRatingRepository) CreateRatingWithEvent(ctx context.Context, event domain.CorporateEvent, rating domain.TaxRating, details []domain.FactorDetail, audits []domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := insertEventTx(ctx, tx, event); err != nil {
		return err
	}
	if err := insertRatingTx(ctx, tx, rating); err != nil {
		return err
	}
	for _, d := range details {
		if err := insertDetailTx(ctx, tx, d); err != nil {
			return err
		}
	}
	for _, a := range audits {
		if err := insertAuditRecordTx(ctx, tx, a); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

func insertRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	m := mapping.ToModelRating(rating)
	query := `
		INSERT INTO calificaciones_tributarias (` + ratingColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	_, err := tx.Exec(ctx, query,
		m.RatingID,
		m.EventID,
		m.TotalDistributed,
		m.UnitAmount,
		m.Status,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert rating %s: %w", m.RatingID, err)
	}
	return nil
}

func updateRatingTx(ctx context.Context, tx pgx.Tx, rating domain.TaxRating) error {
	m := mapping.ToModelRating(rating)
	query := `
		UPDATE calificaciones_tributarias
		SET monto_total_distribuido = $2,
			monto_unitario_pesos = $3,
			estado = $4,
			last_updated_at = $5,
			last_updated_by = $6
		WHERE calificacion_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		m.RatingID,
		m.TotalDistributed,
		m.UnitAmount,
		m.Status,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update rating %s: %w", m.RatingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func insertDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	m := mapping.ToModelDetail(detail)
	query := `
		INSERT INTO detalles_factor (detalle_id, calificacion_id, concepto_id, valor, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err := tx.Exec(ctx, query,
		m.DetailID,
		m.RatingID,
		m.ConceptID,
		m.Value,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.ErrDuplicate
		}
		return fmt.Errorf("failed to insert factor detail %s: %w", m.DetailID, err)
	}
	return nil
}

func updateDetailTx(ctx context.Context, tx pgx.Tx, detail domain.FactorDetail) error {
	m := mapping.ToModelDetail(detail)
	query := `
		UPDATE detalles_factor
		SET valor = $2, last_updated_at = $3, last_updated_by = $4
		WHERE detalle_id = $1;
	`
	tag, err := tx.Exec(ctx, query, m.DetailID, m.Value, m.LastUpdatedAt, m.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to update factor detail %s: %w", m.DetailID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// FindRatingByID retrieves one rating with its event, issuer and details.
func (r *PgxRatingRepository) FindRatingByID(ctx context.Context, ratingID string) (*domain.RatingView, error) {
	views, err := r.queryViews(ctx, `c.calificacion_id = $1`, []any{ratingID})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, apperrors.ErrNotFound
	}
	return &views[0], nil
}

// ListRatings retrieves ratings matching the filter, newest payment date
// first, each with its event, issuer and details.
func (r *PgxRatingRepository) ListRatings(ctx context.Context, filter portsrepo.RatingFilter) ([]domain.RatingView, error) {
	where := `TRUE`
	args := []any{}
	if filter.Ticker != "" {
		args = append(args, "%"+filter.Ticker+"%")
		where += fmt.Sprintf(` AND i.nemonico ILIKE $%d`, len(args))
	}
	if filter.FiscalYear != 0 {
		args = append(args, filter.FiscalYear)
		where += fmt.Sprintf(` AND e.ejercicio_comercial = $%d`, len(args))
	}
	if filter.Market != "" {
		args = append(args, filter.Market)
		where += fmt.Sprintf(` AND e.mercado = $%d`, len(args))
	}
	return r.queryViews(ctx, where, args)
}

// queryViews runs the three-way join and attaches details per rating.
func (r *PgxRatingRepository) queryViews(ctx context.Context, where string, args []any) ([]domain.RatingView, error) {
	query := `
		SELECT c.calificacion_id, c.evento_id, c.monto_total_distribuido, c.monto_unitario_pesos, c.estado,
			c.created_at, c.created_by, c.last_updated_at, c.last_updated_by,
			e.evento_id, e.emisor_id, e.mercado, e.fecha_pago, e.fecha_registro, e.numero_dividendo, e.secuencia, e.ejercicio_comercial,
			e.created_at, e.created_by, e.last_updated_at, e.last_updated_by,
			i.emisor_id, i.rut, i.razon_social, i.nemonico, i.tipo_sociedad,
			i.created_at, i.created_by, i.last_updated_at, i.last_updated_by
		FROM calificaciones_tributarias c
		JOIN eventos_corporativos e ON e.evento_id = c.evento_id
		JOIN emisores i ON i.emisor_id = e.emisor_id
		WHERE ` + where + `
		ORDER BY e.fecha_pago DESC;
	`
	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query ratings: %w", err)
	}
	defer rows.Close()

	var views []domain.RatingView
	var ratingIDs []string
	for rows.Next() {
		var mr models.TaxRating
		var me models.CorporateEvent
		var mi models.Issuer
		err := rows.Scan(
			&mr.RatingID, &mr.EventID, &mr.TotalDistributed, &mr.UnitAmount, &mr.Status,
			&mr.CreatedAt, &mr.CreatedBy, &mr.LastUpdatedAt, &mr.LastUpdatedBy,
			&me.EventID, &me.IssuerID, &me.Market, &me.PaymentDate, &me.RegistrationDate, &me.DividendNumber, &me.Sequence, &me.FiscalYear,
			&me.CreatedAt, &me.CreatedBy, &me.LastUpdatedAt, &me.LastUpdatedBy,
			&mi.IssuerID, &mi.RUT, &mi.LegalName, &mi.Ticker, &mi.CompanyType,
			&mi.CreatedAt, &mi.CreatedBy, &mi.LastUpdatedAt, &mi.LastUpdatedBy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating view: %w", err)
		}
		views = append(views, domain.RatingView{
			Rating: mapping.ToDomainRating(mr),
			Event:  mapping.ToDomainEvent(me),
			Issuer: mapping.ToDomainIssuer(mi),
		})
		ratingIDs = append(ratingIDs, mr.RatingID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rating views: %w", err)
	}
	if len(views) == 0 {
		return []domain.RatingView{}, nil
	}

	detailsByRating, err := r.findDetailsForRatings(ctx, ratingIDs)
	if err != nil {
		return nil, err
	}
	for idx := range views {
		views[idx].Details = detailsByRating[views[idx].Rating.RatingID]
	}
	return views, nil
}

// findDetailsForRatings loads the factor details (with concepts) of the
// given ratings, ordered by declaration column.
func (r *PgxRatingRepository) findDetailsForRatings(ctx context.Context, ratingIDs []string) (map[string][]domain.FactorDetail, error) {
	query := `
		SELECT d.detalle_id, d.calificacion_id, d.concepto_id, d.valor,
			d.created_at, d.created_by, d.last_updated_at, d.last_updated_by,
			co.concepto_id, co.columna_dj, co.descripcion, co.tipo_dato
		FROM detalles_factor d
		JOIN conceptos_factor co ON co.concepto_id = d.concepto_id
		WHERE d.calificacion_id = ANY($1)
		ORDER BY co.columna_dj;
	`
	rows, err := r.Pool.Query(ctx, query, ratingIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query factor details: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.FactorDetail)
	for rows.Next() {
		var md models.FactorDetail
		var mc models.FactorConcept
		err := rows.Scan(
			&md.DetailID, &md.RatingID, &md.ConceptID, &md.Value,
			&md.CreatedAt, &md.CreatedBy, &md.LastUpdatedAt, &md.LastUpdatedBy,
			&mc.ConceptID, &mc.Column, &mc.Description, &mc.DataType,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan factor detail: %w", err)
		}
		d := mapping.ToDomainDetail(md)
		concept := mapping.ToDomainConcept(mc)
		d.Concept = &concept
		out[d.RatingID] = append(out[d.RatingID], d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read factor details: %w", err)
	}
	return out, nil
}

// UpdateRatingWithFactors applies a rating edit atomically: the rating row,
// factor upserts, cleared-factor deletions and the audit records.
func (r *PgxRatingRepository) UpdateRatingWithFactors(ctx context.Context, rating domain.TaxRating, upserts []domain.FactorDetail, deleteDetailIDs []string, audits []domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	if err := updateRatingTx(ctx, tx, rating); err != nil {
		return err
	}

	for _, d := range upserts {
		query := `
			INSERT INTO detalles_factor (detalle_id, calificacion_id, concepto_id, valor, created_at, created_by, last_updated_at, last_updated_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			ON CONFLICT (calificacion_id, concepto_id) DO UPDATE SET
				valor = EXCLUDED.valor,
				last_updated_at = EXCLUDED.last_updated_at,
				last_updated_by = EXCLUDED.last_updated_by;
		`
		m := mapping.ToModelDetail(d)
		_, err := tx.Exec(ctx, query,
			m.DetailID, m.RatingID, m.ConceptID, m.Value,
			m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert factor detail for concept %s: %w", m.ConceptID, err)
		}
	}

	if len(deleteDetailIDs) > 0 {
		_, err := tx.Exec(ctx, `DELETE FROM detalles_factor WHERE detalle_id = ANY($1);`, deleteDetailIDs)
		if err != nil {
			return fmt.Errorf("failed to delete cleared factor details: %w", err)
		}
	}

	for _, a := range audits {
		if err := insertAuditRecordTx(ctx, tx, a); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// DeleteRating removes the rating (details cascade) and appends the audit
// records in the same transaction.
func (r *PgxRatingRepository) DeleteRating(ctx context.Context, ratingID string, audits []domain.AuditRecord) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer r.Rollback(ctx, tx)

	tag, err := tx.Exec(ctx, `DELETE FROM calificaciones_tributarias WHERE calificacion_id = $1;`, ratingID)
	if err != nil {
		return fmt.Errorf("failed to delete rating %s: %w", ratingID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}

	for _, a := range audits {
		if err := insertAuditRecordTx(ctx, tx, a); err != nil {
			return err
		}
	}

	return r.Commit(ctx, tx)
}

// PgxConceptRepository reads the seeded factor-concept catalog.
type PgxConceptRepository struct {
	BaseRepository
}

func newPgxConceptRepository(pool *pgxpool.Pool) portsrepo.ConceptRepository {
	return &PgxConceptRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ConceptRepository = (*PgxConceptRepository)(nil)

// ListConcepts retrieves the catalog ordered by declaration column.
func (r *PgxConceptRepository) ListConcepts(ctx context.Context) ([]domain.FactorConcept, error) {
	query := `SELECT concepto_id, columna_dj, descripcion, tipo_dato FROM conceptos_factor ORDER BY columna_dj;`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query factor concepts: %w", err)
	}
	defer rows.Close()

	ms, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FactorConcept, error) {
		var m models.FactorConcept
		err := row.Scan(&m.ConceptID, &m.Column, &m.Description, &m.DataType)
		return m, err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return []domain.FactorConcept{}, nil
		}
		return nil, fmt.Errorf("failed to scan factor concepts: %w", err)
	}

	return mapping.ToDomainConceptSlice(ms), nil
}
