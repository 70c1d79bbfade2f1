package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/subway-lines/internal/domain"
)

// LineRepo defines the persistence operations for Lines and their sections.
// A line is always read and written together with its full section set.
type LineRepo interface {
	// Create inserts a line together with its initial sections and returns the
	// persisted record. line.ID must already be set, since the sections
	// reference it. Returns domain.ErrConflict if the name is already taken.
	Create(ctx context.Context, line domain.Line) (domain.Line, error)

	// GetByID retrieves a line and its sections.
	// Returns domain.ErrNotFound if no line with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Line, error)

	// ListPaged returns one page of lines ordered by name, each with its
	// sections, and the total count.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Line, int64, error)

	// Update overwrites the name and color of a line.
	// Returns domain.ErrNotFound if no line with that ID exists.
	Update(ctx context.Context, line domain.Line) (domain.Line, error)

	// Delete removes a line and, by cascade, its sections.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateSections loads the line's sections, hands them to fn and saves
	// the result, all inside one transaction holding a row lock on the line.
	// Concurrent callers for the same line are serialised. If fn returns an
	// error nothing is written and that error is returned.
	UpdateSections(ctx context.Context, id uuid.UUID, fn func(*domain.Sections) error) (domain.Line, error)
}

// pgLineRepo is the Postgres implementation of LineRepo.
type pgLineRepo struct {
	db db
}

// NewLineRepo constructs a LineRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewLineRepo(db db) LineRepo {
	return &pgLineRepo{db: db}
}

// Create inserts the line row and its sections in one transaction.
func (r *pgLineRepo) Create(ctx context.Context, line domain.Line) (result domain.Line, err error) {
	const q = `
		INSERT INTO lines (id, name, color)
		VALUES (@id, @name, @color)
		RETURNING id, name, color, created_at, updated_at`

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Create: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	args := pgx.NamedArgs{"id": line.ID, "name": line.Name, "color": line.Color}
	result, err = scanLine(tx.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Create: %w", mapError(err))
	}

	if err = insertSections(ctx, tx, line.Sections.All()); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Create: %w", mapError(err))
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Create: commit: %w", err)
	}

	result.Sections = domain.NewSections(line.Sections.All()...)
	return result, nil
}

// GetByID retrieves a line by primary key along with its sections.
func (r *pgLineRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Line, error) {
	line, err := getLine(ctx, r.db, id, false)
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.GetByID: %w", err)
	}
	return line, nil
}

// ListPaged returns one page of lines ordered by name.
// Sections for every line on the page are fetched with a single extra query.
func (r *pgLineRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.Line, int64, error) {
	const q = `
		SELECT id, name, color, created_at, updated_at, COUNT(*) OVER() AS total
		FROM lines
		ORDER BY name
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LineRepo.ListPaged: %w", err)
	}

	var (
		lines = []domain.Line{}
		ids   []uuid.UUID
		total int64
	)
	for rows.Next() {
		var (
			l  domain.Line
			id pgtype.UUID
		)
		if err := rows.Scan(&id, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt, &total); err != nil {
			rows.Close()
			return nil, 0, fmt.Errorf("repo.LineRepo.ListPaged: scan: %w", err)
		}
		l.ID = uuid.UUID(id.Bytes)
		lines = append(lines, l)
		ids = append(ids, l.ID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.LineRepo.ListPaged: rows: %w", err)
	}

	sections, err := listSections(ctx, r.db, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.LineRepo.ListPaged: %w", err)
	}
	for i := range lines {
		lines[i].Sections = domain.NewSections(sections[lines[i].ID]...)
	}
	return lines, total, nil
}

// Update overwrites the mutable fields of a line and returns it with its sections.
func (r *pgLineRepo) Update(ctx context.Context, line domain.Line) (domain.Line, error) {
	const q = `
		UPDATE lines
		SET name       = @name,
		    color      = @color,
		    updated_at = now()
		WHERE id = @id
		RETURNING id, name, color, created_at, updated_at`

	args := pgx.NamedArgs{"id": line.ID, "name": line.Name, "color": line.Color}
	result, err := scanLine(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Update: %w", mapError(err))
	}

	sections, err := listSections(ctx, r.db, []uuid.UUID{result.ID})
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.Update: %w", err)
	}
	result.Sections = domain.NewSections(sections[result.ID]...)
	return result, nil
}

// Delete removes a line by primary key. Sections go with it (ON DELETE CASCADE).
func (r *pgLineRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM lines WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.LineRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.LineRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

// UpdateSections runs fn against the line's sections under SELECT ... FOR UPDATE
// and replaces the stored section rows with the result.
func (r *pgLineRepo) UpdateSections(ctx context.Context, id uuid.UUID, fn func(*domain.Sections) error) (result domain.Line, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: begin: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	line, err := getLine(ctx, tx, id, true)
	if err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: %w", err)
	}

	if err = fn(&line.Sections); err != nil {
		return domain.Line{}, err
	}

	if _, err = tx.Exec(ctx, `DELETE FROM sections WHERE line_id = @id`, pgx.NamedArgs{"id": id}); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: clear: %w", err)
	}
	if err = insertSections(ctx, tx, line.Sections.All()); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: %w", mapError(err))
	}

	const touch = `UPDATE lines SET updated_at = now() WHERE id = @id RETURNING updated_at`
	if err = tx.QueryRow(ctx, touch, pgx.NamedArgs{"id": id}).Scan(&line.UpdatedAt); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: touch: %w", err)
	}
	if err = tx.Commit(ctx); err != nil {
		return domain.Line{}, fmt.Errorf("repo.LineRepo.UpdateSections: commit: %w", err)
	}
	return line, nil
}

// getLine loads a line row and its sections. With forUpdate the line row is
// locked until the surrounding transaction ends.
func getLine(ctx context.Context, q db, id uuid.UUID, forUpdate bool) (domain.Line, error) {
	query := `
		SELECT id, name, color, created_at, updated_at
		FROM lines
		WHERE id = @id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	line, err := scanLine(q.QueryRow(ctx, query, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Line{}, mapError(err)
	}

	sections, err := listSections(ctx, q, []uuid.UUID{id})
	if err != nil {
		return domain.Line{}, err
	}
	line.Sections = domain.NewSections(sections[id]...)
	return line, nil
}

// listSections returns the sections of every line in lineIDs, keyed by line.
func listSections(ctx context.Context, q db, lineIDs []uuid.UUID) (map[uuid.UUID][]domain.Section, error) {
	out := make(map[uuid.UUID][]domain.Section, len(lineIDs))
	if len(lineIDs) == 0 {
		return out, nil
	}

	const query = `
		SELECT line_id, up_station_id, down_station_id, distance
		FROM sections
		WHERE line_id = ANY(@ids)
		ORDER BY created_at, id`

	rows, err := q.Query(ctx, query, pgx.NamedArgs{"ids": lineIDs})
	if err != nil {
		return nil, fmt.Errorf("list sections: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sec, err := scanSection(rows)
		if err != nil {
			return nil, fmt.Errorf("list sections: scan: %w", err)
		}
		out[sec.LineID()] = append(out[sec.LineID()], sec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sections: rows: %w", err)
	}
	return out, nil
}

// insertSections bulk-loads sections with the COPY protocol.
func insertSections(ctx context.Context, tx pgx.Tx, sections []domain.Section) error {
	if len(sections) == 0 {
		return nil
	}

	columns := []string{"line_id", "up_station_id", "down_station_id", "distance"}
	n, err := tx.CopyFrom(ctx, pgx.Identifier{"sections"}, columns,
		pgx.CopyFromSlice(len(sections), func(i int) ([]any, error) {
			s := sections[i]
			return []any{s.LineID(), s.UpStation(), s.DownStation(), s.Distance()}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("insert sections: %w", err)
	}
	if int(n) != len(sections) {
		return errors.New("insert sections: short copy")
	}
	return nil
}

// scanLine maps a single database row into a domain.Line without sections.
func scanLine(s scanner) (domain.Line, error) {
	var (
		l  domain.Line
		id pgtype.UUID
	)
	if err := s.Scan(&id, &l.Name, &l.Color, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return domain.Line{}, err
	}
	l.ID = uuid.UUID(id.Bytes)
	return l, nil
}

// scanSection maps a single sections row into a domain.Section.
func scanSection(s scanner) (domain.Section, error) {
	var (
		lineID, up, down pgtype.UUID
		distance         int
	)
	if err := s.Scan(&lineID, &up, &down, &distance); err != nil {
		return domain.Section{}, err
	}
	return domain.NewSection(uuid.UUID(lineID.Bytes), uuid.UUID(up.Bytes), uuid.UUID(down.Bytes), distance), nil
}
