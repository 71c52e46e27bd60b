package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/hitoshi/exercisetracker/internal/model"
)

// PostgresExerciseRepo はPostgreSQLを使用したエクササイズリポジトリ。
type PostgresExerciseRepo struct {
	db *sql.DB
}

// NewPostgresExerciseRepo はPostgresExerciseRepoを生成する。
func NewPostgresExerciseRepo(db *sql.DB) *PostgresExerciseRepo {
	return &PostgresExerciseRepo{db: db}
}

// Create はエクササイズ記録を作成する。
func (r *PostgresExerciseRepo) Create(ctx context.Context, exercise *model.Exercise) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO exercises (id, user_id, description, duration, date, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		exercise.ID, exercise.UserID, exercise.Description,
		exercise.Duration, exercise.Date, exercise.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert exercise: %w", err)
	}
	return nil
}

// ListByUser はユーザーのエクササイズ記録をフィルタ付きで取得する。
func (r *PostgresExerciseRepo) ListByUser(ctx context.Context, userID string, filter model.ExerciseFilter) ([]*model.Exercise, error) {
	query, args := buildListByUserQuery(userID, filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list exercises: %w", err)
	}
	defer rows.Close()

	exercises := make([]*model.Exercise, 0)
	for rows.Next() {
		e := &model.Exercise{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.Description, &e.Duration, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		e.Date = e.Date.UTC()
		exercises = append(exercises, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate exercises: %w", err)
	}

	return exercises, nil
}

// buildListByUserQuery はListByUserのSQLとプレースホルダ引数を組み立てる。
// From/Toは指定された場合のみ条件に加え、Limitは正の場合のみLIMIT句を付ける。
func buildListByUserQuery(userID string, filter model.ExerciseFilter) (string, []any) {
	var b strings.Builder
	args := []any{userID}

	b.WriteString(`SELECT id, user_id, description, duration, date, created_at FROM exercises WHERE user_id = $1`)

	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&b, " AND date >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&b, " AND date <= $%d", len(args))
	}

	b.WriteString(" ORDER BY created_at, id")

	if filter.HasLimit() {
		args = append(args, filter.Limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}

	return b.String(), args
}

// compile-time interface check
var _ ExerciseRepository = (*PostgresExerciseRepo)(nil)
