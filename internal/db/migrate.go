package db

import (
	"context"
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет все миграции из migrations/ (goose, встроенные в бинарник).
func Migrate(ctx context.Context, database *sql.DB, log *zap.Logger) error {
	goose.SetBaseFS(migrationsFS)
	goose.SetLogger(zap.NewStdLog(log))
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		log.Error("migration failed", zap.Error(err))
		return err
	}
	v, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return err
	}
	log.Info("✅ migrations applied", zap.Int64("version", v))
	return nil
}
