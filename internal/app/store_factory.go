package app

import (
	"fmt"
	"strings"

	"github.com/shrimpsizemoose/evaluaciones/internal/store"
	"github.com/shrimpsizemoose/evaluaciones/internal/store/postgres"
	"github.com/shrimpsizemoose/evaluaciones/internal/store/sqlite"
)

func DetectDBType(dsn string) store.DatabaseType {
	if strings.HasPrefix(dsn, "postgres") {
		return store.DBTypePostgres
	}
	return store.DBTypeSQLite
}

func NewStore(dsn string) (store.EvaluationStore, error) {
	switch DetectDBType(dsn) {
	case store.DBTypePostgres:
		return postgres.NewPostgresStore(dsn)
	case store.DBTypeSQLite:
		return sqlite.NewSQLiteStore(dsn)
	default:
		return nil, fmt.Errorf("unable to determine database type from DSN: %s", dsn)
	}
}
