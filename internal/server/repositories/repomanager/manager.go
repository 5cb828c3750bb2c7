package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/cloudstore/internal/dbx"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/filemeta"
	"github.com/dmitrijs2005/cloudstore/internal/server/repositories/users"
)

// RepositoryManager vends repositories bound to an arbitrary DBTX, so
// services can run the same repository code inside or outside a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) filemeta.Repository
}
