package repomanager

import (
	"context"
	"database/sql"

	"github.com/tgcatalog/backend/internal/dbx"
	"github.com/tgcatalog/backend/internal/repositories/audit"
	"github.com/tgcatalog/backend/internal/repositories/catalog"
	"github.com/tgcatalog/backend/internal/repositories/files"
	"github.com/tgcatalog/backend/internal/repositories/tickets"
	"github.com/tgcatalog/backend/internal/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Catalog(db dbx.DBTX) catalog.Repository
	Files(db dbx.DBTX) files.Repository
	Tickets(db dbx.DBTX) tickets.Repository
	Audit(db dbx.DBTX) audit.Repository
}
