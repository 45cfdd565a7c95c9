package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/uniclip/internal/dbx"
	"github.com/dmitrijs2005/uniclip/internal/repositories/accounts"
	"github.com/dmitrijs2005/uniclip/internal/repositories/clipboards"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Clipboards(db dbx.DBTX) clipboards.Repository
}
