package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/linkmark/internal/dbx"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/bookmarks"
	"github.com/dmitrijs2005/linkmark/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Bookmarks(db dbx.DBTX) bookmarks.Repository
}
