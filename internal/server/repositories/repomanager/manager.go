package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/videonotes/internal/dbx"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/handshakes"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/notes"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/videonotes/internal/server/repositories/videos"
)

// RepositoryManager vends repositories bound to a DBTX, so services can run
// several repositories inside one transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Profiles(db dbx.DBTX) profiles.Repository
	Videos(db dbx.DBTX) videos.Repository
	Notes(db dbx.DBTX) notes.Repository
	Handshakes(db dbx.DBTX) handshakes.Repository
	Sessions(db dbx.DBTX) sessions.Repository
}
