package storage

import (
	"context"
	"fmt"

	"github.com/AdilzhanB/Spilldataserver/pkg/readingdb"
	"github.com/AdilzhanB/Spilldataserver/pkg/readingfile"
	"github.com/AdilzhanB/Spilldataserver/pkg/types"
	"go.uber.org/zap"
)

type relationalStore struct {
	*readingdb.Store
}

func (relationalStore) Backend() Backend { return BackendRelational }

type fileStore struct {
	*readingfile.Store
}

func (fileStore) Backend() Backend { return BackendFile }

// Select picks the backend for the lifetime of the process.
// The relational backend is used when cfg.DatabaseURL is set and it initializes;
// otherwise readings go to files under cfg.DataDir. Only a failing file backend
// is fatal, reported as types.ErrNoBackend.
func Select(ctx context.Context, cfg Config, log *zap.Logger) (Store, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if cfg.DatabaseURL != "" {
		db, err := readingdb.Open(ctx, cfg.DatabaseURL, readingdb.Options{
			Timeout: cfg.DBTimeout,
			Logger:  log.Named("readingdb"),
		})
		if err == nil {
			log.Info("storage backend selected",
				zap.String("backend", string(BackendRelational)),
				zap.String("dialect", db.Dialect()))
			return relationalStore{db}, nil
		}
		log.Warn("relational backend unavailable, falling back to file storage", zap.Error(err))
	} else {
		log.Info("no database configured, using file storage")
	}

	fs, err := readingfile.Open(cfg.DataDir, log.Named("readingfile"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrNoBackend, err)
	}
	log.Info("storage backend selected",
		zap.String("backend", string(BackendFile)),
		zap.String("dir", fs.Dir()))
	return fileStore{fs}, nil
}
