package main

import (
	"context"
	"os"

	"github.com/murtaza309/streemza/app_config"
	"github.com/murtaza309/streemza/store"
	. "github.com/murtaza309/streemza/utils"
	. "github.com/murtaza309/streemza/utils/log"
	"github.com/pkg/errors"
)

// openStore opens the entity store selected by STORE_DRIVER. The returned
// func releases its connections.
func openStore(ctx context.Context, config app_config.ServerAppConfig) (store.Store, func(), error) {
	switch config.STORE_DRIVER {
	case app_config.StoreDriverMongo:
		uri := os.Getenv("MONGO_URI")
		if uri == "" {
			return nil, nil, errors.New("MONGO_URI is not set")
		}
		s, err := store.NewMongoStore(ctx, uri, config.MONGO_DATABASE)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(context.Background()); err != nil {
				Log.WithError(err).Error("fail to disconnect mongo")
			}
		}, nil
	case app_config.StoreDriverMemory:
		Log.Warn("using the in-memory store, data is lost on restart")
		return store.NewFakeStore(), func() {}, nil
	default:
		db, err := GetDBConnection()
		if err != nil {
			return nil, nil, errors.Wrap(err, "connect to postgres")
		}
		DatabaseSetupAndMigration(db)
		return store.NewGormStore(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil
	}
}
