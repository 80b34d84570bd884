package store_test

import (
	"github.com/StricklySoft/stricklysoft-store/pkg/clients/postgres"
	"github.com/StricklySoft/stricklysoft-store/pkg/clients/redis"
	"github.com/StricklySoft/stricklysoft-store/pkg/store"
)

var (
	_ store.Backend = (*redis.Client)(nil)
	_ store.Backend = (*postgres.Client)(nil)
)
