package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewMongoRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("index failure is logged and the repository is usable", func(mt *mtest.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    13,
			Name:    "Unauthorized",
			Message: "not authorized to create index",
		}))

		repo := NewMongoRepo(mt.Coll, zap.New(core).Sugar())

		assert.NotNil(mt, repo)
		entries := logs.FilterMessage("chat index create failed").All()
		if assert.Len(mt, entries, 1) {
			assert.Equal(mt, IndexName, entries[0].ContextMap()["index"])
		}
	})

	mt.Run("index success logs nothing", func(mt *mtest.T) {
		core, logs := observer.New(zapcore.WarnLevel)
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		repo := NewMongoRepo(mt.Coll, zap.New(core).Sugar())

		assert.NotNil(mt, repo)
		assert.Zero(mt, logs.Len())
	})
}
