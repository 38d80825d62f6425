package dbctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ctxKey struct{}

func TestContextDBPrefersTx(t *testing.T) {
	base, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	tx := base.Session(&gorm.Session{NewDB: true})

	ctx := context.WithValue(context.Background(), ctxKey{}, "v")
	got := Context{Ctx: ctx, Tx: tx}.DB(base)
	assert.Equal(t, "v", got.Statement.Context.Value(ctxKey{}))

	fallback := Context{}.DB(base)
	assert.NotNil(t, fallback.Statement.Context)
}
