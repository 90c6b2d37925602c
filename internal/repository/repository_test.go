package repository

import (
	"fmt"
	"testing"

	"genom-go/internal/model"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKey(t *testing.T) {
	assert.True(t, isDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, isDuplicateKey(fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})))
	assert.False(t, isDuplicateKey(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicateKey(gorm.ErrRecordNotFound))
}

func TestOptionCacheKey(t *testing.T) {
	id := uint(7)
	assert.Equal(t, "taxonomy:options:order:root", OptionCacheKey(model.RankOrder, nil))
	assert.Equal(t, "taxonomy:options:family:7", OptionCacheKey(model.RankFamily, &id))
}
