package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestNewMySQLCache_InvalidDSN(t *testing.T) {
	_, err := NewMySQLCache("not a dsn", zap.NewNop())
	assert.Error(t, err)
}
