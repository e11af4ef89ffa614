package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lagrange-go/lagrange/internal/core/services"
)

func TestStaticBotContext_Identity(t *testing.T) {
	ctx := services.NewStaticBotContext(123456)
	assert.Equal(t, int64(123456), ctx.Identity().UIN)
}
