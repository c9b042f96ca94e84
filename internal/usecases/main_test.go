package usecases

import (
	"os"
	"testing"

	"mintworks.backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("development")
	os.Exit(m.Run())
}
