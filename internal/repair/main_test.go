package repair

import (
	"os"
	"testing"

	"github.com/local/pdfsm/internal/logger"
)

func TestMain(m *testing.M) {
	logger.Discard()
	os.Exit(m.Run())
}
