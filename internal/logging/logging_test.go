package logging

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupWritesToFile(t *testing.T) {
	defer log.SetOutput(os.Stderr)
	file := filepath.Join(t.TempDir(), "server.log")

	closer := Setup(file)
	log.Printf("TransactionService: checked in TRX-20240301-0001")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "TRX-20240301-0001")
}

func TestSetupWithoutFile(t *testing.T) {
	assert.NoError(t, Setup("").Close())
}
