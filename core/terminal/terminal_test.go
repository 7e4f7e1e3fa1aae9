package terminal

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDriver_notTerminal(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	defer w.Close()

	driver := New(r.Fd())

	assert.False(t, driver.IsTerminal())
	assert.ErrorIs(t, driver.Begin(), ErrNotTerminal)
	// Restoring after a failed Begin is a no-op.
	assert.NoError(t, driver.End())
	assert.NoError(t, driver.End())
}
