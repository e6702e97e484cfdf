package colors

import (
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestColorHelpers(t *testing.T) {
	saved := color.NoColor
	color.NoColor = true
	defer func() {
		color.NoColor = saved
	}()

	assert.Equal(t, "200", HTTPStatus(200))
	assert.Equal(t, "404", HTTPStatus(404))
	assert.Equal(t, "[2ms]", Elapsed(2*time.Millisecond))
	assert.Equal(t, "[worker abc] ", Prefix("worker", "abc", false))
	assert.Equal(t, "[reaper 1] ", Prefix("reaper", 1, true))
}
