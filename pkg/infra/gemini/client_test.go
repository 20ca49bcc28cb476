package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, `{"name":"A"}`, stripCodeFence("```json\n{\"name\":\"A\"}\n```"))
	assert.Equal(t, `{"name":"A"}`, stripCodeFence("```\n{\"name\":\"A\"}\n```"))
	assert.Equal(t, `{"name":"A"}`, stripCodeFence(`{"name":"A"}`))
	assert.Equal(t, "", stripCodeFence("  \n"))
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	c, err := NewClient(t.Context(), "", "")
	assert.Nil(t, c)
	assert.Error(t, err)
}
