package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplatesParse(t *testing.T) {
	t.Parallel()
	r := Default()
	ids := r.IDs()
	require.NotEmpty(t, ids)
	assert.Contains(t, ids, "services.transport")
	assert.Contains(t, ids, "components.list")
}

func TestOverrideReplacesTemplate(t *testing.T) {
	t.Parallel()
	r, err := New(map[string]string{
		"services.transport": `{{range .}}{{pascal .}};{{end}}{{if .}}!{{end}}`,
	})
	require.NoError(t, err)
	out, err := r.Render("services.transport", []string{"order-item", "pet"})
	require.NoError(t, err)
	assert.Equal(t, "OrderItem;Pet;!", out)
}

func TestUnknownIDs(t *testing.T) {
	t.Parallel()
	_, err := New(map[string]string{"nope": "x"})
	require.Error(t, err)

	_, err = Default().Render("nope", nil)
	require.Error(t, err)
}

func TestBrokenOverride(t *testing.T) {
	t.Parallel()
	_, err := New(map[string]string{"services.transport": "{{if}}"})
	require.Error(t, err)
}
