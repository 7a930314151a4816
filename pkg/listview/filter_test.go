package listview

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPanelApply(t *testing.T) {
	panel, err := NewPanel(personFilters()...)
	require.NoError(t, err)
	rows := people()

	require.NoError(t, panel.Set("company", "Acme"))
	require.Equal(t, []string{"Bob", "Alice"}, names(panel.Apply(rows)))

	require.NoError(t, panel.Set("joined", "2024-01-02"))
	require.Equal(t, []string{"Alice"}, names(panel.Apply(rows)))

	require.NoError(t, panel.Set("company", ""))
	require.Equal(t, []string{"Alice", "Dmitri"}, names(panel.Apply(rows)))
	require.Len(t, rows, 4, "original rows must be untouched")
}

func TestPanelCommutative(t *testing.T) {
	rows := people()
	a, err := NewPanel(personFilters()...)
	require.NoError(t, err)
	b, err := NewPanel(personFilters()...)
	require.NoError(t, err)

	require.NoError(t, a.Set("company", "Globex"))
	require.NoError(t, a.Set("joined", "2024-01-02"))
	require.NoError(t, b.Set("joined", "2024-01-02"))
	require.NoError(t, b.Set("company", "Globex"))

	require.Equal(t, a.Apply(rows), b.Apply(rows))
	require.Equal(t, []string{"Dmitri"}, names(a.Apply(rows)))
}

func TestPanelRelaxingFilterUsesOriginal(t *testing.T) {
	panel, err := NewPanel(personFilters()...)
	require.NoError(t, err)
	rows := people()

	require.NoError(t, panel.Set("company", "Acme"))
	require.Len(t, panel.Apply(rows), 2)
	require.NoError(t, panel.Set("company", "Globex"))
	require.Equal(t, []string{"Alicia", "Dmitri"}, names(panel.Apply(rows)))

	panel.ClearAll()
	require.Len(t, panel.Apply(rows), 4)
	require.Zero(t, panel.Active())
}

func TestPanelUnknownFilter(t *testing.T) {
	panel, err := NewPanel(personFilters()...)
	require.NoError(t, err)
	require.ErrorIs(t, panel.Set("salary", "1"), ErrUnknownFilter)
}

func TestPanelRejectsDuplicates(t *testing.T) {
	defs := append(personFilters(), personFilters()[0])
	_, err := NewPanel(defs...)
	require.Error(t, err)
}

func TestPanelControlsDeriveOptions(t *testing.T) {
	panel, err := NewPanel(personFilters()...)
	require.NoError(t, err)
	require.NoError(t, panel.Set("company", "Acme"))

	controls := panel.Controls(nil, people())
	require.Len(t, controls, 2)
	require.Equal(t, "company", controls[0].Name)
	require.Equal(t, "Acme", controls[0].Value)
	require.Equal(t, []Option{{Value: "Acme", Label: "Acme"}, {Value: "Globex", Label: "Globex"}}, controls[0].Options)
	require.Equal(t, "2024-01-01", controls[1].Options[0].Value)
}
