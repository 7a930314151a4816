package hrm

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/iota-uz/hrdesk/modules/hrm/infrastructure/persistence"
	"github.com/iota-uz/hrdesk/modules/hrm/presentation/resources"
	"github.com/iota-uz/hrdesk/pkg/authn"
	"github.com/iota-uz/hrdesk/pkg/composables"
	"github.com/iota-uz/hrdesk/pkg/eventbus"
	"github.com/iota-uz/hrdesk/pkg/intl"
	"github.com/iota-uz/hrdesk/pkg/listview"
)

func TestLocaleFilesTranslateEveryTable(t *testing.T) {
	bundle := intl.NewBundle()
	require.NoError(t, intl.LoadLocaleFiles(bundle, LocaleFiles()))

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	reg := resources.NewCatalog(resources.Deps{
		Publisher: eventbus.NewEventPublisher(logger),
		Memory:    persistence.NewMemoryStore(nil),
		Logger:    logger,
		PageSize:  10,
	})
	state := authn.AuthState{UserID: uuid.New(), TenantID: uuid.New(), Roles: []string{authn.RoleAdmin}}
	ctx := composables.WithAuthState(context.Background(), state)

	for _, tag := range []language.Tag{language.English, language.Chinese} {
		dict := intl.NewDictionary(bundle, tag)
		for _, h := range reg.All() {
			assert.NotEqual(t, h.Label(), dict.T(h.Label()), "%s title in %s", h.Name(), tag)

			view, err := h.Table(ctx, listview.State{}, dict)
			require.NoError(t, err, h.Name())
			for _, header := range view.Headers {
				assert.False(t, strings.HasPrefix(header.Label, "Columns."), "%s header %s in %s", h.Name(), header.Label, tag)
			}
			for _, f := range view.Filters {
				assert.False(t, strings.HasPrefix(f.Label, "Columns."), "%s filter %s in %s", h.Name(), f.Label, tag)
			}
		}
	}

	en := intl.NewDictionary(bundle, language.English)
	assert.Equal(t, "ID", en.T("Columns.RecordID"))
	assert.Equal(t, "Description", en.T("Columns.DescriptionText"))
}
