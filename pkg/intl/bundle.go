package intl

import (
	"io/fs"
	"path"

	"github.com/BurntSushi/toml"
	"github.com/go-faster/errors"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

// NewBundle creates a bundle that reads TOML message files.
func NewBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return bundle
}

// LoadLocaleFiles loads every *.toml file of fsys into bundle. The file name
// (en.toml, zh.toml) names the language.
func LoadLocaleFiles(bundle *i18n.Bundle, fsys fs.FS) error {
	files, err := fs.Glob(fsys, "*.toml")
	if err != nil {
		return errors.Wrap(err, "glob locale files")
	}
	for _, name := range files {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return errors.Wrapf(err, "read %s", name)
		}
		if _, err := bundle.ParseMessageFileBytes(data, path.Base(name)); err != nil {
			return errors.Wrapf(err, "parse %s", name)
		}
	}
	return nil
}
